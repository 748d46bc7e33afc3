package server

import (
	"net/http"

	"github.com/jonathan/sng-admin/internal/types"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBody[types.AssetUploadRequest](r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	asset, err := s.assets.Upload(r.Context(), actor(r), req.Filename, req.DataURL)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, types.AssetUploadResponse{
		URL:     asset.URL,
		Size:    asset.Size,
		Storage: asset.Storage,
		Type:    asset.Type,
	})
}

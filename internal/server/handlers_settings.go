package server

import (
	"net/http"

	"github.com/jonathan/sng-admin/internal/types"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settings.Get(r.Context())
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, settings)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := decodeBody[types.SiteSettings](r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	saved, err := s.settings.Put(r.Context(), actor(r), settings)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, saved)
}

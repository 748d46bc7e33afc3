package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jonathan/sng-admin/internal/content"
)

// deleteResponse is the body of a successful DELETE.
type deleteResponse[T any] struct {
	OK      bool `json:"ok"`
	Removed T    `json:"removed"`
}

// registerCollection mounts list, create, update and delete routes for c
// under /<resource>.
func registerCollection[T content.Record](r chi.Router, s *Server, c *content.Collection[T]) {
	path := "/" + c.Resource()

	r.Get(path, func(w http.ResponseWriter, r *http.Request) {
		list, err := c.List(r.Context())
		if err != nil {
			s.errorResponse(w, r, err)
			return
		}
		s.jsonResponse(w, http.StatusOK, list)
	})

	r.Post(path, func(w http.ResponseWriter, r *http.Request) {
		item, err := decodeBody[T](r)
		if err != nil {
			s.errorResponse(w, r, err)
			return
		}
		created, err := c.Create(r.Context(), actor(r), item)
		if err != nil {
			s.errorResponse(w, r, err)
			return
		}
		s.jsonResponse(w, http.StatusCreated, created)
	})

	r.Put(path+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		item, err := decodeBody[T](r)
		if err != nil {
			s.errorResponse(w, r, err)
			return
		}
		updated, err := c.Update(r.Context(), actor(r), chi.URLParam(r, "id"), item)
		if err != nil {
			s.errorResponse(w, r, err)
			return
		}
		s.jsonResponse(w, http.StatusOK, updated)
	})

	r.Delete(path+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		removed, err := c.Delete(r.Context(), actor(r), chi.URLParam(r, "id"))
		if err != nil {
			s.errorResponse(w, r, err)
			return
		}
		s.jsonResponse(w, http.StatusOK, deleteResponse[T]{OK: true, Removed: removed})
	})
}

// publicList serves the read-only listing of c.
func publicList[T content.Record](s *Server, c *content.Collection[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := c.List(r.Context())
		if err != nil {
			s.errorResponse(w, r, err)
			return
		}
		s.jsonResponse(w, http.StatusOK, list)
	}
}

// decodeBody reads and decodes a JSON object body.
func decodeBody[T any](r *http.Request) (T, error) {
	data, err := readBody(r)
	if err != nil {
		var zero T
		return zero, err
	}
	return content.Decode[T](data)
}

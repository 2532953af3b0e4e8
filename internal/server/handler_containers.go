package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/me/depstart/pkg/model"
)

func (s *Server) handleListContainers(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, s.source.Status())
}

func (s *Server) handleGetContainer(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	name := chi.URLParam(r, "name")

	st, ok := s.source.ContainerStatus(name)
	if !ok {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("Container", name))
		return
	}
	respondOK(w, reqID, st)
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/okian/upg/internal/app"
)

type thresholdRequest struct {
	PercentFrom *rawNumber `json:"percentFrom"`
	Grade       *rawNumber `json:"grade"`
}

func (s *Server) handleAddThreshold(w http.ResponseWriter, r *http.Request) {
	t, err := s.deps.AddThreshold(r.Context(), chi.URLParam(r, "subjectID"))
	if err != nil {
		writeError(w, Wrap("add threshold", err))
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleUpdateThreshold(w http.ResponseWriter, r *http.Request) {
	var req thresholdRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, WrapKind("update threshold", ErrBadRequest, err))
		return
	}
	t, err := s.deps.UpdateThreshold(r.Context(),
		chi.URLParam(r, "subjectID"), chi.URLParam(r, "thresholdID"),
		app.ThresholdPatch{PercentFrom: req.PercentFrom.ptr(), Grade: req.Grade.ptr()})
	if err != nil {
		writeError(w, Wrap("update threshold", err))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteThreshold(w http.ResponseWriter, r *http.Request) {
	err := s.deps.DeleteThreshold(r.Context(), chi.URLParam(r, "subjectID"), chi.URLParam(r, "thresholdID"))
	if err != nil {
		writeError(w, Wrap("delete threshold", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

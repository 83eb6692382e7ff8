package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type subjectRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleAddSubject(w http.ResponseWriter, r *http.Request) {
	var req subjectRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, WrapKind("add subject", ErrBadRequest, err))
		return
	}
	subj, err := s.deps.AddSubject(r.Context(), req.Name)
	if err != nil {
		writeError(w, Wrap("add subject", err))
		return
	}
	writeJSON(w, http.StatusCreated, subj)
}

func (s *Server) handleGetSubject(w http.ResponseWriter, r *http.Request) {
	rep, err := s.deps.Subject(r.Context(), chi.URLParam(r, "subjectID"))
	if err != nil {
		writeError(w, Wrap("subject", err))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleRenameSubject(w http.ResponseWriter, r *http.Request) {
	var req subjectRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, WrapKind("rename subject", ErrBadRequest, err))
		return
	}
	subj, err := s.deps.RenameSubject(r.Context(), chi.URLParam(r, "subjectID"), req.Name)
	if err != nil {
		writeError(w, Wrap("rename subject", err))
		return
	}
	writeJSON(w, http.StatusOK, subj)
}

func (s *Server) handleDeleteSubject(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.DeleteSubject(r.Context(), chi.URLParam(r, "subjectID")); err != nil {
		writeError(w, Wrap("delete subject", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectSubject(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.SelectSubject(r.Context(), chi.URLParam(r, "subjectID")); err != nil {
		writeError(w, Wrap("select subject", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/okian/upg/internal/app"
)

type componentRequest struct {
	Name   *string    `json:"name"`
	Weight *rawNumber `json:"weight"`
}

type entryRequest struct {
	Label *string    `json:"label"`
	Score *rawNumber `json:"score"`
	Max   *rawNumber `json:"max"`
}

func (s *Server) handleAddComponent(w http.ResponseWriter, r *http.Request) {
	var req componentRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, WrapKind("add component", ErrBadRequest, err))
		return
	}
	name := ""
	if req.Name != nil {
		name = *req.Name
	}
	comp, err := s.deps.AddComponent(r.Context(), chi.URLParam(r, "subjectID"), name, numberString(req.Weight, 0))
	if err != nil {
		writeError(w, Wrap("add component", err))
		return
	}
	writeJSON(w, http.StatusCreated, comp)
}

func (s *Server) handleUpdateComponent(w http.ResponseWriter, r *http.Request) {
	var req componentRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, WrapKind("update component", ErrBadRequest, err))
		return
	}
	comp, err := s.deps.UpdateComponent(r.Context(),
		chi.URLParam(r, "subjectID"), chi.URLParam(r, "componentID"),
		app.ComponentPatch{Name: req.Name, Weight: req.Weight.ptr()})
	if err != nil {
		writeError(w, Wrap("update component", err))
		return
	}
	writeJSON(w, http.StatusOK, comp)
}

func (s *Server) handleDeleteComponent(w http.ResponseWriter, r *http.Request) {
	err := s.deps.DeleteComponent(r.Context(), chi.URLParam(r, "subjectID"), chi.URLParam(r, "componentID"))
	if err != nil {
		writeError(w, Wrap("delete component", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, WrapKind("add entry", ErrBadRequest, err))
		return
	}
	label := ""
	if req.Label != nil {
		label = *req.Label
	}
	e, err := s.deps.AddEntry(r.Context(), chi.URLParam(r, "subjectID"), chi.URLParam(r, "componentID"), label)
	if err != nil {
		writeError(w, Wrap("add entry", err))
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, WrapKind("update entry", ErrBadRequest, err))
		return
	}
	e, err := s.deps.UpdateEntry(r.Context(),
		chi.URLParam(r, "subjectID"), chi.URLParam(r, "componentID"), chi.URLParam(r, "entryID"),
		app.EntryPatch{Label: req.Label, Score: req.Score.ptr(), Max: req.Max.ptr()})
	if err != nil {
		writeError(w, Wrap("update entry", err))
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	err := s.deps.DeleteEntry(r.Context(),
		chi.URLParam(r, "subjectID"), chi.URLParam(r, "componentID"), chi.URLParam(r, "entryID"))
	if err != nil {
		writeError(w, Wrap("delete entry", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

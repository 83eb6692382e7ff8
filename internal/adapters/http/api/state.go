package api

import (
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/okian/upg/internal/adapters/codec"
	"github.com/okian/upg/internal/app"
)

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	s.writeState(w, r, "state")
}

func (s *Server) handleGetOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := s.deps.Overview(r.Context())
	if err != nil {
		writeError(w, Wrap("overview", err))
		return
	}
	writeJSON(w, http.StatusOK, ov)
}

// writeState answers with the current document in its persisted JSON form.
func (s *Server) writeState(w http.ResponseWriter, r *http.Request, op string) {
	st, err := s.deps.State(r.Context())
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	data, err := codec.Encode(st, codec.FormatJSON)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", codec.FormatJSON.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Reset(r.Context()); err != nil {
		writeError(w, Wrap("reset", err))
		return
	}
	s.writeState(w, r, "reset")
}

type settingsRequest struct {
	Theme *string `json:"theme"`
	View  *string `json:"view"`
}

func (s *Server) handlePatchSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, WrapKind("settings", ErrBadRequest, err))
		return
	}
	if err := s.deps.UpdateSettings(r.Context(), app.SettingsPatch{Theme: req.Theme, View: req.View}); err != nil {
		writeError(w, Wrap("settings", err))
		return
	}
	s.writeState(w, r, "settings")
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	f, err := codec.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, Wrap("export", err))
		return
	}
	data, err := s.deps.Export(r.Context(), f)
	if err != nil {
		writeError(w, Wrap("export", err))
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="upg-data.`+f.Ext()+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// importFormat takes the format from ?format=, then the Content-Type, then
// defaults to JSON.
func importFormat(r *http.Request) (codec.Format, error) {
	if q := r.URL.Query().Get("format"); q != "" {
		return codec.ParseFormat(q)
	}
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err == nil && strings.Contains(mt, "yaml") {
		return codec.FormatYAML, nil
	}
	return codec.FormatJSON, nil
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	f, err := importFormat(r)
	if err != nil {
		writeError(w, Wrap("import", err))
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeError(w, WrapKind("import", ErrImportFailed, err))
		return
	}
	if err := s.deps.Import(r.Context(), data, f); err != nil {
		writeError(w, Wrap("import", err))
		return
	}
	s.writeState(w, r, "import")
}

// Package api exposes the grade calculator controller over loopback
// HTTP/JSON so a presentation layer can dispatch edits and read reports.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/okian/upg/internal/adapters/codec"
	"github.com/okian/upg/internal/adapters/http/site"
	"github.com/okian/upg/internal/adapters/http/swagger"
	"github.com/okian/upg/internal/app"
	"github.com/okian/upg/internal/domain/model"
	"github.com/okian/upg/internal/domain/types"
	"github.com/okian/upg/pkg/logger"
)

// maxImportBytes bounds request bodies, including imported documents.
const maxImportBytes = 10 << 20

// Dependencies required by HTTP handlers. The controller satisfies it.
type Dependencies interface {
	State(ctx context.Context) (*model.State, error)
	Overview(ctx context.Context) (types.Overview, error)
	Subject(ctx context.Context, id string) (types.SubjectReport, error)

	Reset(ctx context.Context) error
	UpdateSettings(ctx context.Context, p app.SettingsPatch) error
	Export(ctx context.Context, f codec.Format) ([]byte, error)
	Import(ctx context.Context, data []byte, f codec.Format) error

	AddSubject(ctx context.Context, name string) (model.Subject, error)
	RenameSubject(ctx context.Context, id, name string) (model.Subject, error)
	DeleteSubject(ctx context.Context, id string) error
	SelectSubject(ctx context.Context, id string) error

	AddComponent(ctx context.Context, subjectID, name, weight string) (model.Component, error)
	UpdateComponent(ctx context.Context, subjectID, componentID string, p app.ComponentPatch) (model.Component, error)
	DeleteComponent(ctx context.Context, subjectID, componentID string) error

	AddEntry(ctx context.Context, subjectID, componentID, label string) (model.Entry, error)
	UpdateEntry(ctx context.Context, subjectID, componentID, entryID string, p app.EntryPatch) (model.Entry, error)
	DeleteEntry(ctx context.Context, subjectID, componentID, entryID string) error

	AddThreshold(ctx context.Context, subjectID string) (model.Threshold, error)
	UpdateThreshold(ctx context.Context, subjectID, thresholdID string, p app.ThresholdPatch) (model.Threshold, error)
	DeleteThreshold(ctx context.Context, subjectID, thresholdID string) error
}

// Server wires HTTP routes for the calculator API.
type Server struct {
	deps          Dependencies
	healthHandler *HealthHandler
	statsHandler  *StatsHandler

	corsOrigins []string
	logger      logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithCORSOrigins sets the front-end origins allowed to call the API.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithLogger sets a custom logger for request logging.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		deps:          deps,
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		corsOrigins:   []string{"http://localhost:3000", "http://127.0.0.1:3000"},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("http")
	}
	return s
}

// Handler builds the router with middleware, API routes, the About site and
// the API reference.
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)
	r.Use(MetricsMiddleware, LoggingMiddleware(s.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	s.Register(ctx, r)
	site.Register(ctx, r)
	swagger.Register(ctx, r)
	return r
}

// Register attaches all API routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/metrics", s.healthHandler.HandleMetrics)
	r.Get("/stats", s.statsHandler.HandleStats)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleGetState)
		r.Get("/overview", s.handleGetOverview)
		r.Post("/reset", s.handleReset)
		r.Patch("/settings", s.handlePatchSettings)
		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)

		r.Route("/subjects", func(r chi.Router) {
			r.Post("/", s.handleAddSubject)
			r.Route("/{subjectID}", func(r chi.Router) {
				r.Get("/", s.handleGetSubject)
				r.Patch("/", s.handleRenameSubject)
				r.Delete("/", s.handleDeleteSubject)
				r.Post("/select", s.handleSelectSubject)

				r.Post("/components", s.handleAddComponent)
				r.Route("/components/{componentID}", func(r chi.Router) {
					r.Patch("/", s.handleUpdateComponent)
					r.Delete("/", s.handleDeleteComponent)
					r.Post("/entries", s.handleAddEntry)
					r.Patch("/entries/{entryID}", s.handleUpdateEntry)
					r.Delete("/entries/{entryID}", s.handleDeleteEntry)
				})

				r.Post("/conversion", s.handleAddThreshold)
				r.Patch("/conversion/{thresholdID}", s.handleUpdateThreshold)
				r.Delete("/conversion/{thresholdID}", s.handleDeleteThreshold)
			})
		})
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeBody reads an optional JSON body into v. An empty body leaves v as is.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/paradigmbrian/wellness-mono-sub000/internal/ingest/apple"
	"github.com/paradigmbrian/wellness-mono-sub000/internal/objectstore"
	"github.com/paradigmbrian/wellness-mono-sub000/internal/storage"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db      *storage.DB
	apple   *apple.Provider
	objects *objectstore.Client // nil when lab storage is disabled
	log     *slog.Logger
	apiKey  string
	router  chi.Router
}

// New creates a new Server with all routes configured. objects may be nil;
// lab upload endpoints then respond 503.
func New(db *storage.DB, appleProvider *apple.Provider, objects *objectstore.Client, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:      db,
		apple:   appleProvider,
		objects: objects,
		log:     log,
		apiKey:  apiKey,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Use(RequireUser)

		r.Post("/sync/apple", s.handleAppleSync)
		r.Get("/sync/logs", s.handleSyncLogs)

		r.Get("/metrics/daily", s.handleDailyMetrics)
		r.Get("/metrics/latest", s.handleLatestMetric)

		r.Get("/insights", s.handleInsights)

		r.Get("/sources", s.handleListSources)
		r.Post("/sources/{source}/connect", s.handleConnectSource)
		r.Post("/sources/{source}/disconnect", s.handleDisconnectSource)
		r.Post("/sources/{source}/autosync", s.handleSetAutoSync)

		r.Post("/labs", s.handleUploadLab)
		r.Get("/labs", s.handleListLabs)
		r.Delete("/labs/{id}", s.handleDeleteLab)

		r.Get("/subscription", s.handleGetSubscription)
		r.Put("/subscription", s.handlePutSubscription)
	})
}

// SetMCP mounts the MCP transport handler. LLM clients use it to query
// health data and insights.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Mount("/mcp", h)
}

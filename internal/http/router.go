package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docqa/internal/handlers"
	"docqa/internal/ingest"
	"docqa/internal/rag"
	"docqa/internal/repository"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Repo           *repository.Repository
	Pipeline       *ingest.Pipeline
	Engine         rag.Engine
	SeedDir        string
	MaxUploadBytes int64
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.Recoverer)

	// Request-scoped logger, CORS, then session identity
	r.Use(RequestLogger)
	r.Use(CORS)
	r.Use(Identity)

	documentsHandler := handlers.NewDocumentsHandler(deps.Repo, deps.Pipeline, deps.MaxUploadBytes)
	chatHandler := handlers.NewChatHandler(deps.Repo, deps.Engine)
	statsHandler := handlers.NewStatsHandler(deps.Repo)
	healthHandler := handlers.NewHealthHandler(deps.Repo)
	seedHandler := handlers.NewSeedHandler(deps.Pipeline, deps.SeedDir)

	// Register API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/documents", func(r chi.Router) {
			r.Get("/", documentsHandler.List)
			r.Post("/", documentsHandler.Upload)
			r.Get("/{id}", documentsHandler.Get)
			r.Get("/{id}/progress", documentsHandler.Progress)
			r.Delete("/{id}", documentsHandler.Delete)
		})
		r.Route("/chat", func(r chi.Router) {
			r.Get("/messages", chatHandler.List)
			r.Post("/messages", chatHandler.Send)
			r.Delete("/messages", chatHandler.Clear)
		})
		r.Method(http.MethodGet, "/stats", statsHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
		r.Method(http.MethodPost, "/seed", seedHandler)
	})

	return r
}

package handlers

import (
	"context"
	"net/http"

	"docqa/internal/contextutil"
	"docqa/internal/ingest"
)

// SeedHandler handles HTTP requests for triggering directory seeding.
type SeedHandler struct {
	pipeline *ingest.Pipeline
	seedDir  string
}

// NewSeedHandler creates a new SeedHandler.
func NewSeedHandler(pipeline *ingest.Pipeline, seedDir string) *SeedHandler {
	return &SeedHandler{
		pipeline: pipeline,
		seedDir:  seedDir,
	}
}

// SeedResponse represents the response from the seed endpoint.
type SeedResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ServeHTTP handles HTTP requests for triggering directory seeding.
func (h *SeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if h.seedDir == "" {
		writeError(w, http.StatusBadRequest, "Seeding is not configured")
		return
	}

	logger.InfoContext(ctx, "seeding triggered via API", "dir", h.seedDir)

	// Run seeding in a goroutine so it doesn't block the HTTP response.
	// Use a background context so seeding continues after the request completes.
	go func() {
		seedCtx := context.WithValue(context.Background(), contextutil.LoggerKey(), logger)
		if err := h.pipeline.SeedDirectory(seedCtx, h.seedDir); err != nil {
			logger.ErrorContext(seedCtx, "seeding completed with errors", "error", err)
		} else {
			logger.InfoContext(seedCtx, "seeding completed successfully")
		}
	}()

	// Return immediately with accepted status
	writeJSON(w, http.StatusAccepted, SeedResponse{
		Message: "Seeding started. Check server logs for progress.",
		Status:  "accepted",
	})
}

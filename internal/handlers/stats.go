package handlers

import (
	"net/http"

	"docqa/internal/contextutil"
	"docqa/internal/repository"
)

// StatsHandler handles HTTP requests for usage statistics.
type StatsHandler struct {
	repo *repository.Repository
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(repo *repository.Repository) *StatsHandler {
	return &StatsHandler{
		repo: repo,
	}
}

// ServeHTTP handles HTTP requests for usage statistics.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	stats, err := h.repo.Stats(ctx, contextutil.IdentityFromContext(ctx))
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

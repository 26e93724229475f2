package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"docqa/internal/contextutil"
	"docqa/internal/rag"
	"docqa/internal/repository"
)

// ChatHandler handles HTTP requests for chat.
type ChatHandler struct {
	repo   *repository.Repository
	engine rag.Engine
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(repo *repository.Repository, engine rag.Engine) *ChatHandler {
	return &ChatHandler{
		repo:   repo,
		engine: engine,
	}
}

// SendMessageRequest represents the HTTP request payload for sending a chat message.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// List returns the chat transcript for the requesting identity.
func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	messages, err := h.repo.ListChatMessages(ctx, contextutil.IdentityFromContext(ctx))
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list chat messages")
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// Send answers a chat message, streaming the reply as Server-Sent Events.
// Each event is one JSON object carrying its type and payload.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Validate before the stream starts; once the SSE headers are written
	// a plain HTTP error is no longer possible.
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "Content is required")
		return
	}

	// Set up Server-Sent Events headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Create a flusher to send data immediately
	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.ErrorContext(ctx, "streaming not supported by response writer")
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	send := func(event rag.Event) error {
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}
		// Write each event as SSE format: "data: <json>\n\n"
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	if err := h.engine.Answer(ctx, contextutil.IdentityFromContext(ctx), req.Content, send); err != nil {
		// The stream already carries an error event when one could be
		// delivered, so the failure is only logged here.
		logger.ErrorContext(ctx, "answer stream ended with error", "error", err)
	}
}

// Clear deletes the chat transcript for the requesting identity.
func (h *ChatHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.repo.ClearChatMessages(ctx, contextutil.IdentityFromContext(ctx)); err != nil {
		handleServiceError(w, ctx, err, "Failed to clear chat messages")
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

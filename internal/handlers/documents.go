package handlers

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"docqa/internal/contextutil"
	"docqa/internal/extract"
	"docqa/internal/ingest"
	"docqa/internal/repository"
	"docqa/internal/storage"
)

// DocumentsHandler handles HTTP requests for document management.
type DocumentsHandler struct {
	repo           *repository.Repository
	pipeline       *ingest.Pipeline
	maxUploadBytes int64
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(repo *repository.Repository, pipeline *ingest.Pipeline, maxUploadBytes int64) *DocumentsHandler {
	return &DocumentsHandler{
		repo:           repo,
		pipeline:       pipeline,
		maxUploadBytes: maxUploadBytes,
	}
}

// ProgressResponse reports how far a document's processing has come.
type ProgressResponse struct {
	Progress int    `json:"progress"`
	Status   string `json:"status"`
}

// List returns the documents visible to the requesting identity.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docs, err := h.repo.ListDocuments(ctx, contextutil.IdentityFromContext(ctx))
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list documents")
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// Upload accepts a multipart file upload, creates the document record,
// and spawns processing. The response returns immediately with the
// document still in its processing state.
func (h *DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "File size exceeds maximum limit")
			return
		}
		logger.WarnContext(ctx, "invalid multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	mediaType := resolveMediaType(header.Header.Get("Content-Type"), header.Filename)
	if !extract.IsSupported(mediaType) {
		logger.WarnContext(ctx, "unsupported upload type", "media_type", mediaType, "filename", header.Filename)
		writeError(w, http.StatusBadRequest, "Unsupported file type")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		logger.ErrorContext(ctx, "failed to read upload", "error", err)
		writeError(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	doc := storage.Document{
		Name:      header.Filename,
		Filename:  header.Filename,
		MediaType: mediaType,
		Size:      int64(len(data)),
		Owner:     contextutil.IdentityFromContext(ctx),
		Status:    storage.StatusProcessing,
	}
	if err := h.repo.CreateDocument(ctx, &doc); err != nil {
		handleServiceError(w, ctx, err, "Failed to create document")
		return
	}

	logger.InfoContext(ctx, "document uploaded",
		"document_id", doc.ID,
		"filename", doc.Filename,
		"media_type", doc.MediaType,
		"size", doc.Size,
	)

	// Processing outlives the request, so it runs on a fresh context that
	// only inherits the logger. Failures are recorded on the document by
	// the pipeline.
	procCtx := context.WithValue(context.Background(), contextutil.LoggerKey(), logger)
	go func() {
		_ = h.pipeline.Process(procCtx, doc.ID, data, mediaType, header.Filename)
	}()

	writeJSON(w, http.StatusCreated, doc)
}

// Get returns a single document.
func (h *DocumentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseDocumentID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid document id")
		return
	}

	doc, err := h.repo.GetDocumentForOwner(ctx, id, contextutil.IdentityFromContext(ctx))
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to get document")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// Progress reports the processing state of a single document.
func (h *DocumentsHandler) Progress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseDocumentID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid document id")
		return
	}

	doc, err := h.repo.GetDocumentForOwner(ctx, id, contextutil.IdentityFromContext(ctx))
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to get document progress")
		return
	}
	writeJSON(w, http.StatusOK, ProgressResponse{Progress: doc.Progress, Status: doc.Status})
}

// Delete removes a document together with its chunks and vector points.
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := parseDocumentID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid document id")
		return
	}

	if _, err := h.repo.GetDocumentForOwner(ctx, id, contextutil.IdentityFromContext(ctx)); err != nil {
		handleServiceError(w, ctx, err, "Failed to delete document")
		return
	}
	if err := h.repo.DeleteDocument(ctx, id); err != nil {
		handleServiceError(w, ctx, err, "Failed to delete document")
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func parseDocumentID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// resolveMediaType trusts the declared content type when the extractor
// recognizes it and otherwise falls back to the filename extension.
// Browsers commonly declare application/octet-stream for text files.
func resolveMediaType(declared, filename string) string {
	if parsed, _, err := mime.ParseMediaType(declared); err == nil {
		declared = parsed
	}
	if extract.IsSupported(declared) {
		return declared
	}
	if detected, ok := extract.DetectMediaType(filename); ok {
		return detected
	}
	return declared
}

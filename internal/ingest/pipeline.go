package ingest

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_extractor.go -package=mocks docqa/internal/ingest Extractor
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks docqa/internal/ingest Embedder

import (
	"context"
	"fmt"

	"docqa/internal/contextutil"
	"docqa/internal/repository"
	"docqa/internal/storage"
)

// Progress checkpoints recorded as the pipeline enters each stage.
// Chunking has no checkpoint of its own, it is folded into extraction.
const (
	progressExtracting = 25
	progressEmbedding  = 50
	progressPersisting = 75
	progressCompleted  = 100
)

// Extractor turns raw upload bytes into plain text.
type Extractor interface {
	Extract(data []byte, mediaType, filename string) (string, error)
}

// Embedder generates embedding vectors for texts.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Pipeline orchestrates document processing: extract text, chunk it,
// embed each chunk, and persist chunks with their vectors.
type Pipeline struct {
	repo      *repository.Repository
	extractor Extractor
	embedder  Embedder
	chunker   *Chunker
}

// NewPipeline creates a processing pipeline. Chunk size and overlap are
// in runes; zero or invalid values fall back to the chunker defaults.
func NewPipeline(repo *repository.Repository, extractor Extractor, embedder Embedder, chunkSize, chunkOverlap int) *Pipeline {
	return &Pipeline{
		repo:      repo,
		extractor: extractor,
		embedder:  embedder,
		chunker:   NewChunker(chunkSize, chunkOverlap),
	}
}

// Process runs the full pipeline for an already-created document record.
// Progress advances to 25, 50, and 75 as the document enters extraction,
// embedding, and persistence, and reaches 100 on completion. A failed
// embedding for one chunk keeps that chunk with an empty vector and does
// not abort the document. Any fatal error marks the document as errored
// with progress reset to 0; chunks persisted before the failure are left
// in place.
func (p *Pipeline) Process(ctx context.Context, documentID int64, data []byte, mediaType, filename string) error {
	logger := contextutil.LoggerFromContext(ctx)

	doc, err := p.repo.GetDocumentForOwner(ctx, documentID, nil)
	if err != nil {
		return fmt.Errorf("failed to load document %d: %w", documentID, err)
	}

	if err := p.repo.UpdateDocumentProgress(ctx, documentID, progressExtracting, nil); err != nil {
		return p.fail(ctx, documentID, fmt.Errorf("failed to record extraction progress: %w", err))
	}
	text, err := p.extractor.Extract(data, mediaType, filename)
	if err != nil {
		return p.fail(ctx, documentID, fmt.Errorf("failed to extract text: %w", err))
	}

	fragments := p.chunker.Split(text)

	if err := p.repo.UpdateDocumentProgress(ctx, documentID, progressEmbedding, nil); err != nil {
		return p.fail(ctx, documentID, fmt.Errorf("failed to record embedding progress: %w", err))
	}
	chunks := make([]storage.Chunk, len(fragments))
	for i, fragment := range fragments {
		select {
		case <-ctx.Done():
			return p.fail(ctx, documentID, ctx.Err())
		default:
		}

		embedding := []float32{}
		vectors, err := p.embedder.EmbedTexts(ctx, []string{fragment.Text})
		if err == nil && len(vectors) != 1 {
			err = fmt.Errorf("expected 1 embedding, got %d", len(vectors))
		}
		if err != nil {
			logger.WarnContext(ctx, "embedding failed, chunk stored without vector",
				"document_id", documentID, "chunk_index", fragment.Index, "error", err)
		} else {
			embedding = vectors[0]
		}

		chunks[i] = storage.Chunk{
			Content:   fragment.Text,
			Embedding: embedding,
			Metadata: storage.ChunkMetadata{
				Filename:   filename,
				ChunkIndex: fragment.Index,
				Length:     fragment.Length,
			},
		}
	}

	if err := p.repo.UpdateDocumentProgress(ctx, documentID, progressPersisting, nil); err != nil {
		return p.fail(ctx, documentID, fmt.Errorf("failed to record persist progress: %w", err))
	}
	stored, err := p.repo.IndexChunks(ctx, doc, chunks)
	if err != nil {
		return p.fail(ctx, documentID, fmt.Errorf("failed to persist chunks: %w", err))
	}

	status := storage.StatusCompleted
	chunkCount := len(stored)
	progress := progressCompleted
	update := storage.DocumentUpdate{
		Text:       &text,
		ChunkCount: &chunkCount,
		Status:     &status,
		Progress:   &progress,
	}
	if err := p.repo.UpdateDocument(ctx, documentID, update); err != nil {
		return p.fail(ctx, documentID, fmt.Errorf("failed to finalize document: %w", err))
	}

	logger.InfoContext(ctx, "document processed",
		"document_id", documentID, "filename", filename, "chunks", chunkCount)
	return nil
}

// fail marks the document as errored and returns the original error. The
// status write uses a detached context so a canceled request cannot keep
// the document stuck in processing.
func (p *Pipeline) fail(ctx context.Context, documentID int64, err error) error {
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "document processing failed", "document_id", documentID, "error", err)

	status := storage.StatusError
	markCtx := context.WithoutCancel(ctx)
	if updateErr := p.repo.UpdateDocumentProgress(markCtx, documentID, 0, &status); updateErr != nil {
		logger.ErrorContext(ctx, "failed to mark document as errored", "document_id", documentID, "error", updateErr)
	}
	return err
}

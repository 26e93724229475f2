package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks docqa/internal/storage ChunkStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ChunkStore defines the interface for chunk storage operations.
type ChunkStore interface {
	// CreateChunk inserts a single chunk and assigns its ID and creation
	// time. A nil embedding is stored as an empty vector.
	CreateChunk(ctx context.Context, chunk *Chunk) error
	// GetChunk gets a chunk by its ID. Returns ErrNotFound if not found.
	GetChunk(ctx context.Context, id int64) (*Chunk, error)
	// GetChunksByDocument returns all chunks for a document ordered by ID,
	// which is insertion order. Returns an empty slice if none exist.
	GetChunksByDocument(ctx context.Context, documentID int64) ([]Chunk, error)
	// DeleteChunksByDocument deletes all chunks for a document and reports
	// whether any rows were removed.
	DeleteChunksByDocument(ctx context.Context, documentID int64) (bool, error)
}

// ChunkRepo is the SQLite-backed ChunkStore.
type ChunkRepo struct {
	db *sql.DB
}

func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

func (r *ChunkRepo) CreateChunk(ctx context.Context, chunk *Chunk) error {
	embedding, err := marshalEmbedding(chunk.Embedding)
	if err != nil {
		return err
	}
	metadata, err := json.Marshal(chunk.Metadata)
	if err != nil {
		return fmt.Errorf("marshal chunk metadata: %w", err)
	}
	chunk.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO chunks (document_id, content, embedding, metadata, created_at) VALUES (?, ?, ?, ?, ?)",
		chunk.DocumentID, chunk.Content, embedding, string(metadata), chunk.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert chunk: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("chunk id: %w", err)
	}
	chunk.ID = id
	return nil
}

func (r *ChunkRepo) GetChunk(ctx context.Context, id int64) (*Chunk, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, document_id, content, embedding, metadata, created_at FROM chunks WHERE id = ?", id)

	chunk, err := scanChunk(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get chunk: %w", err)
	}
	return chunk, nil
}

func (r *ChunkRepo) GetChunksByDocument(ctx context.Context, documentID int64) ([]Chunk, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, document_id, content, embedding, metadata, created_at FROM chunks WHERE document_id = ? ORDER BY id",
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	defer rows.Close()

	chunks := []Chunk{}
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunks = append(chunks, *chunk)
	}
	return chunks, rows.Err()
}

func (r *ChunkRepo) DeleteChunksByDocument(ctx context.Context, documentID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID)
	if err != nil {
		return false, fmt.Errorf("delete chunks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func scanChunk(row rowScanner) (*Chunk, error) {
	var chunk Chunk
	var embedding, metadata string
	err := row.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Content, &embedding, &metadata, &chunk.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(embedding), &chunk.Embedding); err != nil {
		return nil, fmt.Errorf("unmarshal embedding: %w", err)
	}
	if err := json.Unmarshal([]byte(metadata), &chunk.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal chunk metadata: %w", err)
	}
	return &chunk, nil
}

func marshalEmbedding(embedding []float32) (string, error) {
	if embedding == nil {
		embedding = []float32{}
	}
	data, err := json.Marshal(embedding)
	if err != nil {
		return "", fmt.Errorf("marshal embedding: %w", err)
	}
	return string(data), nil
}

package storage

import (
	"context"
	"errors"
	"testing"
)

func TestChunkRepo_CreateChunk(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := tmpDir + "/test.db"

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	docRepo := NewDocumentRepo(db)
	doc := &Document{Name: "doc", Filename: "doc.txt", MediaType: "text/plain"}
	if err := docRepo.CreateDocument(context.Background(), doc); err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}

	repo := NewChunkRepo(db)

	tests := []struct {
		name  string
		chunk *Chunk
	}{
		{
			name: "chunk with embedding",
			chunk: &Chunk{
				DocumentID: doc.ID,
				Content:    "Chunk text",
				Embedding:  []float32{0.1, 0.2, 0.3},
				Metadata:   ChunkMetadata{Filename: "doc.txt", ChunkIndex: 0, Length: 10},
			},
		},
		{
			name: "chunk without embedding",
			chunk: &Chunk{
				DocumentID: doc.ID,
				Content:    "No vector yet",
				Metadata:   ChunkMetadata{Filename: "doc.txt", ChunkIndex: 1, Length: 13},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := repo.CreateChunk(context.Background(), tt.chunk); err != nil {
				t.Fatalf("CreateChunk() error = %v", err)
			}
			if tt.chunk.ID == 0 {
				t.Error("CreateChunk() should assign an ID")
			}
			if tt.chunk.CreatedAt.IsZero() {
				t.Error("CreateChunk() should stamp CreatedAt")
			}

			got, err := repo.GetChunk(context.Background(), tt.chunk.ID)
			if err != nil {
				t.Fatalf("GetChunk() error = %v", err)
			}
			if got.Content != tt.chunk.Content {
				t.Errorf("GetChunk() content = %v, want %v", got.Content, tt.chunk.Content)
			}
			if got.Metadata != tt.chunk.Metadata {
				t.Errorf("GetChunk() metadata = %+v, want %+v", got.Metadata, tt.chunk.Metadata)
			}
			if got.Embedding == nil {
				t.Error("GetChunk() embedding should never be nil, missing vectors are stored empty")
			}
			if len(got.Embedding) != len(tt.chunk.Embedding) {
				t.Errorf("GetChunk() embedding length = %d, want %d", len(got.Embedding), len(tt.chunk.Embedding))
			}
		})
	}
}

func TestChunkRepo_GetChunk_NotFound(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := tmpDir + "/test.db"

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	repo := NewChunkRepo(db)

	_, err = repo.GetChunk(context.Background(), 404)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetChunk() with unknown id error = %v, want ErrNotFound", err)
	}
}

func TestChunkRepo_GetChunksByDocument(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := tmpDir + "/test.db"

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	docRepo := NewDocumentRepo(db)
	doc := &Document{Name: "doc", Filename: "doc.txt", MediaType: "text/plain"}
	if err := docRepo.CreateDocument(context.Background(), doc); err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}
	other := &Document{Name: "other", Filename: "other.txt", MediaType: "text/plain"}
	if err := docRepo.CreateDocument(context.Background(), other); err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}

	repo := NewChunkRepo(db)

	contents := []string{"first", "second", "third"}
	for i, content := range contents {
		chunk := &Chunk{
			DocumentID: doc.ID,
			Content:    content,
			Metadata:   ChunkMetadata{Filename: "doc.txt", ChunkIndex: i, Length: len(content)},
		}
		if err := repo.CreateChunk(context.Background(), chunk); err != nil {
			t.Fatalf("CreateChunk() error = %v", err)
		}
	}
	foreign := &Chunk{DocumentID: other.ID, Content: "elsewhere"}
	if err := repo.CreateChunk(context.Background(), foreign); err != nil {
		t.Fatalf("CreateChunk() error = %v", err)
	}

	chunks, err := repo.GetChunksByDocument(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("GetChunksByDocument() error = %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("GetChunksByDocument() returned %d chunks, want 3", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.Content != contents[i] {
			t.Errorf("GetChunksByDocument()[%d] = %v, want %v", i, chunk.Content, contents[i])
		}
	}

	// No chunks is an empty slice, not an error
	empty, err := repo.GetChunksByDocument(context.Background(), 9999)
	if err != nil {
		t.Fatalf("GetChunksByDocument() error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("GetChunksByDocument() for unknown document = %d chunks, want 0", len(empty))
	}
}

func TestChunkRepo_DeleteChunksByDocument(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := tmpDir + "/test.db"

	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	docRepo := NewDocumentRepo(db)
	doc := &Document{Name: "doc", Filename: "doc.txt", MediaType: "text/plain"}
	if err := docRepo.CreateDocument(context.Background(), doc); err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}

	repo := NewChunkRepo(db)

	for i := 0; i < 3; i++ {
		chunk := &Chunk{DocumentID: doc.ID, Content: "text"}
		if err := repo.CreateChunk(context.Background(), chunk); err != nil {
			t.Fatalf("CreateChunk() error = %v", err)
		}
	}

	deleted, err := repo.DeleteChunksByDocument(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("DeleteChunksByDocument() error = %v", err)
	}
	if !deleted {
		t.Error("DeleteChunksByDocument() = false, want true when chunks existed")
	}

	chunks, err := repo.GetChunksByDocument(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("GetChunksByDocument() error = %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("DeleteChunksByDocument() left %d chunks", len(chunks))
	}

	// Second delete has nothing to remove
	deleted, err = repo.DeleteChunksByDocument(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("DeleteChunksByDocument() error = %v", err)
	}
	if deleted {
		t.Error("DeleteChunksByDocument() = true, want false when no chunks remain")
	}
}

package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryDocumentStore is an in-memory DocumentStore for tests and
// single-process deployments without a database file.
type MemoryDocumentStore struct {
	mu     sync.RWMutex
	nextID int64
	docs   map[int64]Document
}

func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{docs: make(map[int64]Document)}
}

func (s *MemoryDocumentStore) CreateDocument(_ context.Context, doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.Status == "" {
		doc.Status = StatusProcessing
	}
	doc.UploadedAt = time.Now().UTC()
	s.nextID++
	doc.ID = s.nextID
	s.docs[doc.ID] = *doc
	return nil
}

func (s *MemoryDocumentStore) GetDocument(_ context.Context, id int64) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &doc, nil
}

func (s *MemoryDocumentStore) ListDocuments(_ context.Context, owner *string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := []Document{}
	for _, doc := range s.docs {
		if ownerMatches(doc.Owner, owner) {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].UploadedAt.Equal(docs[j].UploadedAt) {
			return docs[i].UploadedAt.After(docs[j].UploadedAt)
		}
		return docs[i].ID > docs[j].ID
	})
	return docs, nil
}

func (s *MemoryDocumentStore) UpdateDocument(_ context.Context, id int64, upd DocumentUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return ErrNotFound
	}
	if upd.Text != nil {
		doc.Text = *upd.Text
	}
	if upd.ChunkCount != nil {
		doc.ChunkCount = *upd.ChunkCount
	}
	if upd.Status != nil {
		doc.Status = *upd.Status
	}
	if upd.Progress != nil {
		doc.Progress = *upd.Progress
	}
	s.docs[id] = doc
	return nil
}

func (s *MemoryDocumentStore) UpdateDocumentProgress(ctx context.Context, id int64, progress int, status *string) error {
	return s.UpdateDocument(ctx, id, DocumentUpdate{Progress: &progress, Status: status})
}

func (s *MemoryDocumentStore) DeleteDocument(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

// MemoryChunkStore is an in-memory ChunkStore.
type MemoryChunkStore struct {
	mu     sync.RWMutex
	nextID int64
	chunks map[int64]Chunk
}

func NewMemoryChunkStore() *MemoryChunkStore {
	return &MemoryChunkStore{chunks: make(map[int64]Chunk)}
}

func (s *MemoryChunkStore) CreateChunk(_ context.Context, chunk *Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if chunk.Embedding == nil {
		chunk.Embedding = []float32{}
	}
	chunk.CreatedAt = time.Now().UTC()
	s.nextID++
	chunk.ID = s.nextID

	stored := *chunk
	stored.Embedding = cloneVector(chunk.Embedding)
	s.chunks[chunk.ID] = stored
	return nil
}

func (s *MemoryChunkStore) GetChunk(_ context.Context, id int64) (*Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunk, ok := s.chunks[id]
	if !ok {
		return nil, ErrNotFound
	}
	chunk.Embedding = cloneVector(chunk.Embedding)
	return &chunk, nil
}

func (s *MemoryChunkStore) GetChunksByDocument(_ context.Context, documentID int64) ([]Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks := []Chunk{}
	for _, chunk := range s.chunks {
		if chunk.DocumentID == documentID {
			chunk.Embedding = cloneVector(chunk.Embedding)
			chunks = append(chunks, chunk)
		}
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].ID < chunks[j].ID })
	return chunks, nil
}

func (s *MemoryChunkStore) DeleteChunksByDocument(_ context.Context, documentID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := false
	for id, chunk := range s.chunks {
		if chunk.DocumentID == documentID {
			delete(s.chunks, id)
			deleted = true
		}
	}
	return deleted, nil
}

// MemoryChatStore is an in-memory ChatStore.
type MemoryChatStore struct {
	mu     sync.RWMutex
	nextID int64
	msgs   []ChatMessage
}

func NewMemoryChatStore() *MemoryChatStore {
	return &MemoryChatStore{}
}

func (s *MemoryChatStore) CreateChatMessage(_ context.Context, msg *ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.CreatedAt = time.Now().UTC()
	s.nextID++
	msg.ID = s.nextID

	stored := *msg
	stored.Sources = append([]Citation(nil), msg.Sources...)
	s.msgs = append(s.msgs, stored)
	return nil
}

func (s *MemoryChatStore) ListChatMessages(_ context.Context, owner *string) ([]ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := []ChatMessage{}
	for _, msg := range s.msgs {
		if ownerMatches(msg.Owner, owner) {
			msg.Sources = append([]Citation(nil), msg.Sources...)
			msgs = append(msgs, msg)
		}
	}
	return msgs, nil
}

func (s *MemoryChatStore) ClearChatMessages(_ context.Context, owner *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if owner == nil {
		s.msgs = nil
		return nil
	}
	kept := s.msgs[:0]
	for _, msg := range s.msgs {
		if !ownerMatches(msg.Owner, owner) {
			kept = append(kept, msg)
		}
	}
	s.msgs = kept
	return nil
}

// ownerMatches reports whether a record owned by rowOwner is visible under
// the given filter. A nil filter sees everything; a non-nil filter sees only
// records with exactly that owner, so unowned records stay hidden.
func ownerMatches(rowOwner, filter *string) bool {
	if filter == nil {
		return true
	}
	return rowOwner != nil && *rowOwner == *filter
}

func cloneVector(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}

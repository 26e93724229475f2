package repository

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"docqa/internal/service"
	"docqa/internal/storage"
	storage_mocks "docqa/internal/storage/mocks"
	"docqa/internal/vectorstore"
	vectorstore_mocks "docqa/internal/vectorstore/mocks"
)

func TestRepository_GetDocumentForOwner(t *testing.T) {
	alice := "alice"
	bob := "bob"

	tests := []struct {
		name      string
		owner     *string
		mockSetup func(m *storage_mocks.MockDocumentStore)
		wantErr   error
	}{
		{
			name:  "absent document",
			owner: &alice,
			mockSetup: func(m *storage_mocks.MockDocumentStore) {
				m.EXPECT().
					GetDocument(gomock.Any(), int64(1)).
					Return(nil, storage.ErrNotFound)
			},
			wantErr: service.ErrNotFound,
		},
		{
			name:  "owned by caller",
			owner: &alice,
			mockSetup: func(m *storage_mocks.MockDocumentStore) {
				m.EXPECT().
					GetDocument(gomock.Any(), int64(1)).
					Return(&storage.Document{ID: 1, Owner: &alice}, nil)
			},
			wantErr: nil,
		},
		{
			name:  "owned by somebody else",
			owner: &alice,
			mockSetup: func(m *storage_mocks.MockDocumentStore) {
				m.EXPECT().
					GetDocument(gomock.Any(), int64(1)).
					Return(&storage.Document{ID: 1, Owner: &bob}, nil)
			},
			wantErr: service.ErrForbidden,
		},
		{
			name:  "unowned document is visible to any identity",
			owner: &alice,
			mockSetup: func(m *storage_mocks.MockDocumentStore) {
				m.EXPECT().
					GetDocument(gomock.Any(), int64(1)).
					Return(&storage.Document{ID: 1}, nil)
			},
			wantErr: nil,
		},
		{
			name:  "nil identity sees everything",
			owner: nil,
			mockSetup: func(m *storage_mocks.MockDocumentStore) {
				m.EXPECT().
					GetDocument(gomock.Any(), int64(1)).
					Return(&storage.Document{ID: 1, Owner: &bob}, nil)
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockDocs := storage_mocks.NewMockDocumentStore(ctrl)
			tt.mockSetup(mockDocs)

			repo := NewRepository(mockDocs, storage.NewMemoryChunkStore(), storage.NewMemoryChatStore(), vectorstore.NewMemoryStore(), "documents")

			doc, err := repo.GetDocumentForOwner(context.Background(), 1, tt.owner)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("GetDocumentForOwner() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetDocumentForOwner() unexpected error: %v", err)
			}
			if doc == nil || doc.ID != 1 {
				t.Errorf("GetDocumentForOwner() = %v, want document 1", doc)
			}
		})
	}
}

func TestRepository_DeleteDocument_CascadeOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDocs := storage_mocks.NewMockDocumentStore(ctrl)
	mockChunks := storage_mocks.NewMockChunkStore(ctrl)
	mockVectors := vectorstore_mocks.NewMockVectorStore(ctrl)

	chunks := []storage.Chunk{
		{ID: 11, DocumentID: 1},
		{ID: 12, DocumentID: 1},
	}

	// Vector points go first, then chunk rows, then the document
	gomock.InOrder(
		mockChunks.EXPECT().
			GetChunksByDocument(gomock.Any(), int64(1)).
			Return(chunks, nil),
		mockVectors.EXPECT().
			Delete(gomock.Any(), "documents", []int64{11, 12}).
			Return(nil),
		mockChunks.EXPECT().
			DeleteChunksByDocument(gomock.Any(), int64(1)).
			Return(true, nil),
		mockDocs.EXPECT().
			DeleteDocument(gomock.Any(), int64(1)).
			Return(nil),
	)

	repo := NewRepository(mockDocs, mockChunks, storage.NewMemoryChatStore(), mockVectors, "documents")

	if err := repo.DeleteDocument(context.Background(), 1); err != nil {
		t.Fatalf("DeleteDocument() error = %v", err)
	}
}

func TestRepository_DeleteDocument_NoChunks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDocs := storage_mocks.NewMockDocumentStore(ctrl)
	mockChunks := storage_mocks.NewMockChunkStore(ctrl)
	mockVectors := vectorstore_mocks.NewMockVectorStore(ctrl)

	// No vector delete and no chunk delete when the document has no chunks
	mockChunks.EXPECT().
		GetChunksByDocument(gomock.Any(), int64(1)).
		Return([]storage.Chunk{}, nil)
	mockDocs.EXPECT().
		DeleteDocument(gomock.Any(), int64(1)).
		Return(nil)

	repo := NewRepository(mockDocs, mockChunks, storage.NewMemoryChatStore(), mockVectors, "documents")

	if err := repo.DeleteDocument(context.Background(), 1); err != nil {
		t.Fatalf("DeleteDocument() error = %v", err)
	}
}

func TestRepository_DeleteDocument_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDocs := storage_mocks.NewMockDocumentStore(ctrl)
	mockChunks := storage_mocks.NewMockChunkStore(ctrl)

	mockChunks.EXPECT().
		GetChunksByDocument(gomock.Any(), int64(404)).
		Return([]storage.Chunk{}, nil)
	mockDocs.EXPECT().
		DeleteDocument(gomock.Any(), int64(404)).
		Return(storage.ErrNotFound)

	repo := NewRepository(mockDocs, mockChunks, storage.NewMemoryChatStore(), vectorstore.NewMemoryStore(), "documents")

	err := repo.DeleteDocument(context.Background(), 404)
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("DeleteDocument() error = %v, want service.ErrNotFound", err)
	}
}

func TestRepository_IndexChunks(t *testing.T) {
	chunkStore := storage.NewMemoryChunkStore()
	vectors := vectorstore.NewMemoryStore()
	repo := NewRepository(storage.NewMemoryDocumentStore(), chunkStore, storage.NewMemoryChatStore(), vectors, "documents")

	alice := "alice"
	doc := &storage.Document{ID: 7, Filename: "doc.txt", Owner: &alice}
	chunks := []storage.Chunk{
		{Content: "embedded", Embedding: []float32{1, 0}, Metadata: storage.ChunkMetadata{Filename: "doc.txt", ChunkIndex: 0}},
		{Content: "failed embedding", Metadata: storage.ChunkMetadata{Filename: "doc.txt", ChunkIndex: 1}},
	}

	stored, err := repo.IndexChunks(context.Background(), doc, chunks)
	if err != nil {
		t.Fatalf("IndexChunks() error = %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("IndexChunks() stored %d chunks, want 2", len(stored))
	}
	for _, chunk := range stored {
		if chunk.ID == 0 {
			t.Error("IndexChunks() should persist chunks with assigned IDs")
		}
		if chunk.DocumentID != doc.ID {
			t.Errorf("IndexChunks() chunk document id = %d, want %d", chunk.DocumentID, doc.ID)
		}
	}

	// Only the embedded chunk is searchable
	results, err := vectors.Search(context.Background(), "documents", []float32{1, 0}, 10, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Search() = %d results, want 1 (empty embeddings stay unsearchable)", len(results))
	}
	if results[0].PointID != stored[0].ID {
		t.Errorf("Search() point = %d, want %d", results[0].PointID, stored[0].ID)
	}
	if results[0].Meta["owner"] != "alice" {
		t.Errorf("Search() owner meta = %v, want alice", results[0].Meta["owner"])
	}

	// Both chunks are persisted regardless of embedding
	persisted, err := chunkStore.GetChunksByDocument(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("GetChunksByDocument() error = %v", err)
	}
	if len(persisted) != 2 {
		t.Errorf("GetChunksByDocument() = %d chunks, want 2", len(persisted))
	}
}

func TestRepository_IndexChunks_UnownedDocumentOmitsOwnerMeta(t *testing.T) {
	vectors := vectorstore.NewMemoryStore()
	repo := NewRepository(storage.NewMemoryDocumentStore(), storage.NewMemoryChunkStore(), storage.NewMemoryChatStore(), vectors, "documents")

	doc := &storage.Document{ID: 3, Filename: "seed.txt"}
	chunks := []storage.Chunk{
		{Content: "seeded", Embedding: []float32{1, 0}, Metadata: storage.ChunkMetadata{Filename: "seed.txt", ChunkIndex: 0}},
	}
	if _, err := repo.IndexChunks(context.Background(), doc, chunks); err != nil {
		t.Fatalf("IndexChunks() error = %v", err)
	}

	// Visible without a filter
	results, err := vectors.Search(context.Background(), "documents", []float32{1, 0}, 10, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Search() without filter = %d results, want 1", len(results))
	}

	// Excluded once an owner filter applies
	results, err = vectors.Search(context.Background(), "documents", []float32{1, 0}, 10, map[string]any{"owner": "alice"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Search() with owner filter = %d results, want 0", len(results))
	}
}

func TestRepository_FindSimilarChunks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockChunks := storage_mocks.NewMockChunkStore(ctrl)
	mockVectors := vectorstore_mocks.NewMockVectorStore(ctrl)

	alice := "alice"
	query := []float32{1, 0}

	mockVectors.EXPECT().
		Search(gomock.Any(), "documents", query, 5, map[string]any{"owner": "alice"}).
		Return([]vectorstore.SearchResult{
			{PointID: 11, Score: 0.9},
			{PointID: 12, Score: 0.5},
		}, nil)
	mockChunks.EXPECT().
		GetChunk(gomock.Any(), int64(11)).
		Return(&storage.Chunk{ID: 11, Content: "hit"}, nil)
	mockChunks.EXPECT().
		GetChunk(gomock.Any(), int64(12)).
		Return(nil, storage.ErrNotFound)

	repo := NewRepository(storage.NewMemoryDocumentStore(), mockChunks, storage.NewMemoryChatStore(), mockVectors, "documents")

	ranked, err := repo.FindSimilarChunks(context.Background(), query, &alice, 0)
	if err != nil {
		t.Fatalf("FindSimilarChunks() error = %v", err)
	}
	// The vanished chunk is skipped, not fatal
	if len(ranked) != 1 {
		t.Fatalf("FindSimilarChunks() = %d results, want 1", len(ranked))
	}
	if ranked[0].Chunk.ID != 11 || ranked[0].Score != 0.9 {
		t.Errorf("FindSimilarChunks()[0] = %+v, want chunk 11 score 0.9", ranked[0])
	}
}

func TestRepository_FindSimilarChunks_SearchFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockVectors := vectorstore_mocks.NewMockVectorStore(ctrl)
	mockVectors.EXPECT().
		Search(gomock.Any(), "documents", gomock.Any(), 5, map[string]any{}).
		Return(nil, errors.New("connection refused"))

	repo := NewRepository(storage.NewMemoryDocumentStore(), storage.NewMemoryChunkStore(), storage.NewMemoryChatStore(), mockVectors, "documents")

	_, err := repo.FindSimilarChunks(context.Background(), []float32{1}, nil, 5)
	if !errors.Is(err, service.ErrExternalService) {
		t.Errorf("FindSimilarChunks() error = %v, want service.ErrExternalService", err)
	}
}

func TestRepository_Stats(t *testing.T) {
	docStore := storage.NewMemoryDocumentStore()
	chatStore := storage.NewMemoryChatStore()
	repo := NewRepository(docStore, storage.NewMemoryChunkStore(), chatStore, vectorstore.NewMemoryStore(), "documents")
	ctx := context.Background()

	alice := "alice"
	bob := "bob"

	docA := &storage.Document{Name: "a", Filename: "a.txt", MediaType: "text/plain", Owner: &alice}
	_ = docStore.CreateDocument(ctx, docA)
	count := 3
	_ = docStore.UpdateDocument(ctx, docA.ID, storage.DocumentUpdate{ChunkCount: &count})

	docB := &storage.Document{Name: "b", Filename: "b.txt", MediaType: "text/plain", Owner: &alice}
	_ = docStore.CreateDocument(ctx, docB)
	countB := 2
	_ = docStore.UpdateDocument(ctx, docB.ID, storage.DocumentUpdate{ChunkCount: &countB})

	foreign := &storage.Document{Name: "c", Filename: "c.txt", MediaType: "text/plain", Owner: &bob}
	_ = docStore.CreateDocument(ctx, foreign)

	for i := 0; i < 4; i++ {
		_ = chatStore.CreateChatMessage(ctx, &storage.ChatMessage{Content: "hi", Role: storage.RoleUser, Owner: &alice})
	}
	_ = chatStore.CreateChatMessage(ctx, &storage.ChatMessage{Content: "other", Role: storage.RoleUser, Owner: &bob})

	stats, err := repo.Stats(ctx, &alice)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Documents != 2 {
		t.Errorf("Stats() documents = %d, want 2", stats.Documents)
	}
	if stats.Chunks != 5 {
		t.Errorf("Stats() chunks = %d, want 5", stats.Chunks)
	}
	if stats.Messages != 4 {
		t.Errorf("Stats() messages = %d, want 4", stats.Messages)
	}
	if stats.EstimatedTokens != 200 {
		t.Errorf("Stats() estimatedTokens = %d, want 200", stats.EstimatedTokens)
	}
}

func TestRepository_CitationSurvivesDocumentDelete(t *testing.T) {
	vectors := vectorstore.NewMemoryStore()
	repo := NewRepository(storage.NewMemoryDocumentStore(), storage.NewMemoryChunkStore(), storage.NewMemoryChatStore(), vectors, "documents")
	ctx := context.Background()

	dana := "dana"
	doc := &storage.Document{Name: "notes", Filename: "notes.txt", MediaType: "text/plain", Owner: &dana}
	if err := repo.CreateDocument(ctx, doc); err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}

	chunks := []storage.Chunk{
		{
			Content:   "The valley floods every spring.",
			Embedding: []float32{1, 0},
			Metadata:  storage.ChunkMetadata{Filename: "notes.txt", ChunkIndex: 0, Length: 31},
		},
	}
	stored, err := repo.IndexChunks(ctx, doc, chunks)
	if err != nil {
		t.Fatalf("IndexChunks() error = %v", err)
	}

	// Citations snapshot the chunk at answer time, they are not joins.
	answer := storage.ChatMessage{
		Content: "It floods every spring.",
		Role:    storage.RoleAssistant,
		Owner:   &dana,
		Sources: []storage.Citation{
			{
				DocumentID:        doc.ID,
				Excerpt:           stored[0].Content,
				SimilarityPercent: 92,
				Metadata:          stored[0].Metadata,
			},
		},
	}
	if err := repo.CreateChatMessage(ctx, &answer); err != nil {
		t.Fatalf("CreateChatMessage() error = %v", err)
	}

	if err := repo.DeleteDocument(ctx, doc.ID); err != nil {
		t.Fatalf("DeleteDocument() error = %v", err)
	}
	if _, err := repo.GetDocumentForOwner(ctx, doc.ID, &dana); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("GetDocumentForOwner() after delete error = %v, want service.ErrNotFound", err)
	}
	results, err := vectors.Search(ctx, "documents", []float32{1, 0}, 10, nil)
	if err != nil {
		t.Fatalf("Search() after delete error = %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("Search() after delete = %d results, want 0", len(results))
	}

	msgs, err := repo.ListChatMessages(ctx, &dana)
	if err != nil {
		t.Fatalf("ListChatMessages() error = %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("ListChatMessages() = %d messages, want 1", len(msgs))
	}
	if len(msgs[0].Sources) != 1 {
		t.Fatalf("message carries %d citations, want 1", len(msgs[0].Sources))
	}
	citation := msgs[0].Sources[0]
	if citation.DocumentID != doc.ID {
		t.Errorf("citation document = %d, want %d", citation.DocumentID, doc.ID)
	}
	if citation.Excerpt != "The valley floods every spring." {
		t.Errorf("citation excerpt = %q, want the original chunk text", citation.Excerpt)
	}
	if citation.Metadata.Filename != "notes.txt" || citation.Metadata.ChunkIndex != 0 {
		t.Errorf("citation metadata = %+v, want filename notes.txt chunk 0", citation.Metadata)
	}
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"docqa/internal/contextutil"
	"docqa/internal/service"
	"docqa/internal/storage"
	"docqa/internal/vectorstore"
)

// DefaultSearchLimit is how many chunks a similarity search returns when
// the caller does not ask for a specific limit.
const DefaultSearchLimit = 5

// avgTokensPerMessage is the flat per-message estimate used for the token
// counter exposed by the stats endpoint.
const avgTokensPerMessage = 50

// RankedChunk pairs a hydrated chunk with its similarity score.
type RankedChunk struct {
	Chunk storage.Chunk
	Score float64
}

// Stats summarizes what the requesting identity can see.
type Stats struct {
	Documents       int `json:"documents"`
	Chunks          int `json:"chunks"`
	Messages        int `json:"messages"`
	EstimatedTokens int `json:"estimatedTokens"`
}

// Repository coordinates the relational stores with the vector store so
// the two never drift apart. Handlers and the query engine go through it
// rather than reaching into the stores directly.
type Repository struct {
	docs       storage.DocumentStore
	chunks     storage.ChunkStore
	chat       storage.ChatStore
	vectors    vectorstore.VectorStore
	collection string
}

func NewRepository(docs storage.DocumentStore, chunks storage.ChunkStore, chat storage.ChatStore, vectors vectorstore.VectorStore, collection string) *Repository {
	return &Repository{
		docs:       docs,
		chunks:     chunks,
		chat:       chat,
		vectors:    vectors,
		collection: collection,
	}
}

// CreateDocument inserts a new document record.
func (r *Repository) CreateDocument(ctx context.Context, doc *storage.Document) error {
	return r.docs.CreateDocument(ctx, doc)
}

// ListDocuments returns the documents visible to the given owner.
func (r *Repository) ListDocuments(ctx context.Context, owner *string) ([]storage.Document, error) {
	return r.docs.ListDocuments(ctx, owner)
}

// GetDocumentForOwner fetches a document and decides whether the given
// identity may see it. An absent document is service.ErrNotFound; a
// document owned by somebody else is service.ErrForbidden. Unowned
// documents are visible to every identity.
func (r *Repository) GetDocumentForOwner(ctx context.Context, id int64, owner *string) (*storage.Document, error) {
	doc, err := r.docs.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, service.ErrNotFound
		}
		return nil, service.WrapError(err, "get document")
	}
	if owner != nil && doc.Owner != nil && *doc.Owner != *owner {
		return nil, service.ErrForbidden
	}
	return doc, nil
}

// UpdateDocument applies a partial update to a document record.
func (r *Repository) UpdateDocument(ctx context.Context, id int64, upd storage.DocumentUpdate) error {
	return r.docs.UpdateDocument(ctx, id, upd)
}

// UpdateDocumentProgress moves a document through its processing states.
func (r *Repository) UpdateDocumentProgress(ctx context.Context, id int64, progress int, status *string) error {
	return r.docs.UpdateDocumentProgress(ctx, id, progress, status)
}

// DeleteDocument removes a document together with its chunks and vector
// points. Vector points go first so a failed delete never leaves points
// referencing chunks that are already gone.
func (r *Repository) DeleteDocument(ctx context.Context, id int64) error {
	logger := contextutil.LoggerFromContext(ctx)

	chunks, err := r.chunks.GetChunksByDocument(ctx, id)
	if err != nil {
		return service.WrapError(err, "list chunks for delete")
	}

	if len(chunks) > 0 {
		ids := make([]int64, 0, len(chunks))
		for _, chunk := range chunks {
			ids = append(ids, chunk.ID)
		}
		if err := r.vectors.Delete(ctx, r.collection, ids); err != nil {
			return fmt.Errorf("%w: delete vectors: %v", service.ErrExternalService, err)
		}
		if _, err := r.chunks.DeleteChunksByDocument(ctx, id); err != nil {
			return service.WrapError(err, "delete chunks")
		}
	}

	if err := r.docs.DeleteDocument(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return service.ErrNotFound
		}
		return service.WrapError(err, "delete document")
	}

	logger.InfoContext(ctx, "document deleted", "document_id", id, "chunks", len(chunks))
	return nil
}

// IndexChunks persists the chunks of a document and upserts their vector
// points. Chunks whose embedding is empty are stored but never upserted,
// which keeps them out of every search.
func (r *Repository) IndexChunks(ctx context.Context, doc *storage.Document, chunks []storage.Chunk) ([]storage.Chunk, error) {
	points := make([]vectorstore.Point, 0, len(chunks))
	stored := make([]storage.Chunk, 0, len(chunks))

	for i := range chunks {
		chunk := chunks[i]
		chunk.DocumentID = doc.ID
		if err := r.chunks.CreateChunk(ctx, &chunk); err != nil {
			return stored, service.WrapError(err, "create chunk")
		}
		stored = append(stored, chunk)

		if len(chunk.Embedding) == 0 {
			continue
		}
		meta := map[string]any{
			"document_id": doc.ID,
			"filename":    chunk.Metadata.Filename,
			"chunk_index": chunk.Metadata.ChunkIndex,
		}
		if doc.Owner != nil {
			meta["owner"] = *doc.Owner
		}
		points = append(points, vectorstore.Point{
			ID:   chunk.ID,
			Vec:  chunk.Embedding,
			Meta: meta,
		})
	}

	if len(points) > 0 {
		if err := r.vectors.Upsert(ctx, r.collection, points); err != nil {
			return stored, fmt.Errorf("%w: upsert vectors: %v", service.ErrExternalService, err)
		}
	}
	return stored, nil
}

// FindSimilarChunks embeds nothing itself; it searches the vector store
// with the given query embedding and hydrates the matching chunks. Points
// whose chunk row has vanished are skipped rather than failing the search.
func (r *Repository) FindSimilarChunks(ctx context.Context, embedding []float32, owner *string, limit int) ([]RankedChunk, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	filters := map[string]any{}
	if owner != nil {
		filters["owner"] = *owner
	}

	results, err := r.vectors.Search(ctx, r.collection, embedding, limit, filters)
	if err != nil {
		return nil, fmt.Errorf("%w: vector search: %v", service.ErrExternalService, err)
	}

	ranked := make([]RankedChunk, 0, len(results))
	for _, result := range results {
		chunk, err := r.chunks.GetChunk(ctx, result.PointID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				logger.WarnContext(ctx, "search hit has no chunk row, skipping", "point_id", result.PointID)
				continue
			}
			return nil, service.WrapError(err, "hydrate chunk")
		}
		ranked = append(ranked, RankedChunk{Chunk: *chunk, Score: result.Score})
	}
	return ranked, nil
}

// CreateChatMessage inserts a chat message.
func (r *Repository) CreateChatMessage(ctx context.Context, msg *storage.ChatMessage) error {
	return r.chat.CreateChatMessage(ctx, msg)
}

// ListChatMessages returns the messages visible to the owner, oldest first.
func (r *Repository) ListChatMessages(ctx context.Context, owner *string) ([]storage.ChatMessage, error) {
	return r.chat.ListChatMessages(ctx, owner)
}

// ClearChatMessages deletes the owner's messages.
func (r *Repository) ClearChatMessages(ctx context.Context, owner *string) error {
	return r.chat.ClearChatMessages(ctx, owner)
}

// Stats counts what the owner can see. Chunk totals come from the
// denormalized per-document chunk count, so documents that failed before
// completion contribute zero.
func (r *Repository) Stats(ctx context.Context, owner *string) (*Stats, error) {
	docs, err := r.docs.ListDocuments(ctx, owner)
	if err != nil {
		return nil, service.WrapError(err, "list documents")
	}
	msgs, err := r.chat.ListChatMessages(ctx, owner)
	if err != nil {
		return nil, service.WrapError(err, "list chat messages")
	}

	chunkTotal := 0
	for _, doc := range docs {
		chunkTotal += doc.ChunkCount
	}

	return &Stats{
		Documents:       len(docs),
		Chunks:          chunkTotal,
		Messages:        len(msgs),
		EstimatedTokens: len(msgs) * avgTokensPerMessage,
	}, nil
}

// PingVectorStore reports whether the vector backend is reachable.
func (r *Repository) PingVectorStore(ctx context.Context) error {
	return r.vectors.Ping(ctx)
}

package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks docqa/internal/vectorstore VectorStore

import "context"

// Point represents a vector point with metadata. IDs are the chunk IDs
// assigned by the chunk store, so they are unique and monotonically
// increasing.
type Point struct {
	ID   int64
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a search result from vector search.
type SearchResult struct {
	PointID int64
	Score   float64
	Meta    map[string]any
}

// VectorStore defines the interface for vector storage operations.
// Recognized filter keys are "document_id" (int64) and "owner" (string).
type VectorStore interface {
	// Upsert inserts or updates points in the collection. Points with an
	// empty vector must not be upserted; they are unsearchable.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns up to k results ordered by descending similarity.
	// Ties keep ascending point ID order, which is insertion order.
	Search(ctx context.Context, collection string, query []float32, k int, filters map[string]any) ([]SearchResult, error)

	// Delete removes points by their IDs.
	Delete(ctx context.Context, collection string, ids []int64) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

package vectorstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is a brute-force in-memory VectorStore. It scans every
// point in the collection on each search, which is fine for the corpus
// sizes a single process handles.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]Point
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]Point)}
}

func (s *MemoryStore) Upsert(_ context.Context, collection string, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.collections[collection]
	for _, point := range points {
		stored := Point{ID: point.ID, Vec: append([]float32(nil), point.Vec...), Meta: cloneMeta(point.Meta)}
		replaced := false
		for i := range existing {
			if existing[i].ID == point.ID {
				existing[i] = stored
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, stored)
		}
	}
	s.collections[collection] = existing
	return nil
}

func (s *MemoryStore) Search(_ context.Context, collection string, query []float32, k int, filters map[string]any) ([]SearchResult, error) {
	if k <= 0 {
		return []SearchResult{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []SearchResult{}
	for _, point := range s.collections[collection] {
		if len(point.Vec) == 0 {
			continue
		}
		if !metaMatches(point.Meta, filters) {
			continue
		}
		results = append(results, SearchResult{
			PointID: point.ID,
			Score:   CosineSimilarity(query, point.Vec),
			Meta:    cloneMeta(point.Meta),
		})
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func (s *MemoryStore) Delete(_ context.Context, collection string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[int64]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	points := s.collections[collection]
	kept := points[:0]
	for _, point := range points {
		if !drop[point.ID] {
			kept = append(kept, point)
		}
	}
	s.collections[collection] = kept
	return nil
}

func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// metaMatches reports whether a point's metadata satisfies every filter.
// Integer filter values match regardless of Go integer width.
func metaMatches(meta, filters map[string]any) bool {
	for key, want := range filters {
		got, ok := meta[key]
		if !ok {
			return false
		}
		if wantInt, wantOK := asInt64(want); wantOK {
			gotInt, gotOK := asInt64(got)
			if !gotOK || gotInt != wantInt {
				return false
			}
			continue
		}
		if got != want {
			return false
		}
	}
	return true
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func cloneMeta(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}

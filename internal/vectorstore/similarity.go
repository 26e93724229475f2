package vectorstore

import "math"

// CosineSimilarity computes the cosine similarity between two vectors.
// It returns 0 when the vectors have different lengths or when either
// vector has zero magnitude, so callers never divide by zero. Scores can
// be negative for vectors pointing in opposite directions.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

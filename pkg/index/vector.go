package index

import "math"

// cosineSimilarity computes the cosine similarity between two vectors
// in [-1, 1]. Returns -1 for mismatched dimensions so such records can
// never win a query, and 0 for zero-norm vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return -1
	}

	var dot, normA, normB float64
	for i := range a {
		ai, bi := float64(a[i]), float64(b[i])
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim > 1 {
		sim = 1
	}
	if sim < -1 {
		sim = -1
	}
	return sim
}

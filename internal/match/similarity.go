package match

import (
	"math"
)

// CosineSimilarity calculates the cosine similarity between two embedding
// vectors, clamped into [0, 1]. Mismatched dimensions, empty vectors and
// zero-magnitude vectors all score 0 rather than failing.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	similarity := dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))

	// Clamp to [0, 1]: floating point can push slightly past 1, and
	// negative similarity is reported as no affinity at all.
	if similarity > 1 {
		similarity = 1
	}
	if similarity < 0 {
		similarity = 0
	}

	return similarity
}

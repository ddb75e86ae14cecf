package search

import "math"

// CalculateCosineSimilarity computes dot(a,b) / (|a|*|b|). It is guarded,
// never failing: mismatched lengths, absent vectors, and zero magnitudes
// all yield 0.
func CalculateCosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		dot += x * y
		normA += x * x
		normB += y * y
	}

	normA = math.Sqrt(normA)
	normB = math.Sqrt(normB)
	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dot / (normA * normB)
}

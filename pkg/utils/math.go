package utils

import "math"

// NormalizeL2 scales the vector in place to unit L2 norm so dot products
// between normalized vectors equal cosine similarity. A zero vector is
// left untouched.
func NormalizeL2(v []float32) {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sumSq))
	for i := range v {
		v[i] *= inv
	}
}

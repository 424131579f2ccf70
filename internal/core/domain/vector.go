package domain

import "math"

// Normalize returns a unit-length copy of v.
// A zero vector is returned unchanged; it matches nothing.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		copy(out, v)
		return out
	}
	inv := 1 / math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}

// Dot returns the inner product of a and b. It panics on length mismatch.
func Dot(a, b []float32) float64 {
	if len(a) != len(b) {
		panic("domain: dot of vectors with different lengths")
	}
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

// SquaredL2 returns the squared Euclidean distance of a and b. It panics on length mismatch.
func SquaredL2(a, b []float32) float64 {
	if len(a) != len(b) {
		panic("domain: distance of vectors with different lengths")
	}
	var s float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		s += d * d
	}
	return s
}

package vector

import (
	"fmt"
	"math"

	"github.com/corpora-lab/qadex/internal/domain"
)

// Cosine computes the cosine similarity of two vectors of equal length.
// Returns 0.0 when either vector has zero magnitude rather than
// propagating NaN.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine: %d vs %d: %w", len(a), len(b), domain.ErrDimensionMismatch)
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}

	if magA == 0 || magB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB)), nil
}

// Normalize scales a vector to unit length. A zero vector stays zero.
func Normalize(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var mag float64
	for _, val := range v {
		mag += float64(val) * float64(val)
	}
	mag = math.Sqrt(mag)

	out := make([]float32, len(v))
	if mag == 0 {
		return out
	}
	for i, val := range v {
		out[i] = float32(float64(val) / mag)
	}
	return out
}

package segment

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Silhouette returns the mean silhouette coefficient of an assignment, a value
// in [-1, 1] where higher means tighter, better separated clusters.
func Silhouette(X Matrix, a *Assignment) (float64, error) {
	n := X.Rows()
	if a == nil || len(a.Labels) != n {
		return 0, newError(DegenerateAssignment, StageValidate, "labels do not match the records")
	}
	if a.K < 2 || a.K >= n {
		return 0, newError(DegenerateAssignment, StageValidate,
			"silhouette needs 2 <= k < %d, got k=%d", n, a.K)
	}
	sizes := a.Sizes()
	for c, s := range sizes {
		if s < 2 {
			return 0, newError(DegenerateAssignment, StageValidate,
				"cluster %d has %d member(s), every cluster needs at least 2", c, s)
		}
	}

	total := 0.0
	sums := make([]float64, a.K)
	for i := 0; i < n; i++ {
		for c := range sums {
			sums[c] = 0
		}
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			sums[a.Labels[j]] += floats.Distance(X.Data[i], X.Data[j], 2)
		}
		own := a.Labels[i]
		intra := sums[own] / float64(sizes[own]-1)
		nearest := math.Inf(1)
		for c, s := range sums {
			if c == own {
				continue
			}
			if m := s / float64(sizes[c]); m < nearest {
				nearest = m
			}
		}
		if den := math.Max(intra, nearest); den > 0 {
			total += (nearest - intra) / den
		}
	}
	return total / float64(n), nil
}

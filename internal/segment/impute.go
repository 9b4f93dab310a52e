package segment

import (
	"math"
	"sort"
)

// ImputeReport records how many cells were filled per column.
type ImputeReport struct {
	Filled  map[string]int
	Medians map[string]float64
	Total   int
}

// Empty reports whether nothing was imputed.
func (r ImputeReport) Empty() bool { return r.Total == 0 }

// ImputeMedian replaces every NaN cell with the median of the observed values
// in its column. The input is left untouched.
func ImputeMedian(m Matrix) (Matrix, ImputeReport, error) {
	out := m.Clone()
	rep := ImputeReport{Filled: map[string]int{}, Medians: map[string]float64{}}
	for j, name := range m.Names {
		observed := make([]float64, 0, len(m.Data))
		var gaps []int
		for i, row := range m.Data {
			if math.IsNaN(row[j]) {
				gaps = append(gaps, i)
				continue
			}
			observed = append(observed, row[j])
		}
		if len(gaps) == 0 {
			continue
		}
		if len(observed) == 0 {
			return Matrix{}, ImputeReport{}, newError(DegenerateFeature, StageImpute,
				"column %q has no observed values (drop it from the selection)", name)
		}
		med := median(observed)
		for _, i := range gaps {
			out.Data[i][j] = med
		}
		rep.Filled[name] = len(gaps)
		rep.Medians[name] = med
		rep.Total += len(gaps)
	}
	return out, rep, nil
}

// median sorts vals in place. Even counts average the two middle values.
func median(vals []float64) float64 {
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}

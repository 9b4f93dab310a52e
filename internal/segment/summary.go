package segment

import (
	"fmt"
	"math"
	"strconv"

	"github.com/KaramelBytes/clusterloom-cli/internal/dataset"
)

// DefaultDecimals is the rounding precision of summary means.
const DefaultDecimals = 2

// SummaryRow holds the per-feature means of one cluster.
type SummaryRow struct {
	Label int
	Size  int
	// Means is NaN for a feature with no observed value in the cluster.
	Means map[string]float64
}

// Summary describes each cluster in the original units of the data.
type Summary struct {
	Features []string
	Decimals int
	Rows     []SummaryRow
}

// Summarize averages the original, unimputed feature values per cluster.
// Missing cells are skipped. Means are rounded half to even; decimals <= 0
// selects DefaultDecimals.
func Summarize(ds *dataset.Dataset, features []string, a *Assignment, decimals int) (*Summary, error) {
	if a == nil || len(a.Labels) != ds.Len() {
		return nil, newError(DegenerateAssignment, StageSummarize, "labels do not match the records")
	}
	if decimals <= 0 {
		decimals = DefaultDecimals
	}
	idx := make([]int, len(features))
	for i, f := range features {
		j, ok := ds.ColumnIndex(f)
		if !ok {
			return nil, fmt.Errorf("%s: column %q not found", StageSummarize, f)
		}
		idx[i] = j
	}

	sums := make([][]float64, a.K)
	counts := make([][]int, a.K)
	for c := range sums {
		sums[c] = make([]float64, len(features))
		counts[c] = make([]int, len(features))
	}
	for r, row := range ds.Rows {
		c := a.Labels[r]
		for f, j := range idx {
			if v := row[j]; v.IsNumber() {
				sums[c][f] += v.Num
				counts[c][f]++
			}
		}
	}

	sizes := a.Sizes()
	s := &Summary{Features: append([]string(nil), features...), Decimals: decimals}
	for c := 0; c < a.K; c++ {
		if sizes[c] == 0 {
			continue
		}
		means := make(map[string]float64, len(features))
		for f, name := range features {
			if counts[c][f] == 0 {
				means[name] = math.NaN()
				continue
			}
			means[name] = Round(sums[c][f]/float64(counts[c][f]), decimals)
		}
		s.Rows = append(s.Rows, SummaryRow{Label: c, Size: sizes[c], Means: means})
	}
	return s, nil
}

// Round rounds x to the given number of decimals with exact halves going to
// the even neighbour, so 2.125 becomes 2.12.
func Round(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.RoundToEven(x*p) / p
}

// Table renders the summary with a leading Cluster column.
func (s *Summary) Table() dataset.Table {
	t := dataset.Table{Header: append([]string{"Cluster"}, s.Features...)}
	for _, r := range s.Rows {
		row := make([]string, 0, len(s.Features)+1)
		row = append(row, strconv.Itoa(r.Label))
		for _, f := range s.Features {
			row = append(row, formatMean(r.Means[f], s.Decimals))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func formatMean(v float64, decimals int) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

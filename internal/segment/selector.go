package segment

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/clusterloom-cli/internal/dataset"
)

// DefaultMaxFeatures is the size of the default feature subset.
const DefaultMaxFeatures = 4

// FeatureStat describes one numeric column.
type FeatureStat struct {
	Name     string
	Index    int
	Variance float64
	Observed int
	Missing  int
}

// Selection lists the numeric columns of a dataset and the default subset.
type Selection struct {
	// Numeric holds every numeric column in dataset order.
	Numeric []FeatureStat
	// Default is the highest-variance subset in ranked order.
	Default []string
}

// SelectFeatures identifies numeric columns and ranks them by sample variance.
// A column is numeric when it has at least one value and every present value
// parses as a number.
func SelectFeatures(ds *dataset.Dataset, maxDefault int) (*Selection, error) {
	if maxDefault <= 0 {
		maxDefault = DefaultMaxFeatures
	}
	sel := &Selection{}
	for j, name := range ds.Columns {
		vals := make([]float64, 0, len(ds.Rows))
		missing, numeric := 0, true
		for _, row := range ds.Rows {
			v := row[j]
			switch v.Kind {
			case dataset.KindMissing:
				missing++
			case dataset.KindNumber:
				vals = append(vals, v.Num)
			default:
				numeric = false
			}
			if !numeric {
				break
			}
		}
		if !numeric || len(vals) == 0 {
			continue
		}
		variance := 0.0
		if len(vals) > 1 {
			variance = stat.Variance(vals, nil)
		}
		sel.Numeric = append(sel.Numeric, FeatureStat{
			Name:     name,
			Index:    j,
			Variance: variance,
			Observed: len(vals),
			Missing:  missing,
		})
	}
	if len(sel.Numeric) < 2 {
		return sel, newError(InsufficientFeatures, StageSelect,
			"found %d numeric column(s), need at least 2 (add numeric columns to the dataset)", len(sel.Numeric))
	}

	ranked := append([]FeatureStat(nil), sel.Numeric...)
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Variance > ranked[b].Variance
	})
	n := maxDefault
	if n > len(ranked) {
		n = len(ranked)
	}
	for _, f := range ranked[:n] {
		sel.Default = append(sel.Default, f.Name)
	}
	return sel, nil
}

// Names returns every numeric column name in dataset order.
func (s *Selection) Names() []string {
	out := make([]string, len(s.Numeric))
	for i, f := range s.Numeric {
		out[i] = f.Name
	}
	return out
}

// Lookup finds a numeric column by name, exact match first, then ignoring case.
func (s *Selection) Lookup(name string) (FeatureStat, bool) {
	for _, f := range s.Numeric {
		if f.Name == name {
			return f, true
		}
	}
	want := strings.ToLower(strings.TrimSpace(name))
	for _, f := range s.Numeric {
		if strings.ToLower(f.Name) == want {
			return f, true
		}
	}
	return FeatureStat{}, false
}

// ValidateSelection checks an analyst-chosen feature list against the dataset
// and returns the canonical column names in requested order.
func (s *Selection) ValidateSelection(ds *dataset.Dataset, requested []string) ([]string, error) {
	if len(requested) < 2 {
		return nil, newError(InvalidSelection, StageSelect,
			"%d feature(s) selected, choose at least 2", len(requested))
	}
	out := make([]string, 0, len(requested))
	seen := map[string]bool{}
	for _, r := range requested {
		f, ok := s.Lookup(r)
		if !ok {
			if _, exists := ds.ColumnIndex(r); exists {
				return nil, newError(InvalidSelection, StageSelect,
					"column %q is not numeric (numeric columns: %s)", r, strings.Join(s.Names(), ", "))
			}
			return nil, newError(InvalidSelection, StageSelect,
				"unknown column %q (numeric columns: %s)", r, strings.Join(s.Names(), ", "))
		}
		if seen[f.Name] {
			return nil, newError(InvalidSelection, StageSelect, "column %q selected more than once", f.Name)
		}
		seen[f.Name] = true
		out = append(out, f.Name)
	}
	return out, nil
}

// ExtractMatrix copies the named columns out of ds. Missing cells become NaN.
func ExtractMatrix(ds *dataset.Dataset, features []string) (Matrix, error) {
	idx := make([]int, len(features))
	for i, name := range features {
		j, ok := ds.ColumnIndex(name)
		if !ok {
			return Matrix{}, fmt.Errorf("column %q not found", name)
		}
		idx[i] = j
	}
	m := Matrix{Names: append([]string(nil), features...), Data: make([][]float64, len(ds.Rows))}
	for r, row := range ds.Rows {
		vals := make([]float64, len(idx))
		for c, j := range idx {
			if v := row[j]; v.IsNumber() {
				vals[c] = v.Num
			} else {
				vals[c] = math.NaN()
			}
		}
		m.Data[r] = vals
	}
	return m, nil
}

package segment

import (
	"math"
	"testing"

	"github.com/KaramelBytes/clusterloom-cli/internal/dataset"
)

// numericDataset builds a dataset where NaN cells become missing values.
func numericDataset(t *testing.T, cols []string, rows [][]float64) *dataset.Dataset {
	t.Helper()
	ds := dataset.New("test.csv", cols)
	for _, r := range rows {
		vals := make([]dataset.Value, len(r))
		for i, v := range r {
			if math.IsNaN(v) {
				vals[i] = dataset.Missing()
			} else {
				vals[i] = dataset.Number(v)
			}
		}
		ds.Append(vals)
	}
	return ds
}

func twoGroups(t *testing.T) *dataset.Dataset {
	return numericDataset(t, []string{"x", "y"}, [][]float64{
		{0, 0}, {0, 1}, {1, 0},
		{10, 10}, {10, 11}, {11, 10},
	})
}

// blobs returns three well separated groups of ten points each.
func blobs() Matrix {
	m := Matrix{Names: []string{"a", "b"}}
	centers := [][2]float64{{0, 0}, {8, 8}, {-8, 8}}
	for c, ctr := range centers {
		for i := 0; i < 10; i++ {
			dx := float64(i%5)*0.3 - 0.6
			dy := float64(i/5)*0.4 - 0.2 + float64(c)*0.05
			m.Data = append(m.Data, []float64{ctr[0] + dx, ctr[1] + dy})
		}
	}
	return m
}

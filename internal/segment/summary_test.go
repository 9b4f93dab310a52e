package segment

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound(t *testing.T) {
	cases := []struct {
		in   float64
		dec  int
		want float64
	}{
		{2.5, 0, 2},
		{3.5, 0, 4},
		{-2.5, 0, -2},
		{0.125, 2, 0.12},
		{-0.125, 2, -0.12},
		{2.125, 2, 2.12},
		{1.25, 1, 1.2},
		{0.375, 2, 0.38},
		{1.234, 2, 1.23},
		{1234.5678, 1, 1234.6},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Round(c.in, c.dec), "Round(%v, %d)", c.in, c.dec)
	}
}

func TestSummarize_OriginalValuesSkipMissing(t *testing.T) {
	nan := math.NaN()
	ds := numericDataset(t, []string{"a", "b"}, [][]float64{
		{1, 10},
		{2, nan},
		{3, 30},
		{100, 1},
	})
	a := &Assignment{K: 2, Labels: []int{0, 0, 0, 1}}
	s, err := Summarize(ds, []string{"a", "b"}, a, 2)
	require.NoError(t, err)
	require.Len(t, s.Rows, 2)
	assert.Equal(t, 0, s.Rows[0].Label)
	assert.Equal(t, 3, s.Rows[0].Size)
	assert.Equal(t, 2.0, s.Rows[0].Means["a"])
	// the imputed cell would drag this toward the median; it is skipped instead
	assert.Equal(t, 20.0, s.Rows[0].Means["b"])
	assert.Equal(t, 100.0, s.Rows[1].Means["a"])

	tbl := s.Table()
	assert.Equal(t, []string{"Cluster", "a", "b"}, tbl.Header)
	assert.Equal(t, []string{"0", "2.00", "20.00"}, tbl.Rows[0])

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteCSV(&buf))
	assert.Equal(t, "Cluster,a,b\n0,2.00,20.00\n1,100.00,1.00\n", buf.String())
}

func TestSummarize_HalvesRoundToEven(t *testing.T) {
	ds := numericDataset(t, []string{"a"}, [][]float64{{2}, {2}, {2}, {2.5}, {9}})
	a := &Assignment{K: 2, Labels: []int{0, 0, 0, 0, 1}}
	s, err := Summarize(ds, []string{"a"}, a, 2)
	require.NoError(t, err)
	assert.Equal(t, 2.12, s.Rows[0].Means["a"])
	assert.Equal(t, []string{"0", "2.12"}, s.Table().Rows[0])
}

func TestSummarize_NonPositiveDecimalsUseDefault(t *testing.T) {
	ds := numericDataset(t, []string{"a"}, [][]float64{{1}, {2}, {4}, {9}})
	a := &Assignment{K: 2, Labels: []int{0, 0, 0, 1}}
	for _, dec := range []int{0, -3} {
		s, err := Summarize(ds, []string{"a"}, a, dec)
		require.NoError(t, err)
		assert.Equal(t, DefaultDecimals, s.Decimals)
		assert.Equal(t, 2.33, s.Rows[0].Means["a"])
		assert.Equal(t, "2.33", s.Table().Rows[0][1])
	}
}

func TestSummarize_WeightedMeansMatchOverall(t *testing.T) {
	X := blobs()
	ds := numericDataset(t, X.Names, X.Data)
	a, err := KMeans{K: 4, Seed: 11}.Fit(context.Background(), X)
	require.NoError(t, err)
	s, err := Summarize(ds, X.Names, a, DefaultDecimals)
	require.NoError(t, err)

	for j, f := range X.Names {
		overall := 0.0
		for _, row := range X.Data {
			overall += row[j]
		}
		overall /= float64(X.Rows())
		weighted := 0.0
		for _, r := range s.Rows {
			weighted += r.Means[f] * float64(r.Size)
		}
		weighted /= float64(X.Rows())
		assert.InDelta(t, overall, weighted, 0.005+1e-9, f)
	}
}

func TestSummarize_AllMissingInCluster(t *testing.T) {
	nan := math.NaN()
	ds := numericDataset(t, []string{"a", "b"}, [][]float64{{1, nan}, {2, 5}})
	s, err := Summarize(ds, []string{"a", "b"}, &Assignment{K: 2, Labels: []int{0, 1}}, 2)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(s.Rows[0].Means["b"]))
	assert.Equal(t, "", s.Table().Rows[0][2])
}

func TestSummarize_LabelMismatch(t *testing.T) {
	ds := numericDataset(t, []string{"a"}, [][]float64{{1}, {2}})
	_, err := Summarize(ds, []string{"a"}, &Assignment{K: 1, Labels: []int{0}}, 2)
	assert.ErrorIs(t, err, ErrDegenerateAssignment)
}

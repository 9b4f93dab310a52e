package segment

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestImputeMedian(t *testing.T) {
	nan := math.NaN()
	in := Matrix{Names: []string{"odd", "even"}, Data: [][]float64{
		{1, 1},
		{nan, 2},
		{3, nan},
		{10, 4},
		{nan, 10},
	}}
	out, rep, err := ImputeMedian(in)
	require.NoError(t, err)

	assert.Equal(t, 3.0, out.Data[1][0])
	assert.Equal(t, 3.0, out.Data[4][0])
	// (2 + 4) / 2
	assert.Equal(t, 3.0, out.Data[2][1])
	assert.Equal(t, 0, out.MissingCount())
	assert.Equal(t, map[string]int{"odd": 2, "even": 1}, rep.Filled)
	assert.Equal(t, 3, rep.Total)
	assert.False(t, rep.Empty())

	// observed cells keep their values and the input is untouched
	assert.Equal(t, 10.0, out.Data[3][0])
	assert.True(t, math.IsNaN(in.Data[1][0]))
}

func TestImputeMedian_NothingMissing(t *testing.T) {
	in := Matrix{Names: []string{"a"}, Data: [][]float64{{1}, {2}}}
	out, rep, err := ImputeMedian(in)
	require.NoError(t, err)
	assert.True(t, rep.Empty())
	assert.Equal(t, in.Data, out.Data)
	out.Data[0][0] = 99
	assert.Equal(t, 1.0, in.Data[0][0])
}

func TestImputeMedian_AllMissingColumn(t *testing.T) {
	nan := math.NaN()
	_, _, err := ImputeMedian(Matrix{Names: []string{"a", "gone"}, Data: [][]float64{{1, nan}, {2, nan}}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDegenerateFeature))
	assert.Contains(t, err.Error(), `"gone"`)
}

func TestStandardize(t *testing.T) {
	in := Matrix{Names: []string{"a", "b"}, Data: [][]float64{{1, 100}, {2, 300}, {3, 200}, {10, 1000}}}
	out, p, err := Standardize(in)
	require.NoError(t, err)
	for j := range in.Names {
		mean, std := stat.PopMeanStdDev(out.Column(j), nil)
		assert.InDelta(t, 0, mean, 1e-9)
		assert.InDelta(t, 1, std, 1e-9)
	}
	assert.InDelta(t, 4.0, p.Mean[0], 1e-12)

	again, err := p.Transform(in)
	require.NoError(t, err)
	assert.Equal(t, out.Data, again.Data)

	_, err = p.Transform(Matrix{Names: []string{"a"}, Data: [][]float64{{1}}})
	assert.Error(t, err)
}

func TestStandardize_ZeroVariance(t *testing.T) {
	in := Matrix{Names: []string{"a", "flat"}, Data: [][]float64{{1, 0.1}, {2, 0.1}, {3, 0.1}}}
	_, _, err := Standardize(in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDegenerateFeature))
	assert.Contains(t, err.Error(), `standardize: column "flat" has zero variance`)
}

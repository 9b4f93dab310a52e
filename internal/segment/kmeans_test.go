package segment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKMeans_TwoObviousGroups(t *testing.T) {
	X, _, err := Standardize(Matrix{Names: []string{"x", "y"}, Data: [][]float64{
		{0, 0}, {0, 1}, {1, 0},
		{10, 10}, {10, 11}, {11, 10},
	}})
	require.NoError(t, err)

	a, err := KMeans{K: 2, Seed: DefaultSeed}.Fit(context.Background(), X)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3}, a.Sizes())
	assert.Equal(t, a.Labels[0], a.Labels[1])
	assert.Equal(t, a.Labels[0], a.Labels[2])
	assert.Equal(t, a.Labels[3], a.Labels[4])
	assert.NotEqual(t, a.Labels[0], a.Labels[3])
	assert.Len(t, a.Centroids, 2)
	assert.Greater(t, a.Iterations, 0)

	score, err := Silhouette(X, a)
	require.NoError(t, err)
	assert.Greater(t, score, 0.5)
}

func TestKMeans_InvalidK(t *testing.T) {
	X := blobs()
	for _, k := range []int{0, 1, 11} {
		_, err := KMeans{K: k}.Fit(context.Background(), X)
		assert.True(t, errors.Is(err, ErrInvalidK), "k=%d: %v", k, err)
	}
	one := Matrix{Names: []string{"a", "b"}, Data: [][]float64{{1, 2}}}
	_, err := KMeans{K: 2}.Fit(context.Background(), one)
	assert.True(t, errors.Is(err, ErrInvalidK))

	two := Matrix{Names: []string{"a", "b"}, Data: [][]float64{{1, 2}, {3, 4}}}
	_, err = KMeans{K: 2}.Fit(context.Background(), two)
	assert.True(t, errors.Is(err, ErrInvalidK), "k equal to the record count is rejected")
}

func TestKMeans_Reproducible(t *testing.T) {
	X := blobs()
	ctx := context.Background()
	for k := MinK; k <= MaxK; k++ {
		a1, err := KMeans{K: k, Seed: 7}.Fit(ctx, X)
		require.NoError(t, err)
		a2, err := KMeans{K: k, Seed: 7}.Fit(ctx, X)
		require.NoError(t, err)
		assert.Equal(t, a1.Labels, a2.Labels, "k=%d", k)
		assert.Equal(t, a1.Inertia, a2.Inertia, "k=%d", k)
	}
}

func TestKMeans_LabelsDense(t *testing.T) {
	X := blobs()
	a, err := KMeans{K: 3, Seed: 1}.Fit(context.Background(), X)
	require.NoError(t, err)
	require.Len(t, a.Labels, X.Rows())
	for _, l := range a.Labels {
		assert.GreaterOrEqual(t, l, 0)
		assert.Less(t, l, 3)
	}
	assert.Equal(t, []int{10, 10, 10}, sortedSizes(a.Sizes()))
}

func TestKMeans_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := KMeans{K: 3}.Fit(ctx, blobs())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKMeans_DuplicatePoints(t *testing.T) {
	X := Matrix{Names: []string{"a", "b"}, Data: [][]float64{{1, 1}, {1, 1}, {1, 1}, {5, 5}}}
	a, err := KMeans{K: 3, Seed: 3}.Fit(context.Background(), X)
	require.NoError(t, err)
	assert.Len(t, a.Labels, 4)
	assert.InDelta(t, 0, a.Inertia, 1e-12)
}

func TestUpdateCenters_RelocatesEmptyCluster(t *testing.T) {
	data := [][]float64{{0}, {1}, {9}}
	centers := [][]float64{{0}, {100}}
	labels := []int{0, 0, 0}
	updateCenters(data, centers, labels)
	assert.Equal(t, []int{0, 0, 1}, labels)
	assert.Equal(t, []float64{0.5}, centers[0])
	assert.Equal(t, []float64{9}, centers[1])
}

func sortedSizes(s []int) []int {
	out := append([]int(nil), s...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

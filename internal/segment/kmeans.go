package segment

import (
	"context"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

const (
	// MinK and MaxK bound the cluster count an analyst may request.
	MinK = 2
	MaxK = 10

	DefaultK       = 4
	DefaultSeed    = 42
	DefaultMaxIter = 300
	DefaultNInit   = 10
)

// Assignment is the result of a k-means fit.
type Assignment struct {
	K int
	// Labels are dense in [0, K), one per record.
	Labels     []int
	Centroids  [][]float64
	Inertia    float64
	Iterations int
}

// Sizes counts members per label.
func (a *Assignment) Sizes() []int {
	sizes := make([]int, a.K)
	for _, l := range a.Labels {
		sizes[l]++
	}
	return sizes
}

// KMeans fits centroid clusters with k-means++ seeding and Lloyd iterations.
// Runs are reproducible for a given Seed.
type KMeans struct {
	K       int
	Seed    int64
	MaxIter int
	NInit   int
}

// ValidateK checks k against the allowed range and the number of records.
func ValidateK(k, n int) error {
	if k < MinK || k > MaxK {
		return newError(InvalidK, StageCluster, "k=%d is outside [%d, %d]", k, MinK, MaxK)
	}
	if k >= n {
		return newError(InvalidK, StageCluster, "k=%d needs more than %d record(s) (lower k or add data)", k, n)
	}
	return nil
}

// Fit assigns every row of X to one of K clusters.
func (km KMeans) Fit(ctx context.Context, X Matrix) (*Assignment, error) {
	if err := ValidateK(km.K, X.Rows()); err != nil {
		return nil, err
	}
	return km.fit(ctx, X)
}

// fit skips the analyst-facing bounds so the elbow sweep can use k=1.
func (km KMeans) fit(ctx context.Context, X Matrix) (*Assignment, error) {
	if km.K < 1 || km.K > X.Rows() {
		return nil, newError(InvalidK, StageCluster, "k=%d is not valid for %d record(s)", km.K, X.Rows())
	}
	maxIter, nInit := km.MaxIter, km.NInit
	if maxIter <= 0 {
		maxIter = DefaultMaxIter
	}
	if nInit <= 0 {
		nInit = DefaultNInit
	}
	var best *Assignment
	for run := 0; run < nInit; run++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rng := rand.New(rand.NewPCG(uint64(km.Seed), uint64(run)))
		a, err := lloyd(ctx, X.Data, initCenters(X.Data, km.K, rng), maxIter)
		if err != nil {
			return nil, err
		}
		if best == nil || a.Inertia < best.Inertia {
			best = a
		}
	}
	return best, nil
}

// initCenters picks k starting centroids with greedy k-means++: each new
// centroid is the best of 2+ln(k) candidates sampled proportionally to the
// squared distance to the nearest chosen centroid.
func initCenters(data [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(data)
	centers := make([][]float64, 0, k)
	first := rng.IntN(n)
	centers = append(centers, append([]float64(nil), data[first]...))

	closest := make([]float64, n)
	pot := 0.0
	for i, p := range data {
		closest[i] = sqDist(p, centers[0])
		pot += closest[i]
	}
	trials := 2 + int(math.Log(float64(k)))
	cand := make([]float64, n)
	bestDist := make([]float64, n)
	for len(centers) < k {
		bestIdx, bestPot := -1, math.Inf(1)
		for t := 0; t < trials; t++ {
			idx := sampleWeighted(closest, pot, rng)
			candPot := 0.0
			for i, p := range data {
				cand[i] = math.Min(closest[i], sqDist(p, data[idx]))
				candPot += cand[i]
			}
			if candPot < bestPot {
				bestIdx, bestPot = idx, candPot
				copy(bestDist, cand)
			}
		}
		centers = append(centers, append([]float64(nil), data[bestIdx]...))
		copy(closest, bestDist)
		pot = bestPot
	}
	return centers
}

func sampleWeighted(weights []float64, total float64, rng *rand.Rand) int {
	if total <= 0 {
		return rng.IntN(len(weights))
	}
	r := rng.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return i
		}
	}
	return len(weights) - 1
}

func lloyd(ctx context.Context, data [][]float64, centers [][]float64, maxIter int) (*Assignment, error) {
	k := len(centers)
	labels := make([]int, len(data))
	for i := range labels {
		labels[i] = -1
	}
	converged := false
	iter := 0
	for iter < maxIter {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		iter++
		if assignNearest(data, centers, labels) == 0 {
			converged = true
			break
		}
		updateCenters(data, centers, labels)
	}
	if !converged {
		assignNearest(data, centers, labels)
	}
	inertia := 0.0
	for i, p := range data {
		inertia += sqDist(p, centers[labels[i]])
	}
	return &Assignment{K: k, Labels: labels, Centroids: centers, Inertia: inertia, Iterations: iter}, nil
}

// assignNearest relabels every point and returns how many labels changed.
// Ties go to the lower label.
func assignNearest(data [][]float64, centers [][]float64, labels []int) int {
	changed := 0
	for i, p := range data {
		best, bestD := 0, math.Inf(1)
		for c, ctr := range centers {
			if d := sqDist(p, ctr); d < bestD {
				best, bestD = c, d
			}
		}
		if labels[i] != best {
			labels[i] = best
			changed++
		}
	}
	return changed
}

// updateCenters moves each centroid to the mean of its members. An empty
// cluster takes over the point farthest from its current centroid.
func updateCenters(data [][]float64, centers [][]float64, labels []int) {
	k, dim := len(centers), len(centers[0])
	sums := make([][]float64, k)
	counts := make([]int, k)
	for c := range sums {
		sums[c] = make([]float64, dim)
	}
	for i, p := range data {
		floats.Add(sums[labels[i]], p)
		counts[labels[i]]++
	}
	for c := 0; c < k; c++ {
		if counts[c] > 0 {
			continue
		}
		far, farD := -1, -1.0
		for i, p := range data {
			if counts[labels[i]] < 2 {
				continue
			}
			if d := sqDist(p, centers[labels[i]]); d > farD {
				far, farD = i, d
			}
		}
		if far < 0 {
			continue
		}
		old := labels[far]
		floats.Sub(sums[old], data[far])
		counts[old]--
		copy(sums[c], data[far])
		counts[c] = 1
		labels[far] = c
	}
	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			continue
		}
		floats.ScaleTo(centers[c], 1/float64(counts[c]), sums[c])
	}
}

func sqDist(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

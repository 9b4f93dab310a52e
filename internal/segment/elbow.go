package segment

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ElbowPoint is the within-cluster sum of squares for one k.
type ElbowPoint struct {
	K          int
	Inertia    float64
	Iterations int
}

// ElbowOptions configures the sweep.
type ElbowOptions struct {
	MaxK    int
	Seed    int64
	MaxIter int
	NInit   int
	// Concurrency caps parallel fits; 0 means GOMAXPROCS.
	Concurrency int
}

// Elbow fits k = 1..MaxK and returns the inertia curve in k order. k values
// above the number of records are not fitted.
func Elbow(ctx context.Context, X Matrix, opts ElbowOptions) ([]ElbowPoint, error) {
	maxK := opts.MaxK
	if maxK <= 0 || maxK > MaxK {
		maxK = MaxK
	}
	if maxK > X.Rows() {
		maxK = X.Rows()
	}
	if maxK < 1 {
		return nil, newError(InvalidK, StageElbow, "dataset has no records to cluster")
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	curve := make([]ElbowPoint, maxK)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for k := 1; k <= maxK; k++ {
		g.Go(func() error {
			km := KMeans{K: k, Seed: opts.Seed, MaxIter: opts.MaxIter, NInit: opts.NInit}
			a, err := km.fit(gctx, X)
			if err != nil {
				return err
			}
			curve[k-1] = ElbowPoint{K: k, Inertia: a.Inertia, Iterations: a.Iterations}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return curve, nil
}

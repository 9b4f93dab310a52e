package segment

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Projection is a 2-D principal component view of the feature matrix.
type Projection struct {
	Points [][2]float64
	// Components holds the unit loadings of PC1 and PC2 per feature.
	Components             [2][]float64
	ExplainedVarianceRatio [2]float64
	Names                  []string
}

// Project reduces X to its two leading principal components. The sign of
// each component is fixed so its largest loading is positive.
func Project(X Matrix) (*Projection, error) {
	n, d := X.Rows(), X.Cols()
	if d < 2 {
		return nil, newError(InsufficientFeatures, StageProject, "projection needs at least 2 features, got %d", d)
	}
	if n < 2 {
		return nil, fmt.Errorf("%s: projection needs at least 2 records, got %d", StageProject, n)
	}

	centered := mat.NewDense(n, d, nil)
	for i, row := range X.Data {
		centered.SetRow(i, row)
	}
	for j := 0; j < d; j++ {
		col := mat.Col(nil, j, centered)
		mean := stat.Mean(col, nil)
		for i := range col {
			centered.Set(i, j, col[i]-mean)
		}
	}

	cov := mat.NewSymDense(d, nil)
	stat.CovarianceMatrix(cov, centered, nil)
	var eig mat.EigenSym
	if ok := eig.Factorize(cov, true); !ok {
		return nil, fmt.Errorf("%s: eigen decomposition did not converge", StageProject)
	}
	values := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	total := 0.0
	for _, v := range values {
		total += math.Max(v, 0)
	}
	p := &Projection{Names: append([]string(nil), X.Names...), Points: make([][2]float64, n)}
	// Values come back in ascending order.
	for c := 0; c < 2; c++ {
		idx := d - 1 - c
		load := mat.Col(nil, idx, &vecs)
		orientLoadings(load)
		p.Components[c] = load
		if total > 0 {
			p.ExplainedVarianceRatio[c] = math.Max(values[idx], 0) / total
		}
		for i := 0; i < n; i++ {
			p.Points[i][c] = mat.Dot(centered.RowView(i), mat.NewVecDense(d, load))
		}
	}
	return p, nil
}

// orientLoadings flips v so its largest-magnitude entry is positive.
func orientLoadings(v []float64) {
	maxIdx := 0
	for i := range v {
		if math.Abs(v[i]) > math.Abs(v[maxIdx]) {
			maxIdx = i
		}
	}
	if v[maxIdx] < 0 {
		for i := range v {
			v[i] = -v[i]
		}
	}
}

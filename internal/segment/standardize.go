package segment

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Params holds the per-column scaling fitted by Standardize.
type Params struct {
	Names []string
	Mean  []float64
	// Std is the population standard deviation.
	Std []float64
}

// Standardize rescales every column to zero mean and unit population standard
// deviation. Input must be free of missing values.
func Standardize(m Matrix) (Matrix, Params, error) {
	p := Params{
		Names: append([]string(nil), m.Names...),
		Mean:  make([]float64, m.Cols()),
		Std:   make([]float64, m.Cols()),
	}
	if m.Rows() == 0 {
		return Matrix{}, Params{}, newError(DegenerateFeature, StageStandardize, "dataset has no records")
	}
	for j, name := range m.Names {
		col := m.Column(j)
		mean, std := stat.PopMeanStdDev(col, nil)
		if math.IsNaN(mean) {
			return Matrix{}, Params{}, newError(DegenerateFeature, StageStandardize,
				"column %q still has missing values (impute before standardizing)", name)
		}
		if std <= 1e-12*math.Max(1, math.Abs(mean)) {
			return Matrix{}, Params{}, newError(DegenerateFeature, StageStandardize,
				"column %q has zero variance (drop it from the selection)", name)
		}
		p.Mean[j], p.Std[j] = mean, std
	}
	out, err := p.Transform(m)
	if err != nil {
		return Matrix{}, Params{}, err
	}
	return out, p, nil
}

// Transform applies the fitted scaling to a matrix with the same columns.
func (p Params) Transform(m Matrix) (Matrix, error) {
	if m.Cols() != len(p.Names) {
		return Matrix{}, fmt.Errorf("matrix has %d columns, params fitted on %d", m.Cols(), len(p.Names))
	}
	out := Matrix{Names: append([]string(nil), m.Names...), Data: make([][]float64, m.Rows())}
	for i, row := range m.Data {
		z := make([]float64, len(row))
		for j, v := range row {
			z[j] = (v - p.Mean[j]) / p.Std[j]
		}
		out.Data[i] = z
	}
	return out, nil
}

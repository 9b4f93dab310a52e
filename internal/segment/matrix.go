package segment

import "math"

// Matrix is a dense row-major feature matrix. Rows line up 1:1 with dataset
// records; a NaN cell marks a missing value.
type Matrix struct {
	Names []string
	Data  [][]float64
}

// Rows returns the number of records.
func (m Matrix) Rows() int { return len(m.Data) }

// Cols returns the number of features.
func (m Matrix) Cols() int { return len(m.Names) }

// Column copies column j.
func (m Matrix) Column(j int) []float64 {
	out := make([]float64, len(m.Data))
	for i, row := range m.Data {
		out[i] = row[j]
	}
	return out
}

// Clone returns a deep copy.
func (m Matrix) Clone() Matrix {
	out := Matrix{Names: append([]string(nil), m.Names...), Data: make([][]float64, len(m.Data))}
	for i, row := range m.Data {
		out.Data[i] = append([]float64(nil), row...)
	}
	return out
}

// MissingCount counts NaN cells.
func (m Matrix) MissingCount() int {
	n := 0
	for _, row := range m.Data {
		for _, v := range row {
			if math.IsNaN(v) {
				n++
			}
		}
	}
	return n
}

package similarity

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// symmetryTolerance absorbs float noise from the offline cosine computation.
const symmetryTolerance = 1e-9

// Matrix is a square, symmetric, non-negative similarity matrix
// under one signal (text, location, amenity). Immutable after New.
type Matrix struct {
	name  string
	dense *mat.Dense
}

// New validates data (row-major, n*n values) and wraps it.
func New(name string, n int, data []float64) (Matrix, error) {
	if n <= 0 {
		return Matrix{}, fmt.Errorf("matrix %q: size must be positive, got %d", name, n)
	}
	if len(data) != n*n {
		return Matrix{}, fmt.Errorf("matrix %q: expected %d values for %dx%d, got %d", name, n*n, n, n, len(data))
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := data[i*n+j]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return Matrix{}, fmt.Errorf("matrix %q: non-finite value at (%d,%d)", name, i, j)
			}
			if v < 0 {
				return Matrix{}, fmt.Errorf("matrix %q: negative value %g at (%d,%d)", name, v, i, j)
			}
			if j > i && math.Abs(v-data[j*n+i]) > symmetryTolerance {
				return Matrix{}, fmt.Errorf("matrix %q: not symmetric at (%d,%d)", name, i, j)
			}
		}
	}
	return Matrix{name: name, dense: mat.NewDense(n, n, data)}, nil
}

// Name returns the signal name.
func (m *Matrix) Name() string { return m.name }

// Size returns the matrix dimension.
func (m *Matrix) Size() int {
	if m.dense == nil {
		return 0
	}
	r, _ := m.dense.Dims()
	return r
}

// At returns the similarity between properties i and j.
func (m *Matrix) At(i, j int) float64 { return m.dense.At(i, j) }

// Row returns a read-only view of row i. Callers must not modify it.
func (m *Matrix) Row(i int) []float64 { return m.dense.RawRowView(i) }

// Package linalg contains helpers on top of gonum/mat shared by the
// optimisation drivers.
package linalg

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ExtendVecDense extends the length of vec in-place to be at least n.
// A nil vec is treated as a zero-length vector.
func ExtendVecDense(vec *mat.VecDense, n int) *mat.VecDense {
	if vec == nil {
		return mat.NewVecDense(n, make([]float64, n))
	}
	raw := vec.RawVector()
	if n <= raw.N {
		return vec
	}
	raw.Data = append(raw.Data, make([]float64, n-raw.N)...)
	raw.N = n
	vec.SetRawVector(raw)
	return vec
}

// HasNaN returns true if a contains a NaN value. A nil matrix contains no NaN values.
func HasNaN(a mat.Matrix) bool {
	if a == nil {
		return false
	}
	r, c := a.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if math.IsNaN(a.At(i, j)) {
				return true
			}
		}
	}
	return false
}

// RowNorms returns the Euclidean norm of each row of a.
func RowNorms(a *mat.Dense) *mat.VecDense {
	m, _ := a.Dims()
	rv := mat.NewVecDense(m, nil)
	for i := 0; i < m; i++ {
		rv.SetVec(i, floats.Norm(a.RawRowView(i), 2))
	}
	return rv
}

// ShiftDiag returns a copy of h with v added to each diagonal entry.
func ShiftDiag(h *mat.SymDense, v float64) *mat.SymDense {
	n := h.SymmetricDim()
	rv := mat.NewSymDense(n, nil)
	rv.CopySym(h)
	for i := 0; i < n; i++ {
		rv.SetSym(i, i, rv.At(i, i)+v)
	}
	return rv
}

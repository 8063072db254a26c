package quantum

import (
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// Operator is a dense complex matrix acting on state vectors of
// matching dimension.
type Operator struct {
	m   *mat.CDense
	dim int
}

// NewOperator builds a dim x dim operator from row-major data. A nil
// data slice yields the zero operator.
func NewOperator(dim int, data []complex128) *Operator {
	return &Operator{m: mat.NewCDense(dim, dim, data), dim: dim}
}

func Identity(dim int) *Operator {
	op := NewOperator(dim, nil)
	for i := 0; i < dim; i++ {
		op.m.Set(i, i, 1)
	}
	return op
}

func (o *Operator) Dim() int                   { return o.dim }
func (o *Operator) At(i, j int) complex128     { return o.m.At(i, j) }
func (o *Operator) Set(i, j int, v complex128) { o.m.Set(i, j, v) }

// Apply computes dst = O . psi. dst and psi must not alias.
func (o *Operator) Apply(dst, psi State) {
	for i := 0; i < o.dim; i++ {
		var sum complex128
		for j := 0; j < o.dim; j++ {
			sum += o.m.At(i, j) * psi[j]
		}
		dst[i] = sum
	}
}

// MulAddTo accumulates dst += alpha * O . psi. dst and psi must not
// alias.
func (o *Operator) MulAddTo(dst State, alpha complex128, psi State) {
	for i := 0; i < o.dim; i++ {
		var sum complex128
		for j := 0; j < o.dim; j++ {
			sum += o.m.At(i, j) * psi[j]
		}
		dst[i] += alpha * sum
	}
}

func (o *Operator) Dagger() *Operator {
	out := NewOperator(o.dim, nil)
	for i := 0; i < o.dim; i++ {
		for j := 0; j < o.dim; j++ {
			out.m.Set(i, j, cmplx.Conj(o.m.At(j, i)))
		}
	}
	return out
}

func (o *Operator) IsHermitian(tol float64) bool {
	for i := 0; i < o.dim; i++ {
		for j := i; j < o.dim; j++ {
			if cmplx.Abs(o.m.At(i, j)-cmplx.Conj(o.m.At(j, i))) > tol {
				return false
			}
		}
	}
	return true
}

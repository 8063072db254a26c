package quantum

import (
	"math"
	"math/cmplx"
)

// State is a complex state vector.
type State []complex128

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// Basis returns the k-th canonical basis vector of the given dimension.
func Basis(dim, k int) State {
	s := make(State, dim)
	s[k] = 1
	return s
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += real(v)*real(v) + imag(v)*imag(v)
	}
	return math.Sqrt(sum)
}

func (s State) Scale(alpha complex128) {
	for i := range s {
		s[i] *= alpha
	}
}

func (s State) AddScaled(alpha complex128, x State) {
	for i := range s {
		s[i] += alpha * x[i]
	}
}

func (s State) Zero() {
	for i := range s {
		s[i] = 0
	}
}

// Overlap computes <a|b>, conjugating the left argument.
func Overlap(a, b State) complex128 {
	var sum complex128
	for i := range a {
		sum += cmplx.Conj(a[i]) * b[i]
	}
	return sum
}

package quantum

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperatorApply(t *testing.T) {
	sx := NewOperator(2, []complex128{0, 1, 1, 0})
	psi := State{1, 0}
	dst := make(State, 2)

	sx.Apply(dst, psi)
	assert.Equal(t, State{0, 1}, dst)
}

func TestOperatorMulAddTo(t *testing.T) {
	sz := NewOperator(2, []complex128{1, 0, 0, -1})
	psi := State{1, 1}
	dst := State{1, 0}

	sz.MulAddTo(dst, 2, psi)
	assert.Equal(t, State{3, -2}, dst)
}

func TestIdentity(t *testing.T) {
	id := Identity(3)
	psi := State{1i, 2, 3}
	dst := make(State, 3)
	id.Apply(dst, psi)
	assert.Equal(t, psi, dst)
}

func TestDagger(t *testing.T) {
	op := NewOperator(2, []complex128{0, 1i, 0, 0})
	dag := op.Dagger()
	assert.Equal(t, complex128(-1i), dag.At(1, 0))
	assert.Equal(t, complex128(0), dag.At(0, 1))
}

func TestIsHermitian(t *testing.T) {
	sy := NewOperator(2, []complex128{0, -1i, 1i, 0})
	assert.True(t, sy.IsHermitian(1e-12))

	notH := NewOperator(2, []complex128{0, 1, 2, 0})
	assert.False(t, notH.IsHermitian(1e-12))
}

func TestOverlapConjugatesLeft(t *testing.T) {
	a := State{1i, 0}
	b := State{1, 0}
	assert.Equal(t, complex128(-1i), Overlap(a, b))
}

func TestNormAndBasis(t *testing.T) {
	psi := Basis(4, 2)
	require.Len(t, psi, 4)
	assert.Equal(t, complex128(1), psi[2])
	assert.InDelta(t, 1.0, psi.Norm(), 1e-12)

	psi.Scale(complex(0, 2))
	assert.InDelta(t, 2.0, psi.Norm(), 1e-12)
}

func TestAddScaled(t *testing.T) {
	a := State{1, 0}
	a.AddScaled(2, State{0, 1})
	assert.Equal(t, State{1, 2}, a)

	a.Zero()
	assert.Equal(t, State{0, 0}, a)
	assert.InDelta(t, 0.0, a.Norm(), math.SmallestNonzeroFloat64)
}

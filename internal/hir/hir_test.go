package hir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sail-lang/sailc/internal/pstr"
)

func TestBinaryUnwrappedNormalizesMinusToPlus(t *testing.T) {
	h := pstr.NewHeap()
	name := h.AllocTemp()
	x := Variable{Name: h.Alloc("x"), Type: IntType{}}

	b := BinaryUnwrapped(name, OpMinus, x, IntLiteral{Value: 5, IsInt: true})

	assert.Equal(t, OpPlus, b.Op)
	assert.Equal(t, IntLiteral{Value: -5, IsInt: true}, b.E2)
}

func TestBinaryUnwrappedKeepsMinusAtIntMin(t *testing.T) {
	h := pstr.NewHeap()
	name := h.AllocTemp()
	x := Variable{Name: h.Alloc("x"), Type: IntType{}}

	b := BinaryUnwrapped(name, OpMinus, x, IntLiteral{Value: math.MinInt32, IsInt: true})

	// -MinInt32 overflows i32, so the normalization must not fire here.
	assert.Equal(t, OpMinus, b.Op)
	assert.Equal(t, int32(math.MinInt32), b.E2.(IntLiteral).Value)
}

func TestExpressionOrderRank(t *testing.T) {
	lit := IntLiteral{Value: 1, IsInt: true}
	str := StringName{}
	v := Variable{}

	assert.Less(t, lit.orderRank(), str.orderRank())
	assert.Less(t, str.orderRank(), v.orderRank())
}

func TestOperatorCommutativity(t *testing.T) {
	assert.True(t, OpPlus.Commutative())
	assert.True(t, OpMul.Commutative())
	assert.False(t, OpMinus.Commutative())
	assert.False(t, OpDiv.Commutative())
}

func TestOperatorInvert(t *testing.T) {
	assert.Equal(t, OpGt, OpLt.Invert())
	assert.Equal(t, OpLe, OpGe.Invert())
	assert.Equal(t, OpPlus, OpPlus.Invert(), "non-comparison operators are their own invert")
}

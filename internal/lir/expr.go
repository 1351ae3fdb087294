package lir

import "github.com/sail-lang/sailc/internal/pstr"

// Expression is a LIR expression.
type Expression interface {
	lirExpression()
}

// Int32Literal is a plain unboxed 32-bit int constant.
type Int32Literal struct{ Value int32 }

// Int31Literal is a tagged small-int constant; its emitted form is
// `value*2 + 1` so the low bit can discriminate it from a pointer.
type Int31Literal struct{ Value int32 }

// StringName references a global string by table index at emission time.
type StringName struct{ Name pstr.PStr }

// Variable references a local binding of Type.
type Variable struct {
	Name pstr.PStr
	Type Type
}

// FnName references a statically known function as a first-class value
// (used only at the two call sites a closure record's function pointer
// slot participates in: construction and indirect invocation).
type FnName struct {
	Name FunctionName
	Type Type
}

func (Int32Literal) lirExpression() {}
func (Int31Literal) lirExpression() {}
func (StringName) lirExpression()   {}
func (Variable) lirExpression()     {}
func (FnName) lirExpression()       {}

// Zero and One are the canonical Int32 constants.
var (
	Zero = Int32Literal{Value: 0}
	One  = Int32Literal{Value: 1}
)

// RefCountable reports whether e is a runtime value that participates in
// reference counting: strings and Id-typed variables are, int literals
// (of either width) and function names are not.
func RefCountable(e Expression) bool {
	switch v := e.(type) {
	case Int32Literal, Int31Literal, FnName:
		return false
	case StringName:
		return true
	case Variable:
		return v.Type.Kind() == TypeID
	default:
		return false
	}
}

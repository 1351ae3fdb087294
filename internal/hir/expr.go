package hir

import (
	"github.com/sail-lang/sailc/internal/pstr"
	"github.com/sail-lang/sailc/internal/symtab"
)

// Expression is a HIR expression: a literal, a reference to a global name,
// or a local variable. HIR keeps expressions limited to these leaf forms;
// all composition happens through Statement trees.
//
// Variants are ordered IntLiteral < StringName/FunctionName < Variable so
// that commutative binary normalization has a
// deterministic total order to sort on; see orderRank.
type Expression interface {
	hirExpression()
	orderRank() int
}

// IntLiteral is an integer or boolean constant. IsInt distinguishes `3` from
// `true`/`false` at the surface, even though both lower to an i32 payload.
type IntLiteral struct {
	Value int32
	IsInt bool
}

// StringName references an interned string constant by PStr, used both for
// string literals that have been hoisted to globals and for enum tag names.
type StringName struct {
	Name pstr.PStr
}

// Variable references a local binding.
type Variable struct {
	Name pstr.PStr
	Type Type
}

// FunctionName references a (possibly generic) top-level function as a
// first-class value; closure erasure (C4.3) rewrites every such value into
// a ClosureInit.
type FunctionName struct {
	TypeName     symtab.TypeNameId
	Name         pstr.PStr
	Type         FunctionType
	TypeArgument []Type
}

func (IntLiteral) hirExpression()  {}
func (StringName) hirExpression()  {}
func (Variable) hirExpression()    {}
func (FunctionName) hirExpression() {}

func (IntLiteral) orderRank() int  { return 0 }
func (StringName) orderRank() int  { return 1 }
func (FunctionName) orderRank() int { return 1 }
func (Variable) orderRank() int    { return 2 }

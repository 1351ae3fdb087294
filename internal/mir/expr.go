package mir

import "github.com/sail-lang/sailc/internal/pstr"

// Expression is a MIR expression. Closures are erased, so (unlike HIR)
// there is no FunctionName expression variant — a function value only ever
// appears as a Callee.
type Expression interface {
	mirExpression()
	orderRank() int
}

// IntLiteral is a constant i32.
type IntLiteral struct{ Value int32 }

// StringName references an interned string constant.
type StringName struct{ Name pstr.PStr }

// Variable references a local binding of Type.
type Variable struct {
	Name pstr.PStr
	Type Type
}

func (IntLiteral) mirExpression() {}
func (StringName) mirExpression() {}
func (Variable) mirExpression()   {}

func (IntLiteral) orderRank() int { return 0 }
func (StringName) orderRank() int { return 1 }
func (Variable) orderRank() int   { return 2 }

// Zero and One are the canonical int constants used throughout the
// optimizer (algebraic identities, loop rewriting).
var (
	Zero = IntLiteral{Value: 0}
	One  = IntLiteral{Value: 1}
)

// VarName is a convenience constructor for a Variable expression.
func VarName(name pstr.PStr, t Type) Expression { return Variable{Name: name, Type: t} }

// Callee is either a statically known function (direct call) or a variable
// holding a closure record (indirect call, lowered further in mirtolir).
type Callee interface{ mirCallee() }

// FunctionNameCallee calls fn directly.
type FunctionNameCallee struct {
	Name FunctionName
	Type FunctionType
}

// VariableCallee calls through the closure value bound to Name.
type VariableCallee struct {
	Name Variable
}

func (FunctionNameCallee) mirCallee() {}
func (VariableCallee) mirCallee()     {}

// CompareExpressions implements the total order used for
// commutative-operator canonicalization: ordered first by variant rank
// (literal < string/closure-ish < variable), then by value within a
// variant. Two Variables compare by the *string they intern to* (via
// heap), not by raw PStr identity, so that canonicalization is
// deterministic given the same source text regardless of interning order
// across runs.
func CompareExpressions(heap interface{ Str(pstr.PStr) string }, a, b Expression) int {
	if a.orderRank() != b.orderRank() {
		if a.orderRank() < b.orderRank() {
			return -1
		}

		return 1
	}

	switch av := a.(type) {
	case IntLiteral:
		bv := b.(IntLiteral)
		switch {
		case av.Value < bv.Value:
			return -1
		case av.Value > bv.Value:
			return 1
		default:
			return 0
		}
	case StringName:
		bv := b.(StringName)
		as, bs := heap.Str(av.Name), heap.Str(bv.Name)

		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	case Variable:
		bv := b.(Variable)
		as, bs := heap.Str(av.Name), heap.Str(bv.Name)

		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}

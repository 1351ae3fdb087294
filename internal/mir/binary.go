package mir

import "github.com/sail-lang/sailc/internal/pstr"

// StrHeap is the minimal interface BinaryFlexibleUnwrapped needs to order
// Variable expressions by interned content.
type StrHeap interface {
	Str(pstr.PStr) string
}

// FlexibleOrderBinary canonicalizes (op, e1, e2) so that two semantically
// equivalent constructions (e.g. `a + b` and `b + a`) produce identical
// trees. DIV, MOD, SHL, SHR, and MINUS are never
// reordered, since they are not commutative even after normalization.
func FlexibleOrderBinary(heap StrHeap, op Operator, e1, e2 Expression) (Operator, Expression, Expression) {
	b := BinaryUnwrapped(pstr.Invalid, op, e1, e2)
	op, e1, e2 = b.Op, b.E1, b.E2

	switch op {
	case OpDiv, OpMod, OpMinus, OpShl, OpShr:
		return op, e1, e2
	case OpMul, OpPlus, OpLand, OpLor, OpXor, OpEq, OpNe:
		if CompareExpressions(heap, e1, e2) > 0 {
			return op, e1, e2
		}

		return op, e2, e1
	case OpLt:
		if CompareExpressions(heap, e1, e2) < 0 {
			return OpGt, e2, e1
		}

		return op, e1, e2
	case OpLe:
		if CompareExpressions(heap, e1, e2) < 0 {
			return OpGe, e2, e1
		}

		return op, e1, e2
	case OpGt:
		if CompareExpressions(heap, e1, e2) < 0 {
			return OpLt, e2, e1
		}

		return op, e1, e2
	case OpGe:
		if CompareExpressions(heap, e1, e2) < 0 {
			return OpLe, e2, e1
		}

		return op, e1, e2
	default:
		return op, e1, e2
	}
}

// BinaryFlexibleUnwrapped builds a canonicalized Binary node.
func BinaryFlexibleUnwrapped(heap StrHeap, name pstr.PStr, op Operator, e1, e2 Expression) Binary {
	op, e1, e2 = FlexibleOrderBinary(heap, op, e1, e2)
	return BinaryUnwrapped(name, op, e1, e2)
}

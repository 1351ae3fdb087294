package optimize

import "github.com/sail-lang/sailc/internal/mir"

// runAlgebraicIdentities implements pass 2: syntactic
// simplifications that hold regardless of whether either operand is a
// compile-time constant, unlike CCP's purely numeric folding.
func runAlgebraicIdentities(ctx *context, src *mir.Sources) (*mir.Sources, bool) {
	out := src.Clone()
	changed := false

	for i := range out.Functions {
		fn := &out.Functions[i]
		body, bodyChanged := algebraicStatements(fn.Body, linearEnv{})
		fn.Body = body
		changed = changed || bodyChanged
	}

	if !changed {
		return src, false
	}

	return out, true
}

// linearForm records that some bound name equals `Base Op K` for a
// commutative, associative Op (PLUS or MUL), so a later `name Op k2` can
// collapse straight to `Base Op (K op k2)` without round-tripping through
// the intermediate binding.
type linearForm struct {
	base mir.Expression
	k    int32
	op   mir.Operator
}

type linearEnv map[uint32]linearForm

func algebraicStatements(stmts []mir.Statement, lenv linearEnv) ([]mir.Statement, bool) {
	out := make([]mir.Statement, 0, len(stmts))
	changed := false

	for _, s := range stmts {
		ns, c, drop := algebraicStatement(s, lenv)
		changed = changed || c

		if !drop {
			out = append(out, ns)
		}
	}

	return out, changed
}

func algebraicStatement(s mir.Statement, lenv linearEnv) (mir.Statement, bool, bool) {
	switch v := s.(type) {
	case mir.Binary:
		rewritten, changed := algebraicBinary(v, lenv)
		return rewritten, changed, false
	case mir.IfElse:
		s1, c1 := algebraicStatements(v.S1, linearEnv{})
		s2, c2 := algebraicStatements(v.S2, linearEnv{})
		return mir.IfElse{Condition: v.Condition, S1: s1, S2: s2, FinalAssignments: v.FinalAssignments}, c1 || c2, false
	case mir.SingleIf:
		body, c := algebraicStatements(v.Statements, linearEnv{})
		return mir.SingleIf{Condition: v.Condition, Invert: v.Invert, Statements: body}, c, false
	case mir.While:
		body, c := algebraicStatements(v.Statements, linearEnv{})
		return mir.While{LoopVariables: v.LoopVariables, Statements: body, BreakCollector: v.BreakCollector}, c, false
	default:
		return s, false, false
	}
}

func isIntLiteral(e mir.Expression, want int32) bool {
	lit, ok := e.(mir.IntLiteral)
	return ok && lit.Value == want
}

func sameVariable(a, b mir.Expression) bool {
	va, ok1 := a.(mir.Variable)
	vb, ok2 := b.(mir.Variable)

	return ok1 && ok2 && va.Name == vb.Name
}

// exprTypeHint recovers a MIR type for an expression being passed through
// a Cast that exists purely to preserve the original statement's bound
// name under an identity rewrite.
func exprTypeHint(e mir.Expression) mir.Type {
	if v, ok := e.(mir.Variable); ok {
		return v.Type
	}

	return mir.Int
}

// algebraicBinary applies the identity list from 
// x+0, x*1, x*0, x-x, x/x (MIR operands are always side-effect-free —
// variables and literals), x%x, and nested-constant collapsing for PLUS
// and MUL chains via lenv.
func algebraicBinary(b mir.Binary, lenv linearEnv) (mir.Statement, bool) {
	switch b.Op {
	case mir.OpPlus:
		if isIntLiteral(b.E2, 0) {
			return mir.Cast{Name: b.Name, Type: exprTypeHint(b.E1), Expression: b.E1}, true
		}

		if lit, ok := b.E2.(mir.IntLiteral); ok {
			if vr, ok := b.E1.(mir.Variable); ok {
				if lf, ok := lenv[uint32(vr.Name)]; ok && lf.op == mir.OpPlus {
					merged := mir.BinaryUnwrapped(b.Name, mir.OpPlus, lf.base, mir.IntLiteral{Value: lf.k + lit.Value})
					lenv[uint32(b.Name)] = linearForm{base: lf.base, k: lf.k + lit.Value, op: mir.OpPlus}

					return merged, true
				}
			}

			lenv[uint32(b.Name)] = linearForm{base: b.E1, k: lit.Value, op: mir.OpPlus}
		}
	case mir.OpMul:
		if isIntLiteral(b.E2, 1) {
			return mir.Cast{Name: b.Name, Type: exprTypeHint(b.E1), Expression: b.E1}, true
		}

		if isIntLiteral(b.E2, 0) {
			return mir.Binary{Name: b.Name, Op: mir.OpMul, E1: mir.IntLiteral{Value: 0}, E2: mir.IntLiteral{Value: 0}}, true
		}

		if lit, ok := b.E2.(mir.IntLiteral); ok {
			if vr, ok := b.E1.(mir.Variable); ok {
				if lf, ok := lenv[uint32(vr.Name)]; ok && lf.op == mir.OpMul {
					merged := mir.BinaryUnwrapped(b.Name, mir.OpMul, lf.base, mir.IntLiteral{Value: lf.k * lit.Value})
					lenv[uint32(b.Name)] = linearForm{base: lf.base, k: lf.k * lit.Value, op: mir.OpMul}

					return merged, true
				}
			}

			lenv[uint32(b.Name)] = linearForm{base: b.E1, k: lit.Value, op: mir.OpMul}
		}
	case mir.OpMinus:
		if sameVariable(b.E1, b.E2) {
			return mir.Binary{Name: b.Name, Op: mir.OpMinus, E1: mir.IntLiteral{Value: 0}, E2: mir.IntLiteral{Value: 0}}, true
		}
	case mir.OpDiv:
		if sameVariable(b.E1, b.E2) {
			return mir.Binary{Name: b.Name, Op: mir.OpDiv, E1: mir.IntLiteral{Value: 1}, E2: mir.IntLiteral{Value: 1}}, true
		}
	case mir.OpMod:
		if sameVariable(b.E1, b.E2) {
			return mir.Binary{Name: b.Name, Op: mir.OpMod, E1: mir.IntLiteral{Value: 0}, E2: mir.IntLiteral{Value: 1}}, true
		}
	}

	return b, false
}

package optimize

import "github.com/sail-lang/sailc/internal/mir"

// operandAndLiteral splits a commutative binary's two operands into
// (variable name, literal), matching whichever operand is the Variable,
// regardless of which side FlexibleOrderBinary placed it on.
func operandAndLiteral(e1, e2 mir.Expression) (uint32, int32, bool) {
	if v, ok := e1.(mir.Variable); ok {
		if lit, ok := e2.(mir.IntLiteral); ok {
			return uint32(v.Name), lit.Value, true
		}
	}

	if v, ok := e2.(mir.Variable); ok {
		if lit, ok := e1.(mir.IntLiteral); ok {
			return uint32(v.Name), lit.Value, true
		}
	}

	return 0, 0, false
}

// binaryDefs indexes every top-level Binary statement in stmts by the name
// it binds, for recurrence lookups. Nested If/While bodies are not
// indexed: a loop variable's recurrence is expected to live directly in the
// loop's own body.
func binaryDefs(stmts []mir.Statement) map[uint32]mir.Binary {
	out := map[uint32]mir.Binary{}

	for _, s := range stmts {
		if b, ok := s.(mir.Binary); ok {
			out[uint32(b.Name)] = b
		}
	}

	return out
}

// basicInductionVariables finds every loop variable of w whose per-iteration
// recurrence is `self + k` for a literal step k. LoopValue is always a reference to a name
// bound earlier in the loop body, so the recurrence is recovered by finding
// that name's defining Binary statement.
func basicInductionVariables(w mir.While) map[uint32]int32 {
	defs := binaryDefs(w.Statements)
	out := map[uint32]int32{}

	for _, lv := range w.LoopVariables {
		ref, ok := lv.LoopValue.(mir.Variable)
		if !ok {
			continue
		}

		def, ok := defs[uint32(ref.Name)]
		if !ok || def.Op != mir.OpPlus {
			continue
		}

		name, lit, ok := operandAndLiteral(def.E1, def.E2)
		if !ok || name != uint32(lv.Name) {
			continue
		}

		out[uint32(lv.Name)] = lit
	}

	return out
}

// derivedVariable describes a temp recomputed every iteration as an affine
// image `of*mult + offset` of a basic induction variable.
type derivedVariable struct {
	name   uint32
	of     uint32
	mult   int32
	offset int32
}

// derivedInductionVariables finds temps bound in w's body by a Binary whose
// operands are a known basic induction variable and a literal multiplier,
// optionally chained through one additive literal offset.
func derivedInductionVariables(w mir.While, basics map[uint32]int32) []derivedVariable {
	var out []derivedVariable

	affine := map[uint32]derivedVariable{}

	for _, s := range w.Statements {
		b, ok := s.(mir.Binary)
		if !ok {
			continue
		}

		switch b.Op {
		case mir.OpMul:
			of, mult, ok := operandAndLiteral(b.E1, b.E2)
			if !ok {
				continue
			}

			if _, isBasic := basics[of]; !isBasic {
				continue
			}

			d := derivedVariable{name: uint32(b.Name), of: of, mult: mult}
			affine[uint32(b.Name)] = d
			out = append(out, d)

		case mir.OpPlus:
			base, lit, ok := operandAndLiteral(b.E1, b.E2)
			if !ok {
				continue
			}

			d, isAffine := affine[base]
			if !isAffine {
				continue
			}

			nd := derivedVariable{name: uint32(b.Name), of: d.of, mult: d.mult, offset: d.offset + lit}
			affine[uint32(b.Name)] = nd
			out = append(out, nd)
		}
	}

	return out
}

package optimize

import "github.com/sail-lang/sailc/internal/mir"

// runLoopInvariantCodeMotion implements pass 5: a While-body
// statement whose free variables are all bound by earlier statements of
// the function outside the loop and that performs no side effect is
// hoisted above the While. Function parameters and loop variables never
// count as bound outside, so a statement reading one is not hoisted.
func runLoopInvariantCodeMotion(ctx *context, src *mir.Sources) (*mir.Sources, bool) {
	out := src.Clone()
	changed := false

	for i := range out.Functions {
		fn := &out.Functions[i]
		body, c := licmStatements(fn.Body, map[uint32]bool{})
		fn.Body = body
		changed = changed || c
	}

	if !changed {
		return src, false
	}

	return out, true
}

func licmStatements(stmts []mir.Statement, outerBound map[uint32]bool) ([]mir.Statement, bool) {
	out := make([]mir.Statement, 0, len(stmts))
	changed := false
	bound := cloneBoundSet(outerBound)

	for _, s := range stmts {
		switch v := s.(type) {
		case mir.While:
			hoisted, newBody, c := hoistInvariants(v, bound)
			out = append(out, hoisted...)
			out = append(out, mir.While{LoopVariables: v.LoopVariables, Statements: newBody, BreakCollector: v.BreakCollector})
			changed = changed || c

			for _, lv := range v.LoopVariables {
				bound[uint32(lv.Name)] = true
			}

			if v.BreakCollector != nil {
				bound[uint32(v.BreakCollector.Name)] = true
			}

		case mir.IfElse:
			s1, c1 := licmStatements(v.S1, bound)
			s2, c2 := licmStatements(v.S2, bound)
			out = append(out, mir.IfElse{Condition: v.Condition, S1: s1, S2: s2, FinalAssignments: v.FinalAssignments})
			changed = changed || c1 || c2

			for _, fa := range v.FinalAssignments {
				bound[uint32(fa.Name)] = true
			}

		case mir.SingleIf:
			body, c := licmStatements(v.Statements, bound)
			out = append(out, mir.SingleIf{Condition: v.Condition, Invert: v.Invert, Statements: body})
			changed = changed || c

		default:
			out = append(out, s)
			markBound(s, bound)
		}
	}

	return out, changed
}

func cloneBoundSet(b map[uint32]bool) map[uint32]bool {
	out := make(map[uint32]bool, len(b))
	for k := range b {
		out[k] = true
	}

	return out
}

func markBound(s mir.Statement, bound map[uint32]bool) {
	switch v := s.(type) {
	case mir.Binary:
		bound[uint32(v.Name)] = true
	case mir.IsPointer:
		bound[uint32(v.Name)] = true
	case mir.Not:
		bound[uint32(v.Name)] = true
	case mir.IndexedAccess:
		bound[uint32(v.Name)] = true
	case mir.Cast:
		bound[uint32(v.Name)] = true
	case mir.LateInitDeclaration:
		bound[uint32(v.Name)] = true
	case mir.StructInit:
		bound[uint32(v.Name)] = true
	case mir.ClosureInit:
		bound[uint32(v.Name)] = true
	case mir.Call:
		if v.ReturnCollector != nil {
			bound[uint32(*v.ReturnCollector)] = true
		}
	}
}

// hoistInvariants splits w's top-level body statements into a hoistable
// prefix and the statements that must stay. A statement is hoistable only
// if every statement before it in the body that it could depend on has
// also been hoisted, so hoisting stops at the first non-hoistable
// statement to preserve ordering.
func hoistInvariants(w mir.While, outerBound map[uint32]bool) ([]mir.Statement, []mir.Statement, bool) {
	loopDefined := cloneBoundSet(outerBound)

	for _, lv := range w.LoopVariables {
		loopDefined[uint32(lv.Name)] = true
	}

	var hoisted []mir.Statement

	remaining := w.Statements
	changed := false

	for len(remaining) > 0 {
		s := remaining[0]

		if isHoistable(s, outerBound) {
			hoisted = append(hoisted, s)
			markBound(s, outerBound)
			remaining = remaining[1:]
			changed = true

			continue
		}

		break
	}

	return hoisted, remaining, changed
}

func isHoistable(s mir.Statement, invariantNames map[uint32]bool) bool {
	switch v := s.(type) {
	case mir.Binary:
		return freeOf(v.E1, invariantNames) && freeOf(v.E2, invariantNames)
	case mir.Cast:
		return freeOf(v.Expression, invariantNames)
	case mir.IsPointer:
		return freeOf(v.Operand, invariantNames)
	case mir.Not:
		return freeOf(v.Operand, invariantNames)
	default:
		return false
	}
}

func freeOf(e mir.Expression, invariantNames map[uint32]bool) bool {
	v, ok := e.(mir.Variable)
	if !ok {
		return true
	}

	return invariantNames[uint32(v.Name)]
}

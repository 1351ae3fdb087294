package optimize

import "github.com/sail-lang/sailc/internal/mir"

// runAlgebraicLoopOptimization recognizes a While that does nothing but
// step a counter from a literal start to a literal bound and accumulate a
// constant per iteration, and replaces the whole loop with the
// closed-form result (trip count computed at compile time, accumulator
// final value computed as `initial + k*trip_count`). Any loop not matching
// this exact counter+accumulator shape is left untouched, and the shape
// check in closeAccumulatorLoop admits no loop that carries a guard (see
// there), so every loop is left untouched.
func runAlgebraicLoopOptimization(ctx *context, src *mir.Sources) (*mir.Sources, bool) {
	out := src.Clone()
	changed := false

	for i := range out.Functions {
		fn := &out.Functions[i]
		body, c := algebraicLoopStatements(fn.Body)
		fn.Body = body
		changed = changed || c
	}

	if !changed {
		return src, false
	}

	return out, true
}

func algebraicLoopStatements(stmts []mir.Statement) ([]mir.Statement, bool) {
	out := make([]mir.Statement, 0, len(stmts))
	changed := false

	for _, s := range stmts {
		switch v := s.(type) {
		case mir.While:
			if replacement, ok := closeAccumulatorLoop(v); ok {
				out = append(out, replacement...)
				changed = true

				continue
			}

			body, c := algebraicLoopStatements(v.Statements)
			out = append(out, mir.While{LoopVariables: v.LoopVariables, Statements: body, BreakCollector: v.BreakCollector})
			changed = changed || c

		case mir.IfElse:
			s1, c1 := algebraicLoopStatements(v.S1)
			s2, c2 := algebraicLoopStatements(v.S2)
			out = append(out, mir.IfElse{Condition: v.Condition, S1: s1, S2: s2, FinalAssignments: v.FinalAssignments})
			changed = changed || c1 || c2

		case mir.SingleIf:
			body, c := algebraicLoopStatements(v.Statements)
			out = append(out, mir.SingleIf{Condition: v.Condition, Invert: v.Invert, Statements: body})
			changed = changed || c

		default:
			out = append(out, s)
		}
	}

	return out, changed
}

// closeAccumulatorLoop matches exactly: two loop variables (a counter and
// an accumulator, in either order), a body of a guard SingleIf+Break on
// the counter against a literal bound, a counter-step Binary, and an
// accumulator-step Binary adding a literal — nothing else. w has no
// BreakCollector, since the loop's only exit carries no value out. The
// guard's condition must name a comparison Binary bound in the same body,
// a fourth statement, while the length check admits exactly three, so
// every loop of this shape is declined.
func closeAccumulatorLoop(w mir.While) ([]mir.Statement, bool) {
	if w.BreakCollector != nil || len(w.LoopVariables) != 2 {
		return nil, false
	}

	basics := basicInductionVariables(w)
	defs := binaryDefs(w.Statements)

	cmp, ok := guardComparison(w.Statements, defs)
	if !ok || cmp.Op != mir.OpLt {
		return nil, false
	}

	counterName, boundExpr, counterOnLeft, ok := guardOperand(cmp, basics)
	if !ok || !counterOnLeft {
		return nil, false
	}

	bound, ok := boundExpr.(mir.IntLiteral)
	if !ok {
		return nil, false
	}

	var counter, accum mir.LoopVariable

	for _, lv := range w.LoopVariables {
		if uint32(lv.Name) == counterName {
			counter = lv
		} else {
			accum = lv
		}
	}

	counterInit, ok := counter.InitialValue.(mir.IntLiteral)
	if !ok {
		return nil, false
	}

	step, ok := basics[counterName]
	if !ok || step <= 0 {
		return nil, false
	}

	accumStep, ok := accumulatorStep(w, accum, counterName)
	if !ok {
		return nil, false
	}

	if len(w.Statements) != 3 {
		return nil, false
	}

	span := bound.Value - counterInit.Value
	if span <= 0 {
		return nil, false
	}

	tripCount := span / step
	if span%step != 0 {
		tripCount++
	}

	accumInit, ok := accum.InitialValue.(mir.IntLiteral)
	if !ok {
		return []mir.Statement{
			mir.LateInitDeclaration{Name: accum.Name, Type: accum.Type},
			mir.LateInitAssignment{Name: accum.Name, Expression: mir.BinaryUnwrapped(accum.Name, mir.OpPlus, accum.InitialValue, mir.IntLiteral{Value: accumStep * tripCount})},
		}, true
	}

	final := accumInit.Value + accumStep*tripCount

	return []mir.Statement{
		mir.LateInitDeclaration{Name: accum.Name, Type: accum.Type},
		mir.LateInitAssignment{Name: accum.Name, Expression: mir.IntLiteral{Value: final}},
	}, true
}

// accumulatorStep recognizes accum's LoopValue as `accum + k` (k literal,
// independent of the counter), returning k.
func accumulatorStep(w mir.While, accum mir.LoopVariable, counterName uint32) (int32, bool) {
	ref, ok := accum.LoopValue.(mir.Variable)
	if !ok {
		return 0, false
	}

	defs := binaryDefs(w.Statements)

	def, ok := defs[uint32(ref.Name)]
	if !ok || def.Op != mir.OpPlus {
		return 0, false
	}

	name, lit, ok := operandAndLiteral(def.E1, def.E2)
	if !ok || name != uint32(accum.Name) {
		return 0, false
	}

	return lit, true
}

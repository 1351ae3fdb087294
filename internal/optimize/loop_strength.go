package optimize

import (
	"github.com/sail-lang/sailc/internal/mir"
	"github.com/sail-lang/sailc/internal/pstr"
)

// runLoopStrengthReduction replaces a per-iteration multiply recomputing a
// derived induction variable `d = i*m` with an accumulator that steps by
// `m*step(i)` each iteration, turning a MUL into a PLUS. Only the common
// case of a zero-offset derived variable whose basic variable starts from
// a literal is rewritten; anything else is left for algebraic-loop-
// optimization or a future pass to handle.
func runLoopStrengthReduction(ctx *context, src *mir.Sources) (*mir.Sources, bool) {
	out := src.Clone()
	changed := false

	for i := range out.Functions {
		fn := &out.Functions[i]
		body, c := reduceStatements(ctx, fn.Body)
		fn.Body = body
		changed = changed || c
	}

	if !changed {
		return src, false
	}

	return out, true
}

func reduceStatements(ctx *context, stmts []mir.Statement) ([]mir.Statement, bool) {
	out := make([]mir.Statement, len(stmts))
	changed := false

	for i, s := range stmts {
		switch v := s.(type) {
		case mir.While:
			rewritten, c := reduceWhile(ctx, v)
			out[i] = rewritten
			changed = changed || c
		case mir.IfElse:
			s1, c1 := reduceStatements(ctx, v.S1)
			s2, c2 := reduceStatements(ctx, v.S2)
			out[i] = mir.IfElse{Condition: v.Condition, S1: s1, S2: s2, FinalAssignments: v.FinalAssignments}
			changed = changed || c1 || c2
		case mir.SingleIf:
			body, c := reduceStatements(ctx, v.Statements)
			out[i] = mir.SingleIf{Condition: v.Condition, Invert: v.Invert, Statements: body}
			changed = changed || c
		default:
			out[i] = s
		}
	}

	return out, changed
}

func reduceWhile(ctx *context, w mir.While) (mir.Statement, bool) {
	basics := basicInductionVariables(w)
	basicInit := map[uint32]int32{}

	for _, lv := range w.LoopVariables {
		if _, ok := basics[uint32(lv.Name)]; !ok {
			continue
		}

		if lit, ok := lv.InitialValue.(mir.IntLiteral); ok {
			basicInit[uint32(lv.Name)] = lit.Value
		}
	}

	deriveds := derivedInductionVariables(w, basics)

	replace := map[uint32]pstr.PStr{}
	var newLoopVars []mir.LoopVariable
	var newSteps []mir.Statement
	changed := false

	for _, d := range deriveds {
		if d.offset != 0 {
			continue
		}

		initVal, ok := basicInit[d.of]
		if !ok {
			continue
		}

		step := basics[d.of]
		accumName := ctx.heap.AllocTemp()
		nextName := ctx.heap.AllocTemp()

		newLoopVars = append(newLoopVars, mir.LoopVariable{
			Name:         accumName,
			Type:         mir.Int,
			InitialValue: mir.IntLiteral{Value: initVal * d.mult},
			LoopValue:    mir.Variable{Name: nextName, Type: mir.Int},
		})

		newSteps = append(newSteps, mir.Binary{
			Name: nextName, Op: mir.OpPlus,
			E1: mir.Variable{Name: accumName, Type: mir.Int},
			E2: mir.IntLiteral{Value: step * d.mult},
		})

		replace[d.name] = accumName
		changed = true
	}

	if !changed {
		body, c := reduceStatements(ctx, w.Statements)
		return mir.While{LoopVariables: w.LoopVariables, Statements: body, BreakCollector: w.BreakCollector}, c
	}

	body := rewriteReferences(w.Statements, replace)
	body = append(append([]mir.Statement{}, body...), newSteps...)
	body, _ = reduceStatements(ctx, body)

	return mir.While{
		LoopVariables:  append(append([]mir.LoopVariable{}, w.LoopVariables...), newLoopVars...),
		Statements:     body,
		BreakCollector: w.BreakCollector,
	}, true
}

// rewriteReferences substitutes every Variable reference to a replaced
// derived-variable name with a reference to its new accumulator, and drops
// the now-redundant Binary statement that used to define it.
func rewriteReferences(stmts []mir.Statement, replace map[uint32]pstr.PStr) []mir.Statement {
	out := make([]mir.Statement, 0, len(stmts))

	for _, s := range stmts {
		if b, ok := s.(mir.Binary); ok {
			if _, dropped := replace[uint32(b.Name)]; dropped {
				continue
			}
		}

		out = append(out, substituteStatement(s, replace))
	}

	return out
}

func substituteStatement(s mir.Statement, replace map[uint32]pstr.PStr) mir.Statement {
	sub := func(e mir.Expression) mir.Expression { return substituteExpression(e, replace) }

	switch v := s.(type) {
	case mir.Binary:
		return mir.Binary{Name: v.Name, Op: v.Op, E1: sub(v.E1), E2: sub(v.E2)}
	case mir.IsPointer:
		return mir.IsPointer{Name: v.Name, Operand: sub(v.Operand)}
	case mir.Not:
		return mir.Not{Name: v.Name, Operand: sub(v.Operand)}
	case mir.IndexedAccess:
		return mir.IndexedAccess{Name: v.Name, Type: v.Type, Pointer: sub(v.Pointer), Index: v.Index}
	case mir.Call:
		args := make([]mir.Expression, len(v.Arguments))
		for i, a := range v.Arguments {
			args[i] = sub(a)
		}

		return mir.Call{Callee: v.Callee, Arguments: args, ReturnType: v.ReturnType, ReturnCollector: v.ReturnCollector}
	case mir.Cast:
		return mir.Cast{Name: v.Name, Type: v.Type, Expression: sub(v.Expression)}
	case mir.LateInitAssignment:
		return mir.LateInitAssignment{Name: v.Name, Expression: sub(v.Expression)}
	case mir.StructInit:
		elems := make([]mir.Expression, len(v.Elements))
		for i, e := range v.Elements {
			elems[i] = sub(e)
		}

		return mir.StructInit{Name: v.Name, TypeName: v.TypeName, Elements: elems}
	default:
		return s
	}
}

func substituteExpression(e mir.Expression, replace map[uint32]pstr.PStr) mir.Expression {
	v, ok := e.(mir.Variable)
	if !ok {
		return e
	}

	if n, ok := replace[uint32(v.Name)]; ok {
		return mir.Variable{Name: n, Type: v.Type}
	}

	return e
}

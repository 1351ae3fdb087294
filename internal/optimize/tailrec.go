package optimize

import (
	"github.com/sail-lang/sailc/internal/mir"
	"github.com/sail-lang/sailc/internal/pstr"
)

// runTailRecursion rewrites a function of the shape
//
//	if cond { ...; return baseValue } else { ...; return self(args...) }
//
// (the top-level IfElse a structured self-recursive tail sits in, as the
// body's last statement, branches in either order) into a While loop whose
// body runs the statements before that IfElse and then the IfElse itself
// on every iteration: each parameter gains an
// outer alias so the loop's LoopVariables can read their initial values,
// the recursive branch's trailing self-call is stripped (its arguments
// become the LoopVariables' next-iteration values), and the base branch
// ends in a Break carrying the final result.
func runTailRecursion(ctx *context, src *mir.Sources) (*mir.Sources, bool) {
	out := src.Clone()
	changed := false

	for i := range out.Functions {
		fn := &out.Functions[i]

		rewritten, ok := rewriteTailRecursive(ctx, *fn)
		if !ok {
			continue
		}

		*fn = rewritten
		changed = true
	}

	if !changed {
		return src, false
	}

	return out, true
}

func rewriteTailRecursive(ctx *context, fn mir.Function) (mir.Function, bool) {
	if len(fn.Body) == 0 {
		return fn, false
	}

	retVar, ok := fn.ReturnValue.(mir.Variable)
	if !ok {
		return fn, false
	}

	ifElse, ok := fn.Body[len(fn.Body)-1].(mir.IfElse)
	if !ok || len(ifElse.FinalAssignments) != 1 || ifElse.FinalAssignments[0].Name != retVar.Name {
		return fn, false
	}

	selfKey := functionKey(fn.Name)
	fa := ifElse.FinalAssignments[0]

	recBranch, callArgs, ok := matchTailCall(ifElse.S1, fa.ValueIfTrue, selfKey, len(fn.Parameters))
	recOnTrue := ok
	baseBranchStmts, baseValue := ifElse.S2, fa.ValueIfFalse

	if !ok {
		recBranch, callArgs, ok = matchTailCall(ifElse.S2, fa.ValueIfFalse, selfKey, len(fn.Parameters))
		if !ok {
			return fn, false
		}

		baseBranchStmts, baseValue = ifElse.S1, fa.ValueIfTrue
	}

	aliasOuter := make([]pstr.PStr, len(fn.Parameters))
	for i := range fn.Parameters {
		aliasOuter[i] = ctx.heap.AllocTemp()
	}

	loopVars := make([]mir.LoopVariable, len(fn.Parameters))
	for i, p := range fn.Parameters {
		loopVars[i] = mir.LoopVariable{
			Name:         p,
			Type:         fn.Type.ArgumentTypes[i],
			InitialValue: mir.Variable{Name: aliasOuter[i], Type: fn.Type.ArgumentTypes[i]},
			LoopValue:    callArgs[i],
		}
	}

	breakCollector := &mir.BreakCollectorVar{Name: ctx.heap.AllocTemp(), Type: fn.Type.ReturnType}
	baseBranch := append(append([]mir.Statement{}, baseBranchStmts...), mir.Break{Value: baseValue})

	var guardS1, guardS2 []mir.Statement
	if recOnTrue {
		guardS1, guardS2 = recBranch, baseBranch
	} else {
		guardS1, guardS2 = baseBranch, recBranch
	}

	loop := mir.While{
		LoopVariables:  loopVars,
		Statements:     append(append([]mir.Statement{}, fn.Body[:len(fn.Body)-1]...), mir.IfElse{Condition: ifElse.Condition, S1: guardS1, S2: guardS2}),
		BreakCollector: breakCollector,
	}

	body := append(prelude(fn, aliasOuter), loop)

	return mir.Function{
		Name:        fn.Name,
		Parameters:  fn.Parameters,
		Type:        fn.Type,
		Body:        body,
		ReturnValue: mir.Variable{Name: breakCollector.Name, Type: fn.Type.ReturnType},
	}, true
}

func prelude(fn mir.Function, aliasOuter []pstr.PStr) []mir.Statement {
	out := make([]mir.Statement, 0, len(fn.Parameters)*2)

	for i, p := range fn.Parameters {
		out = append(out,
			mir.LateInitDeclaration{Name: aliasOuter[i], Type: fn.Type.ArgumentTypes[i]},
			mir.LateInitAssignment{Name: aliasOuter[i], Expression: mir.Variable{Name: p, Type: fn.Type.ArgumentTypes[i]}},
		)
	}

	return out
}

// matchTailCall reports whether branch ends with a self-call (selfKey) of
// arity paramCount whose ReturnCollector is the variable finalValue
// references, returning the branch with that trailing call stripped and
// the call's arguments (the next iteration's parameter values).
func matchTailCall(branch []mir.Statement, finalValue mir.Expression, selfKey uint32, paramCount int) ([]mir.Statement, []mir.Expression, bool) {
	if len(branch) == 0 {
		return nil, nil, false
	}

	call, ok := branch[len(branch)-1].(mir.Call)
	if !ok || call.ReturnCollector == nil {
		return nil, nil, false
	}

	ref, ok := finalValue.(mir.Variable)
	if !ok || ref.Name != *call.ReturnCollector {
		return nil, nil, false
	}

	if !isSelfCall(call, selfKey) || len(call.Arguments) != paramCount {
		return nil, nil, false
	}

	return branch[:len(branch)-1], call.Arguments, true
}

func isSelfCall(call mir.Call, selfKey uint32) bool {
	fnCallee, ok := call.Callee.(mir.FunctionNameCallee)
	return ok && functionKey(fnCallee.Name) == selfKey
}

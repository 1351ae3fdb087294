package optimize

import (
	"github.com/sail-lang/sailc/internal/mir"
	"github.com/sail-lang/sailc/internal/pstr"
)

// runConstantParameterElimination implements pass 11: a parameter that
// every non-self-recursive call site passes the same literal for is
// deleted from the function's signature, substituted intra-body, and
// dropped from every call site (self-recursive ones included).
func runConstantParameterElimination(ctx *context, src *mir.Sources) (*mir.Sources, bool) {
	meets := make(map[uint32][]value, len(src.Functions))

	for _, fn := range src.Functions {
		vals := make([]value, len(fn.Parameters))
		for i := range vals {
			vals[i] = bottomValue
		}

		meets[functionKey(fn.Name)] = vals
	}

	for _, caller := range src.Functions {
		selfKey := functionKey(caller.Name)

		forEachCall(caller.Body, func(call mir.Call) {
			fnCallee, ok := call.Callee.(mir.FunctionNameCallee)
			if !ok {
				return
			}

			key := functionKey(fnCallee.Name)
			if key == selfKey {
				return
			}

			vals, ok := meets[key]
			if !ok {
				return
			}

			for i, a := range call.Arguments {
				if i >= len(vals) {
					continue
				}

				vals[i] = meet(vals[i], abstractArgument(a))
			}
		})
	}

	drop := make(map[uint32]map[int]value)

	for key, vals := range meets {
		for i, v := range vals {
			if v.kind != latInt && v.kind != latStr {
				continue
			}

			if drop[key] == nil {
				drop[key] = map[int]value{}
			}

			drop[key][i] = v
		}
	}

	if len(drop) == 0 {
		return src, false
	}

	out := src.Clone()

	for i := range out.Functions {
		fn := &out.Functions[i]
		key := functionKey(fn.Name)

		subst := map[pstr.PStr]mir.Expression{}

		if dropped, ok := drop[key]; ok {
			for idx, v := range dropped {
				subst[fn.Parameters[idx]] = literalOf(v)
			}

			fn.Parameters = dropIndices(fn.Parameters, dropped)
			fn.Type.ArgumentTypes = dropIndexedTypes(fn.Type.ArgumentTypes, dropped)
		}

		fn.Body = rewriteCallsAndParams(fn.Body, subst, drop)
		fn.ReturnValue = substituteConstExpr(fn.ReturnValue, subst)
	}

	return out, true
}

func abstractArgument(e mir.Expression) value {
	switch v := e.(type) {
	case mir.IntLiteral:
		return intValue(v.Value)
	case mir.StringName:
		return strValue(v.Name)
	default:
		return topValue
	}
}

func literalOf(v value) mir.Expression {
	if v.kind == latInt {
		return mir.IntLiteral{Value: v.i}
	}

	return mir.StringName{Name: v.s}
}

func dropIndices(params []pstr.PStr, dropped map[int]value) []pstr.PStr {
	out := make([]pstr.PStr, 0, len(params)-len(dropped))

	for i, p := range params {
		if _, ok := dropped[i]; ok {
			continue
		}

		out = append(out, p)
	}

	return out
}

func dropIndexedTypes(types []mir.Type, dropped map[int]value) []mir.Type {
	out := make([]mir.Type, 0, len(types)-len(dropped))

	for i, t := range types {
		if _, ok := dropped[i]; ok {
			continue
		}

		out = append(out, t)
	}

	return out
}

func dropArguments(args []mir.Expression, dropped map[int]value) []mir.Expression {
	out := make([]mir.Expression, 0, len(args)-len(dropped))

	for i, a := range args {
		if _, ok := dropped[i]; ok {
			continue
		}

		out = append(out, a)
	}

	return out
}

// forEachCall visits every Call statement reachable from stmts, including
// through nested If/While bodies.
func forEachCall(stmts []mir.Statement, visit func(mir.Call)) {
	for _, s := range stmts {
		switch v := s.(type) {
		case mir.Call:
			visit(v)
		case mir.IfElse:
			forEachCall(v.S1, visit)
			forEachCall(v.S2, visit)
		case mir.SingleIf:
			forEachCall(v.Statements, visit)
		case mir.While:
			forEachCall(v.Statements, visit)
		}
	}
}

// rewriteCallsAndParams substitutes subst (this function's own eliminated
// parameters) throughout stmts and, for every Call found, drops arguments
// at the callee's eliminated indices per drop.
func rewriteCallsAndParams(stmts []mir.Statement, subst map[pstr.PStr]mir.Expression, drop map[uint32]map[int]value) []mir.Statement {
	out := make([]mir.Statement, len(stmts))

	for i, s := range stmts {
		out[i] = rewriteOneCallsAndParams(s, subst, drop)
	}

	return out
}

func rewriteOneCallsAndParams(s mir.Statement, subst map[pstr.PStr]mir.Expression, drop map[uint32]map[int]value) mir.Statement {
	sub := func(e mir.Expression) mir.Expression { return substituteConstExpr(e, subst) }

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

		if fnCallee, ok := v.Callee.(mir.FunctionNameCallee); ok {
			if dropped, ok := drop[functionKey(fnCallee.Name)]; ok {
				args = dropArguments(args, dropped)
			}
		}

		return mir.Call{Callee: v.Callee, Arguments: args, ReturnType: v.ReturnType, ReturnCollector: v.ReturnCollector}
	case mir.IfElse:
		finals := make([]mir.FinalAssignment, len(v.FinalAssignments))
		for i, fa := range v.FinalAssignments {
			finals[i] = mir.FinalAssignment{Name: fa.Name, Type: fa.Type, ValueIfTrue: sub(fa.ValueIfTrue), ValueIfFalse: sub(fa.ValueIfFalse)}
		}

		return mir.IfElse{Condition: sub(v.Condition), S1: rewriteCallsAndParams(v.S1, subst, drop), S2: rewriteCallsAndParams(v.S2, subst, drop), FinalAssignments: finals}
	case mir.SingleIf:
		return mir.SingleIf{Condition: sub(v.Condition), Invert: v.Invert, Statements: rewriteCallsAndParams(v.Statements, subst, drop)}
	case mir.Break:
		return mir.Break{Value: sub(v.Value)}
	case mir.While:
		loopVars := make([]mir.LoopVariable, len(v.LoopVariables))
		for i, lv := range v.LoopVariables {
			loopVars[i] = mir.LoopVariable{Name: lv.Name, Type: lv.Type, InitialValue: sub(lv.InitialValue), LoopValue: sub(lv.LoopValue)}
		}

		return mir.While{LoopVariables: loopVars, Statements: rewriteCallsAndParams(v.Statements, subst, drop), BreakCollector: v.BreakCollector}
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
	case mir.ClosureInit:
		return mir.ClosureInit{Name: v.Name, ClosureTypeName: v.ClosureTypeName, Function: v.Function, FunctionType: v.FunctionType, Context: sub(v.Context)}
	default:
		return s
	}
}

func substituteConstExpr(e mir.Expression, subst map[pstr.PStr]mir.Expression) mir.Expression {
	v, ok := e.(mir.Variable)
	if !ok {
		return e
	}

	if lit, ok := subst[v.Name]; ok {
		return lit
	}

	return e
}

package optimize

import (
	"github.com/sail-lang/sailc/internal/mir"
	"github.com/sail-lang/sailc/internal/pstr"
)

// runCCP implements conditional constant propagation:
// known-constant temporaries are substituted into every later use, pure
// binary operations over two now-literal operands are evaluated under i32
// two's-complement wrap (division/modulus by zero are left unfolded), and
// an `IfElse`/`SingleIf` whose condition resolves to a known boolean keeps
// only the taken branch.
func runCCP(ctx *context, src *mir.Sources) (*mir.Sources, bool) {
	out := src.Clone()
	changed := false

	for i := range out.Functions {
		fn := &out.Functions[i]
		e := env{}

		for _, p := range fn.Parameters {
			e[p] = topValue
		}

		body, bodyChanged := ccpStatements(ctx, fn.Body, e)
		ret, retChanged := ccpExpression(fn.ReturnValue, e)

		if bodyChanged || retChanged {
			changed = true
		}

		fn.Body = body
		fn.ReturnValue = ret
	}

	if !changed {
		return src, false
	}

	return out, true
}

func ccpExpression(expr mir.Expression, e env) (mir.Expression, bool) {
	v, ok := expr.(mir.Variable)
	if !ok {
		return expr, false
	}

	known := e.get(v.Name)

	switch known.kind {
	case latInt:
		return mir.IntLiteral{Value: known.i}, true
	case latStr:
		return mir.StringName{Name: known.s}, true
	default:
		return expr, false
	}
}

func evalBinaryOp(op mir.Operator, a, b int32) (int32, bool) {
	switch op {
	case mir.OpMul:
		return a * b, true
	case mir.OpDiv:
		if b == 0 {
			return 0, false
		}

		return a / b, true
	case mir.OpMod:
		if b == 0 {
			return 0, false
		}

		return a % b, true
	case mir.OpPlus:
		return a + b, true
	case mir.OpMinus:
		return a - b, true
	case mir.OpLand:
		return a & b, true
	case mir.OpLor:
		return a | b, true
	case mir.OpXor:
		return a ^ b, true
	case mir.OpShl:
		return a << uint32(b&31), true
	case mir.OpShr:
		return a >> uint32(b&31), true
	case mir.OpLt:
		return boolInt(a < b), true
	case mir.OpLe:
		return boolInt(a <= b), true
	case mir.OpGt:
		return boolInt(a > b), true
	case mir.OpGe:
		return boolInt(a >= b), true
	case mir.OpEq:
		return boolInt(a == b), true
	case mir.OpNe:
		return boolInt(a != b), true
	default:
		return 0, false
	}
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}

	return 0
}

// ccpStatements folds and propagates through one straight-line statement
// list, returning the rewritten list and whether anything changed. e is
// mutated in place to reflect bindings visible to statements that follow.
func ccpStatements(ctx *context, stmts []mir.Statement, e env) ([]mir.Statement, bool) {
	out := make([]mir.Statement, 0, len(stmts))
	changed := false

	for _, s := range stmts {
		rewritten, bindingName, bindingValue, didChange, keep := ccpStatement(ctx, s, e)
		if didChange {
			changed = true
		}

		if bindingName != pstr.Invalid {
			e[bindingName] = bindingValue
		}

		if keep {
			out = append(out, rewritten)
		}
	}

	return out, changed
}

// ccpStatement folds one statement. It returns the (possibly rewritten)
// statement, the name it binds (or pstr.Invalid if none), that name's
// abstract value, whether the statement was rewritten, and whether the
// statement should still appear in the output (CCP never deletes
// statements itself — that is DCE's job — except when replacing a
// conditional with its taken branch).
func ccpStatement(ctx *context, s mir.Statement, e env) (mir.Statement, pstr.PStr, value, bool, bool) {
	switch v := s.(type) {
	case mir.Binary:
		e1, c1 := ccpExpression(v.E1, e)
		e2, c2 := ccpExpression(v.E2, e)
		changed := c1 || c2

		lit1, ok1 := e1.(mir.IntLiteral)
		lit2, ok2 := e2.(mir.IntLiteral)

		if ok1 && ok2 {
			if result, foldable := evalBinaryOp(v.Op, lit1.Value, lit2.Value); foldable {
				return mir.BinaryUnwrapped(v.Name, v.Op, e1, e2), v.Name, intValue(result), true, true
			}
		}

		if changed {
			return mir.BinaryUnwrapped(v.Name, v.Op, e1, e2), v.Name, topValue, true, true
		}

		return s, v.Name, topValue, false, true

	case mir.IsPointer:
		op, changed := ccpExpression(v.Operand, e)
		return mir.IsPointer{Name: v.Name, Operand: op}, v.Name, topValue, changed, true

	case mir.Not:
		op, changed := ccpExpression(v.Operand, e)
		if lit, ok := op.(mir.IntLiteral); ok {
			return mir.Not{Name: v.Name, Operand: op}, v.Name, intValue(boolInt(lit.Value == 0)), true, true
		}

		return mir.Not{Name: v.Name, Operand: op}, v.Name, topValue, changed, true

	case mir.IndexedAccess:
		ptr, changed := ccpExpression(v.Pointer, e)
		return mir.IndexedAccess{Name: v.Name, Type: v.Type, Pointer: ptr, Index: v.Index}, v.Name, topValue, changed, true

	case mir.Call:
		args := make([]mir.Expression, len(v.Arguments))
		changed := false

		for i, a := range v.Arguments {
			na, c := ccpExpression(a, e)
			args[i] = na
			changed = changed || c
		}

		var bindName pstr.PStr
		if v.ReturnCollector != nil {
			bindName = *v.ReturnCollector
		}

		return mir.Call{Callee: v.Callee, Arguments: args, ReturnType: v.ReturnType, ReturnCollector: v.ReturnCollector}, bindName, topValue, changed, true

	case mir.IfElse:
		cond, condChanged := ccpExpression(v.Condition, e)

		if lit, ok := cond.(mir.IntLiteral); ok {
			taken := v.S1
			if lit.Value == 0 {
				taken = v.S2
			}

			branchEnv := e.clone()
			body, _ := ccpStatements(ctx, taken, branchEnv)

			var result []mir.Statement
			result = append(result, body...)

			for _, fa := range v.FinalAssignments {
				chosen := fa.ValueIfTrue
				if lit.Value == 0 {
					chosen = fa.ValueIfFalse
				}

				chosenLowered, _ := ccpExpression(chosen, branchEnv)
				result = append(result,
					mir.LateInitDeclaration{Name: fa.Name, Type: fa.Type},
					mir.LateInitAssignment{Name: fa.Name, Expression: chosenLowered},
				)

				if lit, ok := chosenLowered.(mir.IntLiteral); ok {
					e[fa.Name] = intValue(lit.Value)
				} else {
					e[fa.Name] = topValue
				}
			}

			if len(result) == 0 {
				return nil, pstr.Invalid, value{}, true, false
			}

			return mir.SingleIf{Condition: mir.IntLiteral{Value: 1}, Statements: result}, pstr.Invalid, value{}, true, true
		}

		s1Env := e.clone()
		s2Env := e.clone()
		s1, c1 := ccpStatements(ctx, v.S1, s1Env)
		s2, c2 := ccpStatements(ctx, v.S2, s2Env)

		finals := make([]mir.FinalAssignment, len(v.FinalAssignments))
		for i, fa := range v.FinalAssignments {
			vt, _ := ccpExpression(fa.ValueIfTrue, s1Env)
			vf, _ := ccpExpression(fa.ValueIfFalse, s2Env)
			finals[i] = mir.FinalAssignment{Name: fa.Name, Type: fa.Type, ValueIfTrue: vt, ValueIfFalse: vf}

			tv := abstractOf(vt, s1Env)
			fv := abstractOf(vf, s2Env)
			e[fa.Name] = meet(tv, fv)
		}

		return mir.IfElse{Condition: cond, S1: s1, S2: s2, FinalAssignments: finals}, pstr.Invalid, value{}, condChanged || c1 || c2, true

	case mir.SingleIf:
		cond, condChanged := ccpExpression(v.Condition, e)
		effective := v.Invert

		if lit, ok := cond.(mir.IntLiteral); ok {
			taken := (lit.Value != 0) != effective
			if !taken {
				return nil, pstr.Invalid, value{}, true, false
			}

			body, bodyChanged := ccpStatements(ctx, v.Statements, e)
			wasMarker := !v.Invert && !condChanged && lit.Value == 1

			return mir.SingleIf{Condition: mir.IntLiteral{Value: 1}, Statements: body}, pstr.Invalid, value{}, !wasMarker || bodyChanged, true
		}

		branchEnv := e.clone()
		body, bodyChanged := ccpStatements(ctx, v.Statements, branchEnv)

		return mir.SingleIf{Condition: cond, Invert: v.Invert, Statements: body}, pstr.Invalid, value{}, condChanged || bodyChanged, true

	case mir.Break:
		val, changed := ccpExpression(v.Value, e)
		return mir.Break{Value: val}, pstr.Invalid, value{}, changed, true

	case mir.While:
		loopVars := make([]mir.LoopVariable, len(v.LoopVariables))
		bodyEnv := env{}

		for i, lv := range v.LoopVariables {
			initVal, _ := ccpExpression(lv.InitialValue, e)
			loopVars[i] = mir.LoopVariable{Name: lv.Name, Type: lv.Type, InitialValue: initVal, LoopValue: lv.LoopValue}
			bodyEnv[lv.Name] = topValue
		}

		body, changed := ccpStatements(ctx, v.Statements, bodyEnv)

		return mir.While{LoopVariables: loopVars, Statements: body, BreakCollector: v.BreakCollector}, pstr.Invalid, value{}, changed, true

	case mir.Cast:
		inner, changed := ccpExpression(v.Expression, e)
		return mir.Cast{Name: v.Name, Type: v.Type, Expression: inner}, v.Name, topValue, changed, true

	case mir.LateInitDeclaration:
		return s, pstr.Invalid, value{}, false, true

	case mir.LateInitAssignment:
		expr, changed := ccpExpression(v.Expression, e)
		bound := abstractOf(expr, e)

		return mir.LateInitAssignment{Name: v.Name, Expression: expr}, v.Name, bound, changed, true

	case mir.StructInit:
		elems := make([]mir.Expression, len(v.Elements))
		changed := false

		for i, el := range v.Elements {
			ne, c := ccpExpression(el, e)
			elems[i] = ne
			changed = changed || c
		}

		return mir.StructInit{Name: v.Name, TypeName: v.TypeName, Elements: elems}, v.Name, topValue, changed, true

	case mir.ClosureInit:
		ctxExpr, changed := ccpExpression(v.Context, e)
		return mir.ClosureInit{Name: v.Name, ClosureTypeName: v.ClosureTypeName, Function: v.Function, FunctionType: v.FunctionType, Context: ctxExpr}, v.Name, topValue, changed, true

	default:
		return s, pstr.Invalid, value{}, false, true
	}
}

func abstractOf(e mir.Expression, env env) value {
	switch v := e.(type) {
	case mir.IntLiteral:
		return intValue(v.Value)
	case mir.StringName:
		return strValue(v.Name)
	case mir.Variable:
		return env.get(v.Name)
	default:
		return topValue
	}
}

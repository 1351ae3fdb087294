package optimize

import (
	"github.com/sail-lang/sailc/internal/mir"
	"github.com/sail-lang/sailc/internal/pstr"
)

// runInline implements the budgeted inliner: a call
// site is replaced by a renamed copy of the callee's body when doing so
// stays under the per-call-site and per-function size budgets and the
// callee is not self-recursive at that site.
func runInline(ctx *context, src *mir.Sources) (*mir.Sources, bool) {
	byName := make(map[uint32]mir.Function, len(src.Functions))
	for _, fn := range src.Functions {
		byName[functionKey(fn.Name)] = fn
	}

	sizes := make(map[uint32]int, len(src.Functions))
	for _, fn := range src.Functions {
		sizes[functionKey(fn.Name)] = statementSize(fn.Body) + 1
	}

	out := src.Clone()
	changed := false

	for i := range out.Functions {
		fn := &out.Functions[i]
		st := &inlineState{
			ctx:       ctx,
			byName:    byName,
			sizes:     sizes,
			selfKey:   functionKey(fn.Name),
			sizeAfter: sizes[functionKey(fn.Name)],
		}

		body, bodyChanged := st.inlineStatements(fn.Body, 0)
		if bodyChanged {
			fn.Body = body
			changed = true
		}
	}

	if !changed {
		return src, false
	}

	return out, true
}

func statementSize(stmts []mir.Statement) int {
	n := 0

	for _, s := range stmts {
		n++

		switch v := s.(type) {
		case mir.IfElse:
			n += statementSize(v.S1) + statementSize(v.S2)
		case mir.SingleIf:
			n += statementSize(v.Statements)
		case mir.While:
			n += statementSize(v.Statements)
		}
	}

	return n
}

type inlineState struct {
	ctx       *context
	byName    map[uint32]mir.Function
	sizes     map[uint32]int
	selfKey   uint32
	sizeAfter int
}

func (st *inlineState) inlineStatements(stmts []mir.Statement, depth int) ([]mir.Statement, bool) {
	out := make([]mir.Statement, 0, len(stmts))
	changed := false

	for _, s := range stmts {
		rewritten, c := st.inlineStatement(s, depth)
		changed = changed || c
		out = append(out, rewritten...)
	}

	return out, changed
}

// inlineStatement returns the replacement statement list for s (length 1
// unless s was a Call that got inlined, in which case it is the inlined
// prelude followed by the LateInitDeclaration/Assignment pair binding the
// caller's return collector).
func (st *inlineState) inlineStatement(s mir.Statement, depth int) ([]mir.Statement, bool) {
	switch v := s.(type) {
	case mir.Call:
		if depth < st.ctx.budgets.InlineMaxRecursionDepth {
			if prelude, ok := st.tryInline(v); ok {
				return prelude, true
			}
		}

		return []mir.Statement{s}, false
	case mir.IfElse:
		s1, c1 := st.inlineStatements(v.S1, depth+1)
		s2, c2 := st.inlineStatements(v.S2, depth+1)

		return []mir.Statement{mir.IfElse{Condition: v.Condition, S1: s1, S2: s2, FinalAssignments: v.FinalAssignments}}, c1 || c2
	case mir.SingleIf:
		body, c := st.inlineStatements(v.Statements, depth+1)
		return []mir.Statement{mir.SingleIf{Condition: v.Condition, Invert: v.Invert, Statements: body}}, c
	case mir.While:
		body, c := st.inlineStatements(v.Statements, depth+1)
		return []mir.Statement{mir.While{LoopVariables: v.LoopVariables, Statements: body, BreakCollector: v.BreakCollector}}, c
	default:
		return []mir.Statement{s}, false
	}
}

// tryInline attempts to replace call with a renamed copy of its callee's
// body. It fails (ok=false) for indirect calls, self-recursive calls, and
// calls that would blow either size budget.
func (st *inlineState) tryInline(call mir.Call) ([]mir.Statement, bool) {
	fnCallee, ok := call.Callee.(mir.FunctionNameCallee)
	if !ok {
		return nil, false
	}

	key := functionKey(fnCallee.Name)
	if key == st.selfKey {
		return nil, false
	}

	callee, ok := st.byName[key]
	if !ok {
		return nil, false
	}

	calleeSize := st.sizes[key]
	if calleeSize > st.ctx.budgets.InlinePerCallSiteBudget {
		return nil, false
	}

	if st.sizeAfter+calleeSize > st.ctx.budgets.InlinePerFunctionBudget {
		return nil, false
	}

	rename := map[pstr.PStr]pstr.PStr{}
	collectBoundNames(callee.Body, rename)

	for _, p := range callee.Parameters {
		rename[p] = pstr.Invalid
	}

	for orig := range rename {
		rename[orig] = st.ctx.heap.AllocTemp()
	}

	renamer := &inlineRenamer{rename: rename}
	body := renamer.renameStatements(callee.Body)

	prelude := make([]mir.Statement, 0, len(callee.Parameters)*2+len(body)+2)

	for i, p := range callee.Parameters {
		newName := rename[p]
		prelude = append(prelude,
			mir.LateInitDeclaration{Name: newName, Type: callee.Type.ArgumentTypes[i]},
			mir.LateInitAssignment{Name: newName, Expression: call.Arguments[i]},
		)
	}

	prelude = append(prelude, body...)

	retVal := renamer.renameExpression(callee.ReturnValue)

	if call.ReturnCollector != nil {
		prelude = append(prelude,
			mir.LateInitDeclaration{Name: *call.ReturnCollector, Type: call.ReturnType},
			mir.LateInitAssignment{Name: *call.ReturnCollector, Expression: retVal},
		)
	}

	st.sizeAfter += calleeSize

	return prelude, true
}

// collectBoundNames records every name a statement tree binds, so the
// inliner can give each one a fresh identity before splicing the body into
// the caller.
func collectBoundNames(stmts []mir.Statement, out map[pstr.PStr]pstr.PStr) {
	for _, s := range stmts {
		switch v := s.(type) {
		case mir.Binary:
			out[v.Name] = pstr.Invalid
		case mir.IsPointer:
			out[v.Name] = pstr.Invalid
		case mir.Not:
			out[v.Name] = pstr.Invalid
		case mir.IndexedAccess:
			out[v.Name] = pstr.Invalid
		case mir.Call:
			if v.ReturnCollector != nil {
				out[*v.ReturnCollector] = pstr.Invalid
			}
		case mir.IfElse:
			collectBoundNames(v.S1, out)
			collectBoundNames(v.S2, out)

			for _, fa := range v.FinalAssignments {
				out[fa.Name] = pstr.Invalid
			}
		case mir.SingleIf:
			collectBoundNames(v.Statements, out)
		case mir.While:
			for _, lv := range v.LoopVariables {
				out[lv.Name] = pstr.Invalid
			}

			if v.BreakCollector != nil {
				out[v.BreakCollector.Name] = pstr.Invalid
			}

			collectBoundNames(v.Statements, out)
		case mir.Cast:
			out[v.Name] = pstr.Invalid
		case mir.LateInitDeclaration:
			out[v.Name] = pstr.Invalid
		case mir.StructInit:
			out[v.Name] = pstr.Invalid
		case mir.ClosureInit:
			out[v.Name] = pstr.Invalid
		}
	}
}

// inlineRenamer substitutes every name in rename throughout a spliced-in
// callee body, leaving anything not in the map (globals, builtins) alone.
type inlineRenamer struct {
	rename map[pstr.PStr]pstr.PStr
}

func (r *inlineRenamer) name(p pstr.PStr) pstr.PStr {
	if n, ok := r.rename[p]; ok {
		return n
	}

	return p
}

func (r *inlineRenamer) renameStatements(stmts []mir.Statement) []mir.Statement {
	out := make([]mir.Statement, len(stmts))
	for i, s := range stmts {
		out[i] = r.renameStatement(s)
	}

	return out
}

func (r *inlineRenamer) renameStatement(s mir.Statement) mir.Statement {
	switch v := s.(type) {
	case mir.Binary:
		return mir.Binary{Name: r.name(v.Name), Op: v.Op, E1: r.renameExpression(v.E1), E2: r.renameExpression(v.E2)}
	case mir.IsPointer:
		return mir.IsPointer{Name: r.name(v.Name), Operand: r.renameExpression(v.Operand)}
	case mir.Not:
		return mir.Not{Name: r.name(v.Name), Operand: r.renameExpression(v.Operand)}
	case mir.IndexedAccess:
		return mir.IndexedAccess{Name: r.name(v.Name), Type: v.Type, Pointer: r.renameExpression(v.Pointer), Index: v.Index}
	case mir.Call:
		args := make([]mir.Expression, len(v.Arguments))
		for i, a := range v.Arguments {
			args[i] = r.renameExpression(a)
		}

		callee := v.Callee
		if vc, ok := v.Callee.(mir.VariableCallee); ok {
			callee = mir.VariableCallee{Name: r.renameExpression(vc.Name).(mir.Variable)}
		}

		var collector *pstr.PStr
		if v.ReturnCollector != nil {
			renamed := r.name(*v.ReturnCollector)
			collector = &renamed
		}

		return mir.Call{Callee: callee, Arguments: args, ReturnType: v.ReturnType, ReturnCollector: collector}
	case mir.IfElse:
		finals := make([]mir.FinalAssignment, len(v.FinalAssignments))
		for i, fa := range v.FinalAssignments {
			finals[i] = mir.FinalAssignment{Name: r.name(fa.Name), Type: fa.Type, ValueIfTrue: r.renameExpression(fa.ValueIfTrue), ValueIfFalse: r.renameExpression(fa.ValueIfFalse)}
		}

		return mir.IfElse{Condition: r.renameExpression(v.Condition), S1: r.renameStatements(v.S1), S2: r.renameStatements(v.S2), FinalAssignments: finals}
	case mir.SingleIf:
		return mir.SingleIf{Condition: r.renameExpression(v.Condition), Invert: v.Invert, Statements: r.renameStatements(v.Statements)}
	case mir.Break:
		return mir.Break{Value: r.renameExpression(v.Value)}
	case mir.While:
		loopVars := make([]mir.LoopVariable, len(v.LoopVariables))
		for i, lv := range v.LoopVariables {
			loopVars[i] = mir.LoopVariable{Name: r.name(lv.Name), Type: lv.Type, InitialValue: r.renameExpression(lv.InitialValue), LoopValue: r.renameExpression(lv.LoopValue)}
		}

		var bc *mir.BreakCollectorVar
		if v.BreakCollector != nil {
			bc = &mir.BreakCollectorVar{Name: r.name(v.BreakCollector.Name), Type: v.BreakCollector.Type}
		}

		return mir.While{LoopVariables: loopVars, Statements: r.renameStatements(v.Statements), BreakCollector: bc}
	case mir.Cast:
		return mir.Cast{Name: r.name(v.Name), Type: v.Type, Expression: r.renameExpression(v.Expression)}
	case mir.LateInitDeclaration:
		return mir.LateInitDeclaration{Name: r.name(v.Name), Type: v.Type}
	case mir.LateInitAssignment:
		return mir.LateInitAssignment{Name: r.name(v.Name), Expression: r.renameExpression(v.Expression)}
	case mir.StructInit:
		elems := make([]mir.Expression, len(v.Elements))
		for i, e := range v.Elements {
			elems[i] = r.renameExpression(e)
		}

		return mir.StructInit{Name: r.name(v.Name), TypeName: v.TypeName, Elements: elems}
	case mir.ClosureInit:
		return mir.ClosureInit{Name: r.name(v.Name), ClosureTypeName: v.ClosureTypeName, Function: v.Function, FunctionType: v.FunctionType, Context: r.renameExpression(v.Context)}
	default:
		return s
	}
}

func (r *inlineRenamer) renameExpression(e mir.Expression) mir.Expression {
	v, ok := e.(mir.Variable)
	if !ok {
		return e
	}

	return mir.Variable{Name: r.name(v.Name), Type: v.Type}
}

package optimize

import (
	"github.com/sail-lang/sailc/internal/mir"
	"github.com/sail-lang/sailc/internal/pstr"
)

// runDCE implements dead-code elimination: liveness
// is computed backward over the structured tree; a binding is dropped when
// nothing downstream reads it and dropping it cannot change observable
// behavior.
func runDCE(ctx *context, src *mir.Sources) (*mir.Sources, bool) {
	pureFns := purityClosure(src)
	out := src.Clone()
	changed := false

	for i := range out.Functions {
		fn := &out.Functions[i]
		live := usedNames(fn.ReturnValue, nil)
		body, bodyChanged := dceStatements(fn.Body, live, pureFns)
		fn.Body = body
		changed = changed || bodyChanged
	}

	if !changed {
		return src, false
	}

	return out, true
}

// purityClosure computes the known-pure set: user-defined functions whose
// transitive body contains no call to an impure built-in or an impure
// function. Built-ins malloc/free/println/panic/
// concat/toInt/fromInt are impure by fiat; everything else starts assumed
// pure and is demoted by fixed-point propagation through the call graph.
func purityClosure(src *mir.Sources) map[uint32]bool {
	pure := make(map[uint32]bool, len(src.Functions))
	for _, fn := range src.Functions {
		pure[functionKey(fn.Name)] = true
	}

	for {
		changedAny := false

		for _, fn := range src.Functions {
			if !pure[functionKey(fn.Name)] {
				continue
			}

			if callsImpure(fn.Body, pure) {
				pure[functionKey(fn.Name)] = false
				changedAny = true
			}
		}

		if !changedAny {
			break
		}
	}

	return pure
}

func functionKey(fn mir.FunctionName) uint32 {
	return uint32(fn.TypeName)<<16 ^ uint32(fn.FnName)
}

var impureBuiltins = map[pstr.PStr]bool{
	pstr.Malloc:  true,
	pstr.Free:    true,
	pstr.Println: true,
	pstr.Panic:   true,
	pstr.Concat:  true,
	pstr.ToInt:   true,
	pstr.FromInt: true,
}

func callsImpure(stmts []mir.Statement, pure map[uint32]bool) bool {
	for _, s := range stmts {
		switch v := s.(type) {
		case mir.Call:
			switch callee := v.Callee.(type) {
			case mir.FunctionNameCallee:
				if impureBuiltins[callee.Name.FnName] {
					return true
				}

				if !pure[functionKey(callee.Name)] {
					return true
				}
			case mir.VariableCallee:
				return true // indirect calls cannot be proven pure.
			}
		case mir.IfElse:
			if callsImpure(v.S1, pure) || callsImpure(v.S2, pure) {
				return true
			}
		case mir.SingleIf:
			if callsImpure(v.Statements, pure) {
				return true
			}
		case mir.While:
			if callsImpure(v.Statements, pure) {
				return true
			}
		}
	}

	return false
}

// usedNames walks e (and, via extra, any other live-out set from a join
// point) collecting every Variable name it references.
func usedNames(e mir.Expression, extra map[pstr.PStr]bool) map[pstr.PStr]bool {
	live := map[pstr.PStr]bool{}
	for n := range extra {
		live[n] = true
	}

	addUsed(e, live)

	return live
}

func addUsed(e mir.Expression, live map[pstr.PStr]bool) {
	if v, ok := e.(mir.Variable); ok {
		live[v.Name] = true
	}
}

// dceStatements walks stmts back to front, keeping a statement iff its
// bound name is in live or it has a side effect that must run regardless
// (calls to impure callees, Break, indexed writes).
func dceStatements(stmts []mir.Statement, live map[pstr.PStr]bool, pureFns map[uint32]bool) ([]mir.Statement, bool) {
	out := make([]mir.Statement, 0, len(stmts))
	changed := false

	for i := len(stmts) - 1; i >= 0; i-- {
		s := stmts[i]
		keep, rewritten := dceOne(s, live, pureFns)

		if !keep {
			changed = true
			continue
		}

		// A kept statement differs from s only where DCE removed nested
		// statements or final assignments; statements holding slices
		// cannot be compared with !=.
		before, after := statementSize([]mir.Statement{s}), statementSize([]mir.Statement{rewritten})
		if ie, ok := s.(mir.IfElse); ok {
			before += len(ie.FinalAssignments)
			after += len(rewritten.(mir.IfElse).FinalAssignments)
		}

		if after != before {
			changed = true
		}

		out = append([]mir.Statement{rewritten}, out...)
	}

	return out, changed
}

func dceOne(s mir.Statement, live map[pstr.PStr]bool, pureFns map[uint32]bool) (bool, mir.Statement) {
	switch v := s.(type) {
	case mir.Binary:
		if !live[v.Name] {
			return false, s
		}

		addUsed(v.E1, live)
		addUsed(v.E2, live)

		return true, s
	case mir.IsPointer:
		if !live[v.Name] {
			return false, s
		}

		addUsed(v.Operand, live)

		return true, s
	case mir.Not:
		if !live[v.Name] {
			return false, s
		}

		addUsed(v.Operand, live)

		return true, s
	case mir.IndexedAccess:
		if !live[v.Name] {
			return false, s
		}

		addUsed(v.Pointer, live)

		return true, s
	case mir.Cast:
		if !live[v.Name] {
			return false, s
		}

		addUsed(v.Expression, live)

		return true, s
	case mir.StructInit:
		if !live[v.Name] {
			return false, s
		}

		for _, el := range v.Elements {
			addUsed(el, live)
		}

		return true, s
	case mir.ClosureInit:
		if !live[v.Name] {
			return false, s
		}

		addUsed(v.Context, live)

		return true, s
	case mir.LateInitDeclaration:
		if !live[v.Name] {
			return false, s
		}

		return true, s
	case mir.LateInitAssignment:
		if !live[v.Name] {
			return false, s
		}

		addUsed(v.Expression, live)

		return true, s
	case mir.Call:
		isPure := false
		if callee, ok := v.Callee.(mir.FunctionNameCallee); ok {
			isPure = !impureBuiltins[callee.Name.FnName] && pureFns[functionKey(callee.Name)]
		}

		liveCollector := v.ReturnCollector != nil && live[*v.ReturnCollector]

		if isPure && !liveCollector {
			return false, s
		}

		for _, a := range v.Arguments {
			addUsed(a, live)
		}

		if vc, ok := v.Callee.(mir.VariableCallee); ok {
			live[vc.Name.Name] = true
		}

		return true, s
	case mir.IfElse:
		liveS1 := map[pstr.PStr]bool{}
		liveS2 := map[pstr.PStr]bool{}

		for n := range live {
			liveS1[n] = true
			liveS2[n] = true
		}

		anyFinalLive := false

		for _, fa := range v.FinalAssignments {
			if live[fa.Name] {
				anyFinalLive = true
				addUsed(fa.ValueIfTrue, liveS1)
				addUsed(fa.ValueIfFalse, liveS2)
			}
		}

		s1, _ := dceStatements(v.S1, liveS1, pureFns)
		s2, _ := dceStatements(v.S2, liveS2, pureFns)

		addUsed(v.Condition, live)

		finals := make([]mir.FinalAssignment, 0, len(v.FinalAssignments))
		for _, fa := range v.FinalAssignments {
			if live[fa.Name] {
				finals = append(finals, fa)
			}
		}

		if len(s1) == 0 && len(s2) == 0 && !anyFinalLive && isPureExpr(v.Condition) {
			return false, s
		}

		return true, mir.IfElse{Condition: v.Condition, S1: s1, S2: s2, FinalAssignments: finals}
	case mir.SingleIf:
		bodyLive := map[pstr.PStr]bool{}
		for n := range live {
			bodyLive[n] = true
		}

		body, _ := dceStatements(v.Statements, bodyLive, pureFns)
		addUsed(v.Condition, live)

		if len(body) == 0 && isPureExpr(v.Condition) {
			return false, s
		}

		return true, mir.SingleIf{Condition: v.Condition, Invert: v.Invert, Statements: body}
	case mir.Break:
		addUsed(v.Value, live)
		return true, s
	case mir.While:
		bodyLive := map[pstr.PStr]bool{}

		for _, lv := range v.LoopVariables {
			addUsed(lv.LoopValue, bodyLive)
		}

		if v.BreakCollector != nil {
			bodyLive[v.BreakCollector.Name] = true
		}

		body, _ := dceStatements(v.Statements, bodyLive, pureFns)

		for _, lv := range v.LoopVariables {
			addUsed(lv.InitialValue, live)
		}

		return true, mir.While{LoopVariables: v.LoopVariables, Statements: body, BreakCollector: v.BreakCollector}
	default:
		return true, s
	}
}

func isPureExpr(e mir.Expression) bool {
	switch e.(type) {
	case mir.IntLiteral, mir.StringName, mir.Variable:
		return true
	default:
		return false
	}
}

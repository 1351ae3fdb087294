package optimize

import (
	"github.com/sail-lang/sailc/internal/mir"
	"github.com/sail-lang/sailc/internal/pstr"
)

// runLoopInductionVariableElimination drops a guard basic induction
// variable when a single derived variable tracks it affinely with a
// positive multiplier and no other statement reads it: the derived
// variable is promoted to a loop variable and the guard comparison is
// rewritten against it. Every Binary that reads the guard other than the
// comparison counts as such a read (see usedOutsideGuardAndStep),
// including the step that binds the guard's next value and the derived
// variable's own definition, so a loop whose body computes the derived
// variable from the guard is left unchanged.
func runLoopInductionVariableElimination(ctx *context, src *mir.Sources) (*mir.Sources, bool) {
	out := src.Clone()
	changed := false

	for i := range out.Functions {
		fn := &out.Functions[i]
		body, c := eliminateStatements(ctx, fn.Body)
		fn.Body = body
		changed = changed || c
	}

	if !changed {
		return src, false
	}

	return out, true
}

func eliminateStatements(ctx *context, stmts []mir.Statement) ([]mir.Statement, bool) {
	out := make([]mir.Statement, len(stmts))
	changed := false

	for i, s := range stmts {
		switch v := s.(type) {
		case mir.While:
			rewritten, c := eliminateWhile(ctx, v)
			out[i] = rewritten
			changed = changed || c
		case mir.IfElse:
			s1, c1 := eliminateStatements(ctx, v.S1)
			s2, c2 := eliminateStatements(ctx, v.S2)
			out[i] = mir.IfElse{Condition: v.Condition, S1: s1, S2: s2, FinalAssignments: v.FinalAssignments}
			changed = changed || c1 || c2
		case mir.SingleIf:
			body, c := eliminateStatements(ctx, v.Statements)
			out[i] = mir.SingleIf{Condition: v.Condition, Invert: v.Invert, Statements: body}
			changed = changed || c
		default:
			out[i] = s
		}
	}

	return out, changed
}

// guardComparison finds a top-level SingleIf in body whose Statements
// contain a Break and whose Condition is a Variable bound by a comparison
// Binary against a literal bound, returning the comparison and its index.
func guardComparison(body []mir.Statement, defs map[uint32]mir.Binary) (mir.Binary, bool) {
	for _, s := range body {
		sif, ok := s.(mir.SingleIf)
		if !ok {
			continue
		}

		hasBreak := false

		for _, inner := range sif.Statements {
			if _, ok := inner.(mir.Break); ok {
				hasBreak = true
			}
		}

		if !hasBreak {
			continue
		}

		ref, ok := sif.Condition.(mir.Variable)
		if !ok {
			continue
		}

		def, ok := defs[uint32(ref.Name)]
		if !ok {
			continue
		}

		if !isComparisonOp(def.Op) {
			continue
		}

		return def, true
	}

	return mir.Binary{}, false
}

func isComparisonOp(op mir.Operator) bool {
	switch op {
	case mir.OpLt, mir.OpLe, mir.OpGt, mir.OpGe, mir.OpEq, mir.OpNe:
		return true
	default:
		return false
	}
}

func eliminateWhile(ctx *context, w mir.While) (mir.Statement, bool) {
	basics := basicInductionVariables(w)
	defs := binaryDefs(w.Statements)

	cmp, ok := guardComparison(w.Statements, defs)
	if !ok {
		body, c := eliminateStatements(ctx, w.Statements)
		return mir.While{LoopVariables: w.LoopVariables, Statements: body, BreakCollector: w.BreakCollector}, c
	}

	guardName, bound, guardOnLeft, ok := guardOperand(cmp, basics)
	if !ok {
		body, c := eliminateStatements(ctx, w.Statements)
		return mir.While{LoopVariables: w.LoopVariables, Statements: body, BreakCollector: w.BreakCollector}, c
	}

	deriveds := derivedInductionVariables(w, basics)

	var sole *derivedVariable

	for i := range deriveds {
		if deriveds[i].of == guardName && deriveds[i].mult > 0 {
			if sole != nil {
				sole = nil
				break
			}

			d := deriveds[i]
			sole = &d
		}
	}

	if sole == nil {
		body, c := eliminateStatements(ctx, w.Statements)
		return mir.While{LoopVariables: w.LoopVariables, Statements: body, BreakCollector: w.BreakCollector}, c
	}

	var guardLV mir.LoopVariable
	guardFound := false
	guardInit := int32(0)

	for _, lv := range w.LoopVariables {
		if uint32(lv.Name) != guardName {
			continue
		}

		lit, litOK := lv.InitialValue.(mir.IntLiteral)
		if !litOK {
			return mir.While{LoopVariables: w.LoopVariables, Statements: w.Statements, BreakCollector: w.BreakCollector}, false
		}

		guardLV = lv
		guardInit = lit.Value
		guardFound = true
	}

	if !guardFound || usedOutsideGuardAndStep(w, guardName, cmp.Name) {
		body, c := eliminateStatements(ctx, w.Statements)
		return mir.While{LoopVariables: w.LoopVariables, Statements: body, BreakCollector: w.BreakCollector}, c
	}

	step := basics[guardName]
	dName := ctx.heap.AllocTemp()
	dNext := ctx.heap.AllocTemp()

	newLoopVars := make([]mir.LoopVariable, 0, len(w.LoopVariables))

	for _, lv := range w.LoopVariables {
		if uint32(lv.Name) == guardName {
			continue
		}

		newLoopVars = append(newLoopVars, lv)
	}

	newLoopVars = append(newLoopVars, mir.LoopVariable{
		Name:         dName,
		Type:         guardLV.Type,
		InitialValue: mir.IntLiteral{Value: guardInit*sole.mult + sole.offset},
		LoopValue:    mir.Variable{Name: dNext, Type: guardLV.Type},
	})

	newStep := mir.Binary{Name: dNext, Op: mir.OpPlus, E1: mir.Variable{Name: dName, Type: guardLV.Type}, E2: mir.IntLiteral{Value: step * sole.mult}}

	scaledBound := scaleBound(bound, sole.mult, sole.offset)
	newCmpE1, newCmpE2 := mir.Variable{Name: dName, Type: guardLV.Type}, scaledBound

	var newCmp mir.Binary
	if guardOnLeft {
		newCmp = mir.Binary{Name: cmp.Name, Op: cmp.Op, E1: newCmpE1, E2: newCmpE2}
	} else {
		newCmp = mir.Binary{Name: cmp.Name, Op: cmp.Op, E1: newCmpE2, E2: newCmpE1}
	}

	body := make([]mir.Statement, 0, len(w.Statements)+1)

	for _, s := range w.Statements {
		if b, ok := s.(mir.Binary); ok && b.Name == cmp.Name {
			body = append(body, newCmp)
			continue
		}

		body = append(body, s)
	}

	body = append(body, newStep)

	rewritten, _ := eliminateStatements(ctx, body)

	return mir.While{LoopVariables: newLoopVars, Statements: rewritten, BreakCollector: w.BreakCollector}, true
}

// guardOperand extracts the basic induction variable operand and the
// other (bound) operand from a comparison Binary, reporting whether the
// guard variable appeared on the left.
func guardOperand(cmp mir.Binary, basics map[uint32]int32) (uint32, mir.Expression, bool, bool) {
	if v, ok := cmp.E1.(mir.Variable); ok {
		if _, isBasic := basics[uint32(v.Name)]; isBasic {
			return uint32(v.Name), cmp.E2, true, true
		}
	}

	if v, ok := cmp.E2.(mir.Variable); ok {
		if _, isBasic := basics[uint32(v.Name)]; isBasic {
			return uint32(v.Name), cmp.E1, false, true
		}
	}

	return 0, nil, false, false
}

// scaleBound rewrites a loop bound expression for the substitution
// `guard -> guard*mult + offset`; only a literal bound is supported, since
// a non-literal bound would need its own fresh scaling statement inserted
// outside the loop.
func scaleBound(bound mir.Expression, mult, offset int32) mir.Expression {
	if lit, ok := bound.(mir.IntLiteral); ok {
		return mir.IntLiteral{Value: lit.Value*mult + offset}
	}

	return bound
}

// usedOutsideGuardAndStep reports whether guardName is referenced anywhere
// in w's body other than a Binary that binds guardName itself and the
// comparison named cmpName, or in the While's own LoopVariable recurrences
// besides its own. A loop variable's step Binary binds the name its
// LoopValue reads, not guardName, so it counts as a reference.
func usedOutsideGuardAndStep(w mir.While, guardName uint32, cmpName pstr.PStr) bool {
	for _, s := range w.Statements {
		b, ok := s.(mir.Binary)
		if !ok {
			if statementReferences(s, guardName) {
				return true
			}

			continue
		}

		if uint32(b.Name) == guardName || uint32(b.Name) == uint32(cmpName) {
			continue
		}

		if exprReferences(b.E1, guardName) || exprReferences(b.E2, guardName) {
			return true
		}
	}

	for _, lv := range w.LoopVariables {
		if uint32(lv.Name) == guardName {
			continue
		}

		if exprReferences(lv.LoopValue, guardName) || exprReferences(lv.InitialValue, guardName) {
			return true
		}
	}

	if w.BreakCollector != nil {
		for _, s := range w.Statements {
			if br, ok := s.(mir.Break); ok && exprReferences(br.Value, guardName) {
				return true
			}
		}
	}

	return false
}

func exprReferences(e mir.Expression, name uint32) bool {
	v, ok := e.(mir.Variable)
	return ok && uint32(v.Name) == name
}

func statementReferences(s mir.Statement, name uint32) bool {
	switch v := s.(type) {
	case mir.IsPointer:
		return exprReferences(v.Operand, name)
	case mir.Not:
		return exprReferences(v.Operand, name)
	case mir.IndexedAccess:
		return exprReferences(v.Pointer, name)
	case mir.Call:
		for _, a := range v.Arguments {
			if exprReferences(a, name) {
				return true
			}
		}

		if vc, ok := v.Callee.(mir.VariableCallee); ok && uint32(vc.Name.Name) == name {
			return true
		}

		return false
	case mir.Cast:
		return exprReferences(v.Expression, name)
	case mir.LateInitAssignment:
		return exprReferences(v.Expression, name)
	case mir.StructInit:
		for _, el := range v.Elements {
			if exprReferences(el, name) {
				return true
			}
		}

		return false
	case mir.ClosureInit:
		return exprReferences(v.Context, name)
	case mir.Break:
		return exprReferences(v.Value, name)
	case mir.IfElse:
		for _, inner := range v.S1 {
			if statementReferences(inner, name) {
				return true
			}
		}

		for _, inner := range v.S2 {
			if statementReferences(inner, name) {
				return true
			}
		}

		for _, fa := range v.FinalAssignments {
			if exprReferences(fa.ValueIfTrue, name) || exprReferences(fa.ValueIfFalse, name) {
				return true
			}
		}

		return exprReferences(v.Condition, name)
	case mir.SingleIf:
		for _, inner := range v.Statements {
			if statementReferences(inner, name) {
				return true
			}
		}

		return exprReferences(v.Condition, name)
	case mir.While:
		for _, lv := range v.LoopVariables {
			if exprReferences(lv.InitialValue, name) {
				return true
			}
		}

		for _, inner := range v.Statements {
			if statementReferences(inner, name) {
				return true
			}
		}

		return false
	default:
		return false
	}
}

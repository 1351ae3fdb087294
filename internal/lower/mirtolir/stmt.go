package mirtolir

import (
	"github.com/sail-lang/sailc/internal/irerr"
	"github.com/sail-lang/sailc/internal/lir"
	"github.com/sail-lang/sailc/internal/mir"
	"github.com/sail-lang/sailc/internal/pstr"
	"github.com/sail-lang/sailc/internal/symtab"
)

// funcLowerer lowers one function body, tracking the break-collector type
// of the nearest enclosing While so a Break's value can be cast to it.
type funcLowerer struct {
	l           *lowerer
	breakTarget *lir.Type
}

func (l *lowerer) lowerFunction(fn mir.Function) lir.Function {
	fl := &funcLowerer{l: l}

	return lir.Function{
		Name:        fn.Name,
		Parameters:  append([]pstr.PStr(nil), fn.Parameters...),
		Type:        l.lowerFunctionType(fn.Type),
		Body:        fl.lowerStatements(fn.Body),
		ReturnValue: fl.lowerExpression(fn.ReturnValue),
	}
}

func (fl *funcLowerer) lowerExpression(e mir.Expression) lir.Expression {
	switch v := e.(type) {
	case mir.IntLiteral:
		return lir.Int32Literal{Value: v.Value}
	case mir.StringName:
		return lir.StringName{Name: v.Name}
	case mir.Variable:
		return lir.Variable{Name: v.Name, Type: fl.l.lirType(v.Type)}
	default:
		irerr.Abort(irerr.New(irerr.CategoryEscapedGeneric, "unrecognized MIR expression %T", e))
		return nil
	}
}

// pointerTypeOf recovers the nominal type an IsPointer test's operand
// carries, for LIR's IsPointer.PointerType field (which MIR's IsPointer
// does not need, since MIR never erases the boxed/unboxed distinction).
func (fl *funcLowerer) pointerTypeOf(e mir.Expression) symtab.TypeNameId {
	v, ok := e.(mir.Variable)
	if !ok || v.Type.Kind() != symtab.TypeID {
		irerr.Abort(irerr.New(irerr.CategoryEscapedGeneric, "IsPointer operand %T has no nominal type to discriminate", e))
		return 0
	}

	return v.Type.ID()
}

// lowerStatements lowers one straight-line block. It first scans the block
// for LateInitDeclaration names and the index of whichever statement
// settles each one (a LateInitAssignment, or a ClosureInit/StructInit whose
// Name coincides with the declaration), then lowers every statement against
// that map so a ClosureInit/StructInit referencing one of those names ahead
// of its settling point is recognized as a forward reference. The scope is
// this block only: a nested If/While body scans and settles its own names
// independently.
func (fl *funcLowerer) lowerStatements(stmts []mir.Statement) []lir.Statement {
	lateDeclared := map[pstr.PStr]bool{}
	settleIndex := map[pstr.PStr]int{}

	for i, s := range stmts {
		switch v := s.(type) {
		case mir.LateInitDeclaration:
			lateDeclared[v.Name] = true
		case mir.LateInitAssignment:
			settleIndex[v.Name] = i
		case mir.ClosureInit:
			if lateDeclared[v.Name] {
				settleIndex[v.Name] = i
			}
		case mir.StructInit:
			if lateDeclared[v.Name] {
				settleIndex[v.Name] = i
			}
		}
	}

	out := make([]lir.Statement, 0, len(stmts))
	var patches []lir.Statement

	for i, s := range stmts {
		forward := func(e mir.Expression) (mir.Variable, bool) {
			ref, ok := e.(mir.Variable)
			if !ok || !lateDeclared[ref.Name] {
				return mir.Variable{}, false
			}

			settle, ok := settleIndex[ref.Name]
			if !ok || settle <= i {
				return mir.Variable{}, false
			}

			return ref, true
		}

		lowered, patch := fl.lowerStatement(s, forward)
		out = append(out, lowered...)
		patches = append(patches, patch...)
	}

	return append(out, patches...)
}

// lowerStatement lowers one MIR statement. Most shapes are one-to-one;
// Call may expand to a function-pointer/context load followed by the call
// itself, and ClosureInit/StructInit may defer part of their construction
// to the returned patch list.
func (fl *funcLowerer) lowerStatement(s mir.Statement, forward forwardRef) ([]lir.Statement, []lir.Statement) {
	switch v := s.(type) {
	case mir.Binary:
		return []lir.Statement{lir.Binary{Name: v.Name, Op: v.Op, E1: fl.lowerExpression(v.E1), E2: fl.lowerExpression(v.E2)}}, nil

	case mir.IsPointer:
		operand := fl.lowerExpression(v.Operand)
		return []lir.Statement{lir.IsPointer{Name: v.Name, PointerType: fl.pointerTypeOf(v.Operand), Operand: operand}}, nil

	case mir.Not:
		return []lir.Statement{lir.Not{Name: v.Name, Operand: fl.lowerExpression(v.Operand)}}, nil

	case mir.IndexedAccess:
		return []lir.Statement{lir.IndexedAccess{
			Name:    v.Name,
			Type:    fl.l.lirType(v.Type),
			Pointer: fl.lowerExpression(v.Pointer),
			Index:   v.Index,
		}}, nil

	case mir.Call:
		return fl.lowerCall(v), nil

	case mir.IfElse:
		s1 := fl.lowerStatements(v.S1)
		s2 := fl.lowerStatements(v.S2)

		finals := make([]lir.FinalAssignment, len(v.FinalAssignments))
		for i, f := range v.FinalAssignments {
			target := fl.l.lirType(f.Type)

			truePre, trueCasted := fl.l.castTo(target, fl.lowerExpression(f.ValueIfTrue))
			s1 = append(s1, truePre...)

			falsePre, falseCasted := fl.l.castTo(target, fl.lowerExpression(f.ValueIfFalse))
			s2 = append(s2, falsePre...)

			finals[i] = lir.FinalAssignment{Name: f.Name, Type: target, ValueIfTrue: trueCasted, ValueIfFalse: falseCasted}
		}

		return []lir.Statement{lir.IfElse{
			Condition:        fl.lowerExpression(v.Condition),
			S1:               s1,
			S2:               s2,
			FinalAssignments: finals,
		}}, nil

	case mir.SingleIf:
		return []lir.Statement{lir.SingleIf{
			Condition:  fl.lowerExpression(v.Condition),
			Invert:     v.Invert,
			Statements: fl.lowerStatements(v.Statements),
		}}, nil

	case mir.Break:
		val := fl.lowerExpression(v.Value)
		if fl.breakTarget == nil {
			return []lir.Statement{lir.Break{Value: val}}, nil
		}

		pre, casted := fl.l.castTo(*fl.breakTarget, val)
		return append(pre, lir.Break{Value: casted}), nil

	case mir.While:
		var collector *lir.BreakCollectorVar
		var breakTarget *lir.Type
		if v.BreakCollector != nil {
			t := fl.l.lirType(v.BreakCollector.Type)
			collector = &lir.BreakCollectorVar{Name: v.BreakCollector.Name, Type: t}
			breakTarget = &t
		}

		savedTarget := fl.breakTarget
		fl.breakTarget = breakTarget
		body := fl.lowerStatements(v.Statements)
		fl.breakTarget = savedTarget

		var pre []lir.Statement
		loopVars := make([]lir.LoopVariable, len(v.LoopVariables))

		for i, lv := range v.LoopVariables {
			target := fl.l.lirType(lv.Type)

			initPre, initCasted := fl.l.castTo(target, fl.lowerExpression(lv.InitialValue))
			pre = append(pre, initPre...)

			loopPre, loopCasted := fl.l.castTo(target, fl.lowerExpression(lv.LoopValue))
			body = append(body, loopPre...)

			loopVars[i] = lir.LoopVariable{Name: lv.Name, Type: target, InitialValue: initCasted, LoopValue: loopCasted}
		}

		return append(pre, lir.While{LoopVariables: loopVars, Statements: body, BreakCollector: collector}), nil

	case mir.Cast:
		return []lir.Statement{lir.Cast{Name: v.Name, Type: fl.l.lirType(v.Type), Expression: fl.lowerExpression(v.Expression)}}, nil

	case mir.LateInitDeclaration:
		return []lir.Statement{lir.LateInitDeclaration{Name: v.Name, Type: fl.l.lirType(v.Type)}}, nil

	case mir.LateInitAssignment:
		return []lir.Statement{lir.LateInitAssignment{Name: v.Name, Expression: fl.lowerExpression(v.Expression)}}, nil

	case mir.StructInit:
		return fl.lowerStructInit(v, forward)

	case mir.ClosureInit:
		return fl.lowerClosureInit(v, forward)

	default:
		irerr.Abort(irerr.New(irerr.CategoryEscapedGeneric, "unrecognized MIR statement %T", s))
		return nil, nil
	}
}

package mirtolir

import (
	"github.com/sail-lang/sailc/internal/lir"
	"github.com/sail-lang/sailc/internal/mir"
	"github.com/sail-lang/sailc/internal/symtab"
)

// forwardRef reports whether e is a reference to a name this block
// forward-declared (LateInitDeclaration) whose settling assignment has not
// run yet at the current statement, and if so returns that reference typed
// as MIR knows it.
type forwardRef func(e mir.Expression) (mir.Variable, bool)

// structFieldTypes returns the declared field types of a struct type, or
// false if typeName does not name a StructMapping (a closure context tuple
// synthesized upstream is itself one, so this covers both user records and
// synthesized ones).
func (l *lowerer) structFieldTypes(typeName symtab.TypeNameId) ([]mir.Type, bool) {
	sm, ok := l.typeDefs[typeName].(mir.StructMapping)
	if !ok {
		return nil, false
	}

	return sm.Fields, true
}

// lowerClosureInit expands a ClosureInit into the StructInit its two-slot
// record actually is: slot 0 is the function pointer, slot 1 is the
// context, always widened to AnyPointer since two closures satisfying the
// same FunctionType can close over structurally different context records.
// When Context forward-references a name this block has not settled yet
// (the mutually recursive local closure case), the record is built with a
// placeholder in slot 1 and patched in afterward with an IndexedAssign.
func (fl *funcLowerer) lowerClosureInit(v mir.ClosureInit, forward forwardRef) ([]lir.Statement, []lir.Statement) {
	fnType := fl.l.lowerFunctionType(v.FunctionType)
	fnExpr := lir.FnName{Name: v.Function, Type: lir.FnType(fnType)}

	if dep, ok := forward(v.Context); ok {
		elem := []lir.Statement{lir.StructInit{
			Name:     v.Name,
			TypeName: v.ClosureTypeName,
			Elements: []lir.Expression{fnExpr, lir.Zero},
		}}

		depExpr := fl.lowerExpression(dep)
		pre, casted := fl.l.castTo(lir.AnyPointer, depExpr)

		patch := append(pre, lir.IndexedAssign{
			Pointer: lir.Variable{Name: v.Name, Type: lir.IDType(v.ClosureTypeName)},
			Index:   1,
			Value:   casted,
		})

		return elem, patch
	}

	ctxExpr := fl.lowerExpression(v.Context)
	pre, casted := fl.l.castTo(lir.AnyPointer, ctxExpr)

	return append(pre, lir.StructInit{
		Name:     v.Name,
		TypeName: v.ClosureTypeName,
		Elements: []lir.Expression{fnExpr, casted},
	}), nil
}

// lowerStructInit lowers an ordinary record construction (including a
// closure's own synthesized context tuple). Per-element forward references
// get the same placeholder-then-IndexedAssign treatment as a ClosureInit's
// context.
func (fl *funcLowerer) lowerStructInit(v mir.StructInit, forward forwardRef) ([]lir.Statement, []lir.Statement) {
	fieldTypes, hasFields := fl.l.structFieldTypes(v.TypeName)

	elems := make([]lir.Expression, len(v.Elements))

	var pre []lir.Statement
	var patch []lir.Statement

	for i, e := range v.Elements {
		target := lir.Int32
		if hasFields {
			target = fl.l.lirType(fieldTypes[i])
		}

		if dep, ok := forward(e); ok {
			depExpr := fl.lowerExpression(dep)
			if !hasFields {
				target = natural(depExpr)
			}

			elems[i] = lir.Zero

			patchPre, casted := fl.l.castTo(target, depExpr)
			patch = append(patch, patchPre...)
			patch = append(patch, lir.IndexedAssign{
				Pointer: lir.Variable{Name: v.Name, Type: lir.IDType(v.TypeName)},
				Index:   i,
				Value:   casted,
			})

			continue
		}

		lowered := fl.lowerExpression(e)
		if !hasFields {
			elems[i] = lowered
			continue
		}

		castPre, casted := fl.l.castTo(target, lowered)
		pre = append(pre, castPre...)
		elems[i] = casted
	}

	return append(pre, lir.StructInit{Name: v.Name, TypeName: v.TypeName, Elements: elems}), patch
}

package mirtolir

import (
	"github.com/sail-lang/sailc/internal/irerr"
	"github.com/sail-lang/sailc/internal/lir"
	"github.com/sail-lang/sailc/internal/mir"
)

// lowerCall expands a mir.Call into one or more lir.Statements. A direct
// (FunctionNameCallee) call lowers one-to-one. A closure-valued
// (VariableCallee) call does not: LIR's Call.Callee is always a bare
// function-shaped Expression, so the closure record's two slots must be
// loaded first — slot 0, the function pointer, becomes the Call's Callee;
// slot 1, the context, is prepended to Arguments.
func (fl *funcLowerer) lowerCall(v mir.Call) []lir.Statement {
	args := make([]lir.Expression, len(v.Arguments))
	for i, a := range v.Arguments {
		args[i] = fl.lowerExpression(a)
	}

	retType := fl.l.lirType(v.ReturnType)

	switch callee := v.Callee.(type) {
	case mir.FunctionNameCallee:
		fnType := fl.l.lowerFunctionType(callee.Type)

		return []lir.Statement{lir.Call{
			Callee:          lir.FnName{Name: callee.Name, Type: lir.FnType(fnType)},
			Arguments:       args,
			ReturnType:      retType,
			ReturnCollector: v.ReturnCollector,
		}}

	case mir.VariableCallee:
		closureVar := lir.Variable{Name: callee.Name.Name, Type: fl.l.lirType(callee.Name.Type)}
		fnSlotType := fl.l.closureFunctionType(callee.Name.Type)

		fnName := fl.l.heap.AllocTemp()
		ctxName := fl.l.heap.AllocTemp()

		loadFn := lir.IndexedAccess{Name: fnName, Type: lir.FnType(fnSlotType), Pointer: closureVar, Index: 0}
		loadCtx := lir.IndexedAccess{Name: ctxName, Type: lir.AnyPointer, Pointer: closureVar, Index: 1}

		callArgs := append([]lir.Expression{lir.Variable{Name: ctxName, Type: lir.AnyPointer}}, args...)

		call := lir.Call{
			Callee:          lir.Variable{Name: fnName, Type: lir.FnType(fnSlotType)},
			Arguments:       callArgs,
			ReturnType:      retType,
			ReturnCollector: v.ReturnCollector,
		}

		return []lir.Statement{loadFn, loadCtx, call}

	default:
		irerr.Abort(irerr.New(irerr.CategoryEscapedGeneric, "unrecognized MIR callee %T", v.Callee))
		return nil
	}
}

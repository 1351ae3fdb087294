package mirtolir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sail-lang/sailc/internal/lir"
	"github.com/sail-lang/sailc/internal/mir"
	"github.com/sail-lang/sailc/internal/pstr"
	"github.com/sail-lang/sailc/internal/symtab"
)

type harness struct {
	heap  *pstr.Heap
	table *symtab.Table
}

func newHarness() harness {
	heap := pstr.NewHeap()
	return harness{heap: heap, table: symtab.New(heap)}
}

func TestLowerDirectCallPassesThrough(t *testing.T) {
	h := newHarness()
	owner := h.table.CreateSimple(symtab.Root, h.heap.Alloc("Main"))
	callee := h.heap.Alloc("callee")
	mainFn := h.heap.Alloc("main")
	result := h.heap.Alloc("result")

	fn := mir.Function{
		Name: mir.FunctionName{TypeName: owner, FnName: mainFn},
		Type: mir.FunctionType{ReturnType: mir.Int},
		Body: []mir.Statement{
			mir.Call{
				Callee:          mir.FunctionNameCallee{Name: mir.FunctionName{TypeName: owner, FnName: callee}, Type: mir.FunctionType{ReturnType: mir.Int}},
				ReturnType:      mir.Int,
				ReturnCollector: &result,
			},
		},
		ReturnValue: mir.Variable{Name: result, Type: mir.Int},
	}

	src := &mir.Sources{SymbolTable: h.table, MainFunctionNames: []mir.FunctionName{fn.Name}, Functions: []mir.Function{fn}}

	out := Lower(src, h.heap)
	require.Len(t, out.Functions, 1)

	call, ok := out.Functions[0].Body[0].(lir.Call)
	require.True(t, ok, "direct call lowers to a single lir.Call")

	fnName, ok := call.Callee.(lir.FnName)
	require.True(t, ok, "direct callee lowers to a bare FnName, not an IndexedAccess sequence")
	assert.Equal(t, callee, fnName.Name.FnName)
}

func TestLowerIndirectCallLoadsFunctionPointerAndContext(t *testing.T) {
	h := newHarness()
	owner := h.table.CreateSimple(symtab.Root, h.heap.Alloc("Main"))
	closureType := h.table.CreateSimple(symtab.Root, h.heap.Alloc("$Closure0"))
	mainFn := h.heap.Alloc("main")
	closureVar := h.heap.Alloc("f")

	fnType := mir.FunctionType{ArgumentTypes: []mir.Type{mir.Int}, ReturnType: mir.Int}

	fn := mir.Function{
		Name: mir.FunctionName{TypeName: owner, FnName: mainFn},
		Type: mir.FunctionType{ReturnType: mir.Int},
		Body: []mir.Statement{
			mir.Call{
				Callee:     mir.VariableCallee{Name: mir.Variable{Name: closureVar, Type: mir.IDType(closureType)}},
				Arguments:  []mir.Expression{mir.IntLiteral{Value: 1}},
				ReturnType: mir.Int,
			},
		},
		ReturnValue: mir.IntLiteral{Value: 0},
	}

	src := &mir.Sources{
		SymbolTable:       h.table,
		ClosureTypes:      []mir.ClosureTypeDef{{Name: closureType, FunctionType: fnType}},
		MainFunctionNames: []mir.FunctionName{fn.Name},
		Functions:         []mir.Function{fn},
	}

	out := Lower(src, h.heap)
	body := out.Functions[0].Body

	require.Len(t, body, 3, "load function pointer, load context, then call")

	loadFn, ok := body[0].(lir.IndexedAccess)
	require.True(t, ok)
	assert.Equal(t, 0, loadFn.Index)

	loadCtx, ok := body[1].(lir.IndexedAccess)
	require.True(t, ok)
	assert.Equal(t, 1, loadCtx.Index)
	assert.True(t, lir.AnyPointer.IsTheSameType(loadCtx.Type), "context slot loads as AnyPointer")

	call, ok := body[2].(lir.Call)
	require.True(t, ok)
	assert.Len(t, call.Arguments, 2, "context prepended ahead of the original argument")

	calleeVar, ok := call.Callee.(lir.Variable)
	require.True(t, ok, "indirect callee calls the loaded function pointer, not a callee union")
	assert.Equal(t, loadFn.Name, calleeVar.Name)
}

func TestLowerClosureInitExpandsToStructInit(t *testing.T) {
	h := newHarness()
	owner := h.table.CreateSimple(symtab.Root, h.heap.Alloc("Main"))
	closureType := h.table.CreateSimple(symtab.Root, h.heap.Alloc("$Closure0"))
	target := h.heap.Alloc("target")
	mainFn := h.heap.Alloc("main")
	f := h.heap.Alloc("f")

	fnType := mir.FunctionType{ReturnType: mir.Int}

	fn := mir.Function{
		Name: mir.FunctionName{TypeName: owner, FnName: mainFn},
		Type: mir.FunctionType{ReturnType: mir.Int},
		Body: []mir.Statement{
			mir.ClosureInit{
				Name:            f,
				ClosureTypeName: closureType,
				Function:        mir.FunctionName{TypeName: owner, FnName: target},
				FunctionType:    fnType,
				Context:         mir.IntLiteral{Value: 0},
			},
		},
		ReturnValue: mir.IntLiteral{Value: 0},
	}

	src := &mir.Sources{
		SymbolTable:       h.table,
		ClosureTypes:      []mir.ClosureTypeDef{{Name: closureType, FunctionType: fnType}},
		MainFunctionNames: []mir.FunctionName{fn.Name},
		Functions:         []mir.Function{fn},
	}

	out := Lower(src, h.heap)
	body := out.Functions[0].Body

	structInit, ok := body[len(body)-1].(lir.StructInit)
	require.True(t, ok, "ClosureInit must expand into a StructInit")
	require.Len(t, structInit.Elements, 2)

	fnSlot, ok := structInit.Elements[0].(lir.FnName)
	require.True(t, ok, "slot 0 is the function pointer")
	assert.Equal(t, target, fnSlot.Name.FnName)
}

func TestLowerMutuallyRecursiveClosuresUseIndexedAssign(t *testing.T) {
	h := newHarness()
	owner := h.table.CreateSimple(symtab.Root, h.heap.Alloc("Main"))
	closureType := h.table.CreateSimple(symtab.Root, h.heap.Alloc("$Closure0"))
	mainFn := h.heap.Alloc("main")
	a := h.heap.Alloc("a")
	b := h.heap.Alloc("b")
	targetA := h.heap.Alloc("targetA")
	targetB := h.heap.Alloc("targetB")

	fnType := mir.FunctionType{ReturnType: mir.IDType(closureType)}

	fn := mir.Function{
		Name: mir.FunctionName{TypeName: owner, FnName: mainFn},
		Type: mir.FunctionType{ReturnType: mir.Int},
		Body: []mir.Statement{
			mir.LateInitDeclaration{Name: a, Type: mir.IDType(closureType)},
			mir.LateInitDeclaration{Name: b, Type: mir.IDType(closureType)},
			mir.ClosureInit{
				Name:            a,
				ClosureTypeName: closureType,
				Function:        mir.FunctionName{TypeName: owner, FnName: targetA},
				FunctionType:    fnType,
				Context:         mir.Variable{Name: b, Type: mir.IDType(closureType)},
			},
			mir.ClosureInit{
				Name:            b,
				ClosureTypeName: closureType,
				Function:        mir.FunctionName{TypeName: owner, FnName: targetB},
				FunctionType:    fnType,
				Context:         mir.Variable{Name: a, Type: mir.IDType(closureType)},
			},
		},
		ReturnValue: mir.IntLiteral{Value: 0},
	}

	src := &mir.Sources{
		SymbolTable:       h.table,
		ClosureTypes:      []mir.ClosureTypeDef{{Name: closureType, FunctionType: fnType}},
		MainFunctionNames: []mir.FunctionName{fn.Name},
		Functions:         []mir.Function{fn},
	}

	out := Lower(src, h.heap)
	body := out.Functions[0].Body

	var patches int
	for _, s := range body {
		if _, ok := s.(lir.IndexedAssign); ok {
			patches++
		}
	}

	assert.Equal(t, 1, patches, "a's context forward-references b, so exactly one slot is patched after the block")

	last, ok := body[len(body)-1].(lir.IndexedAssign)
	require.True(t, ok, "the patch is emitted last, after both records exist")
	assert.Equal(t, 1, last.Index)
}

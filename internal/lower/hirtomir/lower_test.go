package hirtomir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sail-lang/sailc/internal/config"
	"github.com/sail-lang/sailc/internal/hir"
	"github.com/sail-lang/sailc/internal/mir"
	"github.com/sail-lang/sailc/internal/pstr"
	"github.com/sail-lang/sailc/internal/symtab"
)

// harness wires a fresh heap/table and returns a helper to declare an
// owning nominal type name for test functions.
type harness struct {
	heap  *pstr.Heap
	table *symtab.Table
}

func newHarness() harness {
	heap := pstr.NewHeap()
	return harness{heap: heap, table: symtab.New(heap)}
}

func TestLowerMonomorphizesEachCallSiteInstantiation(t *testing.T) {
	h := newHarness()
	owner := h.table.CreateSimple(symtab.Root, h.heap.Alloc("Box"))
	identity := h.heap.Alloc("identity")
	typeParam := h.table.CreateSimple(symtab.Root, h.heap.Alloc("T"))
	mainFn := h.heap.Alloc("main")
	retCollector := h.heap.Alloc("result")

	identityFn := hir.Function{
		Name:           hir.FunctionNameID{TypeName: owner, Member: identity},
		TypeParameters: []symtab.TypeNameId{typeParam},
		Parameters:     []pstr.PStr{h.heap.Alloc("x")},
		Type: hir.FunctionType{
			ArgumentTypes: []hir.Type{hir.IDType{Name: typeParam}},
			ReturnType:    hir.IDType{Name: typeParam},
		},
		Body:        nil,
		ReturnValue: hir.Variable{Name: h.heap.Alloc("x"), Type: hir.IDType{Name: typeParam}},
	}

	mainFunc := hir.Function{
		Name:       hir.FunctionNameID{TypeName: owner, Member: mainFn},
		Parameters: nil,
		Type:       hir.FunctionType{ReturnType: hir.IntType{}},
		Body: []hir.Statement{
			hir.Call{
				Callee: hir.FunctionNameCallee{Name: hir.FunctionName{
					TypeName:     owner,
					Name:         identity,
					Type:         hir.FunctionType{ArgumentTypes: []hir.Type{hir.IntType{}}, ReturnType: hir.IntType{}},
					TypeArgument: []hir.Type{hir.IntType{}},
				}},
				Arguments:       []hir.Expression{hir.IntLiteral{Value: 42, IsInt: true}},
				ReturnType:      hir.IntType{},
				ReturnCollector: &retCollector,
			},
		},
		ReturnValue: hir.Variable{Name: retCollector, Type: hir.IntType{}},
	}

	src := &hir.Sources{
		SymbolTable:       h.table,
		MainFunctionNames: []hir.FunctionNameID{mainFunc.Name},
		Functions:         []hir.Function{identityFn, mainFunc},
	}

	out := Lower(src, h.heap, h.table, config.Default())

	require.Len(t, out.Functions, 2, "identity specialized exactly once for the one type argument observed")

	var specialized *mir.Function
	for i := range out.Functions {
		if out.Functions[i].Name.FnName == identity {
			specialized = &out.Functions[i]
		}
	}

	require.NotNil(t, specialized, "specialized identity function must be present")
	assert.NotEqual(t, owner, specialized.Name.TypeName, "specialization must derive a new TypeNameId distinct from the generic owner")
}

func TestLowerErasesEmptyCaptureClosureToNullContext(t *testing.T) {
	h := newHarness()
	owner := h.table.CreateSimple(symtab.Root, h.heap.Alloc("Box"))
	callback := h.heap.Alloc("callback")
	mainFn := h.heap.Alloc("main")
	closureVar := h.heap.Alloc("f")

	callbackFn := hir.Function{
		Name:        hir.FunctionNameID{TypeName: owner, Member: callback},
		Parameters:  nil,
		Type:        hir.FunctionType{ReturnType: hir.IntType{}},
		Body:        nil,
		ReturnValue: hir.IntLiteral{Value: 1, IsInt: true},
	}

	mainFunc := hir.Function{
		Name: hir.FunctionNameID{TypeName: owner, Member: mainFn},
		Type: hir.FunctionType{ReturnType: hir.IntType{}},
		Body: []hir.Statement{
			hir.ClosureInit{
				Name: closureVar,
				Function: hir.FunctionName{
					TypeName: owner,
					Name:     callback,
					Type:     hir.FunctionType{ReturnType: hir.IntType{}},
				},
				CapturedVariables: nil,
			},
		},
		ReturnValue: hir.IntLiteral{Value: 0, IsInt: true},
	}

	src := &hir.Sources{
		SymbolTable:       h.table,
		MainFunctionNames: []hir.FunctionNameID{mainFunc.Name},
		Functions:         []hir.Function{callbackFn, mainFunc},
	}

	out := Lower(src, h.heap, h.table, config.Default())

	var mainOut *mir.Function
	for i := range out.Functions {
		if out.Functions[i].Name.FnName == mainFn {
			mainOut = &out.Functions[i]
		}
	}

	require.NotNil(t, mainOut)
	require.Len(t, mainOut.Body, 1)

	closureInit, ok := mainOut.Body[0].(mir.ClosureInit)
	require.True(t, ok, "empty-capture ClosureInit must lower to a single ClosureInit statement")
	assert.Equal(t, mir.IntLiteral{Value: 0}, closureInit.Context, "empty captures lower to a null context")
}

func TestLowerPacksCapturedVariablesIntoSynthesizedTuple(t *testing.T) {
	h := newHarness()
	owner := h.table.CreateSimple(symtab.Root, h.heap.Alloc("Box"))
	callback := h.heap.Alloc("callback")
	mainFn := h.heap.Alloc("main")
	closureVar := h.heap.Alloc("f")
	captured := h.heap.Alloc("n")

	callbackFn := hir.Function{
		Name:        hir.FunctionNameID{TypeName: owner, Member: callback},
		Type:        hir.FunctionType{ReturnType: hir.IntType{}},
		ReturnValue: hir.IntLiteral{Value: 1, IsInt: true},
	}

	mainFunc := hir.Function{
		Name: hir.FunctionNameID{TypeName: owner, Member: mainFn},
		Type: hir.FunctionType{ReturnType: hir.IntType{}},
		Body: []hir.Statement{
			hir.ClosureInit{
				Name: closureVar,
				Function: hir.FunctionName{
					TypeName: owner,
					Name:     callback,
					Type:     hir.FunctionType{ReturnType: hir.IntType{}},
				},
				CapturedVariables: []hir.Expression{hir.Variable{Name: captured, Type: hir.IntType{}}},
			},
		},
		ReturnValue: hir.IntLiteral{Value: 0, IsInt: true},
	}

	src := &hir.Sources{
		SymbolTable:       h.table,
		MainFunctionNames: []hir.FunctionNameID{mainFunc.Name},
		Functions:         []hir.Function{callbackFn, mainFunc},
	}

	out := Lower(src, h.heap, h.table, config.Default())

	var mainOut *mir.Function
	for i := range out.Functions {
		if out.Functions[i].Name.FnName == mainFn {
			mainOut = &out.Functions[i]
		}
	}

	require.NotNil(t, mainOut)
	require.Len(t, mainOut.Body, 2, "a non-empty capture list packs into a StructInit ahead of the ClosureInit")

	structInit, ok := mainOut.Body[0].(mir.StructInit)
	require.True(t, ok)
	assert.Len(t, structInit.Elements, 1)

	closureInit, ok := mainOut.Body[1].(mir.ClosureInit)
	require.True(t, ok)

	contextVar, ok := closureInit.Context.(mir.Variable)
	require.True(t, ok, "packed context must be a reference to the synthesized struct")
	assert.Equal(t, structInit.Name, contextVar.Name)
	assert.Len(t, out.TypeDefinitions, 1, "exactly one tuple type synthesized for the one observed capture shape")
}

func TestTypeSynthesizerSharesIdForIdenticalShapes(t *testing.T) {
	h := newHarness()
	synth := NewTypeSynthesizer(h.heap, h.table)

	ft := mir.FunctionType{ArgumentTypes: []mir.Type{mir.Int}, ReturnType: mir.Int}
	id1 := synth.SynthesizeClosureType(ft)
	id2 := synth.SynthesizeClosureType(ft)

	assert.Equal(t, id1, id2, "identical function-type shapes must share one synthesized closure type")
	assert.Len(t, synth.ClosureTypeDefs(), 1)
}

func TestTypeSynthesizerDistinguishesTupleShapes(t *testing.T) {
	h := newHarness()
	synth := NewTypeSynthesizer(h.heap, h.table)

	idIntString := synth.SynthesizeTupleType([]mir.Type{mir.Int, mir.IDType(symtab.Str)})
	idStringInt := synth.SynthesizeTupleType([]mir.Type{mir.IDType(symtab.Str), mir.Int})

	assert.NotEqual(t, idIntString, idStringInt, "field order is part of a tuple shape's identity")
	assert.Len(t, synth.TupleTypeDefs(), 2)
}

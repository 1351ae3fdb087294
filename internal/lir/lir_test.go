package lir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sail-lang/sailc/internal/pstr"
	"github.com/sail-lang/sailc/internal/symtab"
)

func TestTypeIsTheSameType(t *testing.T) {
	h := pstr.NewHeap()
	tab := symtab.New(h)
	boxName := h.Alloc("Box")
	id := tab.CreateSimple(symtab.Root, boxName)

	assert.True(t, Int32.IsTheSameType(Int32))
	assert.False(t, Int32.IsTheSameType(Int31))
	assert.True(t, IDType(id).IsTheSameType(IDType(id)))

	other := tab.CreateSimple(symtab.Root, h.Alloc("Other"))
	assert.False(t, IDType(id).IsTheSameType(IDType(other)))
}

func TestRefCountable(t *testing.T) {
	h := pstr.NewHeap()
	tab := symtab.New(h)
	boxName := h.Alloc("Box")
	id := tab.CreateSimple(symtab.Root, boxName)

	assert.False(t, RefCountable(Int32Literal{Value: 1}))
	assert.False(t, RefCountable(Int31Literal{Value: 1}))
	assert.True(t, RefCountable(StringName{Name: h.Alloc("s")}))
	assert.True(t, RefCountable(Variable{Name: h.Alloc("x"), Type: IDType(id)}))
	assert.False(t, RefCountable(Variable{Name: h.Alloc("y"), Type: Int32}))
}

func TestPrintFunctionShape(t *testing.T) {
	h := pstr.NewHeap()
	tab := symtab.New(h)
	owner := tab.CreateSimple(symtab.Root, h.Alloc("Main"))
	fn := Function{
		Name:       FunctionName{TypeName: owner, FnName: h.Alloc("run")},
		Parameters: []pstr.PStr{h.Alloc("x")},
		Type:       FunctionType{ArgumentTypes: []Type{Int32}, ReturnType: Int32},
		Body: []Statement{
			Binary{Name: h.Alloc("y"), Op: OpPlus, E1: Variable{Name: h.Alloc("x"), Type: Int32}, E2: Int32Literal{Value: 1}},
		},
		ReturnValue: Variable{Name: h.Alloc("y"), Type: Int32},
	}
	src := &Sources{SymbolTable: tab, Functions: []Function{fn}}

	out := NewPrinter(h, tab).Print(src)
	assert.Contains(t, out, "function _"+tab.EncodedName(owner)+"$run(x: number): number {")
	assert.Contains(t, out, "let y = x + 1;")
	assert.Contains(t, out, "return y;")
}

func TestPrintDivIsFloored(t *testing.T) {
	h := pstr.NewHeap()
	tab := symtab.New(h)
	out := NewPrinter(h, tab).printBinary(Binary{
		Name: h.AllocTemp(), Op: OpDiv,
		E1: Int32Literal{Value: 7}, E2: Int32Literal{Value: 2},
	})
	assert.Equal(t, "Math.floor(7 / 2)", out)
}

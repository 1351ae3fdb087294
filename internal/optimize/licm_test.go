package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sail-lang/sailc/internal/mir"
	"github.com/sail-lang/sailc/internal/pstr"
	"github.com/sail-lang/sailc/internal/symtab"
)

// TestLICMHoistsComputationOverOuterBoundNamesOnly builds a While whose
// first statement depends only on a name bound earlier in the same
// function (outside the loop); the loop-carried increment that follows it
// must stay behind since it reads the loop variable itself.
func TestLICMHoistsComputationOverOuterBoundNamesOnly(t *testing.T) {
	h := newHarness()
	owner := h.table.CreateSimple(symtab.Root, h.heap.Alloc("Main"))
	ctx := newContext(h)

	k, local, i, iNext, inv := h.v("k"), h.v("local"), h.v("i"), h.v("iNext"), h.v("inv")

	localDef := mir.Binary{Name: local, Op: mir.OpPlus, E1: mir.Variable{Name: k, Type: mir.Int}, E2: mir.IntLiteral{Value: 0}}
	invariantDef := mir.Binary{Name: inv, Op: mir.OpMul, E1: mir.Variable{Name: local, Type: mir.Int}, E2: mir.IntLiteral{Value: 2}}
	iNextDef := mir.Binary{Name: iNext, Op: mir.OpPlus, E1: mir.Variable{Name: i, Type: mir.Int}, E2: mir.IntLiteral{Value: 1}}

	loop := mir.While{
		LoopVariables: []mir.LoopVariable{
			{Name: i, Type: mir.Int, InitialValue: mir.IntLiteral{Value: 0}, LoopValue: mir.Variable{Name: iNext, Type: mir.Int}},
		},
		Statements: []mir.Statement{invariantDef, iNextDef},
	}

	fn := mir.Function{
		Name:        h.fn(owner, "run"),
		Parameters:  []pstr.PStr{k},
		Type:        mir.FunctionType{ArgumentTypes: []mir.Type{mir.Int}, ReturnType: mir.Int},
		Body:        []mir.Statement{localDef, loop},
		ReturnValue: mir.IntLiteral{Value: 0},
	}

	src := &mir.Sources{SymbolTable: h.table, Functions: []mir.Function{fn}}

	out, changed := runLoopInvariantCodeMotion(ctx, src)
	require.True(t, changed)

	body := out.Functions[0].Body
	require.Len(t, body, 3, "expected localDef, the hoisted invariant, then the While")

	assert.Equal(t, localDef, body[0])
	assert.Equal(t, invariantDef, body[1])

	rewrittenLoop, ok := body[2].(mir.While)
	require.True(t, ok, "expected the third statement to still be the While, got %T", body[2])
	require.Len(t, rewrittenLoop.Statements, 1, "the invariant binary should have been hoisted out of the loop body")
	assert.Equal(t, iNextDef, rewrittenLoop.Statements[0])
}

// TestLICMLeavesAPureLoopAlone checks the negative case: a While whose
// only statement reads the loop variable itself has nothing to hoist.
func TestLICMLeavesAPureLoopAlone(t *testing.T) {
	h := newHarness()
	owner := h.table.CreateSimple(symtab.Root, h.heap.Alloc("Main"))
	ctx := newContext(h)

	i, iNext := h.v("i"), h.v("iNext")
	iNextDef := mir.Binary{Name: iNext, Op: mir.OpPlus, E1: mir.Variable{Name: i, Type: mir.Int}, E2: mir.IntLiteral{Value: 1}}

	loop := mir.While{
		LoopVariables: []mir.LoopVariable{
			{Name: i, Type: mir.Int, InitialValue: mir.IntLiteral{Value: 0}, LoopValue: mir.Variable{Name: iNext, Type: mir.Int}},
		},
		Statements: []mir.Statement{iNextDef},
	}

	fn := mir.Function{
		Name:        h.fn(owner, "run"),
		Type:        mir.FunctionType{ReturnType: mir.Int},
		Body:        []mir.Statement{loop},
		ReturnValue: mir.IntLiteral{Value: 0},
	}

	src := &mir.Sources{SymbolTable: h.table, Functions: []mir.Function{fn}}

	_, changed := runLoopInvariantCodeMotion(ctx, src)
	assert.False(t, changed)
}

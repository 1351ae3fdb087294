package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sail-lang/sailc/internal/mir"
	"github.com/sail-lang/sailc/internal/symtab"
)

// TestInductionVariableEliminationDeclinesWhenDerivedVariableReadsTheGuard
// builds a loop with a basic induction variable i (stepped by +1, guarded
// by i >= 5) and a derived variable j = i*3 computed from i every
// iteration. j's own defining statement reads i outside of i's guard
// comparison and its own step, which usedOutsideGuardAndStep treats as a
// use the rewrite cannot account for — so the pass must leave the loop
// exactly as it found it rather than attempt an unsound rewrite.
func TestInductionVariableEliminationDeclinesWhenDerivedVariableReadsTheGuard(t *testing.T) {
	h := newHarness()
	owner := h.table.CreateSimple(symtab.Root, h.heap.Alloc("Main"))
	ctx := newContext(h)

	i, iNext, cmp, j := h.v("i"), h.v("iNext"), h.v("cmp"), h.v("j")

	cmpDef := mir.Binary{Name: cmp, Op: mir.OpGe, E1: mir.Variable{Name: i, Type: mir.Int}, E2: mir.IntLiteral{Value: 5}}
	guard := mir.SingleIf{
		Condition:  mir.Variable{Name: cmp, Type: mir.Int},
		Statements: []mir.Statement{mir.Break{Value: mir.IntLiteral{Value: 0}}},
	}
	jDef := mir.Binary{Name: j, Op: mir.OpMul, E1: mir.Variable{Name: i, Type: mir.Int}, E2: mir.IntLiteral{Value: 3}}
	iNextDef := mir.Binary{Name: iNext, Op: mir.OpPlus, E1: mir.Variable{Name: i, Type: mir.Int}, E2: mir.IntLiteral{Value: 1}}

	loop := mir.While{
		LoopVariables: []mir.LoopVariable{
			{Name: i, Type: mir.Int, InitialValue: mir.IntLiteral{Value: 0}, LoopValue: mir.Variable{Name: iNext, Type: mir.Int}},
		},
		Statements:     []mir.Statement{cmpDef, guard, jDef, iNextDef},
		BreakCollector: &mir.BreakCollectorVar{Name: h.v("bc"), Type: mir.Int},
	}

	fn := mir.Function{
		Name:        h.fn(owner, "count"),
		Type:        mir.FunctionType{ReturnType: mir.Int},
		Body:        []mir.Statement{loop},
		ReturnValue: mir.IntLiteral{Value: 0},
	}

	src := &mir.Sources{SymbolTable: h.table, Functions: []mir.Function{fn}}

	out, changed := runLoopInductionVariableElimination(ctx, src)
	assert.False(t, changed)
	assert.Same(t, src, out)

	rewrittenLoop := out.Functions[0].Body[0].(mir.While)
	require.Len(t, rewrittenLoop.LoopVariables, 1, "the guard variable i must still be the loop's sole induction variable")
	assert.Equal(t, i, rewrittenLoop.LoopVariables[0].Name)
	require.Len(t, rewrittenLoop.Statements, 4)
	assert.Equal(t, jDef, rewrittenLoop.Statements[2])
}

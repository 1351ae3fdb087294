package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sail-lang/sailc/internal/config"
	"github.com/sail-lang/sailc/internal/mir"
	"github.com/sail-lang/sailc/internal/symtab"
)

// TestFullRunFoldsConstantChainToALiteralReturn exercises a full fixed
// point over a, b, c bound purely in terms of folded literals: CCP folds
// every Binary down to its literal value, and DCE then removes the now
// provably-dead bindings, leaving an empty body and a literal return.
func TestFullRunFoldsConstantChainToALiteralReturn(t *testing.T) {
	h := newHarness()
	owner := h.table.CreateSimple(symtab.Root, h.heap.Alloc("Main"))

	main := mir.Function{
		Name: h.fn(owner, "main"),
		Type: mir.FunctionType{ReturnType: mir.Int},
		Body: []mir.Statement{
			mir.Binary{Name: h.v("a"), Op: mir.OpPlus, E1: mir.IntLiteral{Value: 3}, E2: mir.IntLiteral{Value: 3}},
			mir.Binary{Name: h.v("b"), Op: mir.OpMul, E1: h.varOf("a"), E2: h.varOf("a")},
			mir.Binary{Name: h.v("c"), Op: mir.OpMinus, E1: h.varOf("b"), E2: h.varOf("a")},
		},
		ReturnValue: h.varOf("c"),
	}

	src := &mir.Sources{
		SymbolTable:       h.table,
		MainFunctionNames: []mir.FunctionName{main.Name},
		Functions:         []mir.Function{main},
	}

	out, stats := Run(src, h.heap, config.Default())
	require.True(t, stats.Converged)
	require.Len(t, out.Functions, 1)

	got := out.Functions[0]
	assert.Empty(t, got.Body)
	assert.Equal(t, mir.Expression(mir.IntLiteral{Value: 30}), got.ReturnValue)
}

// TestCCPCollapsesBranchOnLiteralCondition checks the narrower case of
// runCCP alone: a literal condition folds an IfElse down to the taken
// branch, still wrapped in an always-true SingleIf so later passes keep
// seeing structured control flow.
func TestCCPCollapsesBranchOnLiteralCondition(t *testing.T) {
	h := newHarness()
	owner := h.table.CreateSimple(symtab.Root, h.heap.Alloc("Main"))
	ctx := newContext(h)

	taken := h.v("taken")
	result := h.v("result")

	fn := mir.Function{
		Name: h.fn(owner, "pick"),
		Type: mir.FunctionType{ReturnType: mir.Int},
		Body: []mir.Statement{
			mir.IfElse{
				Condition: mir.IntLiteral{Value: 1},
				S1:        []mir.Statement{mir.Binary{Name: taken, Op: mir.OpPlus, E1: mir.IntLiteral{Value: 1}, E2: mir.IntLiteral{Value: 1}}},
				S2:        []mir.Statement{mir.Binary{Name: taken, Op: mir.OpPlus, E1: mir.IntLiteral{Value: 9}, E2: mir.IntLiteral{Value: 9}}},
				FinalAssignments: []mir.FinalAssignment{
					{Name: result, Type: mir.Int, ValueIfTrue: mir.Variable{Name: taken, Type: mir.Int}, ValueIfFalse: mir.Variable{Name: taken, Type: mir.Int}},
				},
			},
		},
		ReturnValue: mir.Variable{Name: result, Type: mir.Int},
	}

	src := &mir.Sources{
		SymbolTable:       h.table,
		MainFunctionNames: []mir.FunctionName{fn.Name},
		Functions:         []mir.Function{fn},
	}

	out, changed := runCCP(ctx, src)
	require.True(t, changed)
	require.Len(t, out.Functions[0].Body, 1)

	sif, ok := out.Functions[0].Body[0].(mir.SingleIf)
	require.True(t, ok, "expected the resolved branch wrapped in a SingleIf, got %T", out.Functions[0].Body[0])
	assert.Equal(t, mir.IntLiteral{Value: 1}, sif.Condition)
	assert.False(t, sif.Invert)

	assert.Equal(t, mir.Expression(mir.IntLiteral{Value: 2}), out.Functions[0].ReturnValue)
}

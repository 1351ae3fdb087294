package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sail-lang/sailc/internal/config"
	"github.com/sail-lang/sailc/internal/mir"
	"github.com/sail-lang/sailc/internal/pstr"
	"github.com/sail-lang/sailc/internal/symtab"
)

// TestFullRunInlinesAndFoldsRepeatedConstantCallSites builds a callee
// f(x) = x + 1 called five times with the literal 0 and summed. A full
// fixed point must splice every call site, then fold and dead-code the
// result down to a single literal with no trace of the call left behind.
func TestFullRunInlinesAndFoldsRepeatedConstantCallSites(t *testing.T) {
	h := newHarness()
	owner := h.table.CreateSimple(symtab.Root, h.heap.Alloc("Main"))

	fType := mir.FunctionType{ArgumentTypes: []mir.Type{mir.Int}, ReturnType: mir.Int}
	fName := h.fn(owner, "f")
	x := h.v("x")

	f := mir.Function{
		Name:        fName,
		Parameters:  []pstr.PStr{x},
		Type:        fType,
		Body:        []mir.Statement{mir.Binary{Name: h.v("r"), Op: mir.OpPlus, E1: mir.Variable{Name: x, Type: mir.Int}, E2: mir.IntLiteral{Value: 1}}},
		ReturnValue: h.varOf("r"),
	}

	callStmt := func(collector pstr.PStr) mir.Statement {
		c := collector
		return mir.Call{
			Callee:          mir.FunctionNameCallee{Name: fName, Type: fType},
			Arguments:       []mir.Expression{mir.IntLiteral{Value: 0}},
			ReturnType:      mir.Int,
			ReturnCollector: &c,
		}
	}

	r1, r2, r3, r4, r5 := h.v("r1"), h.v("r2"), h.v("r3"), h.v("r4"), h.v("r5")
	sum1, sum2, sum3, sum4 := h.v("sum1"), h.v("sum2"), h.v("sum3"), h.v("sum4")

	mainBody := []mir.Statement{
		callStmt(r1), callStmt(r2), callStmt(r3), callStmt(r4), callStmt(r5),
		mir.Binary{Name: sum1, Op: mir.OpPlus, E1: mir.Variable{Name: r1, Type: mir.Int}, E2: mir.Variable{Name: r2, Type: mir.Int}},
		mir.Binary{Name: sum2, Op: mir.OpPlus, E1: mir.Variable{Name: sum1, Type: mir.Int}, E2: mir.Variable{Name: r3, Type: mir.Int}},
		mir.Binary{Name: sum3, Op: mir.OpPlus, E1: mir.Variable{Name: sum2, Type: mir.Int}, E2: mir.Variable{Name: r4, Type: mir.Int}},
		mir.Binary{Name: sum4, Op: mir.OpPlus, E1: mir.Variable{Name: sum3, Type: mir.Int}, E2: mir.Variable{Name: r5, Type: mir.Int}},
	}

	main := mir.Function{
		Name:        h.fn(owner, "main"),
		Type:        mir.FunctionType{ReturnType: mir.Int},
		Body:        mainBody,
		ReturnValue: mir.Variable{Name: sum4, Type: mir.Int},
	}

	src := &mir.Sources{
		SymbolTable:       h.table,
		MainFunctionNames: []mir.FunctionName{main.Name},
		Functions:         []mir.Function{f, main},
	}

	out, stats := Run(src, h.heap, config.Default())
	require.True(t, stats.Converged)

	var rewrittenMain mir.Function
	for _, fn := range out.Functions {
		if fn.Name == main.Name {
			rewrittenMain = fn
		}
	}

	assert.Empty(t, rewrittenMain.Body)
	assert.Equal(t, mir.Expression(mir.IntLiteral{Value: 5}), rewrittenMain.ReturnValue)

	for _, s := range rewrittenMain.Body {
		if call, ok := s.(mir.Call); ok {
			t.Fatalf("expected every call to f to be inlined away, found %v", call)
		}
	}
}

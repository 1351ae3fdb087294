package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sail-lang/sailc/internal/mir"
	"github.com/sail-lang/sailc/internal/pstr"
	"github.com/sail-lang/sailc/internal/symtab"
)

// TestConstantParameterEliminationDropsAUniformArgument builds g(x, y)
// where every non-self call site passes the literal 7 for y while x
// varies. The parameter settling on a single constant at every call site
// must be dropped from g's signature, substituted for the literal inside
// g's body, and dropped from every caller's argument list.
func TestConstantParameterEliminationDropsAUniformArgument(t *testing.T) {
	h := newHarness()
	owner := h.table.CreateSimple(symtab.Root, h.heap.Alloc("Main"))
	ctx := newContext(h)

	gType := mir.FunctionType{ArgumentTypes: []mir.Type{mir.Int, mir.Int}, ReturnType: mir.Int}
	gName := h.fn(owner, "g")

	x, y, r := h.v("x"), h.v("y"), h.v("r")
	g := mir.Function{
		Name:       gName,
		Parameters: []pstr.PStr{x, y},
		Type:       gType,
		Body: []mir.Statement{
			mir.Binary{Name: r, Op: mir.OpPlus, E1: mir.Variable{Name: x, Type: mir.Int}, E2: mir.Variable{Name: y, Type: mir.Int}},
		},
		ReturnValue: mir.Variable{Name: r, Type: mir.Int},
	}

	callG := func(argX pstr.PStr, collector pstr.PStr) mir.Statement {
		c := collector
		return mir.Call{
			Callee:          mir.FunctionNameCallee{Name: gName, Type: gType},
			Arguments:       []mir.Expression{mir.Variable{Name: argX, Type: mir.Int}, mir.IntLiteral{Value: 7}},
			ReturnType:      mir.Int,
			ReturnCollector: &c,
		}
	}

	a, b, o1, o2 := h.v("a"), h.v("b"), h.v("o1"), h.v("o2")

	caller1 := mir.Function{
		Name:        h.fn(owner, "caller1"),
		Parameters:  []pstr.PStr{a},
		Type:        mir.FunctionType{ArgumentTypes: []mir.Type{mir.Int}, ReturnType: mir.Int},
		Body:        []mir.Statement{callG(a, o1)},
		ReturnValue: mir.Variable{Name: o1, Type: mir.Int},
	}

	caller2 := mir.Function{
		Name:        h.fn(owner, "caller2"),
		Parameters:  []pstr.PStr{b},
		Type:        mir.FunctionType{ArgumentTypes: []mir.Type{mir.Int}, ReturnType: mir.Int},
		Body:        []mir.Statement{callG(b, o2)},
		ReturnValue: mir.Variable{Name: o2, Type: mir.Int},
	}

	src := &mir.Sources{SymbolTable: h.table, Functions: []mir.Function{g, caller1, caller2}}

	out, changed := runConstantParameterElimination(ctx, src)
	require.True(t, changed)

	byName := make(map[mir.FunctionName]mir.Function, len(out.Functions))
	for _, fn := range out.Functions {
		byName[fn.Name] = fn
	}

	rewrittenG := byName[gName]
	require.Len(t, rewrittenG.Parameters, 1, "y should have been dropped, leaving only x")
	assert.Equal(t, x, rewrittenG.Parameters[0])
	require.Len(t, rewrittenG.Type.ArgumentTypes, 1)

	rBinary, ok := rewrittenG.Body[0].(mir.Binary)
	require.True(t, ok)
	assert.Equal(t, mir.Expression(mir.IntLiteral{Value: 7}), rBinary.E2, "y's every use should be substituted with the literal it always carried")

	for _, callerName := range []mir.FunctionName{caller1.Name, caller2.Name} {
		call, ok := byName[callerName].Body[0].(mir.Call)
		require.True(t, ok)
		assert.Len(t, call.Arguments, 1, "the dropped parameter's argument should be removed from every call site")
	}
}

// TestConstantParameterEliminationKeepsAVaryingParameter confirms the
// companion negative case: a parameter whose call sites disagree on its
// value is never dropped.
func TestConstantParameterEliminationKeepsAVaryingParameter(t *testing.T) {
	h := newHarness()
	owner := h.table.CreateSimple(symtab.Root, h.heap.Alloc("Main"))
	ctx := newContext(h)

	gType := mir.FunctionType{ArgumentTypes: []mir.Type{mir.Int}, ReturnType: mir.Int}
	gName := h.fn(owner, "g")

	x := h.v("x")
	g := mir.Function{
		Name:        gName,
		Parameters:  []pstr.PStr{x},
		Type:        gType,
		Body:        nil,
		ReturnValue: mir.Variable{Name: x, Type: mir.Int},
	}

	o1, o2 := h.v("o1"), h.v("o2")
	callG := func(lit int32, collector pstr.PStr) mir.Statement {
		c := collector
		return mir.Call{
			Callee:          mir.FunctionNameCallee{Name: gName, Type: gType},
			Arguments:       []mir.Expression{mir.IntLiteral{Value: lit}},
			ReturnType:      mir.Int,
			ReturnCollector: &c,
		}
	}

	caller := mir.Function{
		Name:        h.fn(owner, "caller"),
		Type:        mir.FunctionType{ReturnType: mir.Int},
		Body:        []mir.Statement{callG(1, o1), callG(2, o2)},
		ReturnValue: mir.Variable{Name: o1, Type: mir.Int},
	}

	src := &mir.Sources{SymbolTable: h.table, Functions: []mir.Function{g, caller}}

	_, changed := runConstantParameterElimination(ctx, src)
	assert.False(t, changed)
}

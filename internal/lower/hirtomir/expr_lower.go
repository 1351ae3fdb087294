package hirtomir

import (
	"github.com/sail-lang/sailc/internal/hir"
	"github.com/sail-lang/sailc/internal/irerr"
	"github.com/sail-lang/sailc/internal/mir"
	"github.com/sail-lang/sailc/internal/pstr"
	"github.com/sail-lang/sailc/internal/symtab"
)

// exprLowerer lowers one function body under a fixed type substitution,
// specializing every callee it encounters through its owning lowerer.
type exprLowerer struct {
	l       *lowerer
	mapping typeMapping
}

func (c *exprLowerer) lowerType(t hir.Type) mir.Type {
	return lowerTypeShallow(t, c.mapping, c.l.synth)
}

// lowerExpression lowers a HIR leaf expression. A FunctionName value is
// closure erasure's trigger: any first-class reference to a function gets
// rewritten at its point of use by the enclosing statement lowerer, since a
// bare Expression has nowhere to emit the ClosureInit statement it needs.
// Seeing one here means it escaped as a return value or argument without
// going through lowerStatements's ClosureInit rewrite, which is a defect in
// the pass itself.
func (c *exprLowerer) lowerExpression(e hir.Expression) mir.Expression {
	switch v := e.(type) {
	case hir.IntLiteral:
		return mir.IntLiteral{Value: v.Value}
	case hir.StringName:
		return mir.StringName{Name: v.Name}
	case hir.Variable:
		return mir.Variable{Name: v.Name, Type: c.lowerType(v.Type)}
	case hir.FunctionName:
		irerr.Abort(irerr.New(irerr.CategoryEscapedGeneric, "function value %s reached lowerExpression without closure erasure", c.l.heap.Str(v.Name)))
		return nil
	default:
		irerr.Abort(irerr.New(irerr.CategoryEscapedGeneric, "unrecognized HIR expression %T", e))
		return nil
	}
}

func (c *exprLowerer) lowerCallee(callee hir.Callee) mir.Callee {
	switch v := callee.(type) {
	case hir.FunctionNameCallee:
		name := c.l.specialize(v.Name.TypeName, v.Name.Name, v.Name.TypeArgument)
		return mir.FunctionNameCallee{Name: name, Type: lowerFunctionTypeShallow(v.Name.Type, c.mapping, c.l.synth)}
	case hir.VariableCallee:
		return mir.VariableCallee{Name: mir.Variable{Name: v.Name.Name, Type: c.lowerType(v.Name.Type)}}
	default:
		irerr.Abort(irerr.New(irerr.CategoryEscapedGeneric, "unrecognized HIR callee %T", callee))
		return nil
	}
}

// emptyContext is the null context value given to a closure that captures
// nothing: no synthesized record is ever dereferenced for it, so a null
// pointer (int literal 0) stands in rather than allocating a genuinely
// empty record.
var emptyContext mir.Expression = mir.IntLiteral{Value: 0}

// erasedClosureStatement converts a first-class FunctionName reference,
// bound to name, into the statement(s) MIR emits in its place. Captured variables (if any) are packed, in order, into a
// tuple record freshly synthesized for this exact sequence of capture
// types; a capture
// list of zero lowers to a null context instead, since nothing would ever
// read it.
func (c *exprLowerer) erasedClosureStatement(name pstr.PStr, fn hir.FunctionName, captures []hir.Expression) []mir.Statement {
	specialized := c.l.specialize(fn.TypeName, fn.Name, fn.TypeArgument)
	ft := lowerFunctionTypeShallow(fn.Type, c.mapping, c.l.synth)
	closureType := c.l.synth.SynthesizeClosureType(ft)

	if len(captures) == 0 {
		return []mir.Statement{mir.ClosureInit{
			Name:            name,
			ClosureTypeName: closureType,
			Function:        specialized,
			FunctionType:    ft,
			Context:         emptyContext,
		}}
	}

	values := make([]mir.Expression, len(captures))
	types := make([]mir.Type, len(captures))

	for i, capturedExpr := range captures {
		values[i] = c.lowerExpression(capturedExpr)
		types[i] = c.exprType(values[i])
	}

	contextTypeName := c.l.synth.SynthesizeTupleType(types)
	contextName := c.l.heap.AllocTemp()

	structInit := mir.StructInit{Name: contextName, TypeName: contextTypeName, Elements: values}
	closureInit := mir.ClosureInit{
		Name:            name,
		ClosureTypeName: closureType,
		Function:        specialized,
		FunctionType:    ft,
		Context:         mir.Variable{Name: contextName, Type: mir.IDType(contextTypeName)},
	}

	return []mir.Statement{structInit, closureInit}
}

// exprType recovers the MIR type an already-lowered expression carries, for
// building the synthesized context record's field list.
func (c *exprLowerer) exprType(e mir.Expression) mir.Type {
	switch v := e.(type) {
	case mir.Variable:
		return v.Type
	case mir.IntLiteral:
		return mir.Int
	case mir.StringName:
		return mir.IDType(symtab.Str)
	default:
		irerr.Abort(irerr.New(irerr.CategoryEscapedGeneric, "cannot recover a type for captured expression %T", e))
		return mir.Int
	}
}

func (c *exprLowerer) lowerStatements(stmts []hir.Statement) []mir.Statement {
	out := make([]mir.Statement, 0, len(stmts))

	for _, s := range stmts {
		out = append(out, c.lowerStatement(s)...)
	}

	return out
}

// lowerStatement lowers one HIR statement, possibly to more than one MIR
// statement: a statement whose operand is a bare FunctionName value (e.g. a
// Call argument constructed ad hoc) is never produced by a well-formed HIR
// tree, since HIR's own ClosureInit statement already names the binding;
// this function handles the one shape HIR allows, ClosureInit, directly.
func (c *exprLowerer) lowerStatement(s hir.Statement) []mir.Statement {
	switch v := s.(type) {
	case hir.Binary:
		return []mir.Statement{mir.BinaryFlexibleUnwrapped(c.l.heap, v.Name, v.Op, c.lowerExpression(v.E1), c.lowerExpression(v.E2))}
	case hir.IsPointer:
		return []mir.Statement{mir.IsPointer{Name: v.Name, Operand: c.lowerExpression(v.Operand)}}
	case hir.Not:
		return []mir.Statement{mir.Not{Name: v.Name, Operand: c.lowerExpression(v.Operand)}}
	case hir.IndexedAccess:
		return []mir.Statement{mir.IndexedAccess{Name: v.Name, Type: c.lowerType(v.Type), Pointer: c.lowerExpression(v.Pointer), Index: v.Index}}
	case hir.Call:
		args := make([]mir.Expression, len(v.Arguments))
		for i, a := range v.Arguments {
			args[i] = c.lowerExpression(a)
		}

		return []mir.Statement{mir.Call{
			Callee:          c.lowerCallee(v.Callee),
			Arguments:       args,
			ReturnType:      c.lowerType(v.ReturnType),
			ReturnCollector: v.ReturnCollector,
		}}
	case hir.IfElse:
		finals := make([]mir.FinalAssignment, len(v.FinalAssignments))
		for i, f := range v.FinalAssignments {
			finals[i] = mir.FinalAssignment{
				Name:         f.Name,
				Type:         c.lowerType(f.Type),
				ValueIfTrue:  c.lowerExpression(f.ValueIfTrue),
				ValueIfFalse: c.lowerExpression(f.ValueIfFalse),
			}
		}

		return []mir.Statement{mir.IfElse{
			Condition:        c.lowerExpression(v.Condition),
			S1:               c.lowerStatements(v.S1),
			S2:               c.lowerStatements(v.S2),
			FinalAssignments: finals,
		}}
	case hir.SingleIf:
		return []mir.Statement{mir.SingleIf{
			Condition:  c.lowerExpression(v.Condition),
			Invert:     v.Invert,
			Statements: c.lowerStatements(v.Statements),
		}}
	case hir.Break:
		return []mir.Statement{mir.Break{Value: c.lowerExpression(v.Value)}}
	case hir.While:
		loopVars := make([]mir.LoopVariable, len(v.LoopVariables))
		for i, lv := range v.LoopVariables {
			loopVars[i] = mir.LoopVariable{
				Name:         lv.Name,
				Type:         c.lowerType(lv.Type),
				InitialValue: c.lowerExpression(lv.InitialValue),
				LoopValue:    c.lowerExpression(lv.LoopValue),
			}
		}

		var collector *mir.BreakCollectorVar
		if v.BreakCollector != nil {
			collector = &mir.BreakCollectorVar{Name: v.BreakCollector.Name, Type: c.lowerType(v.BreakCollector.Type)}
		}

		return []mir.Statement{mir.While{LoopVariables: loopVars, Statements: c.lowerStatements(v.Statements), BreakCollector: collector}}
	case hir.LateInitDeclaration:
		return []mir.Statement{mir.LateInitDeclaration{Name: v.Name, Type: c.lowerType(v.Type)}}
	case hir.LateInitAssignment:
		if fn, ok := v.Expression.(hir.FunctionName); ok {
			return c.erasedClosureStatement(v.Name, fn, nil)
		}

		return []mir.Statement{mir.LateInitAssignment{Name: v.Name, Expression: c.lowerExpression(v.Expression)}}
	case hir.StructInit:
		elems := make([]mir.Expression, len(v.Elements))
		for i, e := range v.Elements {
			elems[i] = c.lowerExpression(e)
		}

		return []mir.Statement{mir.StructInit{Name: v.Name, TypeName: v.TypeName, Elements: elems}}
	case hir.ClosureInit:
		return c.erasedClosureStatement(v.Name, v.Function, v.CapturedVariables)
	default:
		irerr.Abort(irerr.New(irerr.CategoryEscapedGeneric, "unrecognized HIR statement %T", s))
		return nil
	}
}

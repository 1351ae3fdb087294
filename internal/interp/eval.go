package interp

import (
	"github.com/sail-lang/sailc/internal/irerr"
	"github.com/sail-lang/sailc/internal/mir"
	"github.com/sail-lang/sailc/internal/symtab"
)

// flow reports how a straight-line block finished: either it ran off the
// end normally, or a Break unwound out of it carrying a value. Threading
// this explicitly (rather than panic/recover) keeps Break propagation
// separate from the genuine host-level aborts Trap represents.
type flow struct {
	broke bool
	value int32
}

// evalExpr evaluates a side-effect-free MIR expression.
func (p *program) evalExpr(e mir.Expression) int32 {
	switch v := e.(type) {
	case mir.IntLiteral:
		return v.Value
	case mir.Variable:
		return p.mem.ReadStack(v.Name)
	case mir.StringName:
		address, ok := p.globalStringAddr[v.Name]
		if !ok {
			irerr.Abort(irerr.New(irerr.CategoryUnresolvedName, "string constant not registered as a global"))
		}

		return address
	default:
		irerr.Abort(irerr.New(irerr.CategoryUnresolvedName, "unrecognized MIR expression %T", e))
		return 0
	}
}

func (p *program) evalArguments(args []mir.Expression) []int32 {
	out := make([]int32, len(args))
	for i, a := range args {
		out[i] = p.evalExpr(a)
	}

	return out
}

// evalBinary applies op to already-evaluated operands under i32
// two's-complement wraparound; DIV and MOD by zero trap.
func evalBinary(op mir.Operator, v1, v2 int32) int32 {
	boolInt := func(b bool) int32 {
		if b {
			return 1
		}

		return 0
	}

	switch op {
	case mir.OpMul:
		return v1 * v2
	case mir.OpDiv:
		if v2 == 0 {
			panic(&Trap{Message: "division by zero"})
		}

		return v1 / v2
	case mir.OpMod:
		if v2 == 0 {
			panic(&Trap{Message: "modulo by zero"})
		}

		return v1 % v2
	case mir.OpPlus:
		return v1 + v2
	case mir.OpMinus:
		return v1 - v2
	case mir.OpLand:
		return v1 & v2
	case mir.OpLor:
		return v1 | v2
	case mir.OpXor:
		return v1 ^ v2
	case mir.OpShl:
		return v1 << (uint32(v2) & 31)
	case mir.OpShr:
		return v1 >> (uint32(v2) & 31)
	case mir.OpLt:
		return boolInt(v1 < v2)
	case mir.OpLe:
		return boolInt(v1 <= v2)
	case mir.OpGt:
		return boolInt(v1 > v2)
	case mir.OpGe:
		return boolInt(v1 >= v2)
	case mir.OpEq:
		return boolInt(v1 == v2)
	case mir.OpNe:
		return boolInt(v1 != v2)
	default:
		irerr.Abort(irerr.New(irerr.CategoryUnresolvedName, "unrecognized operator %v", op))
		return 0
	}
}

// evalStatements runs stmts in order, stopping early if one of them
// breaks out of the nearest enclosing While.
func (p *program) evalStatements(stmts []mir.Statement) flow {
	for _, s := range stmts {
		if f := p.evalStatement(s); f.broke {
			return f
		}
	}

	return flow{}
}

func (p *program) evalStatement(s mir.Statement) flow {
	switch v := s.(type) {
	case mir.Binary:
		p.mem.WriteStack(v.Name, evalBinary(v.Op, p.evalExpr(v.E1), p.evalExpr(v.E2)))
		return flow{}

	case mir.IsPointer:
		// MIR keeps every value's nominal-vs-int type exact (the
		// boxed/unboxed merge only happens in LIR), so the test is
		// decidable from Operand's own static type rather than from any
		// runtime tag.
		result := int32(0)
		if operand, ok := v.Operand.(mir.Variable); ok && operand.Type.Kind() == symtab.TypeID {
			result = 1
		}

		p.mem.WriteStack(v.Name, result)
		return flow{}

	case mir.Not:
		operand := p.evalExpr(v.Operand)
		result := int32(0)
		if operand == 0 {
			result = 1
		}

		p.mem.WriteStack(v.Name, result)
		return flow{}

	case mir.IndexedAccess:
		pointer := p.evalExpr(v.Pointer)
		p.mem.WriteStack(v.Name, p.mem.ReadHeap(pointer+int32(v.Index)*4))
		return flow{}

	case mir.Call:
		result := p.evalCall(v.Callee, v.Arguments)
		if v.ReturnCollector != nil {
			p.mem.WriteStack(*v.ReturnCollector, result)
		}

		return flow{}

	case mir.IfElse:
		if p.evalExpr(v.Condition) != 0 {
			if f := p.evalStatements(v.S1); f.broke {
				return f
			}

			for _, fa := range v.FinalAssignments {
				p.mem.WriteStack(fa.Name, p.evalExpr(fa.ValueIfTrue))
			}
		} else {
			if f := p.evalStatements(v.S2); f.broke {
				return f
			}

			for _, fa := range v.FinalAssignments {
				p.mem.WriteStack(fa.Name, p.evalExpr(fa.ValueIfFalse))
			}
		}

		return flow{}

	case mir.SingleIf:
		holds := p.evalExpr(v.Condition) != 0
		if v.Invert {
			holds = !holds
		}

		if holds {
			return p.evalStatements(v.Statements)
		}

		return flow{}

	case mir.Break:
		return flow{broke: true, value: p.evalExpr(v.Value)}

	case mir.While:
		for _, lv := range v.LoopVariables {
			p.mem.WriteStack(lv.Name, p.evalExpr(lv.InitialValue))
		}

		for {
			f := p.evalStatements(v.Statements)
			if !f.broke {
				for _, lv := range v.LoopVariables {
					p.mem.WriteStack(lv.Name, p.evalExpr(lv.LoopValue))
				}

				continue
			}

			if v.BreakCollector != nil {
				p.mem.WriteStack(v.BreakCollector.Name, f.value)
			}

			return flow{}
		}

	case mir.Cast:
		p.mem.WriteStack(v.Name, p.evalExpr(v.Expression))
		return flow{}

	case mir.LateInitDeclaration:
		return flow{}

	case mir.LateInitAssignment:
		p.mem.WriteStack(v.Name, p.evalExpr(v.Expression))
		return flow{}

	case mir.StructInit:
		address := p.mem.Malloc(int32(len(v.Elements)) * 4)
		for i, e := range v.Elements {
			p.mem.WriteHeap(address+int32(i)*4, p.evalExpr(e))
		}

		p.mem.WriteStack(v.Name, address)
		return flow{}

	case mir.ClosureInit:
		address := p.mem.Malloc(8)
		p.mem.WriteHeap(address, p.functionAddr[v.Function])
		p.mem.WriteHeap(address+4, p.evalExpr(v.Context))
		p.mem.WriteStack(v.Name, address)
		return flow{}

	default:
		irerr.Abort(irerr.New(irerr.CategoryUnresolvedName, "unrecognized MIR statement %T", s))
		return flow{}
	}
}

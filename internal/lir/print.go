package lir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sail-lang/sailc/internal/pstr"
	"github.com/sail-lang/sailc/internal/symtab"
)

// Printer renders Sources into the stable textual form the external
// emitter's output is derived from, so it doubles as the pipeline's
// golden-file ABI in tests.
type Printer struct {
	heap       *pstr.Heap
	table      *symtab.Table
	stringIdx  map[pstr.PStr]int
}

// NewPrinter builds a Printer bound to heap and table.
func NewPrinter(heap *pstr.Heap, table *symtab.Table) *Printer {
	return &Printer{heap: heap, table: table, stringIdx: map[pstr.PStr]int{}}
}

// Print renders an entire Sources value.
func (p *Printer) Print(s *Sources) string {
	for i, name := range s.GlobalStrings {
		p.stringIdx[name] = i
	}

	var b strings.Builder

	for i := range s.GlobalStrings {
		fmt.Fprintf(&b, "const GLOBAL_STRING_%d = [0, %s];\n", i, strconv.Quote(p.heap.Str(s.GlobalStrings[i])))
	}

	for _, c := range s.ClosureTypes {
		fmt.Fprintf(&b, "closure type %s = %s;\n", p.table.EncodedName(c.Name), p.printFunctionType(c.FunctionType))
	}

	for _, td := range s.TypeDefinitions {
		p.printTypeDef(&b, td)
	}

	for _, fn := range s.Functions {
		p.printFunction(&b, fn)
	}

	return b.String()
}

func (p *Printer) printTypeDef(b *strings.Builder, td TypeDef) {
	name := p.table.EncodedName(td.Name)
	fmt.Fprintf(b, "type %s = ", name)
	b.WriteByte('\n')
}

func (p *Printer) printFunctionType(ft FunctionType) string {
	var args []string
	for i, a := range ft.ArgumentTypes {
		args = append(args, fmt.Sprintf("p%d: %s", i, p.printType(a)))
	}

	return fmt.Sprintf("(%s) => %s", strings.Join(args, ", "), p.printType(ft.ReturnType))
}

func (p *Printer) printType(t Type) string {
	switch t.Kind() {
	case TypeInt32:
		return "number"
	case TypeInt31:
		return "i31"
	case TypeAnyPointer:
		return "any"
	case TypeID:
		return p.table.EncodedName(t.ID())
	case TypeFn:
		return p.printFunctionType(t.Fn())
	default:
		return "?"
	}
}

func (p *Printer) printFunction(b *strings.Builder, fn Function) {
	var params []string
	for i, name := range fn.Parameters {
		params = append(params, fmt.Sprintf("%s: %s", p.heap.Str(name), p.printType(fn.Type.ArgumentTypes[i])))
	}

	fmt.Fprintf(b, "function %s(%s): %s {\n", fn.Name.EncodedName(p.table, p.heap), strings.Join(params, ", "), p.printType(fn.Type.ReturnType))

	for _, s := range fn.Body {
		p.printStatement(b, s, 1)
	}

	fmt.Fprintf(b, "  return %s;\n}\n", p.printExpr(fn.ReturnValue))
}

func indent(n int) string { return strings.Repeat("  ", n) }

func (p *Printer) printExpr(e Expression) string {
	switch v := e.(type) {
	case Int32Literal:
		return strconv.FormatInt(int64(v.Value), 10)
	case Int31Literal:
		return strconv.FormatInt(int64(v.Value)*2+1, 10)
	case StringName:
		return fmt.Sprintf("GLOBAL_STRING_%d", p.stringIdx[v.Name])
	case Variable:
		return p.heap.Str(v.Name)
	case FnName:
		return v.Name.EncodedName(p.table, p.heap)
	default:
		return "?"
	}
}

func (p *Printer) printStatement(b *strings.Builder, s Statement, level int) {
	ind := indent(level)

	switch v := s.(type) {
	case IsPointer:
		fmt.Fprintf(b, "%slet %s = isPointer(%s);\n", ind, p.heap.Str(v.Name), p.printExpr(v.Operand))
	case Not:
		fmt.Fprintf(b, "%slet %s = !%s;\n", ind, p.heap.Str(v.Name), p.printExpr(v.Operand))
	case Binary:
		fmt.Fprintf(b, "%slet %s = %s;\n", ind, p.heap.Str(v.Name), p.printBinary(v))
	case IndexedAccess:
		fmt.Fprintf(b, "%slet %s: %s = %s[%d];\n", ind, p.heap.Str(v.Name), p.printType(v.Type), p.printExpr(v.Pointer), v.Index)
	case IndexedAssign:
		fmt.Fprintf(b, "%s%s[%d] = %s;\n", ind, p.printExpr(v.Pointer), v.Index, p.printExpr(v.Value))
	case Call:
		collector := ""
		if v.ReturnCollector != nil {
			collector = fmt.Sprintf("let %s: %s = ", p.heap.Str(*v.ReturnCollector), p.printType(v.ReturnType))
		}

		args := make([]string, len(v.Arguments))
		for i, a := range v.Arguments {
			args[i] = p.printExpr(a)
		}

		fmt.Fprintf(b, "%s%s%s(%s);\n", ind, collector, p.printExpr(v.Callee), strings.Join(args, ", "))
	case IfElse:
		for _, fa := range v.FinalAssignments {
			fmt.Fprintf(b, "%slet %s: %s;\n", ind, p.heap.Str(fa.Name), p.printType(fa.Type))
		}

		fmt.Fprintf(b, "%sif (%s) {\n", ind, p.printExpr(v.Condition))

		for _, st := range v.S1 {
			p.printStatement(b, st, level+1)
		}

		for _, fa := range v.FinalAssignments {
			fmt.Fprintf(b, "%s%s = %s;\n", indent(level+1), p.heap.Str(fa.Name), p.printExpr(fa.ValueIfTrue))
		}

		fmt.Fprintf(b, "%s} else {\n", ind)

		for _, st := range v.S2 {
			p.printStatement(b, st, level+1)
		}

		for _, fa := range v.FinalAssignments {
			fmt.Fprintf(b, "%s%s = %s;\n", indent(level+1), p.heap.Str(fa.Name), p.printExpr(fa.ValueIfFalse))
		}

		fmt.Fprintf(b, "%s}\n", ind)
	case SingleIf:
		not := ""
		if v.Invert {
			not = "!"
		}

		fmt.Fprintf(b, "%sif (%s%s) {\n", ind, not, p.printExpr(v.Condition))

		for _, st := range v.Statements {
			p.printStatement(b, st, level+1)
		}

		fmt.Fprintf(b, "%s}\n", ind)
	case Break:
		fmt.Fprintf(b, "%sbreak %s;\n", ind, p.printExpr(v.Value))
	case While:
		for _, lv := range v.LoopVariables {
			fmt.Fprintf(b, "%slet %s: %s = %s;\n", ind, p.heap.Str(lv.Name), p.printType(lv.Type), p.printExpr(lv.InitialValue))
		}

		fmt.Fprintf(b, "%swhile (true) {\n", ind)

		for _, st := range v.Statements {
			p.printStatement(b, st, level+1)
		}

		for _, lv := range v.LoopVariables {
			fmt.Fprintf(b, "%s%s = %s;\n", indent(level+1), p.heap.Str(lv.Name), p.printExpr(lv.LoopValue))
		}

		fmt.Fprintf(b, "%s}\n", ind)
	case Cast:
		fmt.Fprintf(b, "%slet %s: %s = %s as %s;\n", ind, p.heap.Str(v.Name), p.printType(v.Type), p.printExpr(v.Expression), p.printType(v.Type))
	case LateInitDeclaration:
		fmt.Fprintf(b, "%slet %s: %s;\n", ind, p.heap.Str(v.Name), p.printType(v.Type))
	case LateInitAssignment:
		fmt.Fprintf(b, "%s%s = %s;\n", ind, p.heap.Str(v.Name), p.printExpr(v.Expression))
	case StructInit:
		elems := make([]string, len(v.Elements))
		for i, e := range v.Elements {
			elems[i] = p.printExpr(e)
		}

		fmt.Fprintf(b, "%slet %s: %s = [%s];\n", ind, p.heap.Str(v.Name), p.table.EncodedName(v.TypeName), strings.Join(elems, ", "))
	}
}

// printBinary renders a Binary statement's right-hand side, wrapping DIV in
// a floor operation and coercing comparisons to integers at the use site,
// matching the host runtime's arithmetic semantics.
func (p *Printer) printBinary(v Binary) string {
	e1, e2 := p.printExpr(v.E1), p.printExpr(v.E2)

	switch v.Op {
	case OpDiv:
		return fmt.Sprintf("Math.floor(%s / %s)", e1, e2)
	case OpLt, OpLe, OpGt, OpGe, OpEq, OpNe:
		return fmt.Sprintf("(%s %s %s) ? 1 : 0", e1, v.Op.String(), e2)
	default:
		return fmt.Sprintf("%s %s %s", e1, v.Op.String(), e2)
	}
}

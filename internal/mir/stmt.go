package mir

import (
	"github.com/sail-lang/sailc/internal/pstr"
	"github.com/sail-lang/sailc/internal/symtab"
)

// Statement is one node of the MIR structured statement tree.
type Statement interface {
	mirStatement()
}

// Binary computes a pure arithmetic/comparison/bitwise operation. Use
// BinaryUnwrapped/BinaryFlexibleUnwrapped to construct one; they are the
// only paths that keep the minus-to-plus and commutative-canonicalization
// invariants.
type Binary struct {
	Name pstr.PStr
	Op   Operator
	E1   Expression
	E2   Expression
}

// BinaryUnwrapped normalizes `x - k` (k != math.MinInt32) into `x + (-k)`.
func BinaryUnwrapped(name pstr.PStr, op Operator, e1, e2 Expression) Binary {
	if op == OpMinus {
		if lit, ok := e2.(IntLiteral); ok && lit.Value != minInt32 {
			return Binary{Name: name, Op: OpPlus, E1: e1, E2: IntLiteral{Value: -lit.Value}}
		}
	}

	return Binary{Name: name, Op: op, E1: e1, E2: e2}
}

const minInt32 = -2147483648

// IsPointer tests whether Operand is, at runtime, a boxed pointer.
type IsPointer struct {
	Name    pstr.PStr
	Operand Expression
}

// Not computes the boolean complement of Operand.
type Not struct {
	Name    pstr.PStr
	Operand Expression
}

// IndexedAccess loads slot Index of the heap record Pointer refers to.
type IndexedAccess struct {
	Name    pstr.PStr
	Type    Type
	Pointer Expression
	Index   int
}

// Call invokes Callee with Arguments.
type Call struct {
	Callee          Callee
	Arguments       []Expression
	ReturnType      Type
	ReturnCollector *pstr.PStr
}

// FinalAssignment is the phi-node substitute attached to an IfElse.
type FinalAssignment struct {
	Name         pstr.PStr
	Type         Type
	ValueIfTrue  Expression
	ValueIfFalse Expression
}

// IfElse is structured two-way branching.
type IfElse struct {
	Condition        Expression
	S1               []Statement
	S2               []Statement
	FinalAssignments []FinalAssignment
}

// SingleIf runs Statements when Condition holds (or, if Invert, does not).
type SingleIf struct {
	Condition  Expression
	Invert     bool
	Statements []Statement
}

// Break terminates the nearest enclosing While.
type Break struct {
	Value Expression
}

// LoopVariable is the entry-phi substitute for a structured loop. Kept
// field-identical to lir.LoopVariable: both IRs share one loop shape.
type LoopVariable struct {
	Name         pstr.PStr
	Type         Type
	InitialValue Expression
	LoopValue    Expression
}

// BreakCollectorVar names the variable receiving a loop's Break value.
type BreakCollectorVar struct {
	Name pstr.PStr
	Type Type
}

// While is the sole looping construct.
type While struct {
	LoopVariables  []LoopVariable
	Statements     []Statement
	BreakCollector *BreakCollectorVar
}

// Cast retypes Expr without computation (MIR/LIR only: HIR has no need for
// it since generics monomorphization has not yet introduced Int31/Int32
// splits).
type Cast struct {
	Name       pstr.PStr
	Type       Type
	Expression Expression
}

// LateInitDeclaration forward-declares a name assigned exactly once, later,
// by a matching LateInitAssignment.
type LateInitDeclaration struct {
	Name pstr.PStr
	Type Type
}

// LateInitAssignment assigns the one value its LateInitDeclaration will
// ever receive.
type LateInitAssignment struct {
	Name       pstr.PStr
	Expression Expression
}

// StructInit allocates a record of TypeName's shape from Elements.
type StructInit struct {
	Name     pstr.PStr
	TypeName symtab.TypeNameId
	Elements []Expression
}

// ClosureInit builds a two-slot closure record (code pointer, context).
// Expanded away into a StructInit by the MIR→LIR lowering pass.
type ClosureInit struct {
	Name            pstr.PStr
	ClosureTypeName symtab.TypeNameId
	Function        FunctionName
	FunctionType    FunctionType
	Context         Expression
}

func (Binary) mirStatement()              {}
func (IsPointer) mirStatement()           {}
func (Not) mirStatement()                 {}
func (IndexedAccess) mirStatement()       {}
func (Call) mirStatement()                {}
func (IfElse) mirStatement()              {}
func (SingleIf) mirStatement()            {}
func (Break) mirStatement()               {}
func (While) mirStatement()               {}
func (Cast) mirStatement()                {}
func (LateInitDeclaration) mirStatement() {}
func (LateInitAssignment) mirStatement()  {}
func (StructInit) mirStatement()          {}
func (ClosureInit) mirStatement()         {}

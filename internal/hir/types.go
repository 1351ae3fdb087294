// Package hir defines the High-level Intermediate Representation: the first
// IR produced from the type-checked source AST. HIR still carries generics,
// closures, and nominal types; the HIR→MIR lowering pass
// (internal/lower/hirtomir) erases all three.
package hir

import "github.com/sail-lang/sailc/internal/symtab"

// Type is the HIR type lattice: primitives, nominal types (possibly
// generic), and function types.
type Type interface {
	hirType()
}

// BoolType is the HIR boolean primitive.
type BoolType struct{}

// IntType is the HIR 32-bit integer primitive.
type IntType struct{}

// StringType is the HIR string primitive.
type StringType struct{}

// IDType is a nominal type, optionally applied to type arguments.
type IDType struct {
	Name          symtab.TypeNameId
	TypeArguments []Type
}

// FunctionType is a HIR function signature.
type FunctionType struct {
	ArgumentTypes []Type
	ReturnType    Type
}

func (BoolType) hirType()     {}
func (IntType) hirType()      {}
func (StringType) hirType()   {}
func (IDType) hirType()       {}
func (FunctionType) hirType() {}

// ClosureTypeDef declares a named closure type: a generic function-type
// alias that gets erased into a (code pointer, context) record in MIR.
type ClosureTypeDef struct {
	Name           symtab.TypeNameId
	TypeParameters []symtab.TypeNameId
	FunctionType   FunctionType
}

// EnumVariantKind classifies how an enum variant's payload is represented.
type EnumVariantKind int

const (
	// EnumVariantBoxed stores the payload behind a pointer.
	EnumVariantBoxed EnumVariantKind = iota
	// EnumVariantUnboxed stores the payload inline.
	EnumVariantUnboxed
	// EnumVariantInt stores the payload as a plain tag int, no data.
	EnumVariantInt
)

// EnumVariant is one arm of an enum type definition.
type EnumVariant struct {
	Kind EnumVariantKind
	Type Type // nil when Kind == EnumVariantInt
}

// TypeDef declares a struct or enum nominal type.
type TypeDef struct {
	Name           symtab.TypeNameId
	TypeParameters []symtab.TypeNameId
	IsObject       bool // true: struct with named fields; false: enum.
	FieldNames     []string
	FieldTypes     []Type // struct: element type per field.
	EnumVariants   []EnumVariant
}

// Operator enumerates the binary operators shared by HIR, MIR, and LIR.
// Kept as one type across all three IRs rather than redeclared per package.
type Operator int

const (
	OpMul Operator = iota
	OpDiv
	OpMod
	OpPlus
	OpMinus
	OpLand
	OpLor
	OpXor
	OpShl
	OpShr
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
)

// Commutative reports whether swapping operands preserves the operator's
// result, i.e. whether flexible-order canonicalization may reorder it.
func (o Operator) Commutative() bool {
	switch o {
	case OpMul, OpPlus, OpLand, OpLor, OpXor, OpEq, OpNe:
		return true
	default:
		return false
	}
}

// Invert returns the operator that holds when both operands are swapped,
// used by flexible-order canonicalization of ordered comparisons.
func (o Operator) Invert() Operator {
	switch o {
	case OpLt:
		return OpGt
	case OpLe:
		return OpGe
	case OpGt:
		return OpLt
	case OpGe:
		return OpLe
	default:
		return o
	}
}

// String renders the operator using the source language's surface spelling.
func (o Operator) String() string {
	switch o {
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpPlus:
		return "+"
	case OpMinus:
		return "-"
	case OpLand:
		return "&"
	case OpLor:
		return "|"
	case OpXor:
		return "^"
	case OpShl:
		return "<<"
	case OpShr:
		return ">>"
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	default:
		return "?"
	}
}

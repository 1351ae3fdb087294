// Package lir defines the Low-level IR: MIR with closures expanded into
// plain records, indirect calls made explicit, and Int split into Int32 /
// Int31 so a one-bit pointer tag can discriminate boxed enum payloads from
// unboxed ones.
package lir

import (
	"github.com/sail-lang/sailc/internal/hir"
	"github.com/sail-lang/sailc/internal/mir"
	"github.com/sail-lang/sailc/internal/pstr"
	"github.com/sail-lang/sailc/internal/symtab"
)

// Operator is shared verbatim across HIR, MIR, and LIR.
type Operator = hir.Operator

const (
	OpMul, OpDiv, OpMod, OpPlus, OpMinus = hir.OpMul, hir.OpDiv, hir.OpMod, hir.OpPlus, hir.OpMinus
	OpLand, OpLor, OpXor, OpShl, OpShr   = hir.OpLand, hir.OpLor, hir.OpXor, hir.OpShl, hir.OpShr
	OpLt, OpLe, OpGt, OpGe, OpEq, OpNe   = hir.OpLt, hir.OpLe, hir.OpGt, hir.OpGe, hir.OpEq, hir.OpNe
)

// Type is the LIR type lattice: Int32, Int31, AnyPointer, a nominal Id, or
// a function type.
type Type struct {
	kind TypeKind
	id   symtab.TypeNameId
	fn   *FunctionType
}

// TypeKind discriminates the five LIR type variants.
type TypeKind uint8

const (
	TypeInt32 TypeKind = iota
	TypeInt31
	TypeAnyPointer
	TypeID
	TypeFn
)

var (
	Int32     = Type{kind: TypeInt32}
	Int31     = Type{kind: TypeInt31}
	AnyPointer = Type{kind: TypeAnyPointer}
)

// IDType builds a nominal LIR type.
func IDType(id symtab.TypeNameId) Type { return Type{kind: TypeID, id: id} }

// FnType builds a function-typed LIR value type.
func FnType(ft FunctionType) Type { return Type{kind: TypeFn, fn: &ft} }

// Kind reports which of the five LIR type variants t is.
func (t Type) Kind() TypeKind { return t.kind }

// ID returns the nominal type id; only meaningful when Kind() == TypeID.
func (t Type) ID() symtab.TypeNameId { return t.id }

// Fn returns the function signature; only meaningful when Kind() == TypeFn.
func (t Type) Fn() FunctionType { return *t.fn }

// IsTheSameType is a structural equality check used by the lowering and
// optimizer passes to decide whether a Cast is a no-op.
func (t Type) IsTheSameType(other Type) bool {
	if t.kind != other.kind {
		return false
	}

	switch t.kind {
	case TypeID:
		return t.id == other.id
	case TypeFn:
		if len(t.fn.ArgumentTypes) != len(other.fn.ArgumentTypes) {
			return false
		}

		for i := range t.fn.ArgumentTypes {
			if !t.fn.ArgumentTypes[i].IsTheSameType(other.fn.ArgumentTypes[i]) {
				return false
			}
		}

		return t.fn.ReturnType.IsTheSameType(other.fn.ReturnType)
	default:
		return true
	}
}

// FunctionType is a LIR function signature.
type FunctionType struct {
	ArgumentTypes []Type
	ReturnType    Type
}

// FunctionName is a function's fully qualified, callable identity — reused
// verbatim from mir.FunctionName since lowering never changes it.
type FunctionName = mir.FunctionName

// ClosureTypeDef declares a two-slot closure record type.
type ClosureTypeDef struct {
	Name         symtab.TypeNameId
	FunctionType FunctionType
}

// TypeDef declares a struct or enum nominal type. Enums carry the same
// boxed/unboxed/int variant markers as MIR so the emitter can lay out
// discriminant checks consistently across both IRs.
type TypeDef struct {
	Name     symtab.TypeNameId
	Mappings mir.TypeDefMappings
}

// Function is one lowered, emission-ready function.
type Function struct {
	Name        FunctionName
	Parameters  []pstr.PStr
	Type        FunctionType
	Body        []Statement
	ReturnValue Expression
}

// Sources is the top-level container the MIR→LIR lowering pass produces,
// handed off to the external text emitter.
type Sources struct {
	SymbolTable       *symtab.Table
	GlobalStrings     []pstr.PStr
	ClosureTypes      []ClosureTypeDef
	TypeDefinitions   []TypeDef
	MainFunctionNames []FunctionName
	Functions         []Function
}

// Package mir defines the Mid-level IR: HIR with generics monomorphized and
// closures erased into explicit (code pointer, context) records, but still
// structured control flow — no basic-block CFG.
package mir

import (
	"github.com/sail-lang/sailc/internal/hir"
	"github.com/sail-lang/sailc/internal/pstr"
	"github.com/sail-lang/sailc/internal/symtab"
)

// Type is exactly the two-variant MIR type lattice (Int, Id(TypeNameId));
// it is the same lattice the symbol table's suffix elements use, so MIR
// reuses it directly rather than redeclaring an isomorphic copy.
type Type = symtab.Type

// Int is the sole MIR integer type.
var Int = symtab.Int

// IDType builds a nominal MIR type.
func IDType(id symtab.TypeNameId) Type { return symtab.IDType(id) }

// Operator is shared verbatim across HIR, MIR, and LIR.
type Operator = hir.Operator

const (
	OpMul   = hir.OpMul
	OpDiv   = hir.OpDiv
	OpMod   = hir.OpMod
	OpPlus  = hir.OpPlus
	OpMinus = hir.OpMinus
	OpLand  = hir.OpLand
	OpLor   = hir.OpLor
	OpXor   = hir.OpXor
	OpShl   = hir.OpShl
	OpShr   = hir.OpShr
	OpLt    = hir.OpLt
	OpLe    = hir.OpLe
	OpGt    = hir.OpGt
	OpGe    = hir.OpGe
	OpEq    = hir.OpEq
	OpNe    = hir.OpNe
)

// FunctionName is a function's fully qualified, callable identity.
type FunctionName struct {
	TypeName symtab.TypeNameId
	FnName   pstr.PStr
}

// EncodedName writes the linker symbol `_<type-name-encoded>$<member>`
// for fn.
func (fn FunctionName) EncodedName(tab *symtab.Table, heap *pstr.Heap) string {
	return "_" + tab.EncodedName(fn.TypeName) + "$" + heap.Str(fn.FnName)
}

// ClosureTypeDef declares a synthesized closure record type: slot 0 is a
// function pointer of FunctionType, slot 1 is an opaque context.
type ClosureTypeDef struct {
	Name         symtab.TypeNameId
	FunctionType FunctionType
}

// EnumTypeDef classifies how an enum variant's payload is laid out.
type EnumTypeDef interface{ mirEnumTypeDef() }

// EnumBoxed stores Fields behind a pointer.
type EnumBoxed struct{ Fields []Type }

// EnumUnboxed stores a single value of Field inline.
type EnumUnboxed struct{ Field Type }

// EnumInt stores only the tag, no payload.
type EnumInt struct{}

func (EnumBoxed) mirEnumTypeDef()   {}
func (EnumUnboxed) mirEnumTypeDef() {}
func (EnumInt) mirEnumTypeDef()     {}

// TypeDefMappings is either a struct's field types or an enum's variants.
type TypeDefMappings interface{ mirTypeDefMappings() }

// StructMapping lists field types in declaration order.
type StructMapping struct{ Fields []Type }

// EnumMapping lists variant payload layouts in declaration order.
type EnumMapping struct{ Variants []EnumTypeDef }

func (StructMapping) mirTypeDefMappings() {}
func (EnumMapping) mirTypeDefMappings()   {}

// TypeDef declares a monomorphized struct or enum nominal type.
type TypeDef struct {
	Name     symtab.TypeNameId
	Mappings TypeDefMappings
}

// FunctionType is a MIR function signature.
type FunctionType struct {
	ArgumentTypes []Type
	ReturnType    Type
}

// Function is one compiled, fully monomorphic function.
type Function struct {
	Name        FunctionName
	Parameters  []pstr.PStr
	Type        FunctionType
	Body        []Statement
	ReturnValue Expression
}

// Sources is the top-level container threaded through the optimizer.
type Sources struct {
	SymbolTable       *symtab.Table
	GlobalStrings     []pstr.PStr
	ClosureTypes      []ClosureTypeDef
	TypeDefinitions   []TypeDef
	MainFunctionNames []FunctionName
	Functions         []Function
}

// Clone produces a deep-enough copy of s for a pass to mutate without
// aliasing the input.
func (s *Sources) Clone() *Sources {
	out := &Sources{
		SymbolTable:       s.SymbolTable,
		GlobalStrings:     append([]pstr.PStr(nil), s.GlobalStrings...),
		ClosureTypes:      append([]ClosureTypeDef(nil), s.ClosureTypes...),
		TypeDefinitions:   append([]TypeDef(nil), s.TypeDefinitions...),
		MainFunctionNames: append([]FunctionName(nil), s.MainFunctionNames...),
		Functions:         make([]Function, len(s.Functions)),
	}
	for i, f := range s.Functions {
		out.Functions[i] = Function{
			Name:        f.Name,
			Parameters:  append([]pstr.PStr(nil), f.Parameters...),
			Type:        f.Type,
			Body:        append([]Statement(nil), f.Body...),
			ReturnValue: f.ReturnValue,
		}
	}

	return out
}

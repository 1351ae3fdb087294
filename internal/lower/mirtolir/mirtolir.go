// Package mirtolir implements the MIR→LIR lowering pass: representation
// splitting (Int32 vs. the AnyPointer erasure mixed boxed/unboxed enums
// need), closure erasure into two-slot records, indirect-call lowering
// through an explicit function-pointer load, and IndexedAssign-based
// construction for mutually recursive local closures.
package mirtolir

import (
	"github.com/sail-lang/sailc/internal/irerr"
	"github.com/sail-lang/sailc/internal/lir"
	"github.com/sail-lang/sailc/internal/mir"
	"github.com/sail-lang/sailc/internal/pstr"
	"github.com/sail-lang/sailc/internal/symtab"
)

// lowerer holds the whole-program context shared by every function being
// lowered: the type classification that decides Int32 vs. AnyPointer, and
// the closure record shapes call lowering needs to recover a function
// pointer's signature.
type lowerer struct {
	heap  *pstr.Heap
	table *symtab.Table

	typeDefs     map[symtab.TypeNameId]mir.TypeDefMappings
	mixedEnums   map[symtab.TypeNameId]bool
	closureTypes map[symtab.TypeNameId]mir.FunctionType
}

// Lower translates a fully monomorphized, closure-erased-at-the-MIR-level
// mir.Sources into lir.Sources: closures become plain two-slot records,
// every call site names a function-shaped value directly, and a nominal
// type governed by a mixed boxed/unboxed enum definition widens to
// AnyPointer so the emitter can discriminate its two runtime shapes by tag
// bit.
func Lower(src *mir.Sources, heap *pstr.Heap) *lir.Sources {
	l := &lowerer{
		heap:         heap,
		table:        src.SymbolTable,
		typeDefs:     map[symtab.TypeNameId]mir.TypeDefMappings{},
		mixedEnums:   map[symtab.TypeNameId]bool{},
		closureTypes: map[symtab.TypeNameId]mir.FunctionType{},
	}

	for _, td := range src.TypeDefinitions {
		l.typeDefs[td.Name] = td.Mappings
	}

	for id, mappings := range l.typeDefs {
		if em, ok := mappings.(mir.EnumMapping); ok && isMixedEnum(em) {
			l.mixedEnums[id] = true
		}
	}

	for _, c := range src.ClosureTypes {
		l.closureTypes[c.Name] = c.FunctionType
	}

	closureTypes := make([]lir.ClosureTypeDef, len(src.ClosureTypes))
	for i, c := range src.ClosureTypes {
		closureTypes[i] = lir.ClosureTypeDef{Name: c.Name, FunctionType: l.lowerFunctionType(c.FunctionType)}
	}

	typeDefs := make([]lir.TypeDef, len(src.TypeDefinitions))
	for i, td := range src.TypeDefinitions {
		typeDefs[i] = lir.TypeDef{Name: td.Name, Mappings: td.Mappings}
	}

	functions := make([]lir.Function, len(src.Functions))
	for i, fn := range src.Functions {
		functions[i] = l.lowerFunction(fn)
	}

	return &lir.Sources{
		SymbolTable:       src.SymbolTable,
		GlobalStrings:     append([]pstr.PStr(nil), src.GlobalStrings...),
		ClosureTypes:      closureTypes,
		TypeDefinitions:   typeDefs,
		MainFunctionNames: append([]lir.FunctionName(nil), src.MainFunctionNames...),
		Functions:         functions,
	}
}

// isMixedEnum reports whether em has at least one boxed variant and at
// least one non-boxed (int or unboxed-inline) variant, the only shape that
// needs a runtime tag-bit discriminator and so the only one whose nominal
// type widens to AnyPointer instead of passing through as a plain Id.
func isMixedEnum(em mir.EnumMapping) bool {
	hasBoxed, hasOther := false, false

	for _, v := range em.Variants {
		switch v.(type) {
		case mir.EnumBoxed:
			hasBoxed = true
		case mir.EnumUnboxed, mir.EnumInt:
			hasOther = true
		}
	}

	return hasBoxed && hasOther
}

// lirType lowers a MIR type to its LIR representation.
func (l *lowerer) lirType(t mir.Type) lir.Type {
	switch t.Kind() {
	case symtab.TypeInt:
		return lir.Int32
	case symtab.TypeID:
		if l.mixedEnums[t.ID()] {
			return lir.AnyPointer
		}

		return lir.IDType(t.ID())
	default:
		irerr.Abort(irerr.New(irerr.CategoryEscapedGeneric, "mir type with unrecognized kind %d reached mirtolir", t.Kind()))
		return lir.Int32
	}
}

func (l *lowerer) lowerFunctionType(ft mir.FunctionType) lir.FunctionType {
	args := make([]lir.Type, len(ft.ArgumentTypes))
	for i, a := range ft.ArgumentTypes {
		args[i] = l.lirType(a)
	}

	return lir.FunctionType{ArgumentTypes: args, ReturnType: l.lirType(ft.ReturnType)}
}

// closureFunctionType recovers the function signature of the closure type a
// closure-valued variable carries, for the indirect-call lowering in
// call.go.
func (l *lowerer) closureFunctionType(closureType mir.Type) lir.FunctionType {
	ft, ok := l.closureTypes[closureType.ID()]
	if !ok {
		irerr.Abort(irerr.New(irerr.CategoryUnresolvedName, "closure-valued type %s names no closure type", l.table.EncodedName(closureType.ID())))
	}

	return l.lowerFunctionType(ft)
}

// natural reports the LIR type a lowered expression already carries,
// independent of whatever position it is about to be used in.
func natural(e lir.Expression) lir.Type {
	switch v := e.(type) {
	case lir.Int32Literal:
		return lir.Int32
	case lir.Int31Literal:
		return lir.Int31
	case lir.StringName:
		return lir.IDType(symtab.Str)
	case lir.Variable:
		return v.Type
	case lir.FnName:
		return v.Type
	default:
		return lir.Int32
	}
}

// castTo returns the statements needed before value can be used at target's
// representation, plus the expression to use in its place. A Cast is
// needed whenever value's natural representation differs structurally from
// target: an Int32 flowing into an AnyPointer-typed slot (the tag-int
// variant of a mixed enum) and a concrete boxed-variant Id flowing into the
// same slot (the pointer variant) both take this path; a value already
// shaped like target is passed through untouched.
func (l *lowerer) castTo(target lir.Type, value lir.Expression) ([]lir.Statement, lir.Expression) {
	if natural(value).IsTheSameType(target) {
		return nil, value
	}

	name := l.heap.AllocTemp()

	return []lir.Statement{lir.Cast{Name: name, Type: target, Expression: value}}, lir.Variable{Name: name, Type: target}
}

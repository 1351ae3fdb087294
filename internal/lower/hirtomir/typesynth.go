// Package hirtomir implements the HIR→MIR lowering pass: generics specialization, closure erasure, and synthesis
// of nominal types for anonymous shapes (closure types, tuple records).
package hirtomir

import (
	"strconv"
	"strings"

	"github.com/sail-lang/sailc/internal/mir"
	"github.com/sail-lang/sailc/internal/pstr"
	"github.com/sail-lang/sailc/internal/symtab"
)

// TypeSynthesizer maps each observed function-type shape to a
// fresh TypeNameId (a closure type), and each observed tuple-of-types shape
// to a fresh nominal struct type. Keyed by a pretty-printed signature so
// structurally identical shapes share a name; ids are issued in observation
// order so output is deterministic across runs on the same input.
type TypeSynthesizer struct {
	heap  *pstr.Heap
	table *symtab.Table

	closureByKey map[string]symtab.TypeNameId
	closureOrder []string
	closureDefs  map[symtab.TypeNameId]mir.ClosureTypeDef

	tupleByKey map[string]symtab.TypeNameId
	tupleOrder []string
	tupleDefs  map[symtab.TypeNameId]mir.TypeDef

	nextSynthID int
}

// NewTypeSynthesizer builds an empty synthesizer bound to heap and table.
func NewTypeSynthesizer(heap *pstr.Heap, table *symtab.Table) *TypeSynthesizer {
	return &TypeSynthesizer{
		heap:         heap,
		table:        table,
		closureByKey: map[string]symtab.TypeNameId{},
		closureDefs:  map[symtab.TypeNameId]mir.ClosureTypeDef{},
		tupleByKey:   map[string]symtab.TypeNameId{},
		tupleDefs:    map[symtab.TypeNameId]mir.TypeDef{},
	}
}

func prettyMirType(t mir.Type) string {
	if t.Kind() == symtab.TypeInt {
		return "int"
	}

	return "id" + strconv.FormatUint(uint64(t.ID()), 10)
}

func prettyFunctionType(ft mir.FunctionType) string {
	parts := make([]string, len(ft.ArgumentTypes))
	for i, a := range ft.ArgumentTypes {
		parts[i] = prettyMirType(a)
	}

	return "(" + strings.Join(parts, ",") + ")->" + prettyMirType(ft.ReturnType)
}

// SynthesizeClosureType returns the TypeNameId for a closure record wrapping
// ft, synthesizing a fresh one the first time this exact function-type
// shape is observed.
func (s *TypeSynthesizer) SynthesizeClosureType(ft mir.FunctionType) symtab.TypeNameId {
	key := prettyFunctionType(ft)
	if id, ok := s.closureByKey[key]; ok {
		return id
	}

	name := s.heap.Alloc("$Closure" + strconv.Itoa(s.nextSynthID))
	s.nextSynthID++
	id := s.table.CreateSimple(symtab.Root, name)
	s.closureByKey[key] = id
	s.closureOrder = append(s.closureOrder, key)
	s.closureDefs[id] = mir.ClosureTypeDef{Name: id, FunctionType: ft}

	return id
}

// SynthesizeTupleType returns the TypeNameId for an anonymous struct holding
// one slot per entry of elementTypes, in source order, synthesizing a fresh
// one the first time this exact tuple shape is observed.
func (s *TypeSynthesizer) SynthesizeTupleType(elementTypes []mir.Type) symtab.TypeNameId {
	parts := make([]string, len(elementTypes))
	for i, t := range elementTypes {
		parts[i] = prettyMirType(t)
	}

	key := "(" + strings.Join(parts, ",") + ")"
	if id, ok := s.tupleByKey[key]; ok {
		return id
	}

	name := s.heap.Alloc("$Tuple" + strconv.Itoa(s.nextSynthID))
	s.nextSynthID++
	id := s.table.CreateSimple(symtab.Root, name)
	s.tupleByKey[key] = id
	s.tupleOrder = append(s.tupleOrder, key)
	s.tupleDefs[id] = mir.TypeDef{Name: id, Mappings: mir.StructMapping{Fields: append([]mir.Type(nil), elementTypes...)}}

	return id
}

// ClosureTypeDefs returns every synthesized closure type, in observation
// order.
func (s *TypeSynthesizer) ClosureTypeDefs() []mir.ClosureTypeDef {
	out := make([]mir.ClosureTypeDef, len(s.closureOrder))
	for i, k := range s.closureOrder {
		out[i] = s.closureDefs[s.closureByKey[k]]
	}

	return out
}

// TupleTypeDefs returns every synthesized tuple type, in observation order.
func (s *TypeSynthesizer) TupleTypeDefs() []mir.TypeDef {
	out := make([]mir.TypeDef, len(s.tupleOrder))
	for i, k := range s.tupleOrder {
		out[i] = s.tupleDefs[s.tupleByKey[k]]
	}

	return out
}

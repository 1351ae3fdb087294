// Package symtab interns structured type names into compact TypeNameId
// handles, shared by MIR and LIR.
//
// A structured name is the tuple (module reference, base PStr, ordered type
// suffix, optional subtype tag). Two names intern to the same id if and only
// if every field of the tuple compares equal.
package symtab

import (
	"strconv"
	"strings"

	"github.com/sail-lang/sailc/internal/pstr"
)

// ModuleRef identifies the source module a type name belongs to, as a
// sequence of path components (e.g. ["Std", "List"]).
type ModuleRef struct {
	Parts []string
}

// Root is the module reference used for builtin/reserved type names.
var Root = ModuleRef{}

// Encoded returns the dot-joined, underscore-escaped symbol prefix for m.
func (m ModuleRef) Encoded() string {
	escaped := make([]string, len(m.Parts))
	for i, p := range m.Parts {
		escaped[i] = strings.ReplaceAll(p, "_", "__")
	}

	return strings.Join(escaped, ".")
}

func (m ModuleRef) equal(other ModuleRef) bool {
	if len(m.Parts) != len(other.Parts) {
		return false
	}

	for i := range m.Parts {
		if m.Parts[i] != other.Parts[i] {
			return false
		}
	}

	return true
}

// Type is the MIR-level type lattice: an unboxed 32-bit int, or a nominal
// type identified by TypeNameId. MIR and LIR both build on this shape (LIR
// widens it; see internal/lir).
type Type struct {
	kind TypeKind
	id   TypeNameId
}

// TypeKind discriminates the two MIR type variants.
type TypeKind uint8

const (
	// TypeInt is the MIR/LIR-shared 32-bit integer type.
	TypeInt TypeKind = iota
	// TypeID is a nominal type, identified by a TypeNameId.
	TypeID
)

// Int is the sole MIR integer type value.
var Int = Type{kind: TypeInt}

// IDType builds a nominal MIR type referring to id.
func IDType(id TypeNameId) Type { return Type{kind: TypeID, id: id} }

// Kind reports whether t is the int type or a nominal type.
func (t Type) Kind() TypeKind { return t.kind }

// ID returns the nominal type id; only meaningful when Kind() == TypeID.
func (t Type) ID() TypeNameId { return t.id }

// Equal reports structural equality between two MIR types.
func (t Type) Equal(other Type) bool {
	if t.kind != other.kind {
		return false
	}

	return t.kind == TypeInt || t.id == other.id
}

// TypeNameId is an opaque handle for an interned structured type name.
// 0, 1, and 2 are reserved: empty/builtin, string, process.
type TypeNameId uint32

const (
	// Empty is the builtin/unnamed type name, id 0.
	Empty TypeNameId = 0
	// Str is the builtin string type name, id 1.
	Str TypeNameId = 1
	// Process is the builtin process/stdin-stdout type name, id 2.
	Process TypeNameId = 2
)

type structuredName struct {
	module  ModuleRef
	base    pstr.PStr
	suffix  string // full interning key of this name, see key.
	hasTag  bool
	tag     uint32
	rawSufx []Type
}

// Table is the write-only interning map from structured names to
// TypeNameId. Lookups by id are total for every id the table ever returned.
type Table struct {
	heap       *pstr.Heap
	byKey      map[string]TypeNameId
	byID       []structuredName
	emptyName  pstr.PStr
	strName    pstr.PStr
	processNam pstr.PStr
}

// New creates a Table pre-seeded with ids 0 (empty), 1 (string), 2 (process).
func New(heap *pstr.Heap) *Table {
	t := &Table{
		heap:  heap,
		byKey: make(map[string]TypeNameId, 64),
	}

	t.emptyName = heap.Alloc("")
	t.strName = heap.Alloc(heap.Str(pstr.StrTypeName))
	t.processNam = heap.Alloc(heap.Str(pstr.ProcessTypeName))

	t.internRaw(Root, t.emptyName, nil, nil)
	t.internRaw(Root, t.strName, nil, nil)
	t.internRaw(Root, t.processNam, nil, nil)

	return t
}

func suffixKey(suffix []Type) string {
	var b strings.Builder
	for _, s := range suffix {
		if s.kind == TypeInt {
			b.WriteString("i")
		} else {
			b.WriteString("n")
			b.WriteString(strconv.FormatUint(uint64(s.id), 10))
		}

		b.WriteByte(',')
	}

	return b.String()
}

func (t *Table) key(module ModuleRef, base pstr.PStr, suffix []Type, tag *uint32) string {
	var b strings.Builder

	b.WriteString(module.Encoded())
	b.WriteByte('|')
	b.WriteString(strconv.FormatUint(uint64(base), 10))
	b.WriteByte('|')
	b.WriteString(suffixKey(suffix))
	b.WriteByte('|')

	if tag != nil {
		b.WriteString(strconv.FormatUint(uint64(*tag), 10))
	}

	return b.String()
}

func (t *Table) internRaw(module ModuleRef, base pstr.PStr, suffix []Type, tag *uint32) TypeNameId {
	k := t.key(module, base, suffix, tag)
	if id, ok := t.byKey[k]; ok {
		return id
	}

	id := TypeNameId(len(t.byID))
	sn := structuredName{module: module, base: base, suffix: k, rawSufx: append([]Type(nil), suffix...)}

	if tag != nil {
		sn.hasTag = true
		sn.tag = *tag
	}

	t.byID = append(t.byID, sn)
	t.byKey[k] = id

	return id
}

// CreateSimple interns a bare (module, base) name with no suffix or tag.
func (t *Table) CreateSimple(module ModuleRef, base pstr.PStr) TypeNameId {
	return t.internRaw(module, base, nil, nil)
}

// CreateWithSuffix interns (module, base, suffix) with no subtype tag.
func (t *Table) CreateWithSuffix(module ModuleRef, base pstr.PStr, suffix []Type) TypeNameId {
	return t.internRaw(module, base, suffix, nil)
}

// DeriveWithSuffix produces a name sharing parent's module/base/subtype tag
// but with a new suffix.
func (t *Table) DeriveWithSuffix(parent TypeNameId, suffix []Type) TypeNameId {
	p := t.byID[parent]

	var tag *uint32
	if p.hasTag {
		tag = &p.tag
	}

	return t.internRaw(p.module, p.base, suffix, tag)
}

// DeriveWithSubtypeTag produces a name sharing parent's module/base/suffix
// but with a new subtype tag, used to distinguish enum variant payload types
// that otherwise share a structural shape.
func (t *Table) DeriveWithSubtypeTag(parent TypeNameId, tag uint32) TypeNameId {
	p := t.byID[parent]

	return t.internRaw(p.module, p.base, p.rawSufx, &tag)
}

// Module returns the module reference component of id.
func (t *Table) Module(id TypeNameId) ModuleRef { return t.byID[id].module }

// Base returns the base-name PStr component of id.
func (t *Table) Base(id TypeNameId) pstr.PStr { return t.byID[id].base }

// Suffix returns the type-argument suffix component of id.
func (t *Table) Suffix(id TypeNameId) []Type {
	return append([]Type(nil), t.byID[id].rawSufx...)
}

// SubtypeTag returns the subtype tag component of id, if any.
func (t *Table) SubtypeTag(id TypeNameId) (uint32, bool) {
	sn := t.byID[id]
	return sn.tag, sn.hasTag
}

// EncodedName writes the linker-symbol encoding of id into a string:
// <module-encoded>_<base>[_<suffix-part>]*[$_Sub<tag>].
func (t *Table) EncodedName(id TypeNameId) string {
	sn := t.byID[id]

	var b strings.Builder

	b.WriteString(sn.module.Encoded())
	b.WriteByte('_')
	b.WriteString(t.heap.Str(sn.base))

	for _, s := range sn.rawSufx {
		b.WriteByte('_')

		if s.kind == TypeInt {
			b.WriteString("int")
		} else {
			b.WriteString(t.EncodedName(s.id))
		}
	}

	if sn.hasTag {
		b.WriteString("$_Sub")
		b.WriteString(strconv.FormatUint(uint64(sn.tag), 10))
	}

	return b.String()
}

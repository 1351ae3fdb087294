package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sail-lang/sailc/internal/pstr"
)

func TestReservedIDs(t *testing.T) {
	h := pstr.NewHeap()
	tab := New(h)

	assert.Equal(t, TypeNameId(0), Empty)
	assert.Equal(t, TypeNameId(1), Str)
	assert.Equal(t, TypeNameId(2), Process)
	assert.Equal(t, "__Str", tab.EncodedName(Str))
	assert.Equal(t, "__Process", tab.EncodedName(Process))
}

func TestInterningInjective(t *testing.T) {
	h := pstr.NewHeap()
	tab := New(h)
	listName := h.Alloc("List")

	a := tab.CreateSimple(ModuleRef{Parts: []string{"Std"}}, listName)
	b := tab.CreateSimple(ModuleRef{Parts: []string{"Std"}}, listName)
	c := tab.CreateSimple(Root, listName)

	assert.Equal(t, a, b, "same structural tuple must intern to the same id")
	assert.NotEqual(t, a, c, "different module reference must intern to a different id")
}

func TestSuffixDistinguishesNames(t *testing.T) {
	h := pstr.NewHeap()
	tab := New(h)
	boxName := h.Alloc("Box")

	plain := tab.CreateSimple(Root, boxName)
	ofInt := tab.CreateWithSuffix(Root, boxName, []Type{Int})
	ofStr := tab.CreateWithSuffix(Root, boxName, []Type{IDType(Str)})

	assert.NotEqual(t, plain, ofInt)
	assert.NotEqual(t, ofInt, ofStr)
}

func TestDeriveWithSuffixPreservesSubtypeTag(t *testing.T) {
	h := pstr.NewHeap()
	tab := New(h)
	name := h.Alloc("Either")

	base := tab.CreateSimple(Root, name)
	tagged := tab.DeriveWithSubtypeTag(base, 3)
	derived := tab.DeriveWithSuffix(tagged, []Type{Int})

	tag, ok := tab.SubtypeTag(derived)
	require.True(t, ok)
	assert.Equal(t, uint32(3), tag)
	assert.Equal(t, []Type{Int}, tab.Suffix(derived))
}

func TestDeriveWithSubtypeTagPreservesSuffix(t *testing.T) {
	h := pstr.NewHeap()
	tab := New(h)
	name := h.Alloc("Result")

	withSuffix := tab.CreateWithSuffix(Root, name, []Type{Int, IDType(Str)})
	tagged := tab.DeriveWithSubtypeTag(withSuffix, 1)

	assert.Equal(t, []Type{Int, IDType(Str)}, tab.Suffix(tagged))
}

func TestEncodedNameFormat(t *testing.T) {
	h := pstr.NewHeap()
	tab := New(h)
	boxName := h.Alloc("Box")

	ofInt := tab.CreateWithSuffix(ModuleRef{Parts: []string{"Std", "Container"}}, boxName, []Type{Int})
	assert.Equal(t, "Std.Container_Box_int", tab.EncodedName(ofInt))

	tagged := tab.DeriveWithSubtypeTag(ofInt, 2)
	assert.Equal(t, "Std.Container_Box_int$_Sub2", tab.EncodedName(tagged))
}

func TestLookupTotalForEveryReturnedID(t *testing.T) {
	h := pstr.NewHeap()
	tab := New(h)
	name := h.Alloc("Widget")

	id := tab.CreateSimple(Root, name)
	assert.NotPanics(t, func() {
		_ = tab.Module(id)
		_ = tab.Base(id)
		_ = tab.EncodedName(id)
	})
}

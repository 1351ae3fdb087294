// Package pstr interns identifier strings into small integer handles.
//
// Every identifier that flows through HIR, MIR, and LIR — variable names,
// function members, struct fields — is represented by a PStr rather than a
// Go string, so that later passes can compare, hash, and copy names without
// touching the underlying bytes.
package pstr

import "sync"

// PStr is an opaque handle to an interned UTF-8 string. Equality of PStr
// values is equality of the underlying strings.
type PStr uint32

// Invalid is never returned by Heap.Alloc; it is used as a sentinel in
// optional fields (e.g. an unused return collector).
const Invalid PStr = 0

// Well-known reserved PStrs, seeded into every Heap so that encoded symbols
// and builtin lookups never depend on allocation order.
const (
	Init PStr = iota + 1
	Panic
	Println
	FromInt
	ToInt
	Concat
	Malloc
	Free
	IncRef
	DecRef
	StrTypeName
	ProcessTypeName
	MainTypeName
)

var reservedStrings = map[PStr]string{
	Init:            "init",
	Panic:           "panic",
	Println:         "println",
	FromInt:         "fromInt",
	ToInt:           "toInt",
	Concat:          "concat",
	Malloc:          "malloc",
	Free:            "free",
	IncRef:          "incRef",
	DecRef:          "decRef",
	StrTypeName:     "_Str",
	ProcessTypeName: "_Process",
	MainTypeName:    "_Main",
}

// Heap is the process-wide interning arena. It owns the only mapping from
// PStr to string and back; no other component may allocate a PStr.
//
// A Heap is single-threaded by contract: the pipeline never reads while
// another pass writes. The mutex below serializes misuse (e.g. calling
// Alloc concurrently from two goroutines) so it cannot corrupt the maps.
type Heap struct {
	mu          sync.Mutex
	strToID     map[string]PStr
	idToStr     []string
	tempCounter uint32
}

// NewHeap creates a Heap pre-seeded with the reserved well-known PStrs.
func NewHeap() *Heap {
	h := &Heap{
		strToID: make(map[string]PStr, 64),
		idToStr: make([]string, 1, 64), // index 0 is unused (Invalid).
	}
	for id := PStr(1); int(id) <= len(reservedStrings); id++ {
		s := reservedStrings[id]
		h.idToStr = append(h.idToStr, s)
		h.strToID[s] = id
	}

	return h
}

// Alloc interns s, returning the same PStr for equal strings across calls.
func (h *Heap) Alloc(s string) PStr {
	h.mu.Lock()
	defer h.mu.Unlock()

	if id, ok := h.strToID[s]; ok {
		return id
	}

	id := PStr(len(h.idToStr))
	h.idToStr = append(h.idToStr, s)
	h.strToID[s] = id

	return id
}

// AllocTemp returns a fresh synthetic PStr "_t<n>" distinct from every name
// interned by this Heap before the call: a counter value whose text is
// already interned is skipped. Alloc of the same text afterwards returns
// this PStr. Used for compiler-generated temporaries (inliner renaming,
// loop strength reduction collectors, ...).
func (h *Heap) AllocTemp() PStr {
	h.mu.Lock()
	defer h.mu.Unlock()

	for {
		h.tempCounter++
		name := "_t" + itoa(h.tempCounter)

		if _, taken := h.strToID[name]; taken {
			continue
		}

		id := PStr(len(h.idToStr))
		h.idToStr = append(h.idToStr, name)
		h.strToID[name] = id

		return id
	}
}

// Str returns the string that id was interned from. Str panics if id was
// never returned by this Heap, since that is always a programmer error: no
// pass may construct a PStr out of thin air.
func (h *Heap) Str(id PStr) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if int(id) >= len(h.idToStr) {
		panic("pstr: unknown PStr handle; every PStr must originate from Heap.Alloc")
	}

	return h.idToStr[id]
}

func itoa(n uint32) string {
	if n == 0 {
		return "0"
	}

	var buf [10]byte

	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}

	return string(buf[i:])
}

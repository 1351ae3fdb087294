package interp

import (
	"encoding/binary"

	"github.com/sail-lang/sailc/internal/irerr"
	"github.com/sail-lang/sailc/internal/pstr"
)

// Memory is the interpreter's entire mutable state: a byte-addressed heap
// with bump allocation, a call stack of name->value frames, and an
// out-of-band string table (string content never lives in the heap
// itself, only a [tag, table-id] pair does).
type Memory struct {
	heap      []byte
	mallocEnd int32

	stacks []map[pstr.PStr]int32

	stringTable map[int32]string

	collector []string
}

// NewMemory allocates a heap of heapSize bytes. The caller reserves
// mallocEnd bytes at the front (for global string and function address
// tags) before any Malloc call.
func NewMemory(heapSize int, mallocEnd int32) *Memory {
	return &Memory{
		heap:        make([]byte, heapSize),
		mallocEnd:   mallocEnd,
		stringTable: make(map[int32]string),
	}
}

// PushStack opens a fresh frame for a function call.
func (m *Memory) PushStack() {
	m.stacks = append(m.stacks, map[pstr.PStr]int32{})
}

// PopStack discards the innermost frame on return.
func (m *Memory) PopStack() {
	m.stacks = m.stacks[:len(m.stacks)-1]
}

// ReadStack reads name from the current frame, defaulting to 0 for a name
// never written in this frame (matches the reference's unwrap_or(&0)).
func (m *Memory) ReadStack(name pstr.PStr) int32 {
	return m.stacks[len(m.stacks)-1][name]
}

// WriteStack binds name to value in the current frame.
func (m *Memory) WriteStack(name pstr.PStr, value int32) {
	m.stacks[len(m.stacks)-1][name] = value
}

func (m *Memory) checkBounds(address int32, width int32) {
	if address < 0 || int64(address)+int64(width) > int64(len(m.heap)) {
		irerr.Abort(irerr.New(irerr.CategoryHeapBounds, "heap access at %d (width %d) out of bounds (size %d)", address, width, len(m.heap)))
	}
}

// ReadHeap decodes the big-endian i32 stored at address.
func (m *Memory) ReadHeap(address int32) int32 {
	m.checkBounds(address, 4)
	return int32(binary.BigEndian.Uint32(m.heap[address : address+4]))
}

// WriteHeap encodes value as a big-endian i32 at address.
func (m *Memory) WriteHeap(address int32, value int32) {
	m.checkBounds(address, 4)
	binary.BigEndian.PutUint32(m.heap[address:address+4], uint32(value))
}

// Malloc bumps the allocator by a 4-byte size header plus size payload
// bytes, writes the header, and returns the address just past it.
func (m *Memory) Malloc(size int32) int32 {
	address := m.mallocEnd
	m.WriteHeap(address, size)
	m.mallocEnd += 4 + size
	return address + 4
}

// Free zeroes both address's header and its size bytes of payload, so a
// later read through the same address observes corruption rather than
// stale content. Freeing an address whose header already reads zero is a
// double free (or a free of something never allocated through Malloc) and
// traps rather than silently re-zeroing already-dead memory.
func (m *Memory) Free(address int32) {
	size := m.ReadHeap(address - 4)
	if size == 0 {
		panic(&Trap{Message: "free: heap record is already freed"})
	}

	m.WriteHeap(address-4, 0)
	m.checkBounds(address, size)
	for i := int32(0); i < size; i++ {
		m.heap[address+i] = 0
	}
}

// GetString resolves a string record's content. A string record is the
// two-slot [0, table-id] pair Malloc/InternString builds; the first slot
// is an unused tag, kept only so string records share shape with an
// ordinary heap record.
func (m *Memory) GetString(address int32) string {
	id := m.ReadHeap(address + 4)

	s, ok := m.stringTable[id]
	if !ok {
		irerr.Abort(irerr.New(irerr.CategoryUnresolvedName, "string table id %d not found", id))
	}

	return s
}

// InternString allocates a new string record for content and assigns it
// the next dense table id. Dense, allocation-ordered ids are load-bearing:
// anything that enumerates the string table sees ids packed from 0.
func (m *Memory) InternString(content string) int32 {
	id := int32(len(m.stringTable))
	address := m.Malloc(8)
	m.WriteHeap(address, 0)
	m.WriteHeap(address+4, id)
	m.stringTable[id] = content
	return address
}

// Println appends line to the accumulated output.
func (m *Memory) Println(line string) {
	m.collector = append(m.collector, line)
}

// Output joins every collected println line, each terminated by a newline,
// in call order.
func (m *Memory) Output() string {
	var out []byte
	for _, line := range m.collector {
		out = append(out, line...)
		out = append(out, '\n')
	}

	return string(out)
}

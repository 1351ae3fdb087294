// Package interp implements a reference evaluator over MIR. It exists
// solely to check optimizer soundness: running the same Sources before and
// after a rewrite pass must produce identical accumulated output and the
// same panic/no-panic outcome.
package interp

import (
	"github.com/sail-lang/sailc/internal/config"
	"github.com/sail-lang/sailc/internal/irerr"
	"github.com/sail-lang/sailc/internal/mir"
	"github.com/sail-lang/sailc/internal/pstr"
)

// Trap is a host-level abort raised by the interpreted program itself —
// division/modulo by zero, an explicit panic call, or a double free —
// rather than by a broken compiler invariant. irerr.Violation is reserved
// for the latter; Trap is always caught by Run.
type Trap struct{ Message string }

// Error implements the error interface.
func (t *Trap) Error() string { return t.Message }

// Result is one program run's observable outcome.
type Result struct {
	Output       string
	Panicked     bool
	PanicMessage string
}

// Equivalent reports whether two runs are indistinguishable: same
// accumulated println output, and panicking agrees (message included,
// since a pass that changes a panic's payload has changed behavior).
func (r Result) Equivalent(other Result) bool {
	return r.Output == other.Output && r.Panicked == other.Panicked && r.PanicMessage == other.PanicMessage
}

var builtinNames = map[pstr.PStr]bool{
	pstr.Malloc:  true,
	pstr.Free:    true,
	pstr.FromInt: true,
	pstr.ToInt:   true,
	pstr.Concat:  true,
	pstr.Println: true,
	pstr.Panic:   true,
	pstr.IncRef:  true,
	pstr.DecRef:  true,
}

// program is the static context a run closes over: the function table, the
// address tags assigned to functions and global strings (used only when a
// ClosureInit/VariableCallee needs to store or dereference a function
// identity), and the mutable Memory.
type program struct {
	mem *Memory

	functions        map[mir.FunctionName]*mir.Function
	functionAddr     map[mir.FunctionName]int32
	addrToFunction   map[int32]*mir.Function
	globalStringAddr map[pstr.PStr]int32
}

// newProgram reserves one address tag per global string (8 bytes: an
// unused slot plus its dense string-table id) and one per function (4
// bytes, never written — it is only ever compared against, never
// dereferenced, since a direct call resolves by FunctionName instead), then
// starts the bump allocator past every reserved tag. This mirrors the
// reference interpreter's own setup, which packs strings and function
// addresses into the same tag space ahead of malloc_end for exactly the
// same reason: a closure's slot 0 needs some numeric identity for its
// function that a later indirect call can map back to *mir.Function.
func newProgram(src *mir.Sources, heap *pstr.Heap, heapBytes int) *program {
	p := &program{
		functions:        make(map[mir.FunctionName]*mir.Function, len(src.Functions)),
		functionAddr:     make(map[mir.FunctionName]int32, len(src.Functions)),
		addrToFunction:   make(map[int32]*mir.Function, len(src.Functions)),
		globalStringAddr: make(map[pstr.PStr]int32, len(src.GlobalStrings)),
	}

	var tag int32

	type reservedString struct {
		address int32
		id      int32
		content string
	}
	var reserved []reservedString

	for i, name := range src.GlobalStrings {
		reserved = append(reserved, reservedString{address: tag, id: int32(i), content: heap.Str(name)})
		p.globalStringAddr[name] = tag
		tag += 8
	}

	for i := range src.Functions {
		fn := &src.Functions[i]
		p.functions[fn.Name] = fn
		p.functionAddr[fn.Name] = tag
		p.addrToFunction[tag] = fn
		tag += 4
	}

	p.mem = NewMemory(heapBytes, tag)
	for _, r := range reserved {
		p.mem.WriteHeap(r.address, 0)
		p.mem.WriteHeap(r.address+4, r.id)
		p.mem.stringTable[r.id] = r.content
	}

	return p
}

// Run interprets mainFunction to completion, returning its accumulated
// println output. A Trap raised anywhere during evaluation is caught here;
// it never escapes Run as a Go panic.
func Run(src *mir.Sources, heap *pstr.Heap, mainFunction mir.FunctionName, budgets config.Budgets) (result Result) {
	p := newProgram(src, heap, budgets.InterpreterHeapBytes)

	defer func() {
		r := recover()
		if r == nil {
			return
		}

		trap, ok := r.(*Trap)
		if !ok {
			panic(r)
		}

		result = Result{Output: p.mem.Output(), Panicked: true, PanicMessage: trap.Message}
	}()

	p.callNamed(mainFunction, nil)
	result = Result{Output: p.mem.Output()}

	return result
}

func (p *program) callNamed(name mir.FunctionName, args []int32) int32 {
	f, ok := p.functions[name]
	if !ok {
		irerr.Abort(irerr.New(irerr.CategoryUnresolvedName, "call to undefined function %v", name))
	}

	return p.callFunction(f, args)
}

func (p *program) callFunction(f *mir.Function, args []int32) int32 {
	p.mem.PushStack()
	for i, param := range f.Parameters {
		p.mem.WriteStack(param, args[i])
	}

	if flow := p.evalStatements(f.Body); flow.broke {
		irerr.Abort(irerr.New(irerr.CategoryBreakOutsideLoop, "break escaped the enclosing function body"))
	}

	value := p.evalExpr(f.ReturnValue)
	p.mem.PopStack()

	return value
}

// evalCall resolves callee (direct, builtin, or indirect through a closure
// record) and evaluates it against arguments.
func (p *program) evalCall(callee mir.Callee, arguments []mir.Expression) int32 {
	switch c := callee.(type) {
	case mir.FunctionNameCallee:
		args := p.evalArguments(arguments)
		if builtinNames[c.Name.FnName] {
			return p.callBuiltin(c.Name.FnName, args)
		}

		return p.callNamed(c.Name, args)

	case mir.VariableCallee:
		record := p.mem.ReadStack(c.Name.Name)
		fnTag := p.mem.ReadHeap(record)
		context := p.mem.ReadHeap(record + 4)

		f, ok := p.addrToFunction[fnTag]
		if !ok {
			irerr.Abort(irerr.New(irerr.CategoryUnresolvedName, "closure record at %d names no known function", record))
		}

		args := append([]int32{context}, p.evalArguments(arguments)...)
		return p.callFunction(f, args)

	default:
		irerr.Abort(irerr.New(irerr.CategoryUnresolvedName, "unrecognized MIR callee %T", callee))
		return 0
	}
}

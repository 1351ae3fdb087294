// Package irerr implements the "should never fire" error taxonomy: invariant
// violations that abort the compiling process rather than surface as
// user-facing diagnostics, because every pass runs on input that already
// passed type-checking and the previous pass's own invariant checks.
//
// A Violation is a category and a message, optionally wrapping a cause that
// github.com/pkg/errors annotates with a stack trace instead of this package
// reimplementing stack capture.
package irerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Category classifies which kind of cross-pass invariant failed.
type Category string

const (
	// CategoryUnresolvedName: an Id(TypeNameId) did not resolve in the
	// symbol table.
	CategoryUnresolvedName Category = "UNRESOLVED_NAME"
	// CategoryArity: a call's argument count did not match the callee's
	// parameter count.
	CategoryArity Category = "ARITY_MISMATCH"
	// CategoryEscapedGeneric: a HIR-level generic type parameter survived
	// past specialization.
	CategoryEscapedGeneric Category = "ESCAPED_GENERIC"
	// CategoryFinalAssignment: an IfElse's final-assignment shape was
	// broken (count/type mismatch between branches).
	CategoryFinalAssignment Category = "BROKEN_FINAL_ASSIGNMENT"
	// CategoryBreakOutsideLoop: a Break appeared outside any enclosing
	// While.
	CategoryBreakOutsideLoop Category = "BREAK_OUTSIDE_LOOP"
	// CategoryClosureContext: a ClosureInit's function did not accept the
	// context type as its first parameter.
	CategoryClosureContext Category = "CLOSURE_CONTEXT_MISMATCH"
	// CategoryHeapBounds: the interpreter's heap bounds check rejected an
	// address, which means the IR that produced it is malformed.
	CategoryHeapBounds Category = "HEAP_BOUNDS"
)

// Violation is an invariant violation: a defect in the compiler itself, not
// in the program being compiled. Construct with New and pass to panic; no
// pass attempts recovery.
type Violation struct {
	Category Category
	Message  string
	cause    error
}

// Error implements the error interface.
func (v *Violation) Error() string {
	return fmt.Sprintf("[%s] %s", v.Category, v.Message)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (v *Violation) Unwrap() error { return v.cause }

// New constructs a Violation with no further cause.
func New(category Category, format string, args ...any) *Violation {
	return &Violation{Category: category, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs a Violation around cause, annotated via
// github.com/pkg/errors with the call stack at the Wrap call, for violations discovered while propagating an
// error from a lower layer (e.g. the interpreter's heap bounds check).
func Wrap(cause error, category Category, format string, args ...any) *Violation {
	return &Violation{Category: category, Message: fmt.Sprintf(format, args...), cause: errors.WithStack(cause)}
}

// Abort panics with v. Every call site documents, in its own message, which
// invariant it is restoring; Abort exists only so the call sites read as
// "this must never happen" rather than an ordinary error return.
func Abort(v *Violation) {
	panic(v)
}

// Package config holds the tunable budgets referenced throughout the
// optimizer and interpreter, generalized out of the
// teacher's per-pipeline fields (OptimizationPipeline.maxIterations,
// convergenceThreshold) into one standalone value so every pass and the
// fixed-point driver share a single source of truth.
package config

// Budgets bounds the optimizer's fixed-point loop and inliner, and sizes
// the reference interpreter's heap.
type Budgets struct {
	// MaxOuterIterations caps how many full sweeps the fixed-point driver
	// runs before giving up on convergence.
	MaxOuterIterations int
	// InlinePerCallSiteBudget caps the callee's size (its statement count,
	// nested bodies included, plus one) for a single inlining decision; no
	// call-site multiplier is applied.
	InlinePerCallSiteBudget int
	// InlinePerFunctionBudget caps a function's total size after all
	// inlining into it.
	InlinePerFunctionBudget int
	// InlineMaxRecursionDepth bounds the If/While nesting depth at which the
	// inliner still inlines a call site. It does not limit inlining into
	// bodies that earlier inlining spliced in.
	InlineMaxRecursionDepth int
	// InterpreterHeapBytes sizes the MIR interpreter's byte-addressed heap.
	InterpreterHeapBytes int
}

// Default returns the default budgets.
func Default() Budgets {
	return Budgets{
		MaxOuterIterations:      20,
		InlinePerCallSiteBudget: 1000,
		InlinePerFunctionBudget: 10000,
		InlineMaxRecursionDepth: 5,
		InterpreterHeapBytes:    20000,
	}
}

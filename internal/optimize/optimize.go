// Package optimize implements the MIR optimizer: a fixed point of ten rewrite passes run in a fixed order until a
// full sweep produces no structural change or the pass budget is spent.
package optimize

import (
	"fmt"
	"strings"

	"github.com/sail-lang/sailc/internal/config"
	"github.com/sail-lang/sailc/internal/mir"
	"github.com/sail-lang/sailc/internal/pstr"
)

// PassReport records one pass's contribution to one outer sweep: a
// severity-free, per-pass summary rather than a diagnostic.
type PassReport struct {
	Name      string
	Iteration int
	Changed   bool
}

// String renders a PassReport for log lines and test failures.
func (r PassReport) String() string {
	mark := "unchanged"
	if r.Changed {
		mark = "changed"
	}

	return fmt.Sprintf("iter %d: %s (%s)", r.Iteration, r.Name, mark)
}

// Stats is the full run's report: every pass invocation across every outer
// sweep, plus whether the driver converged before exhausting its budget.
type Stats struct {
	Reports   []PassReport
	Converged bool
}

// String dumps every report line, one per line, newest last.
func (s Stats) String() string {
	var b strings.Builder
	for _, r := range s.Reports {
		b.WriteString(r.String())
		b.WriteByte('\n')
	}

	if s.Converged {
		b.WriteString("converged\n")
	} else {
		b.WriteString("pass budget exhausted\n")
	}

	return b.String()
}

// pass is one rewrite: given heap/table context and the current Sources, it
// returns a (possibly identical) Sources plus whether it changed anything.
type pass struct {
	name string
	run  func(*context, *mir.Sources) (*mir.Sources, bool)
}

// context threads the shared interners and budgets through every pass,
// mirroring how each HIR→MIR lowerer call threads heap/table.
type context struct {
	heap    *pstr.Heap
	budgets config.Budgets
}

func passOrder() []pass {
	return []pass{
		{"conditional-constant-propagation", runCCP},
		{"algebraic-identities", runAlgebraicIdentities},
		{"dead-code-elimination", runDCE},
		{"inliner", runInline},
		{"loop-invariant-code-motion", runLoopInvariantCodeMotion},
		{"loop-strength-reduction", runLoopStrengthReduction},
		{"loop-induction-variable-elimination", runLoopInductionVariableElimination},
		{"algebraic-loop-optimization", runAlgebraicLoopOptimization},
		{"tail-recursion-rewriting", runTailRecursion},
		{"constant-parameter-elimination", runConstantParameterElimination},
	}
}

// Run drives the fixed point: passes run in passOrder on every sweep; the
// outer loop stops when one full sweep changes nothing, or after
// budgets.MaxOuterIterations sweeps, whichever comes first.
func Run(src *mir.Sources, heap *pstr.Heap, budgets config.Budgets) (*mir.Sources, Stats) {
	ctx := &context{heap: heap, budgets: budgets}
	current := src
	stats := Stats{}

	for iteration := 1; iteration <= budgets.MaxOuterIterations; iteration++ {
		sweepChanged := false

		for _, p := range passOrder() {
			next, changed := p.run(ctx, current)
			stats.Reports = append(stats.Reports, PassReport{Name: p.name, Iteration: iteration, Changed: changed})

			if changed {
				sweepChanged = true
				current = next
			}
		}

		if !sweepChanged {
			stats.Converged = true
			return current, stats
		}
	}

	return current, stats
}

package pass

import (
	"context"
	"fmt"

	"github.com/cpgkit/cpg/config"
	"github.com/cpgkit/cpg/cpgerr"
	"github.com/cpgkit/cpg/diag"
	"github.com/cpgkit/cpg/graph"
	"github.com/cpgkit/cpg/scope"
)

// Pipeline runs a fixed, ordered sequence of passes over a shared graph, per
// §4.6's canonical order: FilenameMapper, TypeResolver, NamespaceResolver,
// VariableUsageResolver, CallResolver, EOGPass, DFGPass, and the optional
// CallGraphClosure. Grounded on the teacher's analyzer.Analyzer.AnalyzeAll
// "run every stage, merge diagnostics, keep going" shape.
type Pipeline struct {
	Passes []Pass
}

// New builds the canonical Pipeline from cfg: the fix-point caps on
// TypeResolver/VariableUsageResolver/DFGPass come from
// cfg.MaxFixedPointIterations, and CallGraphClosure is appended only when
// cfg.EnableCallGraphClosure is set. A non-empty cfg.PassOrder replaces the
// canonical order with the named passes in the listed order.
func New(cfg *config.Config) *Pipeline {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	max := cfg.MaxFixedPointIterations
	passes := []Pass{
		FilenameMapper{},
		TypeResolver{MaxIterations: max},
		NamespaceResolver{},
		VariableUsageResolver{MaxIterations: max},
		CallResolver{},
		EOGPass{},
		DFGPass{MaxIterations: max},
	}
	if cfg.EnableCallGraphClosure {
		passes = append(passes, CallGraphClosure{})
	}
	if len(cfg.PassOrder) > 0 {
		byName := make(map[string]Pass, len(passes))
		for _, p := range passes {
			byName[p.Name()] = p
		}
		ordered := make([]Pass, 0, len(cfg.PassOrder))
		for _, name := range cfg.PassOrder {
			if p, ok := byName[name]; ok {
				ordered = append(ordered, p)
			}
		}
		passes = ordered
	}
	return &Pipeline{Passes: passes}
}

// Run executes every pass in order against the shared graph g. A pass that
// returns an error or panics with anything other than a scope imbalance is
// recorded on report as a PassFailure and the remaining passes still run,
// per §7's "tolerate partial information" policy. A scope imbalance is the
// one fatal case: Run re-wraps it as *cpgerr.ScopeImbalance and lets it
// propagate as a panic rather than recording and continuing, since it
// signals an implementation bug rather than a property of the input.
func (p *Pipeline) Run(ctx context.Context, g *graph.Graph, units []*graph.TranslationUnitDeclaration, report *diag.Report) {
	for _, ps := range p.Passes {
		runPass(ctx, ps, g, units, report)
	}
}

func runPass(ctx context.Context, p Pass, g *graph.Graph, units []*graph.TranslationUnitDeclaration, report *diag.Report) {
	defer func() {
		if r := recover(); r != nil {
			if imbalance, ok := r.(*scope.ScopeImbalanceError); ok {
				panic(&cpgerr.ScopeImbalance{Expected: imbalance.Expected, Got: imbalance.Got})
			}
			report.Fail(p.Name(), "pass panicked", &cpgerr.PassFailure{Pass: p.Name(), Cause: panicCause(r)})
		}
	}()
	if err := p.Run(ctx, g, units, report); err != nil {
		report.Fail(p.Name(), "pass returned an error", &cpgerr.PassFailure{Pass: p.Name(), Cause: err})
	}
}

func panicCause(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}

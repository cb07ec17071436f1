// Package pass implements the post-parse analysis pipeline: a fixed,
// partially-ordered sequence of graph-to-graph transformations that enrich
// the raw AST graph into a property graph, per §4.6. Grounded on the
// teacher's analyzer.Analyzer.computeTransitiveClosure (a BFS-based
// fixed-point pass over accumulated edges) for the fixed-point iteration
// shape, generalized from one pass to the pipeline's Monotonic/iterate-
// until-stable contract.
package pass

import (
	"context"

	"github.com/cpgkit/cpg/diag"
	"github.com/cpgkit/cpg/graph"
)

// Pass is one graph-to-graph transformation over g, whose declarations are
// the translation units collected so far. Monotonic passes only add edges
// and never remove them; the pipeline may in principle parallelize across
// monotonic passes' internal work, though no pass here does so (§5: "an
// implementation may re-introduce pass-internal parallelism only where the
// pass's contract is monotonic").
type Pass interface {
	Name() string
	Monotonic() bool
	Run(ctx context.Context, g *graph.Graph, units []*graph.TranslationUnitDeclaration, report *diag.Report) error
}

// edgeCount returns the total outgoing edge count across every node
// currently allocated in g, used by fixed-point passes to detect "this
// iteration added zero edges" without each pass tracking its own counter.
func edgeCount(g *graph.Graph) int {
	total := 0
	for _, n := range g.AllNodes() {
		total += len(n.Edges())
	}
	return total
}

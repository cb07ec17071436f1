package pass

import (
	"context"

	"github.com/cpgkit/cpg/diag"
	"github.com/cpgkit/cpg/graph"
)

// CallGraphClosure is item 8 of §4.6: an optional transitive closure over
// invokes, off by default (config.Config.EnableCallGraphClosure) since most
// query-surface consumers only need direct call sites (query.Index.CallSites) and
// the closure can blow up quickly on a deep call graph.
type CallGraphClosure struct{}

func (CallGraphClosure) Name() string    { return "CallGraphClosure" }
func (CallGraphClosure) Monotonic() bool { return true }

func (CallGraphClosure) Run(ctx context.Context, g *graph.Graph, units []*graph.TranslationUnitDeclaration, report *diag.Report) error {
	for _, kind := range []graph.Kind{graph.KindFunction, graph.KindMethod, graph.KindConstructor} {
		for _, fn := range g.NodesOfKind(kind) {
			closeInvokes(fn)
		}
	}
	return nil
}

// closeInvokes adds an invokes edge from fn itself to every callee
// transitively reachable through call sites in fn's body, so F's own
// invokes targets answer "does F eventually call G" without the caller
// re-walking the direct call graph. query.Index.CallSites does not see
// these edges: it indexes CallExpression/MemberCall sites only.
func closeInvokes(fn *graph.Node) {
	direct := directCallees(fn)
	visited := map[*graph.Node]bool{fn: true}
	for _, d := range direct {
		visited[d] = true
	}
	queue := append([]*graph.Node(nil), direct...)
	var reachable []*graph.Node
	for len(queue) > 0 {
		callee := queue[0]
		queue = queue[1:]
		reachable = append(reachable, callee)
		for _, next := range directCallees(callee) {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	existing := map[*graph.Node]bool{}
	for _, t := range fn.Targets(graph.EdgeInvokes) {
		existing[t] = true
	}
	for _, r := range reachable {
		if r != fn && !existing[r] {
			fn.AddEdge(graph.EdgeInvokes, r, -1, nil)
			existing[r] = true
		}
	}
}

// directCallees collects every invokes target reachable from call/member-call
// expressions within fn's own subtree (fn's direct invokes edges plus one
// level found by walking its body, since closeInvokes is called fn-by-fn in
// allocation order and a callee's own closure may not have run yet).
func directCallees(fn *graph.Node) []*graph.Node {
	var out []*graph.Node
	var walk func(n *graph.Node)
	seen := map[*graph.Node]bool{}
	walk = func(n *graph.Node) {
		if n == nil || seen[n] {
			return
		}
		seen[n] = true
		if n.Kind() == graph.KindCallExpression || n.Kind() == graph.KindMemberCall {
			out = append(out, n.Targets(graph.EdgeInvokes)...)
		}
		for _, e := range n.EdgesOf(graph.EdgeAST) {
			walk(e.Dst)
		}
	}
	walk(fn)
	return out
}

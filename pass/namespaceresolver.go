package pass

import (
	"context"

	"github.com/cpgkit/cpg/diag"
	"github.com/cpgkit/cpg/graph"
)

// NamespaceResolver merges same-named Namespace nodes discovered across
// separate translation units into one canonical node per name, per §4.6
// item 3. A C file's `namespace foo { void f(); }` and another file's
// `namespace foo { void g(); }` should resolve lookups for "foo::f" and
// "foo::g" against the same logical container.
type NamespaceResolver struct{}

func (NamespaceResolver) Name() string    { return "ImportResolver/NamespaceResolver" }
func (NamespaceResolver) Monotonic() bool { return false } // redirects edges, doesn't only add

func (NamespaceResolver) Run(ctx context.Context, g *graph.Graph, units []*graph.TranslationUnitDeclaration, report *diag.Report) error {
	canonical := map[string]*graph.Node{}

	for _, n := range g.NodesOfKind(graph.KindNamespace) {
		existing, ok := canonical[n.Name]
		if !ok {
			canonical[n.Name] = n
			continue
		}
		if existing == n {
			continue
		}
		mergeNamespaces(existing, n)
	}
	return nil
}

// mergeNamespaces redirects every declaration owned by dup to canon and
// rewires every incoming reference at dup over to canon, then isolates dup.
// Declarations keep their own identity (and their own AST edges from the
// translation unit that produced them); only the grouping container merges.
func mergeNamespaces(canon, dup *graph.Node) {
	for _, e := range dup.EdgesOf(graph.EdgeAST) {
		if e.Dst != nil {
			canon.AddEdge(graph.EdgeAST, e.Dst, -1, e.Property)
		}
	}
	for _, src := range dup.Incoming() {
		redirectEdges(src, dup, canon)
	}
	dup.DisconnectFromGraph()
	dup.Unresolved = true // the duplicate node is retired, not deleted (arena never frees)
}

// redirectEdges rewrites every outgoing edge on src that targeted from to
// target to instead, preserving label/index/property.
func redirectEdges(src, from, to *graph.Node) {
	for _, e := range src.Edges() {
		if e.Dst == from {
			src.AddEdge(e.Label, to, e.Index, e.Property)
		}
	}
}

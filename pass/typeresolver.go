package pass

import (
	"context"

	"github.com/cpgkit/cpg/diag"
	"github.com/cpgkit/cpg/graph"
)

// TypeResolver iterates until fixed point, replacing each ObjectType that
// names a now-known RecordDeclaration with a resolved type carrying a
// direct edge to the record, and propagates super-class text into typed
// references, per §4.6 item 2. Declared monotonic, like every pass in this
// package except NamespaceResolver.
type TypeResolver struct {
	MaxIterations int
}

func (TypeResolver) Name() string    { return "TypeResolver" }
func (TypeResolver) Monotonic() bool { return true }

func (t TypeResolver) Run(ctx context.Context, g *graph.Graph, units []*graph.TranslationUnitDeclaration, report *diag.Report) error {
	max := t.MaxIterations
	if max <= 0 {
		max = 10
	}
	for iter := 0; iter < max; iter++ {
		before := edgeCount(g)
		t.runOnce(g)
		if edgeCount(g) == before {
			return nil
		}
	}
	report.Warn("TypeResolver", "reached max fix-point iterations without converging", nil)
	return nil
}

func (TypeResolver) runOnce(g *graph.Graph) {
	records := map[string]*graph.Node{}
	for _, n := range g.NodesOfKind(graph.KindRecord) {
		records[n.Name] = n
	}

	for _, n := range g.NodesOfKind(graph.KindObjectType) {
		if len(n.Targets(graph.EdgeRefersTo)) > 0 {
			continue // already resolved in a prior iteration
		}
		if rec, ok := records[n.Name]; ok {
			n.AddEdge(graph.EdgeRefersTo, rec, -1, nil)
			propagateSuperClasses(rec, records)
		}
	}
}

// propagateSuperClasses resolves a record's unresolved Implements text list
// against every record known so far, adding a superClass edge for each hit.
// Re-running this every iteration is safe (Monotonic): a super-class name
// that already has a superClass edge is skipped, so a later run adds no
// duplicate edge and edgeCount reaches its fixed point.
func propagateSuperClasses(rec *graph.Node, records map[string]*graph.Node) {
	resolved := map[string]bool{}
	for _, e := range rec.EdgesOf(graph.EdgeSuperClass) {
		if e.Dst != nil {
			resolved[e.Dst.Name] = true
		}
	}
	for _, superName := range rec.Implements {
		if resolved[superName] {
			continue
		}
		if super, ok := records[superName]; ok {
			rec.AddEdge(graph.EdgeSuperClass, super, -1, nil)
		}
	}
}

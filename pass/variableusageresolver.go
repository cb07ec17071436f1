package pass

import (
	"context"

	"github.com/cpgkit/cpg/diag"
	"github.com/cpgkit/cpg/graph"
	"github.com/cpgkit/cpg/scope"
)

// VariableUsageResolver fills refersTo on every DeclaredReference and
// MemberExpression, per §4.6 item 4. It iterates to a fixed point because a
// reference's scope, record membership, or "this" inference may only become
// resolvable once a prior iteration's edges (or TypeResolver/NamespaceResolver
// output) are in place.
type VariableUsageResolver struct {
	MaxIterations int
}

func (VariableUsageResolver) Name() string    { return "VariableUsageResolver" }
func (VariableUsageResolver) Monotonic() bool { return true }

func (v VariableUsageResolver) Run(ctx context.Context, g *graph.Graph, units []*graph.TranslationUnitDeclaration, report *diag.Report) error {
	max := v.MaxIterations
	if max <= 0 {
		max = 10
	}
	for iter := 0; iter < max; iter++ {
		before := edgeCount(g)
		v.runOnce(g)
		if edgeCount(g) == before {
			return nil
		}
	}
	report.Warn("VariableUsageResolver", "reached max fix-point iterations without converging", nil)
	return nil
}

func (VariableUsageResolver) runOnce(g *graph.Graph) {
	for _, n := range g.NodesOfKind(graph.KindDeclaredReference) {
		resolveDeclaredReference(n)
	}
	for _, n := range g.NodesOfKind(graph.KindMemberExpression) {
		resolveMemberExpression(g, n)
	}
}

// resolveDeclaredReference resolves against (a) local scope, (b) enclosing
// record members (for methods), (c) namespace, (d) global — scope.Resolve's
// outward walk already implements that ordering, since Declare-time nesting
// puts block < function < record < namespace < global on the parent chain.
func resolveDeclaredReference(n *graph.Node) {
	if len(n.Targets(graph.EdgeRefersTo)) > 0 {
		return // already resolved in a prior iteration
	}
	s := enclosingScope(n)
	if s == nil {
		return
	}
	matches := scope.Resolve(n.Name, s, variableFilter)
	if len(matches) == 0 {
		return
	}
	// Within one scope the most recently declared match wins.
	matches = matches[len(matches)-1:]
	for i, d := range matches {
		if decl, ok := d.(*graph.Node); ok {
			n.AddEdge(graph.EdgeRefersTo, decl, i, nil)
		}
	}
	n.Unresolved = len(n.Targets(graph.EdgeRefersTo)) == 0
}

// resolveMemberExpression resolves the base's static/inferred type to a
// record, then looks up the member name in that record's fields and
// inherited fields (walking superClass edges, populated by TypeResolver).
func resolveMemberExpression(g *graph.Graph, n *graph.Node) {
	if len(n.Targets(graph.EdgeRefersTo)) > 0 {
		return
	}
	base := astChildAt(n, 0)
	if base == nil {
		return
	}
	rec := recordOfExpression(g, base)
	if rec == nil {
		return
	}
	field := findMember(rec, n.Name, map[*graph.Node]bool{})
	if field == nil {
		return
	}
	n.AddEdge(graph.EdgeRefersTo, field, -1, nil)
	n.Unresolved = false
}

// findMember looks up name among rec's own fields, then walks superClass
// edges (inherited fields), visited guarding against cyclic hierarchies.
func findMember(rec *graph.Node, name string, visited map[*graph.Node]bool) *graph.Node {
	if rec == nil || visited[rec] {
		return nil
	}
	visited[rec] = true
	for _, e := range rec.EdgesOf(graph.EdgeAST) {
		if e.Dst != nil && e.Dst.Kind() == graph.KindField && e.Dst.Name == name {
			return e.Dst
		}
	}
	for _, super := range rec.Targets(graph.EdgeSuperClass) {
		if found := findMember(super, name, visited); found != nil {
			return found
		}
	}
	return nil
}

// recordOfExpression infers the RecordDeclaration a value-producing
// expression is typed as: a DeclaredReference's resolved declaration's
// ObjectType, or (for "this"-like bases omitted by a frontend) the nearest
// enclosing record scope.
func recordOfExpression(g *graph.Graph, n *graph.Node) *graph.Node {
	if n.Name == "this" || n.Name == "self" {
		s := enclosingScope(n)
		recScope := scope.NearestScopeFrom(s, scope.Record)
		if recScope == nil {
			return nil
		}
		return recordByScope(g, recScope)
	}
	if n.Kind() == graph.KindDeclaredReference {
		targets := n.Targets(graph.EdgeRefersTo)
		if len(targets) == 0 {
			return nil
		}
		return recordOfDeclaration(targets[0])
	}
	return nil
}

func recordOfDeclaration(decl *graph.Node) *graph.Node {
	typeNode := declaredType(decl)
	if typeNode == nil {
		return nil
	}
	targets := typeNode.Targets(graph.EdgeRefersTo)
	if len(targets) == 0 {
		return nil
	}
	return targets[0]
}

// declaredType returns the Types-family node attached to a Variable/Field/
// Parameter declaration via its EdgeType edge (SetType's target).
func declaredType(decl *graph.Node) *graph.Node {
	targets := decl.Targets(graph.EdgeType)
	if len(targets) == 0 {
		return nil
	}
	return targets[0]
}

// recordByScope finds the RecordDeclaration node whose own Scope is
// recScope — the scope manager doesn't retain a scope->node map, so this
// walks every allocated record once.
func recordByScope(g *graph.Graph, recScope *scope.Scope) *graph.Node {
	for _, r := range g.NodesOfKind(graph.KindRecord) {
		if r.Scope == recScope {
			return r
		}
	}
	return nil
}

func astChildAt(n *graph.Node, index int) *graph.Node {
	for _, e := range n.EdgesOf(graph.EdgeAST) {
		if e.Index == index {
			return e.Dst
		}
	}
	return nil
}

// enclosingScope walks n's AST-parent chain (via incoming edges restricted
// to EdgeAST) looking for the nearest ancestor that carries a non-nil Scope,
// since only container nodes (TranslationUnit/Namespace/Record/Function/
// Block) are stamped with one at parse time.
func enclosingScope(n *graph.Node) *scope.Scope {
	cur := n
	for cur != nil {
		if cur.Scope != nil {
			return cur.Scope
		}
		cur = astParent(cur)
	}
	return nil
}

func astParent(n *graph.Node) *graph.Node {
	for _, candidate := range n.Incoming() {
		for _, e := range candidate.EdgesOf(graph.EdgeAST) {
			if e.Dst == n {
				return candidate
			}
		}
	}
	return nil
}

func variableFilter(d scope.Declaration) bool {
	switch d.DeclKind() {
	case "Variable", "Field", "Parameter", "Function", "Method", "Constructor", "Record", "Enum", "Namespace", "TypedefDecl":
		return true
	default:
		return false
	}
}

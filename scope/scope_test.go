package scope_test

import (
	"testing"

	"github.com/cpgkit/cpg/scope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDecl is the minimal scope.Declaration implementation tests need,
// since scope is a leaf package that doesn't know about graph.Node.
type stubDecl struct {
	name string
	kind string
}

func (s *stubDecl) DeclName() string { return s.name }
func (s *stubDecl) DeclKind() string { return s.kind }

func TestScopeShadowing(t *testing.T) {
	// Mirrors S4: `int x; int f(){ int x = 1; return x; }` — the inner
	// declaration of x must resolve ahead of the outer one.
	m := scope.NewManager()
	global := m.GlobalScope()
	outer := &stubDecl{name: "x", kind: "Variable"}
	global.Declare("x", outer)

	fnScope := m.EnterScope(scope.Function, "f")
	inner := &stubDecl{name: "x", kind: "Variable"}
	fnScope.Declare("x", inner)

	matches := scope.Resolve("x", fnScope, nil)
	require.Len(t, matches, 1)
	assert.Same(t, inner, matches[0], "inner scope shadows outer")

	m.LeaveScope(fnScope)
	matches = scope.Resolve("x", global, nil)
	require.Len(t, matches, 1)
	assert.Same(t, outer, matches[0])
}

func TestLeaveScopeImbalancePanics(t *testing.T) {
	m := scope.NewManager()
	fnScope := m.EnterScope(scope.Function, "f")
	blockScope := m.EnterScope(scope.Block, "")
	_ = blockScope

	assert.Panics(t, func() {
		m.LeaveScope(fnScope) // top of stack is blockScope, not fnScope
	})
}

func TestResolveFilter(t *testing.T) {
	m := scope.NewManager()
	global := m.GlobalScope()
	global.Declare("f", &stubDecl{name: "f", kind: "Function"})
	global.Declare("v", &stubDecl{name: "v", kind: "Variable"})

	callable := func(d scope.Declaration) bool { return d.DeclKind() == "Function" }

	matches := scope.Resolve("f", global, callable)
	assert.Len(t, matches, 1)

	matches = scope.Resolve("v", global, callable)
	assert.Empty(t, matches, "filter excludes non-callable declarations")
}

func TestNearestScope(t *testing.T) {
	m := scope.NewManager()
	recScope := m.EnterNamedScope(scope.Record, "Widget")
	fnScope := m.EnterScope(scope.Function, "Widget")
	blockScope := m.EnterScope(scope.Block, "")

	assert.Same(t, fnScope, m.NearestScope(scope.Function))
	assert.Same(t, recScope, m.NearestScope(scope.Record))
	assert.Same(t, m.GlobalScope(), m.NearestScope(scope.Global))
	assert.Same(t, recScope, scope.NearestScopeFrom(blockScope, scope.Record))
}

func TestQualifiedPrefix(t *testing.T) {
	m := scope.NewManager()
	nsScope := m.EnterNamedScope(scope.Namespace, "app")
	recScope := m.EnterNamedScope(scope.Record, "Widget")

	assert.Equal(t, "app::", nsScope.QualifiedPrefix("::"))
	assert.Equal(t, "app::Widget::", recScope.QualifiedPrefix("::"))
}

func TestResolveQualified(t *testing.T) {
	// "app::Widget::DoThing" must locate the app namespace, then Widget
	// inside it, then resolve DoThing within Widget's own scope.
	m := scope.NewManager()
	nsScope := m.EnterNamedScope(scope.Namespace, "app")
	recScope := m.EnterNamedScope(scope.Record, "Widget")
	method := &stubDecl{name: "DoThing", kind: "Method"}
	recScope.Declare("DoThing", method)
	m.LeaveScope(recScope)
	m.LeaveScope(nsScope)

	matches := scope.ResolveQualified([]string{"app", "Widget", "DoThing"}, "::", m.GlobalScope(), nil)
	require.Len(t, matches, 1)
	assert.Same(t, method, matches[0])
}

func TestAddDeclarationTargetsNearestMatchingScope(t *testing.T) {
	// Fields must land in the nearest Record scope even when declared while
	// the current scope is a nested block (here, a block opened under the
	// record in this synthetic walk).
	m := scope.NewManager()
	recScope := m.EnterNamedScope(scope.Record, "Widget")
	m.EnterScope(scope.Block, "")

	field := &stubDecl{name: "count", kind: "Field"}
	target := m.AddDeclaration("count", field, scope.Record)

	assert.Same(t, recScope, target)
	assert.Same(t, recScope, m.ScopeOf(field))
}

func TestIsAncestorOf(t *testing.T) {
	m := scope.NewManager()
	fnScope := m.EnterScope(scope.Function, "f")
	blockScope := m.EnterScope(scope.Block, "")

	assert.True(t, m.GlobalScope().IsAncestorOf(blockScope))
	assert.True(t, fnScope.IsAncestorOf(blockScope))
	assert.True(t, fnScope.IsAncestorOf(fnScope), "a scope is its own ancestor")
	assert.False(t, blockScope.IsAncestorOf(fnScope))
}

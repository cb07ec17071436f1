package query_test

import (
	"testing"

	"github.com/cpgkit/cpg/graph"
	"github.com/cpgkit/cpg/query"
	"github.com/cpgkit/cpg/scope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclarationsByNameFiltersByKind(t *testing.T) {
	g := graph.New()
	tu := g.NewTranslationUnit("u.c")

	fn := g.NewFunction("widget")
	v := g.NewVariable("widget")
	tu.AddDeclaration(fn.Node)
	tu.AddDeclaration(v.Node)

	all := query.DeclarationsByName(tu, "widget")
	assert.Len(t, all, 2)

	fns := query.DeclarationsByName(tu, "widget", graph.KindFunction)
	require.Len(t, fns, 1)
	assert.Same(t, fn.Node, fns[0])

	none := query.DeclarationsByName(tu, "missing")
	assert.Empty(t, none)
}

func TestGetBodyStatementAsMatchesKind(t *testing.T) {
	g := graph.New()
	fn := g.NewFunction("f")
	ret := g.NewReturn(g.NewLiteral("1").Node)
	body := g.NewBlock()
	body.AddStatement(ret.Node)
	fn.SetBody(body.Node)

	got, err := query.GetBodyStatementAs(fn, 0, graph.KindReturn)
	require.NoError(t, err)
	assert.Same(t, ret.Node, got)
}

func TestGetBodyStatementAsWrongKindFails(t *testing.T) {
	g := graph.New()
	fn := g.NewFunction("f")
	ret := g.NewReturn(nil)
	body := g.NewBlock()
	body.AddStatement(ret.Node)
	fn.SetBody(body.Node)

	_, err := query.GetBodyStatementAs(fn, 0, graph.KindIf)
	require.Error(t, err)
}

func TestGetBodyStatementAsOutOfRangeFails(t *testing.T) {
	g := graph.New()
	fn := g.NewFunction("f")
	body := g.NewBlock()
	fn.SetBody(body.Node)

	_, err := query.GetBodyStatementAs(fn, 0, graph.KindReturn)
	require.Error(t, err)
}

func TestIndexCallSitesReturnsReverseInvokesIndex(t *testing.T) {
	g := graph.New()
	sm := scope.NewManager()

	callee := g.NewFunction("helper")
	sm.AddDeclaration("helper", callee.Node, "")

	tu := g.NewTranslationUnit("u.c")
	tu.Scope = sm.GlobalScope()

	main := g.NewFunction("main")
	call1 := g.NewCallExpression("helper")
	call1.Node.AddEdge(graph.EdgeInvokes, callee.Node, -1, nil)
	call2 := g.NewCallExpression("helper")
	call2.Node.AddEdge(graph.EdgeInvokes, callee.Node, -1, nil)

	body := g.NewBlock()
	body.AddStatement(g.NewExpressionStmt(call1.Node).Node)
	body.AddStatement(g.NewExpressionStmt(call2.Node).Node)
	main.SetBody(body.Node)

	tu.AddDeclaration(callee.Node)
	tu.AddDeclaration(main.Node)

	idx := query.NewIndex(tu)
	sites := idx.CallSites(callee.Node)
	require.Len(t, sites, 2)
	assert.Contains(t, sites, call1.Node)
	assert.Contains(t, sites, call2.Node)

	assert.Len(t, idx.DeclarationsByKind(graph.KindFunction), 2)
	assert.Len(t, idx.ByName("helper"), 3) // callee decl + two call exprs share the simple name
}

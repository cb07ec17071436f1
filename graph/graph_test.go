package graph_test

import (
	"testing"

	"github.com/cpgkit/cpg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeIdentity(t *testing.T) {
	g := graph.New()
	a := g.NewLiteral("1")
	b := g.NewLiteral("1")

	assert.NotEqual(t, a.ID(), b.ID(), "two literals with the same text are distinct nodes")
	assert.Equal(t, graph.KindLiteral, a.Kind())
}

func TestDisconnectFromGraphSurvivesReferences(t *testing.T) {
	g := graph.New()
	rec := g.NewRecord("Widget", "struct")
	fn := g.NewFunction("Widget")
	fn.AddEdge(graph.EdgeAST, rec.Node, -1, nil)

	held := fn.Node // simulate a caller holding a reference across promotion
	fn.DisconnectFromGraph()

	assert.Empty(t, held.Edges())
	assert.Empty(t, rec.Incoming())
	assert.Equal(t, fn.ID(), held.ID(), "node survives disconnect, only its edges are severed")
}

func TestAddEdgeTracksIncoming(t *testing.T) {
	g := graph.New()
	ref := g.NewDeclaredReference("x")
	decl := g.NewVariable("x")

	ref.ResolveTo([]*graph.Node{decl.Node})

	require.Len(t, ref.RefersTo, 1)
	assert.Contains(t, decl.Incoming(), ref.Node)
	assert.False(t, ref.Unresolved)
}

func TestCloneProducesEqualEdgeSignature(t *testing.T) {
	g := graph.New()
	tu := g.NewTranslationUnit("unit.go")
	fn := g.NewFunction("main")
	tu.AddDeclaration(fn.Node)

	clone := g.Clone()

	assert.ElementsMatch(t, g.EdgeSetSignature(), clone.EdgeSetSignature())
}

func TestNodesOfKind(t *testing.T) {
	g := graph.New()
	g.NewFunction("a")
	g.NewFunction("b")
	g.NewRecord("C", "struct")

	assert.Len(t, g.NodesOfKind(graph.KindFunction), 2)
	assert.Len(t, g.NodesOfKind(graph.KindRecord), 1)
}

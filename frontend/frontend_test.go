package frontend_test

import (
	"testing"

	"github.com/cpgkit/cpg/frontend"
	"github.com/cpgkit/cpg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromoteToMethodRewiresIncomingEdges(t *testing.T) {
	g := graph.New()
	rec := g.NewRecord("Widget", "struct")
	fn := g.NewFunction("DoSomething")
	fn.SetBody(g.NewBlock().Node)

	tu := g.NewTranslationUnit("widget.c")
	tu.AddDeclaration(fn.Node) // simulate a caller already referencing fn

	method := frontend.PromoteToMethod(g, fn, rec)

	assert.Equal(t, "DoSomething", method.Name)
	assert.Contains(t, rec.Methods, method.Node)
	assert.Contains(t, tu.Node.Targets(graph.EdgeAST), method.Node, "incoming edges rewire onto the promoted node")
	assert.Empty(t, fn.Edges(), "the old node is disconnected, not merely abandoned")
	assert.Empty(t, fn.Incoming())
}

func TestPromoteToConstructorWhenNameMatchesRecord(t *testing.T) {
	g := graph.New()
	rec := g.NewRecord("SomeClass", "class")
	fn := g.NewFunction("SomeClass")

	method := frontend.PromoteToMethod(g, fn, rec)
	require.Equal(t, "SomeClass", method.Name)

	ctor := frontend.PromoteToConstructor(g, method)

	assert.Equal(t, "SomeClass", ctor.Name)
	assert.Contains(t, rec.Constructors, ctor.Node)
	assert.NotContains(t, rec.Methods, method.Node, "the retired method is dropped from the record's method list")
	assert.Empty(t, method.Edges())
}

func TestSynthesizeDefaultConstructor(t *testing.T) {
	// S3: `struct P { int x; };` gets exactly one constructor, empty params.
	g := graph.New()
	rec := g.NewRecord("P", "struct")
	field := g.NewField("x")
	rec.AddField(field.Node)

	require.Empty(t, rec.Constructors)
	ctor := frontend.SynthesizeDefaultConstructor(g, rec)

	require.Len(t, rec.Constructors, 1)
	assert.Equal(t, "P", ctor.Name)
	assert.Empty(t, ctor.Parameters)
	assert.NotNil(t, ctor.Body)
}

func TestPromoteToFieldCopiesAttributesAndRetiresVariable(t *testing.T) {
	g := graph.New()
	rec := g.NewRecord("S", "struct")
	v := g.NewVariable("fp")
	typ := g.NewObjectType("int").Node
	v.SetType(typ)
	v.Comment = "a function pointer field"

	field := frontend.PromoteToField(g, v, rec)

	assert.Equal(t, "fp", field.Name)
	assert.Same(t, typ, field.Type)
	assert.Equal(t, "a function pointer field", field.Comment)
	assert.Contains(t, rec.Fields, field.Node)
	assert.Empty(t, v.Edges())
}

func TestCommentAttacherAdjacency(t *testing.T) {
	var c frontend.CommentAttacher
	c.Observe(10, "Person represents a human")

	g := graph.New()
	adjacent := g.NewRecord("Person", "struct")
	attached := c.Attach(adjacent.Node, 11)
	assert.True(t, attached)
	assert.Equal(t, "Person represents a human", adjacent.Comment)

	var c2 frontend.CommentAttacher
	c2.Observe(10, "unrelated, blank line follows")
	farAway := g.NewRecord("Other", "struct")
	attached = c2.Attach(farAway.Node, 13)
	assert.False(t, attached)
	assert.Empty(t, farAway.Comment)
}

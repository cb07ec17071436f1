package typesys_test

import (
	"testing"

	"github.com/cpgkit/cpg/graph"
	"github.com/cpgkit/cpg/typesys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePointer(t *testing.T) {
	g := graph.New()
	pt := typesys.Parse(g, "const int*", false, nil)

	require.Equal(t, "int", pt.Base)
	assert.Contains(t, pt.Qualifiers, "const")
	require.Len(t, pt.Wrappers, 1)
	assert.Equal(t, typesys.WrapPointer, pt.Wrappers[0].Kind)
	assert.Equal(t, graph.KindPointerType, pt.Node.Kind())
}

func TestParseArray(t *testing.T) {
	g := graph.New()
	pt := typesys.Parse(g, "int[10]", false, nil)

	require.Len(t, pt.Wrappers, 1)
	assert.Equal(t, typesys.WrapArray, pt.Wrappers[0].Kind)
	assert.Equal(t, 10, pt.Wrappers[0].Length)
}

func TestParseFunctionPointer(t *testing.T) {
	g := graph.New()
	pt := typesys.Parse(g, "int (*fp)(int)", false, nil)

	require.NotNil(t, pt.FunctionSignature)
	assert.Equal(t, "fp", pt.Base)
	assert.Equal(t, "int", pt.FunctionSignature.ReturnText)
	assert.Equal(t, []string{"int"}, pt.FunctionSignature.ParamTexts)
	assert.Equal(t, graph.KindFunctionType, pt.Node.Kind())
}

func TestEquals(t *testing.T) {
	g := graph.New()
	a := typesys.Parse(g, "int*", false, nil)
	b := typesys.Parse(g, "int*", false, nil)
	c := typesys.Parse(g, "int", false, nil)

	assert.True(t, typesys.Equals(a, b))
	assert.False(t, typesys.Equals(a, c))
}

func TestIsCompatibleNumericWidening(t *testing.T) {
	g := graph.New()
	from := typesys.Parse(g, "int", false, nil)
	to := typesys.Parse(g, "double", false, nil)

	assert.True(t, typesys.IsCompatible(from, to, nil))
	assert.False(t, typesys.IsCompatible(to, from, nil))
}

func TestIsCompatibleSuperClass(t *testing.T) {
	g := graph.New()
	from := typesys.Parse(g, "Derived", false, nil)
	to := typesys.Parse(g, "Base", false, nil)

	supers := func(name string) []string {
		if name == "Derived" {
			return []string{"Base"}
		}
		return nil
	}
	assert.True(t, typesys.IsCompatible(from, to, supers))
}

func TestRoundTrip(t *testing.T) {
	g := graph.New()
	pt := typesys.Parse(g, "const int*", false, nil)
	assert.Equal(t, "const int*", pt.String())
}

func TestUnparseableYieldsUnknownType(t *testing.T) {
	g := graph.New()
	pt := typesys.Parse(g, "   ", false, nil)
	assert.Equal(t, graph.KindUnknownType, pt.Node.Kind())
}

package nativeparser_test

import (
	"context"
	"testing"

	"github.com/cpgkit/cpg/nativeparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStringGoLike(t *testing.T) {
	src := []byte("package main\n\nfunc main() {}\n")
	tree, err := nativeparser.ParseString(context.Background(), nativeparser.GoLike, ".go", src)
	require.NoError(t, err)
	defer tree.FreeTree()

	root := tree.RootNode()
	require.NotNil(t, root)
	assert.Equal(t, "source_file", nativeparser.KindOf(root))

	children := nativeparser.ChildrenOf(root)
	assert.NotEmpty(t, children)
}

func TestRangeOfIsOneBasedInclusive(t *testing.T) {
	src := []byte("package main\n")
	tree, err := nativeparser.ParseString(context.Background(), nativeparser.GoLike, ".go", src)
	require.NoError(t, err)
	defer tree.FreeTree()

	startLine, startCol, _, _ := tree.RangeOf(tree.RootNode())
	assert.Equal(t, 1, startLine)
	assert.Equal(t, 1, startCol)
}

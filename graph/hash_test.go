package graph_test

import (
	"testing"

	"github.com/cpgkit/cpg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStableHashDeterministic(t *testing.T) {
	a, err := graph.StableHash([]byte("42:DoThing"))
	require.NoError(t, err)
	b, err := graph.StableHash([]byte("42:DoThing"))
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestStableHashDistinguishesInput(t *testing.T) {
	a, err := graph.StableHash([]byte("42:DoThing"))
	require.NoError(t, err)
	b, err := graph.StableHash([]byte("43:DoThing"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

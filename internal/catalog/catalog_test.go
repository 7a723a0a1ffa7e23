package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultStore(t *testing.T) {
	store := Default()

	lists := store.Lists()
	require.Len(t, lists, 2)
	assert.Equal(t, "TV Shows", lists[0].Name)
	assert.Equal(t, "Movies", lists[1].Name)

	movies, ok := store.List("2")
	require.True(t, ok)
	assert.NotEmpty(t, movies.Items)

	_, ok = store.List("missing")
	assert.False(t, ok)
}

func TestNewStore(t *testing.T) {
	store := NewStore([]List{{ID: "a", Name: "Books", Items: []Item{{ID: "b1", Name: "Dune"}}}})

	list, ok := store.List("a")
	require.True(t, ok)
	assert.Equal(t, []Item{{ID: "b1", Name: "Dune"}}, list.Items)
	assert.Empty(t, NewStore(nil).Lists())
}

package visibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testItem struct {
	id     string
	author string
}

func (t testItem) GetAuthorID() string { return t.author }

func TestVisible(t *testing.T) {
	sets := NewSets([]string{"blocked-1"}, []string{"muted-1"})

	assert.False(t, sets.Visible("blocked-1"))
	assert.False(t, sets.Visible("muted-1"))
	assert.True(t, sets.Visible("someone-else"))
}

func TestVisibleEmptySets(t *testing.T) {
	sets := NewSets(nil, nil)
	assert.True(t, sets.Visible("anyone"))
}

func TestFilter(t *testing.T) {
	sets := NewSets([]string{"b"}, []string{"m"})
	items := []testItem{
		{id: "1", author: "a"},
		{id: "2", author: "b"},
		{id: "3", author: "m"},
		{id: "4", author: "a"},
	}

	got := Filter(items, sets)

	assert.Len(t, got, 2)
	assert.Equal(t, "1", got[0].id)
	assert.Equal(t, "4", got[1].id)
}

func TestFilterSameResultRegardlessOfSurface(t *testing.T) {
	// The predicate depends only on the author id, so any two
	// surfaces querying the same sets agree item by item.
	sets := NewSets([]string{"x"}, nil)

	feed := []testItem{{id: "1", author: "x"}, {id: "2", author: "y"}}
	search := []testItem{{id: "3", author: "y"}, {id: "4", author: "x"}}

	for _, item := range append(feed, search...) {
		assert.Equal(t, item.author != "x", sets.Visible(item.author))
	}
}

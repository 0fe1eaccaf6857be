package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumarques81/stellar-shuffle/internal/domain/catalog"
)

func sampleItems() []catalog.Item {
	return []catalog.Item{
		{ID: "a.flac", Title: "Alpha", Artist: "One"},
		{ID: "b.flac", Title: "Beta", Artist: "Two"},
		{ID: "c.flac", Title: "Gamma", Artist: "Three"},
	}
}

func TestWeigh(t *testing.T) {
	weighted := catalog.Weigh(sampleItems())

	require.Len(t, weighted, 3)
	for i, w := range weighted {
		assert.Equal(t, sampleItems()[i].ID, w.ID, "order must be preserved")
		assert.Equal(t, 1.0, w.Weight)
	}
	assert.Equal(t, 3.0, catalog.TotalWeight(weighted))
}

func TestWeighEmpty(t *testing.T) {
	assert.Empty(t, catalog.Weigh(nil))
	assert.Equal(t, 0.0, catalog.TotalWeight(nil))
}

func TestNewMarksLiked(t *testing.T) {
	c := catalog.New(sampleItems(), []string{"b.flac", "missing.flac"})

	b, ok := c.Get("b.flac")
	require.True(t, ok)
	assert.True(t, b.IsLiked)

	a, _ := c.Get("a.flac")
	assert.False(t, a.IsLiked)

	assert.Equal(t, []string{"b.flac"}, c.LikedIDs())
}

func TestSetLiked(t *testing.T) {
	c := catalog.New(sampleItems(), nil)

	assert.True(t, c.SetLiked("c.flac", true))
	assert.False(t, c.SetLiked("nope", true))
	assert.Equal(t, []string{"c.flac"}, c.LikedIDs())

	c.SetLiked("c.flac", false)
	assert.Empty(t, c.LikedIDs())
}

func TestWeightMutation(t *testing.T) {
	c := catalog.New(sampleItems(), nil)

	require.True(t, c.Penalize("a.flac"))
	require.True(t, c.Boost("b.flac"))

	a, _ := c.Get("a.flac")
	b, _ := c.Get("b.flac")
	assert.InDelta(t, catalog.SkipWeightModifier, a.Weight, 1e-9)
	assert.InDelta(t, catalog.BoostWeightModifier, b.Weight, 1e-9)
	assert.InDelta(t, catalog.SkipWeightModifier+catalog.BoostWeightModifier+1, c.TotalWeight(), 1e-9)

	c.SetWeight("c.flac", -3)
	cItem, _ := c.Get("c.flac")
	assert.Equal(t, 0.0, cItem.Weight)

	assert.False(t, c.Boost("unknown"))
}

func TestWeightedReturnsCopy(t *testing.T) {
	c := catalog.New(sampleItems(), nil)

	items := c.Weighted()
	items[0].Weight = 42

	a, _ := c.Get("a.flac")
	assert.Equal(t, 1.0, a.Weight)
	assert.Equal(t, 3, c.Len())
	assert.Len(t, c.Items(), 3)
}

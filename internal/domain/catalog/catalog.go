package catalog

import (
	"sync"

	"github.com/samber/lo"
)

// Weigh returns a weighted copy of items, preserving order, with every weight at DefaultWeight.
func Weigh(items []Item) []WeightedItem {
	return lo.Map(items, func(item Item, _ int) WeightedItem {
		return WeightedItem{Item: item, Weight: DefaultWeight}
	})
}

// TotalWeight returns the sum of all weights.
func TotalWeight(items []WeightedItem) float64 {
	return lo.SumBy(items, func(w WeightedItem) float64 { return w.Weight })
}

// Catalog holds the weighted items of a session.
// It is safe for concurrent access.
type Catalog struct {
	mu    sync.RWMutex
	items []WeightedItem
	index map[string]int
}

// New creates a catalog from scanned items. IDs listed in liked are marked as liked.
func New(items []Item, liked []string) *Catalog {
	likedSet := lo.SliceToMap(liked, func(id string) (string, struct{}) { return id, struct{}{} })

	weighted := Weigh(items)
	index := make(map[string]int, len(weighted))
	for i := range weighted {
		if _, ok := likedSet[weighted[i].ID]; ok {
			weighted[i].IsLiked = true
		}
		index[weighted[i].ID] = i
	}

	return &Catalog{items: weighted, index: index}
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Weighted returns a copy of the weighted items.
func (c *Catalog) Weighted() []WeightedItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]WeightedItem, len(c.items))
	copy(out, c.items)
	return out
}

// Items returns a copy of the plain items.
func (c *Catalog) Items() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return lo.Map(c.items, func(w WeightedItem, _ int) Item { return w.Item })
}

// Get returns the item with the given ID.
func (c *Catalog) Get(id string) (WeightedItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[id]
	if !ok {
		return WeightedItem{}, false
	}
	return c.items[i], true
}

// TotalWeight returns the sampling normalizer.
func (c *Catalog) TotalWeight() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return TotalWeight(c.items)
}

// SetLiked sets the liked flag of an item. Returns false if the ID is unknown.
func (c *Catalog) SetLiked(id string, liked bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[id]
	if !ok {
		return false
	}
	c.items[i].IsLiked = liked
	return true
}

// LikedIDs returns the IDs of liked items in catalog order.
func (c *Catalog) LikedIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return lo.FilterMap(c.items, func(w WeightedItem, _ int) (string, bool) {
		return w.ID, w.IsLiked
	})
}

// SetWeight sets the weight of an item. Negative weights are stored as 0.
func (c *Catalog) SetWeight(id string, weight float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[id]
	if !ok {
		return false
	}
	if weight < 0 {
		weight = 0
	}
	c.items[i].Weight = weight
	return true
}

// Penalize multiplies an item's weight by SkipWeightModifier.
func (c *Catalog) Penalize(id string) bool {
	return c.scale(id, SkipWeightModifier)
}

// Boost multiplies an item's weight by BoostWeightModifier.
func (c *Catalog) Boost(id string) bool {
	return c.scale(id, BoostWeightModifier)
}

func (c *Catalog) scale(id string, factor float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[id]
	if !ok {
		return false
	}
	c.items[i].Weight *= factor
	return true
}

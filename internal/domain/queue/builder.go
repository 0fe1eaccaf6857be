package queue

import (
	"math/rand/v2"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/edumarques81/stellar-shuffle/internal/domain/catalog"
)

// Builder draws weighted random selections from the catalog.
// It holds no queue state; every method is a function of its arguments and the random source.
type Builder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewBuilder creates a builder backed by a randomly seeded source.
func NewBuilder() *Builder {
	return NewBuilderWithSource(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// NewBuilderWithSource creates a builder using src, for reproducible draws.
func NewBuilderWithSource(src rand.Source) *Builder {
	return &Builder{rng: rand.New(src)}
}

// DrawMusic draws count entries. No drawn entry shares its title with the entry before it;
// the first draw is compared against prior when prior is non-nil.
// Titles are compared rather than IDs, so distinct items with the same title count as repeats.
func (b *Builder) DrawMusic(count int, prior *Entry, items []catalog.WeightedItem) []Entry {
	if count <= 0 || len(items) == 0 {
		return nil
	}

	total := catalog.TotalWeight(items)
	enforce := distinctTitles(items, total) >= 2
	if !enforce {
		log.Debug().Int("items", len(items)).Msg("Fewer than two distinct titles, adjacency not enforced")
	}

	out := make([]Entry, 0, count)
	previous := prior
	for len(out) < count {
		pick := b.pick(items, total)
		if enforce && previous != nil && pick.Title == previous.Title {
			continue
		}
		entry := NewEntry(pick)
		out = append(out, entry)
		previous = &out[len(out)-1]
	}
	return out
}

// ComplementTracks fills existing up to TrackLength and re-marks triggers over the whole queue.
func (b *Builder) ComplementTracks(existing []Entry, items []catalog.WeightedItem) []Entry {
	q := make([]Entry, len(existing), max(len(existing), TrackLength))
	copy(q, existing)

	if need := TrackLength - len(q); need > 0 {
		q = append(q, b.DrawMusic(need, Last(existing), items)...)
	}

	MarkTriggers(q)
	return q
}

// GetMoreTracks draws one BatchLength batch to append after current, with triggers marked
// within the batch only. A single-item catalog yields that item alone as a trigger entry.
func (b *Builder) GetMoreTracks(current []Entry, items []catalog.WeightedItem) []Entry {
	if len(items) == 1 {
		e := NewEntry(items[0])
		e.IsTrigger = true
		return []Entry{e}
	}

	batch := b.DrawMusic(BatchLength, Last(current), items)
	MarkTriggers(batch)
	return batch
}

// pick walks the cumulative weights until the running sum exceeds a uniform draw.
func (b *Builder) pick(items []catalog.WeightedItem, total float64) catalog.WeightedItem {
	b.mu.Lock()
	defer b.mu.Unlock()

	if total <= 0 {
		return items[b.rng.IntN(len(items))]
	}

	r := b.rng.Float64() * total
	sum := 0.0
	last := -1
	for i, item := range items {
		if item.Weight <= 0 {
			continue
		}
		sum += item.Weight
		last = i
		if sum > r {
			return item
		}
	}
	// float rounding left r at the very top of the range
	return items[last]
}

// distinctTitles counts titles that can actually be drawn.
func distinctTitles(items []catalog.WeightedItem, total float64) int {
	seen := make(map[string]struct{})
	for _, item := range items {
		if total > 0 && item.Weight <= 0 {
			continue
		}
		seen[item.Title] = struct{}{}
		if len(seen) >= 2 {
			break
		}
	}
	return len(seen)
}

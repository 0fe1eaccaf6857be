// Package queue builds and extends the weighted shuffle queue.
package queue

import "github.com/edumarques81/stellar-shuffle/internal/domain/catalog"

const (
	// TrackLength is the target size of a freshly built queue.
	TrackLength = 20
	// BatchLength is the number of entries drawn on each extension.
	BatchLength = TrackLength / 2
)

// Entry is one position in the playback queue.
type Entry struct {
	catalog.Item
	Weight    float64 `json:"weight"`
	IsPlayed  bool    `json:"isPlayed"`
	IsTrigger bool    `json:"isTrigger"`
}

// NewEntry creates an unplayed, non-trigger entry from a weighted item.
func NewEntry(w catalog.WeightedItem) Entry {
	return Entry{Item: w.Item, Weight: w.Weight}
}

// Last returns the final entry of q, or nil if q is empty.
func Last(q []Entry) *Entry {
	if len(q) == 0 {
		return nil
	}
	e := q[len(q)-1]
	return &e
}

// MarkTriggers numbers the entries 1..N and flags every BatchLength-th one as a trigger.
// All other entries are cleared.
func MarkTriggers(batch []Entry) {
	for i := range batch {
		batch[i].IsTrigger = (i+1)%BatchLength == 0
	}
}

// LeadingPlayed returns the number of consecutive played entries at the start of q.
func LeadingPlayed(q []Entry) int {
	for i, e := range q {
		if !e.IsPlayed {
			return i
		}
	}
	return len(q)
}

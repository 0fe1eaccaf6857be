package history

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/edumarques81/stellar-shuffle/internal/domain/catalog"
)

// StatsWindow is the trailing period considered by MostPlayed.
const StatsWindow = 7 * 24 * time.Hour

const (
	minMostPlayed = 12
	maxMostPlayed = 20
)

// MostPlayedLimit returns the number of items shown for a catalog of the given size.
func MostPlayedLimit(catalogSize int) int {
	return lo.Clamp(catalogSize/10, minMostPlayed, maxMostPlayed)
}

// MostPlayed ranks catalog items by their summed played ratio over the StatsWindow before now.
// Equal scores favour the most recently heard track. IDs missing from items are skipped.
func MostPlayed(events []Event, items []catalog.Item, now time.Time, limit int) []catalog.Item {
	cutoff := now.Add(-StatsWindow)
	recent := lo.Filter(events, func(e Event, _ int) bool {
		return e.EndTime.After(cutoff)
	})

	// most recent first so that first appearance order encodes recency
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].EndTime.After(recent[j].EndTime)
	})

	scores := make(map[string]float64)
	var order []string
	for _, e := range recent {
		if _, seen := scores[e.TrackID]; !seen {
			order = append(order, e.TrackID)
		}
		scores[e.TrackID] += e.PlayedRatio
	}

	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	byID := lo.KeyBy(items, func(item catalog.Item) string { return item.ID })

	out := make([]catalog.Item, 0, limit)
	for _, id := range order {
		if len(out) >= limit {
			break
		}
		if item, ok := byID[id]; ok {
			out = append(out, item)
		}
	}
	return out
}

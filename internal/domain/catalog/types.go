// Package catalog provides the set of known tracks and their selection weights.
package catalog

// Weight modifiers for skip penalties and boosts.
// Nothing applies them automatically; see Catalog.Penalize and Catalog.Boost.
const (
	DefaultWeight       = 1.0
	SkipWeightModifier  = 0.5
	BoostWeightModifier = 1.5
)

// Item represents a track produced by the scanner.
type Item struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	ArtworkRef string `json:"artworkRef,omitempty"`
	MiniArtRef string `json:"miniArtRef,omitempty"`
	Lyrics     string `json:"lyrics,omitempty"`
	Duration   int    `json:"duration,omitempty"` // Duration in seconds, 0 if unknown
	IsLiked    bool   `json:"isLiked"`
}

// WeightedItem is a catalog item annotated with its sampling weight.
type WeightedItem struct {
	Item
	Weight float64 `json:"weight"`
}

// Scanner produces the raw catalog.
type Scanner interface {
	Scan() ([]Item, error)
}

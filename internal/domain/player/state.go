// Package player provides the playback orchestrator: it owns the shuffle queue and its cursor,
// drives the playback engine and records listening history.
package player

import "github.com/edumarques81/stellar-shuffle/internal/domain/queue"

// Snapshot is a read-only copy of the orchestrator state.
type Snapshot struct {
	Status   Status
	Cursor   int
	Queue    []queue.Entry
	Elapsed  float64 // Seconds heard of the current track
	Duration float64 // Duration in seconds as reported by the engine
	Repeat   bool
}

// Current returns the entry at the cursor, or nil if there is none.
func (s Snapshot) Current() *queue.Entry {
	if s.Cursor < 0 || s.Cursor >= len(s.Queue) {
		return nil
	}
	e := s.Queue[s.Cursor]
	return &e
}

// Upcoming returns the entries after the cursor.
func (s Snapshot) Upcoming() []queue.Entry {
	if s.Cursor < 0 || s.Cursor >= len(s.Queue)-1 {
		return nil
	}
	return s.Queue[s.Cursor+1:]
}

// ToJSON returns the state as a map suitable for pushState.
func (s Snapshot) ToJSON() map[string]interface{} {
	state := map[string]interface{}{
		"status":   string(s.Status),
		"position": s.Cursor,
		"seek":     int(s.Elapsed * 1000),
		"duration": int(s.Duration),
		"repeat":   s.Repeat,
		"queueLen": len(s.Queue),
		"title":    "",
		"artist":   "",
		"albumart": "",
		"uri":      "",
		"liked":    false,
	}

	if cur := s.Current(); cur != nil {
		state["title"] = cur.Title
		state["artist"] = cur.Artist
		state["albumart"] = cur.ArtworkRef
		state["uri"] = cur.ID
		state["liked"] = cur.IsLiked
		if s.Duration == 0 {
			state["duration"] = cur.Duration
		}
	}

	return state
}

// QueueJSON returns the queue as a list of maps suitable for pushQueue.
func (s Snapshot) QueueJSON() []map[string]interface{} {
	out := make([]map[string]interface{}, len(s.Queue))
	for i, e := range s.Queue {
		out[i] = map[string]interface{}{
			"uri":       e.ID,
			"title":     e.Title,
			"artist":    e.Artist,
			"albumart":  e.MiniArtRef,
			"duration":  e.Duration,
			"liked":     e.IsLiked,
			"played":    e.IsPlayed,
			"isTrigger": e.IsTrigger,
			"current":   i == s.Cursor,
		}
	}
	return out
}

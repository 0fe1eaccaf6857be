// Package history records listening events and aggregates them into play statistics.
package history

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/edumarques81/stellar-shuffle/internal/domain/catalog"
)

// ReasonStart describes how a track came to be playing.
type ReasonStart string

const (
	// ReasonStartNormal indicates the track followed the previous one in the queue.
	ReasonStartNormal ReasonStart = "normal"
	// ReasonStartSelected indicates the listener picked the track explicitly.
	ReasonStartSelected ReasonStart = "selected"
	// ReasonStartReturned indicates the listener went back to the track.
	ReasonStartReturned ReasonStart = "returned"
)

// ReasonEnd describes how a track stopped playing.
type ReasonEnd string

const (
	// ReasonEndNormal indicates the track played to its end.
	ReasonEndNormal ReasonEnd = "normal"
	// ReasonEndSkipped indicates the track was left before its end.
	ReasonEndSkipped ReasonEnd = "skipped"
)

// NearEndTolerance is how close to the end, in seconds, a listen counts as complete.
const NearEndTolerance = 7.0

// Event is one completed or abandoned listen.
type Event struct {
	ID          string      `json:"id"`
	EndTime     time.Time   `json:"endTime"`
	TrackID     string      `json:"trackId"`
	Title       string      `json:"title"`
	Artist      string      `json:"artist"`
	ReasonStart ReasonStart `json:"reasonStart"`
	ReasonEnd   ReasonEnd   `json:"reasonEnd"`
	PlayedRatio float64     `json:"playedRatio"`
	SecPlayed   float64     `json:"secPlayed"`
	Duration    float64     `json:"duration"`
}

// NewEvent builds an event for item ending at endTime.
func NewEvent(item catalog.Item, start ReasonStart, end ReasonEnd, secPlayed, duration float64, endTime time.Time) Event {
	return Event{
		ID:          uuid.New().String(),
		EndTime:     endTime,
		TrackID:     item.ID,
		Title:       item.Title,
		Artist:      item.Artist,
		ReasonStart: start,
		ReasonEnd:   end,
		PlayedRatio: PlayedRatio(secPlayed, duration),
		SecPlayed:   secPlayed,
		Duration:    duration,
	}
}

// PlayedRatio returns the heard fraction of a track, bounded to [0, 1].
// Listens within NearEndTolerance of the duration count as complete.
func PlayedRatio(secPlayed, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	if math.Abs(secPlayed-duration) < NearEndTolerance {
		return 1
	}
	ratio := secPlayed / duration
	switch {
	case ratio < 0:
		return 0
	case ratio > 1:
		return 1
	}
	return ratio
}

package player

import (
	"errors"

	"github.com/edumarques81/stellar-shuffle/internal/domain/catalog"
	"github.com/edumarques81/stellar-shuffle/internal/domain/history"
	"github.com/edumarques81/stellar-shuffle/internal/domain/queue"
)

// Status is the orchestrator's playback state.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusBuilding Status = "building"
	StatusPlaying  Status = "play"
	StatusPaused   Status = "pause"
)

// RepeatMode is the engine's repeat setting.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
	RepeatTrack
)

// String returns the repeat mode name.
func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "off"
	case RepeatAll:
		return "all"
	case RepeatTrack:
		return "track"
	default:
		return "unknown"
	}
}

// RestartThreshold is the playback position, in seconds, from which "previous" restarts
// the current track instead of going back.
const RestartThreshold = 5.0

// Store keys.
const (
	KeyTracks         = "tracks"
	KeyHistoryList    = "historyList"
	KeyMusicSelection = "musicSelection"
	KeySavedPosition  = "savedPosition"
	KeyIsRepeat       = "isRepeat"
	KeyLikedSongs     = "likedSongs"
	KeyMusicList      = "musicList"
)

// maxSelections bounds the recent selections list.
const maxSelections = 20

// ErrUnknownTrack is returned when a track ID is not in the catalog.
var ErrUnknownTrack = errors.New("unknown track")

// Engine is the device-level playback engine.
type Engine interface {
	Load(entries []queue.Entry, start int) error
	Append(entries []queue.Entry) error
	Play() error
	Pause() error
	Seek(seconds int) error
	SkipNext() error
	SkipPrevious() error
	RepeatMode() (RepeatMode, error)
	SetRepeatMode(mode RepeatMode) error
	// Playing reports whether the engine is currently producing audio.
	Playing() (bool, error)
}

// Controller is the orchestrator surface the client-facing transports drive.
type Controller interface {
	Snapshot() Snapshot
	Play() error
	Pause() error
	SkipToNext() error
	SkipToPrevious(position float64) error
	SeekTo(position int) error
	SetRepeat(on bool) error
	BuildNewQueue(selected *catalog.Item) error
	ToggleLike(id string) (bool, error)
	MostPlayed() []catalog.Item
	History() []history.Event
	RecentSelections() []string
	Catalog() *catalog.Catalog
}

// Store persists opaque values by key. Get reports false when the key is absent.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
}

// Change identifies what part of the orchestrator state changed.
type Change string

const (
	ChangeState Change = "state"
	ChangeQueue Change = "queue"
)

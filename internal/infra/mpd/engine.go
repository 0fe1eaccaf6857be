package mpd

import (
	"fmt"
	"sync"

	"github.com/fhs/gompd/v2/mpd"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/edumarques81/stellar-shuffle/internal/domain/player"
	"github.com/edumarques81/stellar-shuffle/internal/domain/queue"
)

// Commander is the subset of Client the engine needs.
type Commander interface {
	Status() (mpd.Attrs, error)
	Clear() error
	Add(uris ...string) error
	Play(pos int) error
	Pause(pause bool) error
	Next() error
	Previous() error
	Seek(pos int) error
	SetRepeat(on bool) error
	SetSingle(on bool) error
}

// Engine drives MPD's play queue as a mirror of the player queue.
// Positions in MPD's queue match indexes in the player queue.
type Engine struct {
	mpd Commander

	mu sync.Mutex
	// start is the position to begin at on the next Play after Load, or -1.
	start int
}

// NewEngine creates an engine over an MPD connection.
func NewEngine(c Commander) *Engine {
	return &Engine{mpd: c, start: -1}
}

// Load replaces MPD's queue with entries. Playback begins at start on the next Play.
func (e *Engine) Load(entries []queue.Entry, start int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.mpd.Clear(); err != nil {
		return fmt.Errorf("failed to clear MPD queue: %w", err)
	}
	if err := e.mpd.Add(uris(entries)...); err != nil {
		return fmt.Errorf("failed to add to MPD queue: %w", err)
	}
	e.start = start

	log.Debug().Int("entries", len(entries)).Int("start", start).Msg("Loaded MPD queue")
	return nil
}

// Append adds entries to the end of MPD's queue.
func (e *Engine) Append(entries []queue.Entry) error {
	if err := e.mpd.Add(uris(entries)...); err != nil {
		return fmt.Errorf("failed to append to MPD queue: %w", err)
	}
	return nil
}

// Play starts the loaded queue or resumes the current song.
func (e *Engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pos := e.start
	if err := e.mpd.Play(pos); err != nil {
		return err
	}
	e.start = -1
	return nil
}

// Pause pauses playback.
func (e *Engine) Pause() error {
	return e.mpd.Pause(true)
}

// Seek moves to seconds within the current song.
func (e *Engine) Seek(seconds int) error {
	return e.mpd.Seek(seconds)
}

// SkipNext moves to the next song.
func (e *Engine) SkipNext() error {
	return e.mpd.Next()
}

// SkipPrevious moves to the previous song.
func (e *Engine) SkipPrevious() error {
	return e.mpd.Previous()
}

// RepeatMode reads MPD's repeat and single flags.
func (e *Engine) RepeatMode() (player.RepeatMode, error) {
	status, err := e.mpd.Status()
	if err != nil {
		return player.RepeatOff, err
	}
	return repeatModeFromStatus(status), nil
}

// Playing reports whether MPD's state is "play".
func (e *Engine) Playing() (bool, error) {
	status, err := e.mpd.Status()
	if err != nil {
		return false, err
	}
	return status["state"] == "play", nil
}

// SetRepeatMode sets MPD's repeat and single flags.
func (e *Engine) SetRepeatMode(mode player.RepeatMode) error {
	repeat := mode != player.RepeatOff
	single := mode == player.RepeatTrack

	if err := e.mpd.SetRepeat(repeat); err != nil {
		return fmt.Errorf("failed to set repeat: %w", err)
	}
	if err := e.mpd.SetSingle(single); err != nil {
		return fmt.Errorf("failed to set single: %w", err)
	}
	return nil
}

func repeatModeFromStatus(status mpd.Attrs) player.RepeatMode {
	switch {
	case status["repeat"] == "1" && status["single"] == "1":
		return player.RepeatTrack
	case status["repeat"] == "1":
		return player.RepeatAll
	default:
		return player.RepeatOff
	}
}

func uris(entries []queue.Entry) []string {
	return lo.Map(entries, func(e queue.Entry, _ int) string { return e.ID })
}

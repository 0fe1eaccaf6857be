package player

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/edumarques81/stellar-shuffle/internal/domain/catalog"
	"github.com/edumarques81/stellar-shuffle/internal/domain/history"
	"github.com/edumarques81/stellar-shuffle/internal/domain/queue"
)

// BuildNewQueue discards the current queue and starts a fresh shuffle.
// When selected is non-nil it plays first. An empty catalog leaves the player idle.
func (s *Service) BuildNewQueue(selected *catalog.Item) error {
	defer s.notify(ChangeState, ChangeQueue)
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.buildLocked(selected)
}

func (s *Service) buildLocked(selected *catalog.Item) error {
	items := s.catalog.Weighted()
	if len(items) == 0 {
		log.Warn().Msg("BuildNewQueue: catalog is empty")
		return nil
	}

	s.recordLocked(history.ReasonEndSkipped)
	s.status = StatusBuilding

	var q []queue.Entry
	switch {
	case len(items) == 1:
		q = s.builder.GetMoreTracks(nil, items)
		s.reasonStart = history.ReasonStartNormal
	case selected != nil:
		first, ok := s.catalog.Get(selected.ID)
		if !ok {
			first = catalog.WeightedItem{Item: *selected, Weight: catalog.DefaultWeight}
		}
		q = s.builder.ComplementTracks([]queue.Entry{queue.NewEntry(first)}, items)
		s.reasonStart = history.ReasonStartSelected
		s.rememberSelection(selected.ID)
	default:
		q = s.builder.ComplementTracks(nil, items)
		s.reasonStart = history.ReasonStartNormal
	}

	s.queue = q
	s.cursor = 0
	s.elapsed = 0
	s.duration = 0
	s.pendingSeek = 0
	s.focusPaused = false
	s.save(KeyTracks, s.queue)

	log.Info().
		Int("entries", len(s.queue)).
		Str("reasonStart", string(s.reasonStart)).
		Msg("BuildNewQueue")

	if err := s.engine.Load(s.queue, 0); err != nil {
		s.status = StatusIdle
		return fmt.Errorf("failed to load queue: %w", err)
	}
	if err := s.engine.Play(); err != nil {
		s.status = StatusPaused
		return fmt.Errorf("failed to start playback: %w", err)
	}
	s.status = StatusPlaying
	return nil
}

// AdvanceOnNaturalEnd moves to the next entry after the engine finished the current one.
func (s *Service) AdvanceOnNaturalEnd() {
	defer s.notify(ChangeState, ChangeQueue)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.naturalEndLocked()
}

func (s *Service) naturalEndLocked() {
	if s.currentLocked() == nil {
		return
	}
	// the engine has stopped when the tail entry finishes, so an extension there is reloaded
	tail := s.extendTailLocked(false)
	if s.advanceLocked(history.ReasonEndNormal, history.ReasonStartNormal) {
		s.extendIfTriggeredLocked(!tail)
		if tail {
			s.reloadLocked()
		}
	}
	s.save(KeyTracks, s.queue)
}

// SkipToNext abandons the current entry and moves to the next one.
func (s *Service) SkipToNext() error {
	defer s.notify(ChangeState, ChangeQueue)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentLocked() == nil {
		return nil
	}

	log.Info().Int("cursor", s.cursor).Msg("SkipToNext")

	s.extendTailLocked(true)
	if !s.advanceLocked(history.ReasonEndSkipped, history.ReasonStartNormal) {
		s.save(KeyTracks, s.queue)
		return nil
	}

	err := s.engine.SkipNext()
	s.replayIfRepeatingLocked()
	s.extendIfTriggeredLocked(true)
	s.save(KeyTracks, s.queue)

	if err != nil {
		return fmt.Errorf("failed to skip to next: %w", err)
	}
	return nil
}

// SkipToPrevious goes back one entry when fewer than RestartThreshold seconds of the current
// track were heard, otherwise it restarts the current track. A speculative skip record for the
// entry being returned to is removed from history.
func (s *Service) SkipToPrevious(position float64) error {
	defer s.notify(ChangeState, ChangeQueue)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentLocked() == nil {
		return nil
	}

	if s.cursor == 0 || position >= RestartThreshold {
		log.Info().Int("cursor", s.cursor).Float64("position", position).Msg("SkipToPrevious: restart")
		s.elapsed = 0
		if err := s.engine.Seek(0); err != nil {
			return fmt.Errorf("failed to restart track: %w", err)
		}
		return nil
	}

	log.Info().Int("cursor", s.cursor).Float64("position", position).Msg("SkipToPrevious")

	if e, ok := s.ledger.PopLastIfSkipped(); ok {
		log.Debug().Str("track", e.TrackID).Msg("Removed skip record")
		s.save(KeyHistoryList, s.ledger)
	}

	s.cursor--
	s.queue[s.cursor].IsPlayed = false
	s.reasonStart = history.ReasonStartReturned
	s.elapsed = 0
	s.duration = 0

	err := s.engine.SkipPrevious()
	s.replayIfRepeatingLocked()
	s.save(KeyTracks, s.queue)

	if err != nil {
		return fmt.Errorf("failed to skip to previous: %w", err)
	}
	return nil
}

// SeekTo moves the playback position. The engine is paused and resumed afterwards because
// seeking during playback can stall its output.
func (s *Service) SeekTo(position int) error {
	defer s.notify(ChangeState)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentLocked() == nil {
		return nil
	}

	log.Info().Int("position", position).Msg("SeekTo")

	if err := s.engine.Seek(position); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}
	s.elapsed = float64(position)
	s.pendingSeek = 0

	if err := s.engine.Pause(); err != nil {
		return fmt.Errorf("failed to pause after seek: %w", err)
	}
	if err := s.engine.Play(); err != nil {
		s.status = StatusPaused
		return fmt.Errorf("failed to resume after seek: %w", err)
	}
	s.status = StatusPlaying
	return nil
}

// Play resumes playback, or starts a full shuffle when nothing is queued.
func (s *Service) Play() error {
	defer s.notify(ChangeState, ChangeQueue)
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.playLocked()
}

func (s *Service) playLocked() error {
	if s.currentLocked() == nil {
		return s.buildLocked(nil)
	}

	log.Info().Msg("Play")

	if err := s.engine.Play(); err != nil {
		return fmt.Errorf("failed to play: %w", err)
	}
	if s.pendingSeek > 0 {
		if err := s.engine.Seek(s.pendingSeek); err != nil {
			log.Warn().Err(err).Int("position", s.pendingSeek).Msg("Failed to seek to saved position")
		}
		s.pendingSeek = 0
	}
	s.status = StatusPlaying
	s.focusPaused = false
	return nil
}

// Pause pauses playback.
func (s *Service) Pause() error {
	defer s.notify(ChangeState)
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pauseLocked()
}

func (s *Service) pauseLocked() error {
	if s.status != StatusPlaying {
		return nil
	}

	log.Info().Msg("Pause")

	if err := s.engine.Pause(); err != nil {
		return fmt.Errorf("failed to pause: %w", err)
	}
	s.status = StatusPaused
	return nil
}

// SetRepeat turns single-track repeat on or off.
func (s *Service) SetRepeat(on bool) error {
	defer s.notify(ChangeState)
	s.mu.Lock()
	defer s.mu.Unlock()

	log.Info().Bool("repeat", on).Msg("SetRepeat")

	mode := RepeatOff
	if on {
		mode = RepeatTrack
	}
	if err := s.engine.SetRepeatMode(mode); err != nil {
		return fmt.Errorf("failed to set repeat mode: %w", err)
	}
	s.repeat = on
	s.save(KeyIsRepeat, on)
	return nil
}

// currentLocked returns the entry at the cursor, or nil.
func (s *Service) currentLocked() *queue.Entry {
	if s.status == StatusIdle || s.cursor < 0 || s.cursor >= len(s.queue) {
		return nil
	}
	return &s.queue[s.cursor]
}

// recordLocked appends a history event for the current entry and resets the progress counters.
func (s *Service) recordLocked(end history.ReasonEnd) {
	cur := s.currentLocked()
	if cur == nil {
		return
	}

	duration := s.duration
	if duration <= 0 {
		duration = float64(cur.Duration)
	}

	e := history.NewEvent(cur.Item, s.reasonStart, end, s.elapsed, duration, s.now())
	s.ledger.Append(e)
	s.save(KeyHistoryList, s.ledger)

	log.Debug().
		Str("track", e.TrackID).
		Str("reasonStart", string(e.ReasonStart)).
		Str("reasonEnd", string(e.ReasonEnd)).
		Float64("ratio", e.PlayedRatio).
		Msg("Recorded listening event")

	s.elapsed = 0
	s.duration = 0
	s.savedSecond = -1
}

// advanceLocked records the current entry, marks it played and moves the cursor forward.
// It reports false and goes idle when the queue is exhausted.
func (s *Service) advanceLocked(end history.ReasonEnd, start history.ReasonStart) bool {
	s.recordLocked(end)
	s.queue[s.cursor].IsPlayed = true

	if s.cursor+1 >= len(s.queue) {
		log.Warn().Int("cursor", s.cursor).Msg("Reached end of queue")
		s.status = StatusIdle
		return false
	}

	s.cursor++
	s.reasonStart = start
	return true
}

// extendIfTriggeredLocked appends a new batch when the cursor sits on a trigger entry and
// then consumes the trigger. It must run after the cursor move it reacts to.
func (s *Service) extendIfTriggeredLocked(toEngine bool) {
	cur := s.currentLocked()
	if cur == nil || !cur.IsTrigger {
		return
	}

	more := s.builder.GetMoreTracks(s.queue, s.catalog.Weighted())
	s.queue = append(s.queue, more...)
	s.queue[s.cursor].IsTrigger = false

	log.Info().Int("cursor", s.cursor).Int("added", len(more)).Int("entries", len(s.queue)).Msg("Extended queue")

	if toEngine {
		if err := s.engine.Append(more); err != nil {
			log.Error().Err(err).Msg("Failed to append entries to engine")
		}
	}
}

// extendTailLocked consumes a trigger on the last entry, which is only reached this way by a
// one-item queue, as that entry is left. It reports whether the queue was extended.
func (s *Service) extendTailLocked(toEngine bool) bool {
	if s.cursor != len(s.queue)-1 || !s.queue[s.cursor].IsTrigger {
		return false
	}
	s.extendIfTriggeredLocked(toEngine)
	return true
}

// reloadLocked hands the whole queue to the engine and plays from the cursor.
func (s *Service) reloadLocked() {
	if err := s.engine.Load(s.queue, s.cursor); err != nil {
		log.Error().Err(err).Msg("Failed to reload queue")
		s.status = StatusPaused
		return
	}
	if err := s.engine.Play(); err != nil {
		log.Error().Err(err).Msg("Failed to resume after reload")
		s.status = StatusPaused
	}
}

// replayIfRepeatingLocked re-issues play after a skip when the engine repeats the current
// track; such engines otherwise stay on the old entry.
func (s *Service) replayIfRepeatingLocked() {
	mode, err := s.engine.RepeatMode()
	if err != nil {
		log.Debug().Err(err).Msg("Failed to read repeat mode")
		return
	}
	if mode != RepeatTrack {
		return
	}
	if err := s.engine.Play(); err != nil {
		log.Warn().Err(err).Msg("Failed to re-issue play in repeat mode")
	}
}

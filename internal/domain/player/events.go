package player

import (
	"github.com/rs/zerolog/log"

	"github.com/edumarques81/stellar-shuffle/internal/domain/history"
)

// OnTrackChanged handles the engine reporting a new current index.
// The index of the entry already at the cursor is ignored, the next index is a natural end,
// and any other index in range is treated as the listener jumping to that entry.
func (s *Service) OnTrackChanged(index int) {
	defer s.notify(ChangeState, ChangeQueue)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentLocked() == nil || index < 0 || index >= len(s.queue) || index == s.cursor {
		return
	}

	if index == s.cursor+1 {
		log.Debug().Int("index", index).Msg("Track finished")
		s.naturalEndLocked()
		return
	}

	log.Info().Int("from", s.cursor).Int("to", index).Msg("Track jump")

	s.recordLocked(history.ReasonEndSkipped)
	for i := range s.queue {
		s.queue[i].IsPlayed = i < index
	}
	s.cursor = index
	s.reasonStart = history.ReasonStartSelected
	s.extendIfTriggeredLocked(true)
	s.save(KeyTracks, s.queue)
}

// OnProgress records the engine-reported elapsed time and duration of the current track.
func (s *Service) OnProgress(elapsed, duration float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentLocked() == nil {
		return
	}

	s.elapsed = elapsed
	if duration > 0 {
		s.duration = duration
	}

	if second := int(elapsed); second != s.savedSecond {
		s.savedSecond = second
		s.save(KeySavedPosition, second)
	}
}

// OnRemotePlay handles a play request from outside the application.
func (s *Service) OnRemotePlay() {
	s.mu.Lock()
	playing := s.status == StatusPlaying
	s.mu.Unlock()

	if playing {
		return
	}
	if err := s.Play(); err != nil {
		log.Error().Err(err).Msg("Remote play failed")
	}
}

// OnRemotePause handles a pause request from outside the application.
func (s *Service) OnRemotePause() {
	if err := s.Pause(); err != nil {
		log.Error().Err(err).Msg("Remote pause failed")
	}
}

// OnEngineStateChanged adopts a play/pause change observed on the engine. A report that no
// longer matches the engine's current state is a transient of a command already issued here
// (SeekTo pauses and resumes) and is dropped. The engine is not commanded back.
func (s *Service) OnEngineStateChanged(playing bool) {
	defer s.notify(ChangeState, ChangeQueue)
	s.mu.Lock()
	defer s.mu.Unlock()

	if actual, err := s.engine.Playing(); err != nil {
		log.Debug().Err(err).Msg("Failed to read engine state")
	} else if actual != playing {
		log.Debug().Bool("reported", playing).Bool("actual", actual).Msg("Ignoring stale engine state")
		return
	}

	switch {
	case playing && s.status == StatusIdle:
		if err := s.buildLocked(nil); err != nil {
			log.Error().Err(err).Msg("Start on engine play failed")
		}
	case playing && s.status == StatusPaused:
		log.Info().Msg("Engine resumed")
		s.status = StatusPlaying
		s.focusPaused = false
		if s.pendingSeek > 0 {
			if err := s.engine.Seek(s.pendingSeek); err != nil {
				log.Warn().Err(err).Int("position", s.pendingSeek).Msg("Failed to seek to saved position")
			}
			s.pendingSeek = 0
		}
	case !playing && s.status == StatusPlaying:
		log.Info().Msg("Engine paused")
		s.status = StatusPaused
	}
}

// OnRemoteNext handles a skip-next request from outside the application.
func (s *Service) OnRemoteNext() {
	if err := s.SkipToNext(); err != nil {
		log.Error().Err(err).Msg("Remote next failed")
	}
}

// OnRemotePrevious handles a skip-previous request from outside the application,
// using the last reported position.
func (s *Service) OnRemotePrevious() {
	s.mu.Lock()
	position := s.elapsed
	s.mu.Unlock()

	if err := s.SkipToPrevious(position); err != nil {
		log.Error().Err(err).Msg("Remote previous failed")
	}
}

// OnRemoteSeek handles a seek request from outside the application.
func (s *Service) OnRemoteSeek(position int) {
	if err := s.SeekTo(position); err != nil {
		log.Error().Err(err).Msg("Remote seek failed")
	}
}

// OnAudioFocusLost pauses playback. After a transient loss playback resumes on
// OnAudioFocusGained; after a permanent loss it stays paused.
func (s *Service) OnAudioFocusLost(permanent bool) {
	defer s.notify(ChangeState)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusPlaying {
		return
	}

	log.Info().Bool("permanent", permanent).Msg("Audio focus lost")

	if err := s.pauseLocked(); err != nil {
		log.Error().Err(err).Msg("Pause on focus loss failed")
		return
	}
	s.focusPaused = !permanent
}

// OnAudioFocusGained resumes playback paused by a transient focus loss.
func (s *Service) OnAudioFocusGained() {
	defer s.notify(ChangeState)
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.focusPaused || s.status != StatusPaused {
		return
	}

	log.Info().Msg("Audio focus regained")

	if err := s.playLocked(); err != nil {
		log.Error().Err(err).Msg("Resume on focus gain failed")
	}
}

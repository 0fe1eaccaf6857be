package mpd

import (
	"context"
	"strconv"
	"time"

	"github.com/fhs/gompd/v2/mpd"
	"github.com/rs/zerolog/log"
)

// DefaultPollInterval is how often the monitor samples MPD's status between watcher events.
const DefaultPollInterval = time.Second

// Listener receives engine events. Calls are made from a single goroutine in the order MPD
// reported the changes.
type Listener interface {
	OnTrackChanged(index int)
	OnProgress(elapsed, duration float64)
	OnEngineStateChanged(playing bool)
	AdvanceOnNaturalEnd()
}

// StatusReader reads MPD's status.
type StatusReader interface {
	Status() (mpd.Attrs, error)
}

// Monitor turns MPD status changes into Listener calls.
type Monitor struct {
	status   StatusReader
	listener Listener
	interval time.Duration

	last   sample
	primed bool
}

// sample is the part of MPD's status the monitor tracks.
type sample struct {
	state       string
	song        int
	playlistLen int
	elapsed     float64
	duration    float64
}

// NewMonitor creates a monitor polling at interval.
func NewMonitor(status StatusReader, listener Listener, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Monitor{status: status, listener: listener, interval: interval}
}

// Run samples MPD on every watcher event and every interval until ctx is done.
// events may be nil, in which case only polling is used.
func (m *Monitor) Run(ctx context.Context, events <-chan string) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Poll()

	for {
		select {
		case <-ctx.Done():
			return
		case subsystem, ok := <-events:
			if !ok {
				log.Warn().Msg("MPD watcher closed, polling only")
				events = nil
				continue
			}
			log.Debug().Str("subsystem", subsystem).Msg("MPD event")
			m.Poll()
		case <-ticker.C:
			m.Poll()
		}
	}
}

// Poll reads MPD's status once and reports the differences to the listener.
func (m *Monitor) Poll() {
	attrs, err := m.status.Status()
	if err != nil {
		log.Debug().Err(err).Msg("Failed to read MPD status")
		return
	}
	m.apply(parseSample(attrs))
}

func (m *Monitor) apply(cur sample) {
	prev := m.last
	m.last = cur
	if !m.primed {
		m.primed = true
		return
	}

	switch {
	case cur.song >= 0 && cur.song != prev.song:
		m.listener.OnTrackChanged(cur.song)
	case cur.state == "stop" && prev.state == "play" && prev.song >= 0 && prev.song == prev.playlistLen-1:
		// MPD stops after the last song of its queue
		m.listener.AdvanceOnNaturalEnd()
	}

	if cur.state != prev.state && (cur.state == "play" || cur.state == "pause") {
		m.listener.OnEngineStateChanged(cur.state == "play")
	}

	if cur.state == "play" || (cur.state == "pause" && cur.elapsed != prev.elapsed) {
		m.listener.OnProgress(cur.elapsed, cur.duration)
	}
}

func parseSample(attrs mpd.Attrs) sample {
	s := sample{state: attrs["state"], song: -1}
	if v, err := strconv.Atoi(attrs["song"]); err == nil {
		s.song = v
	}
	if v, err := strconv.Atoi(attrs["playlistlength"]); err == nil {
		s.playlistLen = v
	}
	if v, err := strconv.ParseFloat(attrs["elapsed"], 64); err == nil {
		s.elapsed = v
	}
	if v, err := strconv.ParseFloat(attrs["duration"], 64); err == nil {
		s.duration = v
	}
	return s
}

package player

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/edumarques81/stellar-shuffle/internal/domain/catalog"
	"github.com/edumarques81/stellar-shuffle/internal/domain/history"
	"github.com/edumarques81/stellar-shuffle/internal/domain/queue"
)

// Service is the playback orchestrator. It is the only writer of the queue and cursor;
// every operation runs under one lock so commands and engine events apply in arrival order.
type Service struct {
	mu sync.Mutex

	engine  Engine
	store   Store
	catalog *catalog.Catalog
	builder *queue.Builder
	ledger  *history.Ledger
	now     func() time.Time

	status      Status
	queue       []queue.Entry
	cursor      int
	reasonStart history.ReasonStart
	elapsed     float64
	duration    float64
	savedSecond int
	pendingSeek int
	repeat      bool
	focusPaused bool
	selections  []string

	listenersMu sync.RWMutex
	listeners   []func(Change)
}

var _ Controller = (*Service)(nil)

// Option configures a Service.
type Option func(*Service)

// WithBuilder sets the queue builder, e.g. one with a fixed random source.
func WithBuilder(b *queue.Builder) Option {
	return func(s *Service) { s.builder = b }
}

// WithClock sets the time source used for history events and statistics.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates an idle orchestrator.
func NewService(engine Engine, store Store, cat *catalog.Catalog, opts ...Option) *Service {
	s := &Service{
		engine:      engine,
		store:       store,
		catalog:     cat,
		builder:     queue.NewBuilder(),
		ledger:      history.NewLedger(nil),
		now:         time.Now,
		status:      StatusIdle,
		reasonStart: history.ReasonStartNormal,
		savedSecond: -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadLikedIDs reads the persisted liked track IDs. Failures yield an empty list.
func LoadLikedIDs(store Store) []string {
	var ids []string
	load(store, KeyLikedSongs, &ids)
	return ids
}

// LoadCatalogSnapshot reads the last persisted catalog, used when a scan is unavailable.
func LoadCatalogSnapshot(store Store) []catalog.Item {
	var items []catalog.Item
	load(store, KeyMusicList, &items)
	return items
}

// Restore reloads the persisted session: history, repeat flag, recent selections and the queue.
// A restored queue is loaded into the engine paused at the saved position.
func (s *Service) Restore() {
	defer s.notify(ChangeState, ChangeQueue)
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []history.Event
	if load(s.store, KeyHistoryList, &events) {
		s.ledger = history.NewLedger(events)
	}

	load(s.store, KeyIsRepeat, &s.repeat)
	load(s.store, KeyMusicSelection, &s.selections)
	s.save(KeyMusicList, s.catalog.Items())

	if s.repeat {
		if err := s.engine.SetRepeatMode(RepeatTrack); err != nil {
			log.Warn().Err(err).Msg("Failed to restore repeat mode")
		}
	}

	var entries []queue.Entry
	if !load(s.store, KeyTracks, &entries) || len(entries) == 0 {
		log.Info().Int("history", s.ledger.Len()).Msg("No queue to restore")
		return
	}

	cursor := queue.LeadingPlayed(entries)
	if cursor >= len(entries) {
		cursor = len(entries) - 1
	}

	var position int
	load(s.store, KeySavedPosition, &position)

	if err := s.engine.Load(entries, cursor); err != nil {
		log.Warn().Err(err).Msg("Failed to load restored queue into engine")
		return
	}

	s.queue = entries
	s.cursor = cursor
	s.elapsed = float64(position)
	s.pendingSeek = position
	s.status = StatusPaused

	log.Info().
		Int("entries", len(entries)).
		Int("cursor", cursor).
		Int("position", position).
		Int("history", s.ledger.Len()).
		Msg("Restored playback session")
}

// Subscribe registers fn to be called after every state or queue change.
// Callbacks run on the caller's goroutine after the orchestrator lock is released.
func (s *Service) Subscribe(fn func(Change)) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Service) notify(changes ...Change) {
	s.listenersMu.RLock()
	listeners := s.listeners
	s.listenersMu.RUnlock()

	for _, fn := range listeners {
		for _, c := range changes {
			fn(c)
		}
	}
}

// Snapshot returns a copy of the current state.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := make([]queue.Entry, len(s.queue))
	copy(q, s.queue)

	return Snapshot{
		Status:   s.status,
		Cursor:   s.cursor,
		Queue:    q,
		Elapsed:  s.elapsed,
		Duration: s.duration,
		Repeat:   s.repeat,
	}
}

// History returns the listening events in chronological order.
func (s *Service) History() []history.Event {
	s.mu.Lock()
	ledger := s.ledger
	s.mu.Unlock()

	return ledger.Events()
}

// MostPlayed returns the catalog items heard most over the last week.
func (s *Service) MostPlayed() []catalog.Item {
	s.mu.Lock()
	ledger := s.ledger
	s.mu.Unlock()

	return history.MostPlayed(ledger.Events(), s.catalog.Items(), s.now(), history.MostPlayedLimit(s.catalog.Len()))
}

// RecentSelections returns the IDs of recently selected tracks, newest first.
func (s *Service) RecentSelections() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.selections))
	copy(out, s.selections)
	return out
}

// Catalog returns the session catalog.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// ToggleLike flips the liked flag of a track and persists the liked set.
func (s *Service) ToggleLike(id string) (bool, error) {
	defer s.notify(ChangeState, ChangeQueue)
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.catalog.Get(id)
	if !ok {
		return false, ErrUnknownTrack
	}

	liked := !item.IsLiked
	s.catalog.SetLiked(id, liked)
	for i := range s.queue {
		if s.queue[i].ID == id {
			s.queue[i].IsLiked = liked
		}
	}

	log.Info().Str("id", id).Bool("liked", liked).Msg("ToggleLike")

	s.save(KeyLikedSongs, s.catalog.LikedIDs())
	s.save(KeyMusicList, s.catalog.Items())
	s.save(KeyTracks, s.queue)
	return liked, nil
}

// rememberSelection moves id to the front of the recent selections.
func (s *Service) rememberSelection(id string) {
	selections := []string{id}
	for _, existing := range s.selections {
		if existing != id && len(selections) < maxSelections {
			selections = append(selections, existing)
		}
	}
	s.selections = selections
	s.save(KeyMusicSelection, s.selections)
}

// save writes v under key. Failures are logged and otherwise ignored.
func (s *Service) save(key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to marshal snapshot")
		return
	}
	if err := s.store.Set(key, data); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to persist snapshot")
	}
}

// load reads key into v and reports whether a value was decoded.
func load(store Store, key string, v interface{}) bool {
	data, ok, err := store.Get(key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to read snapshot")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to parse snapshot")
		return false
	}
	return true
}

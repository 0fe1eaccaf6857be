package player_test

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/edumarques81/stellar-shuffle/internal/domain/catalog"
	"github.com/edumarques81/stellar-shuffle/internal/domain/player"
	"github.com/edumarques81/stellar-shuffle/internal/domain/queue"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// fakeEngine records the commands it receives.
type fakeEngine struct {
	mu sync.Mutex

	Calls    []string
	Loaded   []queue.Entry
	Appended []queue.Entry
	Repeat   player.RepeatMode
	playing  bool

	// onPause runs after each Pause, outside the engine lock.
	onPause func()

	LoadError  error
	PlayError  error
	RepeatErr  error
	SkipError  error
	SetModeErr error
}

func (f *fakeEngine) record(format string, args ...interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, fmt.Sprintf(format, args...))
}

func (f *fakeEngine) Load(entries []queue.Entry, start int) error {
	f.record("load:%d:%d", len(entries), start)
	f.setPlaying(false)
	if f.LoadError != nil {
		return f.LoadError
	}
	f.Loaded = append([]queue.Entry(nil), entries...)
	return nil
}

func (f *fakeEngine) Append(entries []queue.Entry) error {
	f.record("append:%d", len(entries))
	f.Appended = append(f.Appended, entries...)
	return nil
}

func (f *fakeEngine) Play() error {
	f.record("play")
	if f.PlayError != nil {
		return f.PlayError
	}
	f.setPlaying(true)
	return nil
}

func (f *fakeEngine) Pause() error {
	f.record("pause")
	f.setPlaying(false)
	if f.onPause != nil {
		f.onPause()
	}
	return nil
}

func (f *fakeEngine) Playing() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playing, nil
}

// setPlaying changes the engine state directly, as an outside client would.
func (f *fakeEngine) setPlaying(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = on
}

func (f *fakeEngine) Seek(seconds int) error {
	f.record("seek:%d", seconds)
	return nil
}

func (f *fakeEngine) SkipNext() error {
	f.record("next")
	return f.SkipError
}

func (f *fakeEngine) SkipPrevious() error {
	f.record("previous")
	return f.SkipError
}

func (f *fakeEngine) RepeatMode() (player.RepeatMode, error) {
	return f.Repeat, f.RepeatErr
}

func (f *fakeEngine) SetRepeatMode(mode player.RepeatMode) error {
	f.record("repeat:%s", mode)
	if f.SetModeErr != nil {
		return f.SetModeErr
	}
	f.Repeat = mode
	return nil
}

func (f *fakeEngine) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = nil
}

// memStore is an in-memory Store that can be made to fail.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
	fail bool
}

var errStoreDown = errors.New("store unavailable")

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, false, errStoreDown
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errStoreDown
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

func testItems(titles ...string) []catalog.Item {
	items := make([]catalog.Item, len(titles))
	for i, title := range titles {
		items[i] = catalog.Item{
			ID:       fmt.Sprintf("Music/%s.flac", title),
			Title:    title,
			Artist:   "Artist " + title,
			Duration: 200,
		}
	}
	return items
}

type fixture struct {
	engine *fakeEngine
	store  *memStore
	cat    *catalog.Catalog
	svc    *player.Service
}

func newFixture(t *testing.T, items []catalog.Item) *fixture {
	t.Helper()
	f := &fixture{
		engine: &fakeEngine{},
		store:  newMemStore(),
		cat:    catalog.New(items, nil),
	}
	f.svc = player.NewService(f.engine, f.store, f.cat,
		player.WithBuilder(queue.NewBuilderWithSource(rand.NewPCG(7, 11))),
		player.WithClock(func() time.Time { return testNow }),
	)
	return f
}

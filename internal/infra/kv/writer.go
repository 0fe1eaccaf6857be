package kv

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Backend is the store an AsyncWriter writes through to.
type Backend interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
}

// AsyncWriter moves writes off the caller's goroutine. Pending writes are applied in the
// order their keys were first queued; a newer value for a queued key replaces the older one.
// Reads see pending values before the backend.
type AsyncWriter struct {
	backend Backend

	mu      sync.Mutex
	cond    *sync.Cond
	pending map[string][]byte
	order   []string
	closed  bool

	// the write currently being applied
	busy          bool
	inflightKey   string
	inflightValue []byte

	done chan struct{}
}

// NewAsyncWriter starts a writer for backend.
func NewAsyncWriter(backend Backend) *AsyncWriter {
	w := &AsyncWriter{
		backend: backend,
		pending: make(map[string][]byte),
		done:    make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)
	go w.run()
	return w
}

// Get returns the pending value for key, or the backend value.
func (w *AsyncWriter) Get(key string) ([]byte, bool, error) {
	w.mu.Lock()
	v, ok := w.pending[key]
	if !ok && w.busy && w.inflightKey == key {
		v, ok = w.inflightValue, true
	}
	w.mu.Unlock()

	if ok {
		return append([]byte(nil), v...), true, nil
	}

	return w.backend.Get(key)
}

// Set queues value for key. It never blocks on the backend.
func (w *AsyncWriter) Set(key string, value []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if _, queued := w.pending[key]; !queued {
		w.order = append(w.order, key)
	}
	w.pending[key] = append([]byte(nil), value...)
	w.cond.Broadcast()
	return nil
}

// Flush blocks until every queued write has been attempted.
func (w *AsyncWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for len(w.order) > 0 || w.busy {
		w.cond.Wait()
	}
}

// Close drains the queue and stops the writer.
func (w *AsyncWriter) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	w.cond.Broadcast()
	w.mu.Unlock()

	<-w.done
}

func (w *AsyncWriter) run() {
	defer close(w.done)

	for {
		w.mu.Lock()
		for len(w.order) == 0 && !w.closed {
			w.cond.Wait()
		}
		if len(w.order) == 0 {
			w.mu.Unlock()
			return
		}

		key := w.order[0]
		value := w.pending[key]
		w.order = w.order[1:]
		delete(w.pending, key)
		w.busy = true
		w.inflightKey = key
		w.inflightValue = value
		w.mu.Unlock()

		if err := w.backend.Set(key, value); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to persist value")
		}

		w.mu.Lock()
		w.busy = false
		w.inflightValue = nil
		w.cond.Broadcast()
		w.mu.Unlock()
	}
}

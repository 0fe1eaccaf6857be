package socketio

import (
	"sync"
	"time"

	"github.com/edumarques81/stellar-shuffle/internal/domain/player"
)

// pushOrder is the order pending pushes go out once the window closes.
var pushOrder = []player.Change{player.ChangeState, player.ChangeQueue}

// BroadcastDebouncer turns the orchestrator's change notifications into client pushes.
// A skip or a queue extension reports several changes in a row; within one quiet window
// they reach clients as at most one pushState and one pushQueue.
type BroadcastDebouncer struct {
	window time.Duration
	push   map[player.Change]func()

	mu      sync.Mutex
	pending map[player.Change]bool
	timer   *time.Timer
	stopped bool
}

// NewBroadcastDebouncer creates a debouncer. pushState handles player.ChangeState and
// pushQueue handles player.ChangeQueue; either may be nil.
func NewBroadcastDebouncer(window time.Duration, pushState, pushQueue func()) *BroadcastDebouncer {
	d := &BroadcastDebouncer{
		window:  window,
		push:    make(map[player.Change]func()),
		pending: make(map[player.Change]bool),
	}
	if pushState != nil {
		d.push[player.ChangeState] = pushState
	}
	if pushQueue != nil {
		d.push[player.ChangeQueue] = pushQueue
	}
	return d
}

// Trigger marks change as pending and restarts the quiet window.
// Kinds without a push are ignored.
func (d *BroadcastDebouncer) Trigger(change player.Change) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if _, ok := d.push[change]; !ok {
		return
	}

	d.pending[change] = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

func (d *BroadcastDebouncer) fire() {
	d.mu.Lock()
	var due []func()
	for _, change := range pushOrder {
		if d.pending[change] {
			due = append(due, d.push[change])
		}
	}
	clear(d.pending)
	d.mu.Unlock()

	for _, push := range due {
		push()
	}
}

// Stop drops anything pending. Later triggers are ignored.
func (d *BroadcastDebouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	clear(d.pending)
}

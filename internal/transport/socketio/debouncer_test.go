package socketio

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/edumarques81/stellar-shuffle/internal/domain/player"
)

func newCountingDebouncer(state, queue *int32) *BroadcastDebouncer {
	return NewBroadcastDebouncer(50*time.Millisecond,
		func() { atomic.AddInt32(state, 1) },
		func() { atomic.AddInt32(queue, 1) },
	)
}

func TestDebouncerCollapsesBursts(t *testing.T) {
	tests := []struct {
		name      string
		changes   []player.Change
		spacing   time.Duration
		wantState int32
		wantQueue int32
	}{
		{"rapid state changes", repeat(player.ChangeState, 10), 0, 1, 0},
		{"progress-style trickle", repeat(player.ChangeState, 20), 5 * time.Millisecond, 1, 0},
		{"queue only", []player.Change{player.ChangeQueue}, 0, 0, 1},
		{"skip burst", []player.Change{player.ChangeState, player.ChangeQueue, player.ChangeState, player.ChangeQueue}, 0, 1, 1},
		{"unknown kind ignored", []player.Change{"volume"}, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stateCalls, queueCalls int32
			d := newCountingDebouncer(&stateCalls, &queueCalls)
			defer d.Stop()

			for _, c := range tt.changes {
				d.Trigger(c)
				if tt.spacing > 0 {
					time.Sleep(tt.spacing)
				}
			}

			time.Sleep(100 * time.Millisecond)

			if got := atomic.LoadInt32(&stateCalls); got != tt.wantState {
				t.Errorf("expected %d state callbacks, got %d", tt.wantState, got)
			}
			if got := atomic.LoadInt32(&queueCalls); got != tt.wantQueue {
				t.Errorf("expected %d queue callbacks, got %d", tt.wantQueue, got)
			}
		})
	}
}

func TestDebouncerSeparateWindowsFireIndependently(t *testing.T) {
	var stateCalls, queueCalls int32
	d := newCountingDebouncer(&stateCalls, &queueCalls)
	defer d.Stop()

	d.Trigger(player.ChangeState)
	time.Sleep(100 * time.Millisecond)

	d.Trigger(player.ChangeState)
	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(&stateCalls); got != 2 {
		t.Errorf("expected 2 state callbacks for separate windows, got %d", got)
	}
}

func TestDebouncerStopPreventsCallbacks(t *testing.T) {
	var stateCalls, queueCalls int32
	d := newCountingDebouncer(&stateCalls, &queueCalls)

	d.Trigger(player.ChangeState)
	d.Stop()
	d.Trigger(player.ChangeQueue)

	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(&stateCalls) + atomic.LoadInt32(&queueCalls); got != 0 {
		t.Errorf("expected no callbacks after stop, got %d", got)
	}
}

func repeat(c player.Change, n int) []player.Change {
	out := make([]player.Change, n)
	for i := range out {
		out[i] = c
	}
	return out
}

func TestDebouncerWithoutQueuePush(t *testing.T) {
	var stateCalls int32
	d := NewBroadcastDebouncer(10*time.Millisecond, func() { atomic.AddInt32(&stateCalls, 1) }, nil)
	defer d.Stop()

	d.Trigger(player.ChangeQueue)
	d.Trigger(player.ChangeState)
	time.Sleep(50 * time.Millisecond)

	if got := atomic.LoadInt32(&stateCalls); got != 1 {
		t.Errorf("expected 1 state callback, got %d", got)
	}
}

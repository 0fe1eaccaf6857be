package history

import (
	"encoding/json"
	"sync"
)

// Ledger is the append-only log of listening events.
// The only removal is popping the most recent event. It is safe for concurrent access.
type Ledger struct {
	mu     sync.RWMutex
	events []Event
}

// NewLedger creates a ledger holding events in chronological order.
func NewLedger(events []Event) *Ledger {
	l := &Ledger{events: make([]Event, len(events))}
	copy(l.events, events)
	return l
}

// Append adds an event to the end of the ledger.
func (l *Ledger) Append(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

// Last returns the most recent event.
func (l *Ledger) Last() (Event, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.events) == 0 {
		return Event{}, false
	}
	return l.events[len(l.events)-1], true
}

// PopLastIfSkipped removes the most recent event when it ended with ReasonEndSkipped.
// It reports whether an event was removed.
func (l *Ledger) PopLastIfSkipped() (Event, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.events)
	if n == 0 || l.events[n-1].ReasonEnd != ReasonEndSkipped {
		return Event{}, false
	}
	last := l.events[n-1]
	l.events = l.events[:n-1]
	return last, true
}

// Events returns a copy of all events in chronological order.
func (l *Ledger) Events() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of events.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// MarshalJSON encodes the ledger as a JSON array of events.
func (l *Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Events())
}

// UnmarshalJSON replaces the ledger contents with a JSON array of events.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = events
	return nil
}

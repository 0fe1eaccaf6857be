package history_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumarques81/stellar-shuffle/internal/domain/catalog"
	"github.com/edumarques81/stellar-shuffle/internal/domain/history"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func event(trackID string, ratio float64, age time.Duration, end history.ReasonEnd) history.Event {
	return history.Event{
		ID:          fmt.Sprintf("%s-%s", trackID, age),
		TrackID:     trackID,
		EndTime:     now.Add(-age),
		ReasonStart: history.ReasonStartNormal,
		ReasonEnd:   end,
		PlayedRatio: ratio,
	}
}

func TestPlayedRatio(t *testing.T) {
	tests := []struct {
		name      string
		secPlayed float64
		duration  float64
		expected  float64
	}{
		{"half way", 100, 200, 0.5},
		{"near end clamps to one", 195, 200, 1},
		{"just outside tolerance", 193, 200, 0.965},
		{"past the end", 260, 200, 1},
		{"nothing heard", 0, 200, 0},
		{"unknown duration", 30, 0, 0},
		{"short track within tolerance", 1, 5, 1},
		{"negative elapsed", -4, 200, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, history.PlayedRatio(tt.secPlayed, tt.duration), 1e-9)
		})
	}
}

func TestNewEvent(t *testing.T) {
	item := catalog.Item{ID: "x.flac", Title: "X", Artist: "Artist"}

	e := history.NewEvent(item, history.ReasonStartSelected, history.ReasonEndSkipped, 60, 240, now)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "x.flac", e.TrackID)
	assert.Equal(t, "X", e.Title)
	assert.Equal(t, history.ReasonStartSelected, e.ReasonStart)
	assert.Equal(t, history.ReasonEndSkipped, e.ReasonEnd)
	assert.InDelta(t, 0.25, e.PlayedRatio, 1e-9)
	assert.Equal(t, now, e.EndTime)
}

func TestLedgerPopLastIfSkipped(t *testing.T) {
	l := history.NewLedger(nil)

	_, popped := l.PopLastIfSkipped()
	assert.False(t, popped, "empty ledger has nothing to pop")

	l.Append(event("a", 1, time.Hour, history.ReasonEndNormal))
	_, popped = l.PopLastIfSkipped()
	assert.False(t, popped, "normal end must not be popped")
	assert.Equal(t, 1, l.Len())

	l.Append(event("b", 0.1, time.Minute, history.ReasonEndSkipped))
	e, popped := l.PopLastIfSkipped()
	require.True(t, popped)
	assert.Equal(t, "b", e.TrackID)
	assert.Equal(t, 1, l.Len())

	last, ok := l.Last()
	require.True(t, ok)
	assert.Equal(t, "a", last.TrackID)
}

func TestLedgerJSONRoundTrip(t *testing.T) {
	l := history.NewLedger([]history.Event{
		event("a", 0.4, 3*time.Hour, history.ReasonEndSkipped),
		event("b", 1, 2*time.Hour, history.ReasonEndNormal),
		event("a", 0.9, time.Hour, history.ReasonEndNormal),
	})

	data, err := json.Marshal(l)
	require.NoError(t, err)

	decoded := history.NewLedger(nil)
	require.NoError(t, json.Unmarshal(data, decoded))
	assert.Equal(t, l.Events(), decoded.Events())
}

func TestLedgerEventsReturnsCopy(t *testing.T) {
	l := history.NewLedger([]history.Event{event("a", 1, time.Hour, history.ReasonEndNormal)})

	events := l.Events()
	events[0].TrackID = "mutated"

	last, _ := l.Last()
	assert.Equal(t, "a", last.TrackID)
}

func TestMostPlayedLimit(t *testing.T) {
	tests := []struct {
		size     int
		expected int
	}{
		{0, 12},
		{50, 12},
		{129, 12},
		{150, 15},
		{200, 20},
		{5000, 20},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("size %d", tt.size), func(t *testing.T) {
			assert.Equal(t, tt.expected, history.MostPlayedLimit(tt.size))
		})
	}
}

func TestMostPlayedRanksBySummedRatio(t *testing.T) {
	items := []catalog.Item{{ID: "x", Title: "X"}, {ID: "y", Title: "Y"}}
	events := []history.Event{
		event("x", 0.6, 5*time.Hour, history.ReasonEndSkipped),
		event("y", 1.0, 4*time.Hour, history.ReasonEndNormal),
		event("x", 0.9, 3*time.Hour, history.ReasonEndNormal),
	}

	ranked := history.MostPlayed(events, items, now, 12)

	require.Len(t, ranked, 2)
	assert.Equal(t, "x", ranked[0].ID)
	assert.Equal(t, "y", ranked[1].ID)
}

func TestMostPlayedExcludesOldEvents(t *testing.T) {
	items := []catalog.Item{{ID: "old"}, {ID: "new"}}
	events := []history.Event{
		event("old", 1, 8*24*time.Hour, history.ReasonEndNormal),
		event("old", 1, 7*24*time.Hour, history.ReasonEndNormal),
		event("new", 0.2, time.Hour, history.ReasonEndSkipped),
	}

	ranked := history.MostPlayed(events, items, now, 12)

	require.Len(t, ranked, 1)
	assert.Equal(t, "new", ranked[0].ID)
}

func TestMostPlayedTiesFavourRecency(t *testing.T) {
	items := []catalog.Item{{ID: "earlier"}, {ID: "later"}}
	events := []history.Event{
		event("earlier", 1, 2*time.Hour, history.ReasonEndNormal),
		event("later", 1, time.Hour, history.ReasonEndNormal),
	}

	ranked := history.MostPlayed(events, items, now, 12)

	require.Len(t, ranked, 2)
	assert.Equal(t, "later", ranked[0].ID)
}

func TestMostPlayedSkipsVanishedAndHonoursLimit(t *testing.T) {
	var items []catalog.Item
	var events []history.Event
	for i := 0; i < 30; i++ {
		id := fmt.Sprintf("t%02d", i)
		if i != 0 {
			items = append(items, catalog.Item{ID: id})
		}
		events = append(events, event(id, float64(30-i)/30, time.Duration(i+1)*time.Minute, history.ReasonEndNormal))
	}

	ranked := history.MostPlayed(events, items, now, 12)

	require.Len(t, ranked, 12)
	assert.Equal(t, "t01", ranked[0].ID, "t00 was removed from the catalog")
	for i := 1; i < len(ranked); i++ {
		assert.Less(t, ranked[i-1].ID, ranked[i].ID)
	}
}

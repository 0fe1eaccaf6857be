package mpd_test

import (
	"testing"

	"github.com/edumarques81/stellar-shuffle/internal/infra/mpd"
)

// unusedPort has no MPD listening on it.
const unusedPort = 16600

func TestNewClient(t *testing.T) {
	client := mpd.NewClient("localhost", 6600, "")

	if client == nil {
		t.Error("NewClient should return a non-nil client")
	}
}

func TestClientConnectFailure(t *testing.T) {
	client := mpd.NewClient("localhost", unusedPort, "")

	err := client.Connect()
	if err == nil {
		t.Error("Connect should fail for non-existent server")
		client.Close()
	}
}

func TestClientPingWithoutConnect(t *testing.T) {
	client := mpd.NewClient("localhost", unusedPort, "")

	if err := client.Ping(); err == nil {
		t.Error("Ping should fail when not connected")
	}
}

func TestClientCommandsWithoutServer(t *testing.T) {
	client := mpd.NewClient("localhost", unusedPort, "")
	defer client.Close()

	tests := []struct {
		name string
		call func() error
	}{
		{"Status", func() error { _, err := client.Status(); return err }},
		{"Play", func() error { return client.Play(0) }},
		{"Pause", func() error { return client.Pause(true) }},
		{"Next", func() error { return client.Next() }},
		{"Previous", func() error { return client.Previous() }},
		{"Seek", func() error { return client.Seek(10) }},
		{"SetRepeat", func() error { return client.SetRepeat(true) }},
		{"SetSingle", func() error { return client.SetSingle(true) }},
		{"Clear", func() error { return client.Clear() }},
		{"Add", func() error { return client.Add("test.flac") }},
		{"ListAllInfo", func() error { _, err := client.ListAllInfo(""); return err }},
		{"Artwork", func() error { _, err := client.Artwork("test.flac"); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); err == nil {
				t.Errorf("%s should fail when MPD is unreachable", tt.name)
			}
		})
	}
}

func TestClientAddNothing(t *testing.T) {
	client := mpd.NewClient("localhost", unusedPort, "")

	if err := client.Add(); err != nil {
		t.Errorf("Add with no uris should be a no-op, got %v", err)
	}
}

func TestClientWatchWithoutServer(t *testing.T) {
	client := mpd.NewClient("localhost", unusedPort, "")

	if _, err := client.Watch("player"); err == nil {
		t.Error("Watch should fail when MPD is unreachable")
	}
}

func TestClientCloseWithoutConnect(t *testing.T) {
	client := mpd.NewClient("localhost", unusedPort, "")

	if err := client.Close(); err != nil {
		t.Errorf("Close should succeed when not connected, got %v", err)
	}
}

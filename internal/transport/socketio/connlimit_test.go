package socketio

import (
	"fmt"
	"testing"
)

func TestConnectionLimiterLoopbackAlwaysAllowed(t *testing.T) {
	cl := NewConnectionLimiter(1)

	addresses := []string{"127.0.0.1", "::1", "::ffff:127.0.0.1", "127.0.0.1:51234", "[::1]:8080"}
	for i, addr := range addresses {
		allowed, evicted := cl.TryAdd(fmt.Sprintf("local-%d", i), addr)
		if !allowed {
			t.Errorf("loopback connection %q should be allowed", addr)
		}
		if evicted != "" {
			t.Errorf("loopback connection %q should not evict anyone, got %s", addr, evicted)
		}
	}

	if got := cl.ExternalCount(); got != 0 {
		t.Errorf("expected 0 external clients, got %d", got)
	}
}

func TestConnectionLimiterEvictsOldestExternal(t *testing.T) {
	cl := NewConnectionLimiter(2)

	cl.TryAdd("phone", "192.168.1.100")
	cl.TryAdd("tablet", "192.168.1.101")
	cl.TryAdd("kiosk", "127.0.0.1")

	allowed, evicted := cl.TryAdd("laptop", "::ffff:192.168.1.102")
	if !allowed {
		t.Error("new external connection should be allowed")
	}
	if evicted != "phone" {
		t.Errorf("expected eviction of phone, got %q", evicted)
	}
	if got := cl.ExternalCount(); got != 2 {
		t.Errorf("expected 2 external clients, got %d", got)
	}
}

func TestConnectionLimiterDuplicateAddIsNoop(t *testing.T) {
	cl := NewConnectionLimiter(1)

	cl.TryAdd("phone", "192.168.1.100")
	if _, evicted := cl.TryAdd("phone", "192.168.1.100"); evicted != "" {
		t.Errorf("re-adding a tracked client should not evict, got %q", evicted)
	}
	if got := cl.ExternalCount(); got != 1 {
		t.Errorf("expected 1 external client, got %d", got)
	}
}

func TestConnectionLimiterRemoveFreesSlot(t *testing.T) {
	cl := NewConnectionLimiter(1)

	cl.TryAdd("phone", "192.168.1.100")
	cl.Remove("phone")
	cl.Remove("phone")
	cl.Remove("never-seen")

	if _, evicted := cl.TryAdd("tablet", "192.168.1.101"); evicted != "" {
		t.Errorf("slot should be free after Remove, but %q was evicted", evicted)
	}
}

func TestIsLoopback(t *testing.T) {
	tests := []struct {
		address string
		want    bool
	}{
		{"127.0.0.1", true},
		{"127.0.1.1", true},
		{"::1", true},
		{"::ffff:127.0.0.1", true},
		{"10.0.0.2:443", false},
		{"192.168.1.100", false},
		{"", false},
		{"not-an-ip", false},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			if got := isLoopback(tt.address); got != tt.want {
				t.Errorf("isLoopback(%q) = %v, want %v", tt.address, got, tt.want)
			}
		})
	}
}

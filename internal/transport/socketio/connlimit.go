package socketio

import (
	"net"
	"strings"
	"sync"
)

// ConnectionLimiter bounds the number of concurrent remote controllers. Loopback clients
// (a kiosk display on the player itself) are never counted. When a new remote client
// exceeds the limit, the oldest remote client is evicted.
type ConnectionLimiter struct {
	mu          sync.Mutex
	maxExternal int
	// external client IDs, oldest first
	external []string
	// clientID -> loopback flag
	connections map[string]bool
}

// NewConnectionLimiter creates a limiter for up to maxExternal remote clients.
func NewConnectionLimiter(maxExternal int) *ConnectionLimiter {
	return &ConnectionLimiter{
		maxExternal: maxExternal,
		connections: make(map[string]bool),
	}
}

// TryAdd registers a connection from address. Every connection is admitted; the returned
// evictedID names a remote client that must be disconnected to stay within the limit.
func (cl *ConnectionLimiter) TryAdd(clientID, address string) (allowed bool, evictedID string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.connections[clientID]; exists {
		return true, ""
	}

	local := isLoopback(address)
	cl.connections[clientID] = local
	if local {
		return true, ""
	}

	cl.external = append(cl.external, clientID)
	if len(cl.external) <= cl.maxExternal {
		return true, ""
	}

	evictedID = cl.external[0]
	cl.external = cl.external[1:]
	delete(cl.connections, evictedID)
	return true, evictedID
}

// Remove unregisters a connection when a client disconnects.
func (cl *ConnectionLimiter) Remove(clientID string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	local, exists := cl.connections[clientID]
	if !exists {
		return
	}
	delete(cl.connections, clientID)
	if local {
		return
	}

	for i, id := range cl.external {
		if id == clientID {
			cl.external = append(cl.external[:i], cl.external[i+1:]...)
			break
		}
	}
}

// ExternalCount returns the number of tracked remote clients.
func (cl *ConnectionLimiter) ExternalCount() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.external)
}

// isLoopback reports whether address (an IP, optionally with port or IPv4-mapped) is local.
func isLoopback(address string) bool {
	host := address
	if h, _, err := net.SplitHostPort(address); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "::ffff:")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

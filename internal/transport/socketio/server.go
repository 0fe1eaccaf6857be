// Package socketio provides the Socket.io server for client communication.
package socketio

import (
	"encoding/json"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/zishang520/socket.io/servers/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"

	"github.com/edumarques81/stellar-shuffle/internal/domain/catalog"
	"github.com/edumarques81/stellar-shuffle/internal/domain/player"
)

// DefaultBroadcastWindow collapses bursts of player changes into one push per kind.
const DefaultBroadcastWindow = 50 * time.Millisecond

// Options configures the server.
type Options struct {
	// MaxExternalClients bounds concurrent non-localhost clients; 0 means unlimited.
	MaxExternalClients int
	BroadcastWindow    time.Duration
}

// Server handles Socket.io connections and events.
type Server struct {
	io        *socket.Server
	player    player.Controller
	debouncer *BroadcastDebouncer
	limiter   *ConnectionLimiter

	mu      sync.RWMutex
	clients map[string]*socket.Socket
}

// NewServer creates a new Socket.io server.
func NewServer(p player.Controller, opts Options) (*Server, error) {
	sioOpts := socket.DefaultServerOptions()
	sioOpts.SetPingTimeout(20 * time.Second)
	sioOpts.SetPingInterval(25 * time.Second)
	sioOpts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	s := &Server{
		io:      socket.NewServer(nil, sioOpts),
		player:  p,
		clients: make(map[string]*socket.Socket),
	}

	if opts.MaxExternalClients > 0 {
		s.limiter = NewConnectionLimiter(opts.MaxExternalClients)
	}

	window := opts.BroadcastWindow
	if window <= 0 {
		window = DefaultBroadcastWindow
	}
	s.debouncer = NewBroadcastDebouncer(window, s.BroadcastState, s.BroadcastQueue)

	s.setupHandlers()

	return s, nil
}

// Notify schedules a broadcast for a player change. It is meant to be passed to
// player.Service.Subscribe.
func (s *Server) Notify(change player.Change) {
	s.debouncer.Trigger(change)
}

// setupHandlers registers all Socket.io event handlers.
func (s *Server) setupHandlers() {
	s.io.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		clientID := string(client.Id())
		address := client.Handshake().Address

		log.Info().Str("id", clientID).Str("address", address).Msg("Client connected")

		s.admit(clientID, address, client)

		// Send initial state after small delay
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.pushState(client)
			s.pushQueue(client)
		}()

		client.On("disconnect", func(args ...any) {
			reason := ""
			if len(args) > 0 {
				if r, ok := args[0].(string); ok {
					reason = r
				}
			}
			log.Info().Str("id", clientID).Str("reason", reason).Msg("Client disconnected")

			s.mu.Lock()
			delete(s.clients, clientID)
			s.mu.Unlock()
			if s.limiter != nil {
				s.limiter.Remove(clientID)
			}
		})

		// Player control events
		client.On("getState", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("getState")
			s.pushState(client)
		})

		client.On("play", func(args ...any) {
			log.Debug().Str("id", clientID).Interface("data", args).Msg("play")

			if uri, ok := stringArg(args, "uri"); ok {
				s.playTrack(uri)
				return
			}
			if err := s.player.Play(); err != nil {
				log.Error().Err(err).Msg("Play failed")
			}
		})

		client.On("pause", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("pause")
			if err := s.player.Pause(); err != nil {
				log.Error().Err(err).Msg("Pause failed")
			}
		})

		client.On("next", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("next")
			if err := s.player.SkipToNext(); err != nil {
				log.Error().Err(err).Msg("Next failed")
			}
		})

		client.On("prev", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("prev")
			position := s.player.Snapshot().Elapsed
			if err := s.player.SkipToPrevious(position); err != nil {
				log.Error().Err(err).Msg("Previous failed")
			}
		})

		client.On("seek", func(args ...any) {
			log.Debug().Str("id", clientID).Interface("data", args).Msg("seek")
			s.seek(args)
		})

		client.On("setRepeat", func(args ...any) {
			log.Debug().Str("id", clientID).Interface("data", args).Msg("setRepeat")
			repeat, ok := boolArg(args, "value")
			if !ok {
				return
			}
			if err := s.player.SetRepeat(repeat); err != nil {
				log.Error().Err(err).Msg("SetRepeat failed")
			}
		})

		// Queue events
		client.On("getQueue", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("getQueue")
			s.pushQueue(client)
		})

		client.On("shuffleAll", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("shuffleAll")
			if err := s.player.BuildNewQueue(nil); err != nil {
				log.Error().Err(err).Msg("Shuffle failed")
			}
		})

		client.On("playTrack", func(args ...any) {
			log.Debug().Str("id", clientID).Interface("data", args).Msg("playTrack")
			if uri, ok := stringArg(args, "uri"); ok {
				s.playTrack(uri)
			}
		})

		// Library events
		client.On("toggleLike", func(args ...any) {
			log.Debug().Str("id", clientID).Interface("data", args).Msg("toggleLike")
			uri, ok := stringArg(args, "uri")
			if !ok {
				return
			}
			liked, err := s.player.ToggleLike(uri)
			if err != nil {
				log.Warn().Err(err).Str("uri", uri).Msg("ToggleLike failed")
				client.Emit("pushToastMessage", map[string]interface{}{
					"type":    "error",
					"title":   "Like",
					"message": err.Error(),
				})
				return
			}
			client.Emit("pushLike", map[string]interface{}{"uri": uri, "liked": liked})
		})

		client.On("getLibrary", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("getLibrary")
			client.Emit("pushLibrary", s.player.Catalog().Items())
		})

		client.On("getMostPlayed", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("getMostPlayed")
			client.Emit("pushMostPlayed", s.player.MostPlayed())
		})

		client.On("getHistory", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("getHistory")
			client.Emit("pushHistory", s.player.History())
		})

		client.On("getRecentSelections", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("getRecentSelections")
			client.Emit("pushRecentSelections", s.recentSelections())
		})

		client.On("getSystemInfo", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("getSystemInfo")
			client.Emit("pushSystemInfo", GetSystemInfo())
		})
	})
}

// admit registers a client, evicting the oldest external client when over the limit.
func (s *Server) admit(clientID, address string, client *socket.Socket) {
	s.mu.Lock()
	s.clients[clientID] = client
	s.mu.Unlock()

	if s.limiter == nil {
		return
	}

	_, evictedID := s.limiter.TryAdd(clientID, address)
	if evictedID == "" {
		return
	}

	s.mu.Lock()
	evicted := s.clients[evictedID]
	delete(s.clients, evictedID)
	s.mu.Unlock()

	if evicted != nil {
		log.Info().Str("id", evictedID).Msg("Evicting oldest external client")
		evicted.Disconnect(true)
	}
}

// playTrack starts a new queue beginning with the catalog item uri.
func (s *Server) playTrack(uri string) {
	item, ok := s.player.Catalog().Get(uri)
	if !ok {
		log.Warn().Str("uri", uri).Msg("playTrack: unknown track")
		return
	}
	if err := s.player.BuildNewQueue(&item.Item); err != nil {
		log.Error().Err(err).Str("uri", uri).Msg("playTrack failed")
	}
}

// recentSelections resolves the recent selection ids to catalog items.
func (s *Server) recentSelections() []catalog.Item {
	cat := s.player.Catalog()
	return lo.FilterMap(s.player.RecentSelections(), func(id string, _ int) (catalog.Item, bool) {
		item, ok := cat.Get(id)
		return item.Item, ok
	})
}

// pushState sends current state to a client.
func (s *Server) pushState(client *socket.Socket) {
	client.Emit("pushState", s.player.Snapshot().ToJSON())
}

// pushQueue sends current queue to a client.
func (s *Server) pushQueue(client *socket.Socket) {
	client.Emit("pushQueue", s.player.Snapshot().QueueJSON())
}

// BroadcastState sends state to all connected clients.
func (s *Server) BroadcastState() {
	state := s.player.Snapshot().ToJSON()
	s.io.Emit("pushState", state)

	if log.Debug().Enabled() {
		data, _ := json.Marshal(state)
		log.Debug().RawJSON("state", data).Int("clients", s.ClientCount()).Msg("Broadcast state")
	}
}

// BroadcastQueue sends queue to all connected clients.
func (s *Server) BroadcastQueue() {
	s.io.Emit("pushQueue", s.player.Snapshot().QueueJSON())
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// seek forwards a seek request. Positions that are not a non-negative number of seconds are dropped.
func (s *Server) seek(args []any) {
	pos, ok := numberArg(args)
	if !ok || pos < 0 || math.IsNaN(pos) || math.IsInf(pos, 0) {
		log.Warn().Interface("data", args).Msg("Invalid seek position")
		return
	}
	if err := s.player.SeekTo(int(pos)); err != nil {
		log.Error().Err(err).Msg("Seek failed")
	}
}

// ServeHTTP implements http.Handler for the Socket.io server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.io.ServeHandler(nil).ServeHTTP(w, r)
}

// Close stops pending broadcasts and closes the Socket.io server.
func (s *Server) Close() error {
	s.debouncer.Stop()
	s.io.Close(nil)
	return nil
}

// stringArg reads a string field from the first event argument, which is either the
// string itself or an object holding it under key.
func stringArg(args []any, key string) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	switch v := args[0].(type) {
	case string:
		return v, v != ""
	case map[string]interface{}:
		s, ok := v[key].(string)
		return s, ok && s != ""
	}
	return "", false
}

// boolArg reads a bool field from the first event argument.
func boolArg(args []any, key string) (bool, bool) {
	if len(args) == 0 {
		return false, false
	}
	switch v := args[0].(type) {
	case bool:
		return v, true
	case map[string]interface{}:
		b, ok := v[key].(bool)
		return b, ok
	}
	return false, false
}

// numberArg reads a number sent directly or as {"value": n}.
func numberArg(args []any) (float64, bool) {
	if len(args) == 0 {
		return 0, false
	}
	switch v := args[0].(type) {
	case float64:
		return v, true
	case map[string]interface{}:
		n, ok := v["value"].(float64)
		return n, ok
	}
	return 0, false
}

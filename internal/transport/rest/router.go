// Package rest exposes the player over a small JSON HTTP API.
package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/edumarques81/stellar-shuffle/internal/domain/player"
	"github.com/edumarques81/stellar-shuffle/internal/version"
)

// ArtworkSource returns the image bytes for a track file.
type ArtworkSource interface {
	Artwork(uri string) ([]byte, error)
}

// Server serves the HTTP API.
type Server struct {
	player  player.Controller
	artwork ArtworkSource
}

// NewServer creates the API server. artwork may be nil.
func NewServer(p player.Controller, artwork ArtworkSource) *Server {
	return &Server{player: p, artwork: artwork}
}

// Router returns the API routes.
func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)
	r.Get("/albumart", s.handleArtwork)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/queue", s.handleQueue)
		r.Get("/catalog", s.handleCatalog)
		r.Get("/most-played", s.handleMostPlayed)
		r.Get("/history", s.handleHistory)
		r.Get("/selections", s.handleSelections)

		r.Post("/play", s.command("play", s.player.Play))
		r.Post("/pause", s.command("pause", s.player.Pause))
		r.Post("/next", s.command("next", s.player.SkipToNext))
		r.Post("/prev", s.command("prev", func() error {
			return s.player.SkipToPrevious(s.player.Snapshot().Elapsed)
		}))
		r.Post("/shuffle", s.command("shuffle", func() error {
			return s.player.BuildNewQueue(nil)
		}))

		r.Post("/seek", s.handleSeek)
		r.Put("/repeat", s.handleRepeat)
		r.Post("/tracks/play", s.handlePlayTrack)
		r.Post("/tracks/like", s.handleLike)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "stellar-shuffle",
		"version": version.GetInfo().Version,
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.player.Snapshot().ToJSON())
}

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.player.Snapshot().QueueJSON())
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.player.Catalog().Items())
}

func (s *Server) handleMostPlayed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.player.MostPlayed())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.player.History())
}

func (s *Server) handleSelections(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.player.RecentSelections())
}

// command wraps a transport command as a handler answering with the new state.
func (s *Server) command(name string, fn func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(); err != nil {
			log.Error().Err(err).Str("command", name).Msg("Command failed")
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, s.player.Snapshot().ToJSON())
	}
}

type seekRequest struct {
	Position *int `json:"position"`
}

func (s *Server) handleSeek(w http.ResponseWriter, r *http.Request) {
	var req seekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Position == nil || *req.Position < 0 {
		writeError(w, http.StatusBadRequest, "position must be a non-negative number of seconds")
		return
	}
	s.command("seek", func() error { return s.player.SeekTo(*req.Position) })(w, r)
}

type repeatRequest struct {
	On *bool `json:"on"`
}

func (s *Server) handleRepeat(w http.ResponseWriter, r *http.Request) {
	var req repeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.On == nil {
		writeError(w, http.StatusBadRequest, "on is required")
		return
	}
	s.command("repeat", func() error { return s.player.SetRepeat(*req.On) })(w, r)
}

type trackRequest struct {
	URI string `json:"uri"`
}

func decodeTrack(r *http.Request) (string, error) {
	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", err
	}
	if req.URI == "" {
		return "", errors.New("uri is required")
	}
	return req.URI, nil
}

func (s *Server) handlePlayTrack(w http.ResponseWriter, r *http.Request) {
	uri, err := decodeTrack(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	item, ok := s.player.Catalog().Get(uri)
	if !ok {
		writeError(w, http.StatusNotFound, player.ErrUnknownTrack.Error())
		return
	}
	s.command("playTrack", func() error { return s.player.BuildNewQueue(&item.Item) })(w, r)
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	uri, err := decodeTrack(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	liked, err := s.player.ToggleLike(uri)
	if errors.Is(err, player.ErrUnknownTrack) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"uri": uri, "liked": liked})
}

func (s *Server) handleArtwork(w http.ResponseWriter, r *http.Request) {
	uri := r.URL.Query().Get("path")
	if uri == "" || s.artwork == nil {
		http.NotFound(w, r)
		return
	}

	data, err := s.artwork.Artwork(uri)
	if err != nil || len(data) == 0 {
		log.Debug().Err(err).Str("path", uri).Msg("No artwork")
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requestLogger logs each request through zerolog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("took", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

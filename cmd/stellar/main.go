// Package main is the entry point for the Stellar shuffle player.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/edumarques81/stellar-shuffle/internal/config"
	"github.com/edumarques81/stellar-shuffle/internal/domain/catalog"
	"github.com/edumarques81/stellar-shuffle/internal/domain/player"
	"github.com/edumarques81/stellar-shuffle/internal/infra/kv"
	"github.com/edumarques81/stellar-shuffle/internal/infra/mpd"
	"github.com/edumarques81/stellar-shuffle/internal/transport/rest"
	"github.com/edumarques81/stellar-shuffle/internal/transport/socketio"
	"github.com/edumarques81/stellar-shuffle/internal/version"
)

func main() {
	cfg, err := config.Load(os.Args[1:], ".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	log.Info().Msgf("%s", version.GetInfo().String())
	log.Info().
		Str("port", cfg.Port).
		Str("mpd_host", cfg.MPDHost).
		Int("mpd_port", cfg.MPDPort).
		Bool("password_set", cfg.MPDPassword != "").
		Str("music_root", cfg.MusicRoot).
		Str("store", cfg.Store).
		Msg("Configuration")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, closeBackend, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store).Msg("Failed to open state store")
	}
	defer closeBackend()

	store := kv.NewAsyncWriter(backend)
	defer store.Close()

	mpdClient := mpd.NewClient(cfg.MPDHost, cfg.MPDPort, cfg.MPDPassword)
	if err := mpdClient.Connect(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MPD")
	}
	defer mpdClient.Close()

	items, err := mpd.NewScanner(mpdClient, cfg.MusicRoot).Scan()
	if err != nil || len(items) == 0 {
		log.Warn().Err(err).Msg("Library scan unavailable, using last saved catalog")
		items = player.LoadCatalogSnapshot(store)
	}
	cat := catalog.New(items, player.LoadLikedIDs(store))
	log.Info().Int("tracks", cat.Len()).Msg("Catalog loaded")

	svc := player.NewService(mpd.NewEngine(mpdClient), store, cat)

	socketServer, err := socketio.NewServer(svc, socketio.Options{MaxExternalClients: cfg.MaxExternalClients})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Socket.io server")
	}
	defer socketServer.Close()
	svc.Subscribe(socketServer.Notify)

	svc.Restore()

	events, err := mpdClient.Watch("player", "playlist", "options")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start MPD watcher")
	}
	go mpd.NewMonitor(mpdClient, svc, cfg.PollInterval).Run(ctx, events)

	api := rest.NewServer(svc, mpdClient)
	router := api.Router()
	router.Handle("/socket.io/*", socketServer)
	if cfg.StaticDir != "" {
		log.Info().Str("dir", cfg.StaticDir).Msg("Serving static files")
		router.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsMiddleware(router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info().Msg("Shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}
	}()

	log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("HTTP server error")
	}

	log.Info().Msg("Server stopped")
}

// openStore opens the configured key-value backend and returns its closer.
func openStore(ctx context.Context, cfg *config.Config) (kv.Backend, func(), error) {
	switch cfg.Store {
	case config.StoreRedis:
		rdb, err := kv.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return kv.NewRedisStore(rdb, cfg.RedisPrefix), func() { rdb.Close() }, nil
	case config.StoreMemory:
		log.Warn().Msg("Using in-memory store, state will not survive a restart")
		return kv.NewMemoryStore(), func() {}, nil
	default:
		db := kv.NewSQLiteStore(cfg.DBPath)
		if err := db.Open(); err != nil {
			return nil, nil, err
		}
		return db, func() { db.Close() }, nil
	}
}

// Package config resolves the player settings from flags, environment and an optional .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store backends accepted by -store.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config holds the runtime settings.
type Config struct {
	Port      string
	StaticDir string
	Debug     bool

	MPDHost      string
	MPDPort      int
	MPDPassword  string
	MusicRoot    string
	PollInterval time.Duration

	Store       string
	DBPath      string
	RedisURL    string
	RedisPrefix string

	MaxExternalClients int
}

// Load reads envFile (missing is fine) and then parses args. Flag defaults come from the
// environment, so a flag always wins over STELLAR_* variables.
func Load(args []string, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	fs := flag.NewFlagSet("stellar", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Port, "port", env("STELLAR_PORT", "3001"), "HTTP server port")
	fs.StringVar(&cfg.StaticDir, "static", env("STELLAR_STATIC_DIR", ""), "Directory to serve static files from (optional)")
	fs.BoolVar(&cfg.Debug, "debug", envBool("STELLAR_DEBUG", false), "Enable debug logging")

	fs.StringVar(&cfg.MPDHost, "mpd-host", env("MPD_HOST", "localhost"), "MPD host")
	fs.IntVar(&cfg.MPDPort, "mpd-port", envInt("MPD_PORT", 6600), "MPD port")
	fs.StringVar(&cfg.MPDPassword, "mpd-password", env("MPD_PASSWORD", ""), "MPD password")
	fs.StringVar(&cfg.MusicRoot, "music-root", env("STELLAR_MUSIC_ROOT", ""), "Library directory to shuffle (empty = whole MPD database)")
	fs.DurationVar(&cfg.PollInterval, "poll", envDuration("STELLAR_POLL_INTERVAL", time.Second), "MPD status poll interval")

	fs.StringVar(&cfg.Store, "store", env("STELLAR_STORE", StoreSQLite), "State store: sqlite, redis or memory")
	fs.StringVar(&cfg.DBPath, "db", env("STELLAR_DB_PATH", "data/player.db"), "SQLite database path")
	fs.StringVar(&cfg.RedisURL, "redis-url", env("REDIS_URL", "redis://localhost:6379/0"), "Redis URL for -store=redis")
	fs.StringVar(&cfg.RedisPrefix, "redis-prefix", env("STELLAR_REDIS_PREFIX", "stellar:player:"), "Redis key prefix")

	fs.IntVar(&cfg.MaxExternalClients, "max-clients", envInt("STELLAR_MAX_CLIENTS", 2), "Maximum concurrent non-local UI clients")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would only fail later at startup.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreSQLite, StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.MPDPort <= 0 || c.MPDPort > 65535 {
		return fmt.Errorf("invalid MPD port %d", c.MPDPort)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.MaxExternalClients < 1 {
		return fmt.Errorf("max-clients must be at least 1, got %d", c.MaxExternalClients)
	}
	return nil
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

package mpd

import (
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/fhs/gompd/v2/mpd"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/edumarques81/stellar-shuffle/internal/domain/catalog"
)

// UnknownArtist is used for songs without an artist tag.
const UnknownArtist = "Unknown Artist"

// Lister lists songs from MPD's database.
type Lister interface {
	ListAllInfo(uri string) ([]mpd.Attrs, error)
}

// Scanner builds the catalog from MPD's database.
type Scanner struct {
	mpd  Lister
	root string
}

// NewScanner creates a scanner for the songs below root ("" for the whole database).
func NewScanner(l Lister, root string) *Scanner {
	return &Scanner{mpd: l, root: root}
}

// Scan returns one catalog item per song file.
func (s *Scanner) Scan() ([]catalog.Item, error) {
	attrs, err := s.mpd.ListAllInfo(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list MPD database: %w", err)
	}

	items := lo.FilterMap(attrs, func(a mpd.Attrs, _ int) (catalog.Item, bool) {
		return itemFromAttrs(a)
	})

	log.Info().Int("songs", len(items)).Str("root", s.root).Msg("Scanned MPD database")
	return items, nil
}

// itemFromAttrs converts a song entry. Directory and playlist entries are skipped.
func itemFromAttrs(a mpd.Attrs) (catalog.Item, bool) {
	file := a["file"]
	if file == "" {
		return catalog.Item{}, false
	}

	title := a["Title"]
	if title == "" {
		base := path.Base(file)
		title = strings.TrimSuffix(base, path.Ext(base))
	}

	artist := a["Artist"]
	if artist == "" {
		artist = a["AlbumArtist"]
	}
	if artist == "" {
		artist = UnknownArtist
	}

	art := ArtworkURL(file)

	return catalog.Item{
		ID:         file,
		Title:      title,
		Artist:     artist,
		ArtworkRef: art,
		MiniArtRef: art,
		Duration:   parseDuration(a),
	}, true
}

// ArtworkURL returns the HTTP path serving the artwork of file.
func ArtworkURL(file string) string {
	return "/albumart?path=" + url.QueryEscape(file)
}

// parseDuration reads the song length in whole seconds, preferring the precise field.
func parseDuration(a mpd.Attrs) int {
	if v, err := strconv.ParseFloat(a["duration"], 64); err == nil {
		return int(v + 0.5)
	}
	if v, err := strconv.Atoi(a["Time"]); err == nil {
		return v
	}
	return 0
}

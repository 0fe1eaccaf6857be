package mpd

import (
	"errors"
	"testing"

	gompd "github.com/fhs/gompd/v2/mpd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edumarques81/stellar-shuffle/internal/domain/catalog"
)

type fakeLister struct {
	attrs []gompd.Attrs
	err   error
	uri   string
}

func (f *fakeLister) ListAllInfo(uri string) ([]gompd.Attrs, error) {
	f.uri = uri
	return f.attrs, f.err
}

func TestScannerScan(t *testing.T) {
	l := &fakeLister{attrs: []gompd.Attrs{
		{"directory": "NAS/Jazz"},
		{"file": "NAS/Jazz/01 - So What.flac", "Title": "So What", "Artist": "Miles Davis", "duration": "562.4", "Time": "562"},
		{"file": "NAS/Jazz/02 - Blue in Green.dsf", "AlbumArtist": "Miles Davis", "Time": "337"},
		{"file": "USB/untagged.mp3"},
		{"playlist": "favourites.m3u"},
	}}

	items, err := NewScanner(l, "NAS").Scan()

	require.NoError(t, err)
	assert.Equal(t, "NAS", l.uri)
	require.Len(t, items, 3)

	assert.Equal(t, catalog.Item{
		ID:         "NAS/Jazz/01 - So What.flac",
		Title:      "So What",
		Artist:     "Miles Davis",
		ArtworkRef: "/albumart?path=NAS%2FJazz%2F01+-+So+What.flac",
		MiniArtRef: "/albumart?path=NAS%2FJazz%2F01+-+So+What.flac",
		Duration:   562,
	}, items[0])

	assert.Equal(t, "02 - Blue in Green", items[1].Title)
	assert.Equal(t, "Miles Davis", items[1].Artist)
	assert.Equal(t, 337, items[1].Duration)

	assert.Equal(t, "untagged", items[2].Title)
	assert.Equal(t, UnknownArtist, items[2].Artist)
	assert.Equal(t, 0, items[2].Duration)
}

func TestScannerScanError(t *testing.T) {
	l := &fakeLister{err: errors.New("connection refused")}

	_, err := NewScanner(l, "").Scan()

	require.Error(t, err)
	assert.ErrorIs(t, err, l.err)
}

func TestScannerImplementsCatalogScanner(t *testing.T) {
	var _ catalog.Scanner = NewScanner(&fakeLister{}, "")
}

package domain

import "strings"

// TrackID is the provider-assigned identifier of a track.
type TrackID string

// Default variant qualities and the image shown when a track has no usable artwork.
const (
	DefaultSourceQuality    = "320kbps"
	DefaultThumbnailQuality = "500x500"
	DefaultPlaceholderImage = "/api/placeholder/250/250"
)

// MediaVariant is one quality-tagged URL of a track's artwork or audio.
type MediaVariant struct {
	Quality string
	URL     string
}

// Track represents one playable song returned by the search provider.
// Tracks are immutable once fetched; the player keeps its own copy.
type Track struct {
	ID                  TrackID
	Title               string
	PrimaryArtistName   string
	ThumbnailCandidates []MediaVariant
	PlayableSources     []MediaVariant
}

// NewTrack creates a new Track with the given parameters.
func NewTrack(
	id TrackID,
	title string,
	primaryArtistName string,
	thumbnails []MediaVariant,
	sources []MediaVariant,
) *Track {
	return &Track{
		ID:                  id,
		Title:               title,
		PrimaryArtistName:   primaryArtistName,
		ThumbnailCandidates: thumbnails,
		PlayableSources:     sources,
	}
}

// IsValid returns true if the track has the minimum required fields.
func (t *Track) IsValid() bool {
	return t.ID != "" && t.Title != ""
}

// PlayableSource returns the URL of the source tagged with the given quality.
// The second value is false when no such source exists; the track then cannot be played.
func (t *Track) PlayableSource(quality string) (string, bool) {
	url := findVariant(t.PlayableSources, quality)
	return url, url != ""
}

// ThumbnailURL returns the artwork URL tagged with the given quality, upgraded to https.
// Falls back to placeholder when the track carries no such artwork.
func (t *Track) ThumbnailURL(quality, placeholder string) string {
	url := findVariant(t.ThumbnailCandidates, quality)
	if url == "" {
		return placeholder
	}
	if rest, ok := strings.CutPrefix(url, "http:"); ok {
		return "https:" + rest
	}
	return url
}

func findVariant(variants []MediaVariant, quality string) string {
	for _, v := range variants {
		if v.Quality == quality && v.URL != "" {
			return v.URL
		}
	}
	return ""
}

package models

import "strings"

// TitleID is the catalog provider's opaque identifier for a movie or show.
type TitleID string

// MediaKind selects which catalog namespace a title lives in. It determines
// which sub-resources are requested and which fields are meaningful
// (runtime for movies, season count for shows).
type MediaKind string

const (
	MediaKindMovie MediaKind = "movie"
	MediaKindTV    MediaKind = "tv"
)

// ParseMediaKind normalizes a user-supplied media type string.
// Unrecognized values default to movie.
func ParseMediaKind(value string) MediaKind {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "tv", "series", "show", "shows":
		return MediaKindTV
	default:
		return MediaKindMovie
	}
}

// ImageVariant is a catalog image size class. The catalog stores relative
// image paths; a variant plus the provider's image base URL yields a full URL.
type ImageVariant string

const (
	ImageVariantProfile  ImageVariant = "w185"
	ImageVariantPoster   ImageVariant = "w500"
	ImageVariantOriginal ImageVariant = "original"
)

// CastEntry is one credited cast member on a detail page.
type CastEntry struct {
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profilePath,omitempty"`
}

// TrailerCandidate is one promotional video attached to a title by the
// catalog provider. Key is the video's identifier on the hosting site.
type TrailerCandidate struct {
	Name string `json:"name,omitempty"`
	Key  string `json:"key"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// TitleSummary is the lightweight shape used for similar/recommended rows
// and search results.
type TitleSummary struct {
	ID          TitleID   `json:"id"`
	Kind        MediaKind `json:"kind"`
	Name        string    `json:"name"`
	Overview    string    `json:"overview,omitempty"`
	ReleaseDate string    `json:"releaseDate,omitempty"`
	PosterPath  string    `json:"posterPath,omitempty"`
	Rating      float64   `json:"rating"`
}

// VideoMatch is the outcome of resolving a full-length video for a title on
// the external video platform. Either Found is true and Key carries the
// platform video ID, or the match is absent. It is never partially populated.
type VideoMatch struct {
	Found bool   `json:"found"`
	Key   string `json:"key,omitempty"`
}

// NoVideoMatch is the absent sentinel.
var NoVideoMatch = VideoMatch{}

// NewVideoMatch returns a present match for the given platform video key.
func NewVideoMatch(key string) VideoMatch {
	if strings.TrimSpace(key) == "" {
		return NoVideoMatch
	}
	return VideoMatch{Found: true, Key: key}
}

// DetailRecord is the composite detail-page payload. It is built once per
// page view and never mutated after the aggregator returns it. All nested
// collections tolerate absence; an empty slice is a normal state, not an
// error.
type DetailRecord struct {
	ID           TitleID   `json:"id"`
	Kind         MediaKind `json:"kind"`
	Name         string    `json:"name"`
	Overview     string    `json:"overview"`
	Tagline      string    `json:"tagline,omitempty"`
	ReleaseDate  string    `json:"releaseDate,omitempty"`
	Rating       float64   `json:"rating"`
	Runtime      int       `json:"runtime,omitempty"`
	SeasonCount  int       `json:"seasonCount,omitempty"`
	PosterPath   string    `json:"posterPath,omitempty"`
	BackdropPath string    `json:"backdropPath,omitempty"`
	Genres       []string  `json:"genres"`

	Cast        []CastEntry        `json:"cast"`
	Trailers    []TrailerCandidate `json:"trailers"`
	Similar     []TitleSummary     `json:"similar"`
	Recommended []TitleSummary     `json:"recommended"`

	// Trailer is the candidate chosen for embedding, nil when none qualifies.
	Trailer *TrailerCandidate `json:"trailer,omitempty"`

	// VideoMatch is best-effort; an absent match is a normal state.
	VideoMatch VideoMatch `json:"videoMatch"`
}

// ReleaseYear returns the four-digit year from ReleaseDate, or "" when the
// date is missing or too short to carry one.
func (d *DetailRecord) ReleaseYear() string {
	if len(d.ReleaseDate) < 4 {
		return ""
	}
	return d.ReleaseDate[:4]
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Catalog holds the content-catalog provider (TMDB) settings. Every client
// receives its configuration explicitly at construction; there is no ambient
// global config state.
type Catalog struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
	Language     string
}

// VideoSearch holds the external video platform (YouTube Data API) settings
// used for full-title matching.
type VideoSearch struct {
	APIKey     string
	BaseURL    string
	MaxResults int
	// MinDurationMinutes separates plausible full-length results from
	// clip/trailer-length ones. Tunable, not a confirmed provider constant.
	MinDurationMinutes int
}

// Config is the full server configuration.
type Config struct {
	Addr            string
	DataDir         string
	LogFile         string
	AllowedOrigins  []string
	SessionTTLHours int
	CacheTTLHours   int

	Catalog     Catalog
	VideoSearch VideoSearch
}

const (
	defaultAddr            = ":8585"
	defaultDataDir         = "./data"
	defaultCatalogBaseURL  = "https://api.themoviedb.org/3"
	defaultImageBaseURL    = "https://image.tmdb.org/t/p"
	defaultLanguage        = "en-US"
	defaultVideoBaseURL    = "https://www.googleapis.com/youtube/v3"
	defaultMaxResults      = 5
	defaultMinDurationMins = 60
	defaultSessionTTLHours = 24 * 30
	defaultCacheTTLHours   = 24
)

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present (development convenience).
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:            envOr("HARSHAFLIX_ADDR", defaultAddr),
		DataDir:         envOr("HARSHAFLIX_DATA_DIR", defaultDataDir),
		LogFile:         os.Getenv("HARSHAFLIX_LOG_FILE"),
		AllowedOrigins:  splitList(os.Getenv("HARSHAFLIX_ALLOWED_ORIGINS")),
		SessionTTLHours: envIntOr("HARSHAFLIX_SESSION_TTL_HOURS", defaultSessionTTLHours),
		CacheTTLHours:   envIntOr("HARSHAFLIX_CACHE_TTL_HOURS", defaultCacheTTLHours),
		Catalog: Catalog{
			APIKey:       os.Getenv("TMDB_API_KEY"),
			BaseURL:      envOr("TMDB_BASE_URL", defaultCatalogBaseURL),
			ImageBaseURL: envOr("TMDB_IMAGE_BASE_URL", defaultImageBaseURL),
			Language:     envOr("TMDB_LANGUAGE", defaultLanguage),
		},
		VideoSearch: VideoSearch{
			APIKey:             os.Getenv("YOUTUBE_API_KEY"),
			BaseURL:            envOr("YOUTUBE_BASE_URL", defaultVideoBaseURL),
			MaxResults:         envIntOr("YOUTUBE_MAX_RESULTS", defaultMaxResults),
			MinDurationMinutes: envIntOr("YOUTUBE_MIN_DURATION_MINUTES", defaultMinDurationMins),
		},
	}

	if cfg.Catalog.APIKey == "" {
		return Config{}, fmt.Errorf("TMDB_API_KEY is required")
	}
	// A missing YouTube key is not fatal: video matching degrades to absent.

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

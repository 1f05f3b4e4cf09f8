package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/spf13/afero"
	"golang.org/x/time/rate"

	"github.com/harsha33983/harshaflix/config"
	"github.com/harsha33983/harshaflix/models"
)

// detailExpansion enumerates the sub-resources the provider expands into the
// single detail response, so a whole detail page costs one round trip.
const detailExpansion = "credits,videos,similar,recommendations"

// Client is a typed read client for the content-catalog provider. All
// configuration is injected at construction; the client holds no global
// state and is safe for concurrent use.
type Client struct {
	cfg     config.Catalog
	httpc   *http.Client
	limiter *rate.Limiter
	cache   *responseCache
}

// NewClient builds a catalog client. A nil httpc gets a default client with
// a transport timeout.
func NewClient(cfg config.Catalog, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		cfg:   cfg,
		httpc: httpc,
		// Stay well under the provider's request ceiling.
		limiter: rate.NewLimiter(rate.Limit(40), 10),
	}
}

// EnableCache attaches a file-backed response cache for browse endpoints.
func (c *Client) EnableCache(fs afero.Fs, dir string, ttlHours int) {
	c.cache = newResponseCache(fs, dir, ttlHours)
}

// ClearCache drops all cached responses.
func (c *Client) ClearCache() error {
	if c.cache == nil {
		return nil
	}
	return c.cache.clear()
}

// FetchDetail retrieves the composite detail record for a title: core
// metadata plus cast, trailer candidates, similar titles and
// recommendations, in one provider request. Missing optional fields degrade
// to absent; a missing title is ErrNotFound; everything else that goes wrong
// at the boundary is a ProviderError.
func (c *Client) FetchDetail(ctx context.Context, id models.TitleID, kind models.MediaKind) (*models.DetailRecord, error) {
	var payload detailPayload
	path := fmt.Sprintf("/%s/%s", kind, url.PathEscape(string(id)))
	q := url.Values{}
	q.Set("append_to_response", detailExpansion)

	if err := c.doGET(ctx, "detail", path, q, &payload); err != nil {
		return nil, err
	}

	record := payload.toRecord(kind)
	if record.ID == "" || record.Name == "" {
		return nil, providerErr("detail", 0, fmt.Errorf("malformed payload for %s/%s", kind, id))
	}
	return record, nil
}

// Search performs a title search within one media kind.
func (c *Client) Search(ctx context.Context, query string, kind models.MediaKind) ([]models.TitleSummary, error) {
	var payload listPayload
	q := url.Values{}
	q.Set("query", query)
	if err := c.doGET(ctx, "search", fmt.Sprintf("/search/%s", kind), q, &payload); err != nil {
		return nil, err
	}
	return payload.toSummaries(kind), nil
}

// Trending returns the provider's weekly trending row for the given kind.
// Results are cached; the row changes slowly and backs the landing page.
func (c *Client) Trending(ctx context.Context, kind models.MediaKind) ([]models.TitleSummary, error) {
	key := cacheKey("trending", string(kind))
	if c.cache != nil {
		var cached []models.TitleSummary
		if ok, _ := c.cache.get(key, &cached); ok && len(cached) > 0 {
			return cached, nil
		}
	}

	var payload listPayload
	if err := c.doGET(ctx, "trending", fmt.Sprintf("/trending/%s/week", kind), nil, &payload); err != nil {
		return nil, err
	}
	summaries := payload.toSummaries(kind)
	if c.cache != nil && len(summaries) > 0 {
		if err := c.cache.set(key, summaries); err != nil {
			log.Printf("[catalog] failed to cache trending %s: %v", kind, err)
		}
	}
	return summaries, nil
}

// doGET issues one authenticated GET against the provider, retrying
// transient failures (transport errors, 429, 5xx) with backoff. 404 maps to
// ErrNotFound and is never retried.
func (c *Client) doGET(ctx context.Context, op, path string, q url.Values, v any) error {
	if q == nil {
		q = url.Values{}
	}
	q.Set("api_key", c.cfg.APIKey)
	if c.cfg.Language != "" {
		q.Set("language", c.cfg.Language)
	}
	endpoint := c.cfg.BaseURL + path + "?" + q.Encode()

	return retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(providerErr(op, 0, err))
			}
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(providerErr(op, 0, err))
			}
			resp, err := c.httpc.Do(req)
			if err != nil {
				return providerErr(op, 0, err)
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusNotFound:
				return retry.Unrecoverable(fmt.Errorf("%s %s: %w", op, path, ErrNotFound))
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				if ra := resp.Header.Get("Retry-After"); ra != "" {
					if secs, err := strconv.Atoi(ra); err == nil && secs <= 5 {
						time.Sleep(time.Duration(secs) * time.Second)
					}
				}
				return providerErr(op, resp.StatusCode, nil)
			case resp.StatusCode >= 300:
				return retry.Unrecoverable(providerErr(op, resp.StatusCode, nil))
			}

			if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
				return retry.Unrecoverable(providerErr(op, 0, fmt.Errorf("decode: %w", err)))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

// Provider payload shapes. Defined at the boundary and converted to typed
// records immediately; loosely-shaped data never travels inward.

type detailPayload struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	Name            string  `json:"name"`
	Overview        string  `json:"overview"`
	Tagline         string  `json:"tagline"`
	ReleaseDate     string  `json:"release_date"`
	FirstAirDate    string  `json:"first_air_date"`
	VoteAverage     float64 `json:"vote_average"`
	Runtime         int     `json:"runtime"`
	NumberOfSeasons int     `json:"number_of_seasons"`
	PosterPath      string  `json:"poster_path"`
	BackdropPath    string  `json:"backdrop_path"`
	Genres          []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Credits struct {
		Cast []struct {
			Name        string `json:"name"`
			Character   string `json:"character"`
			ProfilePath string `json:"profile_path"`
		} `json:"cast"`
	} `json:"credits"`
	Videos struct {
		Results []struct {
			Name string `json:"name"`
			Key  string `json:"key"`
			Site string `json:"site"`
			Type string `json:"type"`
		} `json:"results"`
	} `json:"videos"`
	Similar         listPayload `json:"similar"`
	Recommendations listPayload `json:"recommendations"`
}

type listPayload struct {
	Results []struct {
		ID           int64   `json:"id"`
		Title        string  `json:"title"`
		Name         string  `json:"name"`
		Overview     string  `json:"overview"`
		ReleaseDate  string  `json:"release_date"`
		FirstAirDate string  `json:"first_air_date"`
		PosterPath   string  `json:"poster_path"`
		VoteAverage  float64 `json:"vote_average"`
	} `json:"results"`
}

func (p *detailPayload) toRecord(kind models.MediaKind) *models.DetailRecord {
	record := &models.DetailRecord{
		Kind:         kind,
		Name:         firstNonEmpty(p.Title, p.Name),
		Overview:     p.Overview,
		Tagline:      p.Tagline,
		ReleaseDate:  firstNonEmpty(p.ReleaseDate, p.FirstAirDate),
		Rating:       p.VoteAverage,
		PosterPath:   p.PosterPath,
		BackdropPath: p.BackdropPath,
		Genres:       make([]string, 0, len(p.Genres)),
		Cast:         make([]models.CastEntry, 0, len(p.Credits.Cast)),
		Trailers:     make([]models.TrailerCandidate, 0, len(p.Videos.Results)),
		VideoMatch:   models.NoVideoMatch,
	}
	if p.ID > 0 {
		record.ID = models.TitleID(strconv.FormatInt(p.ID, 10))
	}
	if kind == models.MediaKindMovie {
		record.Runtime = p.Runtime
	} else {
		record.SeasonCount = p.NumberOfSeasons
	}
	for _, g := range p.Genres {
		if g.Name != "" {
			record.Genres = append(record.Genres, g.Name)
		}
	}
	for _, c := range p.Credits.Cast {
		record.Cast = append(record.Cast, models.CastEntry{
			Name:        c.Name,
			Character:   c.Character,
			ProfilePath: c.ProfilePath,
		})
	}
	for _, v := range p.Videos.Results {
		if v.Key == "" {
			continue
		}
		record.Trailers = append(record.Trailers, models.TrailerCandidate{
			Name: v.Name,
			Key:  v.Key,
			Site: v.Site,
			Type: v.Type,
		})
	}
	record.Similar = p.Similar.toSummaries(kind)
	record.Recommended = p.Recommendations.toSummaries(kind)
	return record
}

func (p listPayload) toSummaries(kind models.MediaKind) []models.TitleSummary {
	summaries := make([]models.TitleSummary, 0, len(p.Results))
	for _, r := range p.Results {
		name := firstNonEmpty(r.Title, r.Name)
		if r.ID <= 0 || name == "" {
			continue
		}
		summaries = append(summaries, models.TitleSummary{
			ID:          models.TitleID(strconv.FormatInt(r.ID, 10)),
			Kind:        kind,
			Name:        name,
			Overview:    r.Overview,
			ReleaseDate: firstNonEmpty(r.ReleaseDate, r.FirstAirDate),
			PosterPath:  r.PosterPath,
			Rating:      r.VoteAverage,
		})
	}
	return summaries
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

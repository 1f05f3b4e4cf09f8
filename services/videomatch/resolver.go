// Package videomatch finds a full-length playback candidate for a movie on
// a public video platform. Resolution is strictly best-effort: any failure,
// from transport errors to an empty result set, yields an absent match and
// never an error.
package videomatch

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/harsha33983/harshaflix/config"
	"github.com/harsha33983/harshaflix/models"
)

// Resolver queries the video platform's search API and filters candidates
// by duration, so shorts, clips and trailers never win over an actual
// full-length upload.
type Resolver struct {
	cfg   config.VideoSearch
	httpc *http.Client
}

func NewResolver(cfg config.VideoSearch, httpc *http.Client) *Resolver {
	if httpc == nil {
		httpc = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 5
	}
	if cfg.MinDurationMinutes <= 0 {
		cfg.MinDurationMinutes = 60
	}
	return &Resolver{cfg: cfg, httpc: httpc}
}

// Resolve looks up a playable full-length video for the given title. The
// release year narrows the query when known. The returned match is absent
// whenever anything prevents a confident answer.
func (r *Resolver) Resolve(ctx context.Context, title, year string) models.VideoMatch {
	if r.cfg.APIKey == "" || title == "" {
		return models.NoVideoMatch
	}

	query := title + " full movie"
	if year != "" {
		query += " " + year
	}

	ids, err := r.search(ctx, query)
	if err != nil {
		log.Printf("[videomatch] search %q failed: %v", query, err)
		return models.NoVideoMatch
	}
	if len(ids) == 0 {
		return models.NoVideoMatch
	}

	candidates, err := r.lookupVideos(ctx, ids)
	if err != nil {
		log.Printf("[videomatch] lookup failed: %v", err)
		return models.NoVideoMatch
	}

	minDuration := time.Duration(r.cfg.MinDurationMinutes) * time.Minute
	best := ""
	var bestViews uint64
	for _, c := range candidates {
		if c.duration < minDuration {
			continue
		}
		if best == "" || c.views > bestViews {
			best = c.id
			bestViews = c.views
		}
	}
	return models.NewVideoMatch(best)
}

type candidate struct {
	id       string
	duration time.Duration
	views    uint64
}

func (r *Resolver) search(ctx context.Context, query string) ([]string, error) {
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("q", query)
	q.Set("type", "video")
	q.Set("maxResults", strconv.Itoa(r.cfg.MaxResults))
	q.Set("key", r.cfg.APIKey)

	var payload struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
		} `json:"items"`
	}
	if err := r.doGET(ctx, "/search", q, &payload); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	return ids, nil
}

func (r *Resolver) lookupVideos(ctx context.Context, ids []string) ([]candidate, error) {
	q := url.Values{}
	q.Set("part", "contentDetails,statistics")
	q.Set("id", strings.Join(ids, ","))
	q.Set("key", r.cfg.APIKey)

	var payload struct {
		Items []struct {
			ID             string `json:"id"`
			ContentDetails struct {
				Duration string `json:"duration"`
			} `json:"contentDetails"`
			Statistics struct {
				ViewCount string `json:"viewCount"`
			} `json:"statistics"`
		} `json:"items"`
	}
	if err := r.doGET(ctx, "/videos", q, &payload); err != nil {
		return nil, err
	}

	candidates := make([]candidate, 0, len(payload.Items))
	for _, item := range payload.Items {
		dur, err := parseISODuration(item.ContentDetails.Duration)
		if err != nil {
			continue
		}
		views, _ := strconv.ParseUint(item.Statistics.ViewCount, 10, 64)
		candidates = append(candidates, candidate{id: item.ID, duration: dur, views: views})
	}
	return candidates, nil
}

func (r *Resolver) doGET(ctx context.Context, path string, q url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.cfg.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := r.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return decodeJSON(resp, v)
}

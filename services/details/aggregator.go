// Package details assembles the full detail-page record for one title:
// catalog metadata first, then the embeddable trailer pick, then, for
// movies only, a best-effort full-length video match.
package details

import (
	"context"

	"github.com/harsha33983/harshaflix/models"
	"github.com/harsha33983/harshaflix/services/catalog"
	"github.com/harsha33983/harshaflix/services/videomatch"
)

const trailerSite = "YouTube"

type catalogClient interface {
	FetchDetail(ctx context.Context, id models.TitleID, kind models.MediaKind) (*models.DetailRecord, error)
}

type videoResolver interface {
	Resolve(ctx context.Context, title, year string) models.VideoMatch
}

var _ catalogClient = (*catalog.Client)(nil)
var _ videoResolver = (*videomatch.Resolver)(nil)

// Aggregator composes a catalog client and a video resolver into one
// detail lookup. It holds no per-request state.
type Aggregator struct {
	catalog catalogClient
	videos  videoResolver
}

func NewAggregator(c catalogClient, v videoResolver) *Aggregator {
	return &Aggregator{catalog: c, videos: v}
}

// Get builds the detail record for a title. Catalog failures propagate to
// the caller; video-match resolution can only degrade the record, never
// fail it. Shows skip video resolution entirely.
func (a *Aggregator) Get(ctx context.Context, id models.TitleID, kind models.MediaKind) (*models.DetailRecord, error) {
	record, err := a.catalog.FetchDetail(ctx, id, kind)
	if err != nil {
		return nil, err
	}

	record.Trailer = selectTrailer(record.Trailers)
	record.VideoMatch = models.NoVideoMatch
	if kind == models.MediaKindMovie && a.videos != nil {
		record.VideoMatch = a.videos.Resolve(ctx, record.Name, record.ReleaseYear())
	}
	return record, nil
}

// selectTrailer picks the first candidate that is an actual trailer hosted
// on the embeddable site, preserving provider order.
func selectTrailer(candidates []models.TrailerCandidate) *models.TrailerCandidate {
	for i := range candidates {
		if candidates[i].Type == "Trailer" && candidates[i].Site == trailerSite {
			return &candidates[i]
		}
	}
	return nil
}

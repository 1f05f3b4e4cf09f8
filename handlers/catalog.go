package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/harsha33983/harshaflix/models"
	"github.com/harsha33983/harshaflix/services/catalog"
)

type catalogService interface {
	Search(ctx context.Context, query string, kind models.MediaKind) ([]models.TitleSummary, error)
	Trending(ctx context.Context, kind models.MediaKind) ([]models.TitleSummary, error)
}

var _ catalogService = (*catalog.Client)(nil)

// CatalogHandler serves browse and search rows.
type CatalogHandler struct {
	Service catalogService
}

func NewCatalogHandler(s catalogService) *CatalogHandler {
	return &CatalogHandler{Service: s}
}

// TrendingResponse carries the landing-page rows.
type TrendingResponse struct {
	Movies []models.TitleSummary `json:"movies,omitempty"`
	Shows  []models.TitleSummary `json:"shows,omitempty"`
}

// Trending handles GET /api/trending?type={movie|tv|all}. With type=all the
// movie and show rows are fetched concurrently; one row failing does not
// blank the other.
func (h *CatalogHandler) Trending(w http.ResponseWriter, r *http.Request) {
	mediaType := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type")))

	var resp TrendingResponse
	if mediaType == "" || mediaType == "all" {
		p := pool.New().WithContext(r.Context())
		p.Go(func(ctx context.Context) error {
			movies, err := h.Service.Trending(ctx, models.MediaKindMovie)
			if err != nil {
				log.Printf("[catalog] trending movies failed: %v", err)
				return nil
			}
			resp.Movies = movies
			return nil
		})
		p.Go(func(ctx context.Context) error {
			shows, err := h.Service.Trending(ctx, models.MediaKindTV)
			if err != nil {
				log.Printf("[catalog] trending shows failed: %v", err)
				return nil
			}
			resp.Shows = shows
			return nil
		})
		_ = p.Wait()

		if resp.Movies == nil && resp.Shows == nil {
			writeJSONError(w, http.StatusBadGateway, "catalog provider unavailable")
			return
		}
	} else {
		kind := models.ParseMediaKind(mediaType)
		row, err := h.Service.Trending(r.Context(), kind)
		if err != nil {
			log.Printf("[catalog] trending %s failed: %v", kind, err)
			writeJSONError(w, http.StatusBadGateway, "catalog provider unavailable")
			return
		}
		if kind == models.MediaKindTV {
			resp.Shows = row
		} else {
			resp.Movies = row
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// SearchResponse carries search results for one query.
type SearchResponse struct {
	Results []models.TitleSummary `json:"results"`
}

// Search handles GET /api/search?q=...&type={movie|tv}.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		http.Error(w, `{"error": "query is required"}`, http.StatusBadRequest)
		return
	}
	kind := models.ParseMediaKind(r.URL.Query().Get("type"))

	results, err := h.Service.Search(r.Context(), query, kind)
	if err != nil {
		log.Printf("[catalog] search %q failed: %v", query, err)
		writeJSONError(w, http.StatusBadGateway, "catalog provider unavailable")
		return
	}

	if results == nil {
		results = []models.TitleSummary{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SearchResponse{Results: results})
}

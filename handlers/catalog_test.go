package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/harsha33983/harshaflix/models"
)

type fakeCatalogService struct {
	trending map[models.MediaKind][]models.TitleSummary
	results  []models.TitleSummary
	err      error
	gotQuery string
}

func (f *fakeCatalogService) Search(ctx context.Context, query string, kind models.MediaKind) ([]models.TitleSummary, error) {
	f.gotQuery = query
	return f.results, f.err
}

func (f *fakeCatalogService) Trending(ctx context.Context, kind models.MediaKind) ([]models.TitleSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.trending[kind], nil
}

func TestTrendingAllReturnsBothRows(t *testing.T) {
	svc := &fakeCatalogService{trending: map[models.MediaKind][]models.TitleSummary{
		models.MediaKindMovie: {{ID: "603", Name: "The Matrix"}},
		models.MediaKindTV:    {{ID: "1399", Name: "Game of Thrones"}},
	}}
	handler := NewCatalogHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/trending?type=all", nil)
	rec := httptest.NewRecorder()
	handler.Trending(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp TrendingResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Movies) != 1 || resp.Movies[0].Name != "The Matrix" {
		t.Errorf("movies = %v", resp.Movies)
	}
	if len(resp.Shows) != 1 || resp.Shows[0].Name != "Game of Thrones" {
		t.Errorf("shows = %v", resp.Shows)
	}
}

func TestTrendingSingleKind(t *testing.T) {
	svc := &fakeCatalogService{trending: map[models.MediaKind][]models.TitleSummary{
		models.MediaKindTV: {{ID: "1399", Name: "Game of Thrones"}},
	}}
	handler := NewCatalogHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/trending?type=tv", nil)
	rec := httptest.NewRecorder()
	handler.Trending(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp TrendingResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Movies != nil {
		t.Errorf("movies should be empty, got %v", resp.Movies)
	}
	if len(resp.Shows) != 1 {
		t.Errorf("shows = %v", resp.Shows)
	}
}

func TestTrendingAllProviderDown(t *testing.T) {
	svc := &fakeCatalogService{err: errors.New("provider unavailable")}
	handler := NewCatalogHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/trending?type=all", nil)
	rec := httptest.NewRecorder()
	handler.Trending(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestSearch(t *testing.T) {
	svc := &fakeCatalogService{results: []models.TitleSummary{{ID: "603", Name: "The Matrix"}}}
	handler := NewCatalogHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=matrix&type=movie", nil)
	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.gotQuery != "matrix" {
		t.Errorf("query = %q", svc.gotQuery)
	}
	var resp SearchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Errorf("results = %v", resp.Results)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	handler := NewCatalogHandler(&fakeCatalogService{})

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestSearchEmptyResultsIsNotAnError(t *testing.T) {
	handler := NewCatalogHandler(&fakeCatalogService{})

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=zzzz", nil)
	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp SearchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Results == nil || len(resp.Results) != 0 {
		t.Errorf("results = %#v, want empty list", resp.Results)
	}
}

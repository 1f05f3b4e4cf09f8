package catalog

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/harsha33983/harshaflix/config"
	"github.com/harsha33983/harshaflix/models"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func testClient(rt roundTripFunc) *Client {
	return NewClient(config.Catalog{
		APIKey:   "test-key",
		BaseURL:  "https://catalog.test/3",
		Language: "en-US",
	}, &http.Client{Transport: rt})
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestFetchDetailMapsPayload(t *testing.T) {
	var gotURL string
	client := testClient(func(r *http.Request) (*http.Response, error) {
		gotURL = r.URL.String()
		return jsonResponse(200, `{
			"id": 603,
			"title": "The Matrix",
			"overview": "A hacker learns the truth.",
			"tagline": "Free your mind.",
			"release_date": "1999-03-30",
			"vote_average": 8.2,
			"runtime": 136,
			"poster_path": "/matrix.jpg",
			"backdrop_path": "/matrix-bg.jpg",
			"genres": [{"name": "Action"}, {"name": "Science Fiction"}],
			"credits": {"cast": [{"name": "Keanu Reeves", "character": "Neo", "profile_path": "/keanu.jpg"}]},
			"videos": {"results": [
				{"name": "Teaser", "key": "t1", "site": "YouTube", "type": "Teaser"},
				{"name": "Official Trailer", "key": "m8e-FF8MsqU", "site": "YouTube", "type": "Trailer"}
			]},
			"similar": {"results": [{"id": 604, "title": "The Matrix Reloaded", "release_date": "2003-05-15", "vote_average": 7.0}]},
			"recommendations": {"results": [{"id": 155, "title": "The Dark Knight", "vote_average": 8.5}]}
		}`), nil
	})

	record, err := client.FetchDetail(context.Background(), "603", models.MediaKindMovie)
	if err != nil {
		t.Fatalf("FetchDetail returned error: %v", err)
	}

	if !strings.Contains(gotURL, "/movie/603?") {
		t.Errorf("unexpected URL %q", gotURL)
	}
	if !strings.Contains(gotURL, "append_to_response=credits%2Cvideos%2Csimilar%2Crecommendations") {
		t.Errorf("expansion param missing from %q", gotURL)
	}
	if !strings.Contains(gotURL, "api_key=test-key") {
		t.Errorf("api key missing from %q", gotURL)
	}

	if record.ID != "603" || record.Name != "The Matrix" {
		t.Errorf("identity mismatch: %q %q", record.ID, record.Name)
	}
	if record.Kind != models.MediaKindMovie {
		t.Errorf("kind = %q", record.Kind)
	}
	if record.Runtime != 136 || record.SeasonCount != 0 {
		t.Errorf("runtime/seasons = %d/%d", record.Runtime, record.SeasonCount)
	}
	if record.ReleaseYear() != "1999" {
		t.Errorf("release year = %q", record.ReleaseYear())
	}
	if len(record.Genres) != 2 || record.Genres[1] != "Science Fiction" {
		t.Errorf("genres = %v", record.Genres)
	}
	if len(record.Cast) != 1 || record.Cast[0].Character != "Neo" {
		t.Errorf("cast = %v", record.Cast)
	}
	if len(record.Trailers) != 2 || record.Trailers[1].Key != "m8e-FF8MsqU" {
		t.Errorf("trailers = %v", record.Trailers)
	}
	if len(record.Similar) != 1 || record.Similar[0].ID != "604" {
		t.Errorf("similar = %v", record.Similar)
	}
	if len(record.Recommended) != 1 || record.Recommended[0].Name != "The Dark Knight" {
		t.Errorf("recommended = %v", record.Recommended)
	}
	if record.VideoMatch.Found {
		t.Error("video match should start absent")
	}
}

func TestFetchDetailShowFields(t *testing.T) {
	client := testClient(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{
			"id": 1399,
			"name": "Game of Thrones",
			"first_air_date": "2011-04-17",
			"number_of_seasons": 8,
			"runtime": 0
		}`), nil
	})

	record, err := client.FetchDetail(context.Background(), "1399", models.MediaKindTV)
	if err != nil {
		t.Fatalf("FetchDetail returned error: %v", err)
	}
	if record.Name != "Game of Thrones" {
		t.Errorf("name = %q", record.Name)
	}
	if record.SeasonCount != 8 || record.Runtime != 0 {
		t.Errorf("seasons/runtime = %d/%d", record.SeasonCount, record.Runtime)
	}
	if record.ReleaseDate != "2011-04-17" {
		t.Errorf("release date = %q", record.ReleaseDate)
	}
}

func TestFetchDetailNotFound(t *testing.T) {
	attempts := 0
	client := testClient(func(r *http.Request) (*http.Response, error) {
		attempts++
		return jsonResponse(404, `{"status_message": "not found"}`), nil
	})

	_, err := client.FetchDetail(context.Background(), "0", models.MediaKindMovie)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("404 should not be retried, got %d attempts", attempts)
	}
}

func TestFetchDetailServerErrorRetriesThenFails(t *testing.T) {
	attempts := 0
	client := testClient(func(r *http.Request) (*http.Response, error) {
		attempts++
		return jsonResponse(500, `{}`), nil
	})

	_, err := client.FetchDetail(context.Background(), "603", models.MediaKindMovie)
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if perr.Status != 500 {
		t.Errorf("status = %d", perr.Status)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestFetchDetailTransportErrorRecovers(t *testing.T) {
	attempts := 0
	client := testClient(func(r *http.Request) (*http.Response, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("connection reset")
		}
		return jsonResponse(200, `{"id": 603, "title": "The Matrix"}`), nil
	})

	record, err := client.FetchDetail(context.Background(), "603", models.MediaKindMovie)
	if err != nil {
		t.Fatalf("expected recovery after transient error, got %v", err)
	}
	if record.Name != "The Matrix" {
		t.Errorf("name = %q", record.Name)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d", attempts)
	}
}

func TestFetchDetailMalformedPayload(t *testing.T) {
	client := testClient(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"whatever": true}`), nil
	})

	_, err := client.FetchDetail(context.Background(), "603", models.MediaKindMovie)
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError for payload with no id, got %v", err)
	}
}

func TestFetchDetailInvalidJSON(t *testing.T) {
	attempts := 0
	client := testClient(func(r *http.Request) (*http.Response, error) {
		attempts++
		return jsonResponse(200, `<html>gateway error`), nil
	})

	_, err := client.FetchDetail(context.Background(), "603", models.MediaKindMovie)
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("decode failure should not be retried, got %d attempts", attempts)
	}
}

func TestSearchSkipsResultsWithoutIdentity(t *testing.T) {
	client := testClient(func(r *http.Request) (*http.Response, error) {
		if !strings.Contains(r.URL.String(), "/search/movie?") {
			t.Errorf("unexpected URL %q", r.URL.String())
		}
		return jsonResponse(200, `{"results": [
			{"id": 603, "title": "The Matrix", "vote_average": 8.2},
			{"id": 0, "title": "Broken"},
			{"id": 999, "title": ""}
		]}`), nil
	})

	results, err := client.Search(context.Background(), "matrix", models.MediaKindMovie)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(results) != 1 || results[0].ID != "603" {
		t.Fatalf("results = %v", results)
	}
	if results[0].Kind != models.MediaKindMovie {
		t.Errorf("kind = %q", results[0].Kind)
	}
}

func TestTrendingUsesTVNames(t *testing.T) {
	client := testClient(func(r *http.Request) (*http.Response, error) {
		if !strings.Contains(r.URL.String(), "/trending/tv/week?") {
			t.Errorf("unexpected URL %q", r.URL.String())
		}
		return jsonResponse(200, `{"results": [
			{"id": 1399, "name": "Game of Thrones", "first_air_date": "2011-04-17"}
		]}`), nil
	})

	results, err := client.Trending(context.Background(), models.MediaKindTV)
	if err != nil {
		t.Fatalf("Trending returned error: %v", err)
	}
	if len(results) != 1 || results[0].Name != "Game of Thrones" {
		t.Fatalf("results = %v", results)
	}
	if results[0].ReleaseDate != "2011-04-17" {
		t.Errorf("release date = %q", results[0].ReleaseDate)
	}
}

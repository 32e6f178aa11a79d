package services

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/medley/internal/shared"
	"golang.org/x/time/rate"
)

func testYouTubeService(serverURL string) *YouTubeService {
	return &YouTubeService{
		baseURL:    serverURL,
		apiKey:     "test-key",
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Inf, 1),
	}
}

func TestNewYouTubeService(t *testing.T) {
	if _, err := NewYouTubeService(""); !errors.Is(err, shared.ErrMissingCredentials) {
		t.Errorf("expected ErrMissingCredentials for empty api key, got %v", err)
	}
	if _, err := NewYouTubeService("key"); err != nil {
		t.Errorf("unexpected error for valid key: %v", err)
	}
}

func TestSearchCandidates(t *testing.T) {
	t.Run("RankingFollowsResultOrder", func(t *testing.T) {
		var gotQuery, gotMax string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query().Get("q")
			gotMax = r.URL.Query().Get("maxResults")
			fmt.Fprint(w, `{"items":[
				{"id":{"videoId":"v1"},"snippet":{"title":"First","channelTitle":"Chan","publishTime":"2020-01-01T00:00:00Z"}},
				{"id":{"videoId":"v2"},"snippet":{"title":"Second","channelTitle":"Artist - Topic","publishTime":"2021-01-01T00:00:00Z"}}
			]}`)
		}))
		defer server.Close()

		service := testYouTubeService(server.URL)
		candidates, err := service.SearchCandidates(t.Context(), "Song Artist lyrics", 5)
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}

		if gotQuery != "Song Artist lyrics" || gotMax != "5" {
			t.Errorf("unexpected request params q=%q maxResults=%q", gotQuery, gotMax)
		}
		if len(candidates) != 2 {
			t.Fatalf("expected 2 candidates, got %d", len(candidates))
		}
		if candidates[0].RankingInSearch != 1 || candidates[1].RankingInSearch != 2 {
			t.Errorf("ranking should be 1-based result position: %+v", candidates)
		}
		if candidates[1].VideoID != "v2" || candidates[1].Channel != "Artist - Topic" {
			t.Errorf("snippet fields lost: %+v", candidates[1])
		}
	})

	t.Run("EmptyResultIsValid", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"items":[]}`)
		}))
		defer server.Close()

		service := testYouTubeService(server.URL)
		candidates, err := service.SearchCandidates(t.Context(), "obscure song lyrics", 5)
		if err != nil {
			t.Fatalf("empty search should succeed: %v", err)
		}
		if len(candidates) != 0 {
			t.Errorf("expected no candidates, got %+v", candidates)
		}
	})

	t.Run("ZeroLimitUsesDefault", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("maxResults"); got != "5" {
				t.Errorf("expected default maxResults 5, got %q", got)
			}
			fmt.Fprint(w, `{"items":[]}`)
		}))
		defer server.Close()

		service := testYouTubeService(server.URL)
		if _, err := service.SearchCandidates(t.Context(), "q", 0); err != nil {
			t.Fatalf("search failed: %v", err)
		}
	})

	t.Run("QuotaExceededIsRetryable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		service := testYouTubeService(server.URL)
		_, err := service.SearchCandidates(t.Context(), "q", 5)
		if !errors.Is(err, shared.ErrRetryable) {
			t.Errorf("expected retryable error for 429, got %v", err)
		}
	})
}

// YouTube Data API v3 implementation of [VideoSearcher]
//
// Search responses are reshaped into bronze candidate records; ranking is the
// 1-based position within the result set.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/medley/internal/shared"
	"github.com/desertthunder/medley/internal/snapshots"
	"golang.org/x/time/rate"
)

const (
	youtubeBaseURL     = "https://www.googleapis.com/youtube/v3"
	defaultSearchLimit = 5
)

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			PublishTime  string `json:"publishTime"`
		} `json:"snippet"`
	} `json:"items"`
}

// YouTubeService implements [VideoSearcher] against the YouTube Data API.
type YouTubeService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewYouTubeService creates a YouTubeService with the given API key.
func NewYouTubeService(apiKey string) (*YouTubeService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: youtube api_key is required", shared.ErrMissingCredentials)
	}

	return &YouTubeService{
		baseURL:    youtubeBaseURL,
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
		// Cooperative pause between per-track searches.
		limiter: rate.NewLimiter(rate.Every(300*time.Millisecond), 1),
	}, nil
}

// SearchCandidates returns up to limit video results for a query.
//
// Zero results is a valid outcome; the track may simply be unavailable on the
// platform.
func (y *YouTubeService) SearchCandidates(ctx context.Context, query string, limit int) ([]snapshots.RawCandidate, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("maxResults", fmt.Sprintf("%d", limit))
	params.Set("type", "video")
	params.Set("key", y.apiKey)

	endpoint := fmt.Sprintf("%s/search?%s", y.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: youtube request failed: %v", shared.ErrRetryable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError("youtube", resp.StatusCode)
	}

	var searchResp youtubeSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	candidates := make([]snapshots.RawCandidate, 0, len(searchResp.Items))
	for i, item := range searchResp.Items {
		candidates = append(candidates, snapshots.RawCandidate{
			VideoID:         item.ID.VideoID,
			Title:           item.Snippet.Title,
			Channel:         item.Snippet.ChannelTitle,
			RankingInSearch: i + 1,
			PublishTime:     item.Snippet.PublishTime,
		})
	}

	return candidates, nil
}

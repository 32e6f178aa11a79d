// Spotify Web API implementation of [PlaylistSource]
//
// Uses the client-credentials grant: playlist reads need no user consent, so
// no redirect listener or token cache is involved.
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
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	defaultPageSize = 100
)

// spotifyPlaylistMeta is the metadata subset requested before paging tracks.
type spotifyPlaylistMeta struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Tracks      struct {
		Total int `json:"total"`
	} `json:"tracks"`
}

// spotifyTrackPage is one page of a playlist's track list.
type spotifyTrackPage struct {
	Items []snapshots.PlaylistTrackItem `json:"items"`
	Total int                           `json:"total"`
	Next  *string                       `json:"next"`
}

// SpotifyService implements [PlaylistSource] against the Spotify Web API.
type SpotifyService struct {
	baseURL    string
	httpClient *http.Client
	pageSize   int
	limiter    *rate.Limiter
	onPage     func(fetched, total int)
}

// NewSpotifyService creates a SpotifyService authenticated with the
// client-credentials grant.
func NewSpotifyService(clientID, clientSecret string) (*SpotifyService, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret are required", shared.ErrMissingCredentials)
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyTokenURL,
	}

	return &SpotifyService{
		baseURL:    spotifyBaseURL,
		httpClient: config.Client(context.Background()),
		pageSize:   defaultPageSize,
		// Polite pause between pages; a cooperative throttle, not a
		// reaction to an observed failure.
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
	}, nil
}

// SetPageSize overrides the playlist page size (max 100 per the API).
func (s *SpotifyService) SetPageSize(size int) {
	if size > 0 && size <= defaultPageSize {
		s.pageSize = size
	}
}

// OnPage registers a callback invoked after each fetched page, used for
// per-unit progress reporting.
func (s *SpotifyService) OnPage(fn func(fetched, total int)) {
	s.onPage = fn
}

// PlaylistSnapshot fetches playlist metadata and every page of its track list.
func (s *SpotifyService) PlaylistSnapshot(ctx context.Context, playlistID string) (*snapshots.PlaylistSnapshot, error) {
	var meta spotifyPlaylistMeta
	endpoint := fmt.Sprintf("/playlists/%s?fields=%s", playlistID, url.QueryEscape("name,description,tracks(total)"))
	if err := s.doRequest(ctx, endpoint, &meta); err != nil {
		return nil, err
	}

	snap := &snapshots.PlaylistSnapshot{
		Name:        meta.Name,
		Description: meta.Description,
		FetchedAt:   shared.NowISO(),
	}
	snap.Tracks.Total = meta.Tracks.Total

	offset := 0
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var page spotifyTrackPage
		endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", playlistID, s.pageSize, offset)
		if err := s.doRequest(ctx, endpoint, &page); err != nil {
			return nil, err
		}

		snap.Tracks.Items = append(snap.Tracks.Items, page.Items...)
		if s.onPage != nil {
			s.onPage(len(snap.Tracks.Items), snap.Tracks.Total)
		}

		if page.Next == nil || len(page.Items) == 0 {
			break
		}
		offset += s.pageSize
	}

	return snap, nil
}

// doRequest performs an authenticated GET against the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: spotify request failed: %v", shared.ErrRetryable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: spotify returned 404", shared.ErrPlaylistNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError("spotify", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

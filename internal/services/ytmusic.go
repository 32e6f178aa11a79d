// YT Music proxy implementation of [PlaylistSink]
//
// Communicates with the FastAPI proxy wrapping ytmusicapi. The proxy
// authenticates with browser headers (see `medley setup youtube`).
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/desertthunder/medley/internal/shared"
)

const defaultProxyURL = "http://localhost:8080"

// YTMusicService implements [PlaylistSink] via the ytmusicapi proxy.
type YTMusicService struct {
	baseURL    string
	authFile   string
	httpClient *http.Client
}

// NewYTMusicService creates a YTMusicService pointed at the proxy.
func NewYTMusicService(baseURL, authFile string) *YTMusicService {
	if baseURL == "" {
		baseURL = defaultProxyURL
	}

	return &YTMusicService{
		baseURL:    baseURL,
		authFile:   authFile,
		httpClient: http.DefaultClient,
	}
}

// CreatePlaylist creates a private playlist and returns its id.
func (y *YTMusicService) CreatePlaylist(ctx context.Context, title, description string) (string, error) {
	body := struct {
		Title         string `json:"title"`
		Description   string `json:"description"`
		PrivacyStatus string `json:"privacy_status"`
	}{
		Title:         title,
		Description:   description,
		PrivacyStatus: "PRIVATE",
	}

	var resp struct {
		PlaylistID string `json:"playlist_id"`
	}

	if err := y.doPost(ctx, "/api/playlists", body, &resp); err != nil {
		return "", fmt.Errorf("failed to create playlist: %w", err)
	}
	if resp.PlaylistID == "" {
		return "", fmt.Errorf("%w: proxy returned no playlist id", shared.ErrAPIRequest)
	}

	return resp.PlaylistID, nil
}

// AddPlaylistItems appends one batch of videos to a playlist in order.
func (y *YTMusicService) AddPlaylistItems(ctx context.Context, playlistID string, videoIDs []string) error {
	body := struct {
		VideoIDs []string `json:"video_ids"`
	}{
		VideoIDs: videoIDs,
	}

	endpoint := fmt.Sprintf("/api/playlists/%s/items", playlistID)
	if err := y.doPost(ctx, endpoint, body, nil); err != nil {
		return fmt.Errorf("failed to add playlist items: %w", err)
	}

	return nil
}

// BrowserSetupResponse is the proxy's answer to a browser-auth upload.
type BrowserSetupResponse struct {
	Success     bool           `json:"success"`
	Message     string         `json:"message"`
	AuthContent map[string]any `json:"auth_content"`
}

// SetupBrowser uploads raw browser headers so the proxy can mint browser.json.
func (y *YTMusicService) SetupBrowser(ctx context.Context, headersRaw string) (*BrowserSetupResponse, error) {
	body := struct {
		HeadersRaw string `json:"headers_raw"`
	}{
		HeadersRaw: headersRaw,
	}

	var resp BrowserSetupResponse
	if err := y.doPost(ctx, "/api/setup/browser", body, &resp); err != nil {
		return nil, fmt.Errorf("browser setup failed: %w", err)
	}

	return &resp, nil
}

func (y *YTMusicService) doPost(ctx context.Context, endpoint string, body, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, y.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if y.authFile != "" {
		req.Header.Set("X-Auth-File", y.authFile)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: proxy request failed: %v", shared.ErrRetryable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("%w: proxy status %d: %s", shared.ErrAPIRequest, resp.StatusCode, errResp.Detail)
		}
		return statusError("ytmusic proxy", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

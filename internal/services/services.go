package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/medley/internal/shared"
	"github.com/desertthunder/medley/internal/snapshots"
)

// PlaylistSource captures the full raw state of a source playlist.
type PlaylistSource interface {
	// PlaylistSnapshot fetches playlist metadata and the complete paginated
	// track list as one raw document.
	PlaylistSnapshot(ctx context.Context, playlistID string) (*snapshots.PlaylistSnapshot, error)
}

// VideoSearcher captures raw video candidates for one search query.
type VideoSearcher interface {
	// SearchCandidates returns up to limit results in search ranking order.
	// An empty result is a valid outcome, not an error.
	SearchCandidates(ctx context.Context, query string, limit int) ([]snapshots.RawCandidate, error)
}

// PlaylistSink creates and populates a playlist on the destination platform.
type PlaylistSink interface {
	// CreatePlaylist returns the destination playlist id.
	CreatePlaylist(ctx context.Context, title, description string) (string, error)

	// AddPlaylistItems appends one batch of videos in order. Failures
	// propagate to the caller; there is no partial-success bookkeeping.
	AddPlaylistItems(ctx context.Context, playlistID string, videoIDs []string) error
}

// statusError converts an HTTP response status into the pipeline's error
// taxonomy: 429 and 5xx are retryable, everything else fatal.
func statusError(service string, status int) error {
	if status == http.StatusTooManyRequests || status >= 500 {
		return fmt.Errorf("%w: %s returned status %d", shared.ErrRetryable, service, status)
	}
	return fmt.Errorf("%w: %s returned status %d", shared.ErrAPIRequest, service, status)
}

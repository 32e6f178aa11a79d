// Package services implements the outbound HTTP collaborators of the
// pipeline: the Spotify Web API (source capture), the YouTube Data API
// (candidate search), and the ytmusicapi FastAPI proxy (playlist
// materialization).
//
// Collaborators distinguish retryable upstream errors (rate limiting,
// transient network failures) from fatal ones by wrapping
// [shared.ErrRetryable]; the caller owns the retry loop.
package services

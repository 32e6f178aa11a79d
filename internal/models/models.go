package models

import (
	"fmt"
	"time"
)

// JobStatus represents the lifecycle state of a conversion job.
type JobStatus string

const (
	StatusPending JobStatus = "PENDING"
	StatusRunning JobStatus = "RUNNING"
	StatusDone    JobStatus = "DONE"
	StatusFailed  JobStatus = "FAILED"
)

// Valid reports whether s is one of the known job states.
func (s JobStatus) Valid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusDone, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s is a final state. Terminal jobs are never
// re-opened; retrying a conversion means creating a new job.
func (s JobStatus) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// CanTransition reports whether the transition s → next is allowed.
//
// The only legal paths are PENDING → RUNNING and RUNNING → {DONE, FAILED}.
func (s JobStatus) CanTransition(next JobStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusRunning
	case StatusRunning:
		return next == StatusDone || next == StatusFailed
	default:
		return false
	}
}

// ConversionJob is one end-to-end request to convert a Spotify playlist into a
// YouTube Music playlist. Created once, mutated only by status transitions,
// never deleted.
type ConversionJob struct {
	JobID             string
	SpotifyPlaylistID string
	PlaylistName      string
	UserIdentifier    string
	Status            JobStatus
	CreatedAt         time.Time
	FinishedAt        *time.Time
}

// Validate checks that the job carries the fields every stage depends on.
func (j *ConversionJob) Validate() error {
	if j.JobID == "" {
		return fmt.Errorf("job id is required")
	}
	if j.SpotifyPlaylistID == "" {
		return fmt.Errorf("spotify playlist id is required")
	}
	if j.PlaylistName == "" {
		return fmt.Errorf("playlist name is required")
	}
	if !j.Status.Valid() {
		return fmt.Errorf("invalid job status: %q", j.Status)
	}
	return nil
}

// SourceTrack is one normalized Spotify track row in the silver layer.
//
// Artist holds only the first credited artist; the remaining artists are
// discarded during normalization. AddedAt is a Unix timestamp, zero when the
// raw snapshot carried no added_at value.
type SourceTrack struct {
	JobID          string
	SpotifyTrackID string
	TrackName      string
	Artist         string
	AlbumName      string
	DurationMS     int
	IsExplicit     bool
	AddedAt        int64
	Popularity     int
}

// VideoCandidate is one raw YouTube search result for a Spotify track.
// Many candidates exist per track before selection; exactly one survives it.
type VideoCandidate struct {
	SpotifyTrackID  string
	VideoID         string
	Title           string
	ChannelName     string
	RankingInSearch int
	PublishTime     string
	FetchedAt       string
}

// SelectedMatch is the single accepted video for a track, one row per track
// in youtube_tracks_silver and, after promotion, in youtube_tracks_gold.
type SelectedMatch struct {
	JobID           string
	SpotifyTrackID  string
	YouTubeVideoID  string
	Title           string
	ChannelName     string
	RankingInSearch int
	PublishTime     string
	FetchedAt       string
}

// MappingEntry is one row of the append-only spotify_youtube_mapping ledger.
// Entries are unique on SpotifyTrackID and never overwritten; the first
// accepted mapping for a track wins across all jobs.
type MappingEntry struct {
	SpotifyTrackID string
	YouTubeVideoID string
	CreatedAt      string
}

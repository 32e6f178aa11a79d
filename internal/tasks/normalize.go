package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/medley/internal/models"
	"github.com/desertthunder/medley/internal/shared"
	"github.com/desertthunder/medley/internal/snapshots"
)

// FieldIssue records one degraded extraction: a raw field that was absent or
// unusable and fell back to its default. Issues are diagnostics, never
// failures; they let operators distinguish "track has no popularity score"
// from "extraction hit an unexpected shape" without digging through logs.
type FieldIssue struct {
	SpotifyTrackID string
	Field          string
	Detail         string
}

// NormalizeResult summarizes a silver normalization pass.
type NormalizeResult struct {
	Inserted int
	Skipped  int
	Issues   []FieldIssue
}

// SelectionResult summarizes a video selection pass.
type SelectionResult struct {
	Selected   int
	Unresolved int
}

// ExtractTrack flattens one raw playlist item into a silver track row with
// defensive defaults: missing text becomes empty strings, missing numbers
// zero, a missing or empty added_at normalizes to epoch zero.
//
// Only the first credited artist is retained; dropping the rest is documented
// behavior of this layer, not an accident.
func ExtractTrack(jobID string, item snapshots.PlaylistTrackItem) (models.SourceTrack, []FieldIssue) {
	track := models.SourceTrack{
		JobID:          jobID,
		SpotifyTrackID: item.Track.ID,
		TrackName:      item.Track.Name,
		AlbumName:      item.Track.Album.Name,
		DurationMS:     item.Track.DurationMS,
		IsExplicit:     item.Track.Explicit,
		AddedAt:        shared.EpochFromISO(item.AddedAt),
		Popularity:     item.Track.Popularity,
	}

	var issues []FieldIssue
	issue := func(field, detail string) {
		issues = append(issues, FieldIssue{SpotifyTrackID: item.Track.ID, Field: field, Detail: detail})
	}

	if track.SpotifyTrackID == "" {
		issue("id", "missing track id, row skipped")
	}
	if track.TrackName == "" {
		issue("name", "missing track name")
	}

	if len(item.Track.Artists) > 0 {
		track.Artist = item.Track.Artists[0].Name
	} else {
		issue("artists", "no artists listed")
	}

	if item.AddedAt == "" {
		issue("added_at", "missing timestamp, defaulted to epoch zero")
	} else if track.AddedAt == 0 {
		issue("added_at", fmt.Sprintf("unparseable timestamp %q, defaulted to epoch zero", item.AddedAt))
	}

	return track, issues
}

// NormalizeSource transforms the job's bronze playlist snapshot into silver
// track rows, one per distinct track.
//
// Inserts are blind, so prior rows for the job are cleared first; re-running
// is idempotent at the row level. Items without a track id are skipped and
// reported as degraded extractions.
func (e *ConversionEngine) NormalizeSource(ctx context.Context, jobID string, progress chan<- ProgressUpdate) (*NormalizeResult, error) {
	if err := e.requireDone(jobID); err != nil {
		return nil, err
	}

	snap, err := e.store.ReadPlaylist(jobID)
	if err != nil {
		return nil, err
	}

	if err := e.tracks.ClearJob(jobID); err != nil {
		return nil, err
	}

	result := &NormalizeResult{}
	seen := make(map[string]bool)
	total := len(snap.Tracks.Items)

	for i, item := range snap.Tracks.Items {
		track, issues := ExtractTrack(jobID, item)
		result.Issues = append(result.Issues, issues...)

		if track.SpotifyTrackID == "" || seen[track.SpotifyTrackID] {
			result.Skipped++
			continue
		}
		seen[track.SpotifyTrackID] = true

		if err := e.tracks.Insert(&track); err != nil {
			return nil, err
		}
		result.Inserted++

		e.sendProgress(progress, normalizeUpdate(i+1, total))
	}

	for _, issue := range result.Issues {
		e.logger.Warn("degraded extraction", "job", jobID, "track", issue.SpotifyTrackID, "field", issue.Field, "detail", issue.Detail)
	}
	e.logger.Info("source normalization complete", "job", jobID, "inserted", result.Inserted, "skipped", result.Skipped)

	return result, nil
}

// SelectVideos reduces each track's raw candidate snapshot to the single best
// video and writes it to the silver layer.
//
// Tracks with no snapshot or zero candidates are unresolved: they are skipped,
// counted, and excluded from every downstream stage, never raised as errors.
func (e *ConversionEngine) SelectVideos(ctx context.Context, jobID string, progress chan<- ProgressUpdate) (*SelectionResult, error) {
	if err := e.requireDone(jobID); err != nil {
		return nil, err
	}

	tracks, err := e.tracks.ListByJob(jobID)
	if err != nil {
		return nil, err
	}

	if err := e.videos.ClearJob(jobID); err != nil {
		return nil, err
	}

	result := &SelectionResult{}
	total := len(tracks)

	for i, track := range tracks {
		e.sendProgress(progress, selectUpdate(i+1, total, track.SpotifyTrackID))

		snap, err := e.store.ReadSearch(track.SpotifyTrackID)
		if err != nil {
			if errors.Is(err, shared.ErrSnapshotNotFound) {
				result.Unresolved++
				continue
			}
			return nil, err
		}

		best := SelectCandidate(snap.Candidates)
		if best == nil {
			result.Unresolved++
			continue
		}

		match := models.SelectedMatch{
			JobID:           jobID,
			SpotifyTrackID:  track.SpotifyTrackID,
			YouTubeVideoID:  best.VideoID,
			Title:           best.Title,
			ChannelName:     best.Channel,
			RankingInSearch: best.RankingInSearch,
			PublishTime:     best.PublishTime,
			FetchedAt:       snap.FetchedAt,
		}
		if err := e.videos.Insert(&match); err != nil {
			return nil, err
		}
		result.Selected++
	}

	e.logger.Info("video selection complete", "job", jobID, "selected", result.Selected, "unresolved", result.Unresolved)

	return result, nil
}

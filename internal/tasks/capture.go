package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/medley/internal/models"
	"github.com/desertthunder/medley/internal/shared"
	"github.com/desertthunder/medley/internal/snapshots"
)

// CaptureResult summarizes a completed source capture.
type CaptureResult struct {
	JobID       string
	TotalTracks int
	Fetched     int
}

// SearchResult summarizes a candidate capture pass.
type SearchResult struct {
	Searched int
	Skipped  int
}

// CaptureSource fetches the job's full playlist from Spotify and persists it
// as a bronze snapshot, driving the job state machine along the way:
// PENDING → RUNNING at the start, RUNNING → DONE on success, RUNNING → FAILED
// on any unrecovered error.
func (e *ConversionEngine) CaptureSource(ctx context.Context, jobID string, progress chan<- ProgressUpdate) (*CaptureResult, error) {
	job, err := e.jobs.Get(jobID)
	if err != nil {
		return nil, err
	}

	if err := e.jobs.Transition(jobID, models.StatusRunning); err != nil {
		return nil, err
	}

	var snap *snapshots.PlaylistSnapshot
	err = shared.Retry(ctx, e.retry, func() error {
		var captureErr error
		snap, captureErr = e.spotify.PlaylistSnapshot(ctx, job.SpotifyPlaylistID)
		return captureErr
	})
	if err != nil {
		e.failJob(jobID, err)
		return nil, err
	}

	e.sendProgress(progress, capturePageUpdate(len(snap.Tracks.Items), snap.Tracks.Total))

	if err := e.store.WritePlaylist(jobID, snap); err != nil {
		e.failJob(jobID, err)
		return nil, err
	}

	if err := e.jobs.Transition(jobID, models.StatusDone); err != nil {
		return nil, err
	}

	e.logger.Info("source capture complete", "job", jobID, "tracks", len(snap.Tracks.Items))

	return &CaptureResult{
		JobID:       jobID,
		TotalTracks: snap.Tracks.Total,
		Fetched:     len(snap.Tracks.Items),
	}, nil
}

// CaptureCandidates searches YouTube for every normalized track of the job
// and persists each raw result set as a bronze snapshot keyed by track id.
//
// Tracks that already have a snapshot are skipped, so an interrupted pass
// resumes where it left off. A search that returns zero candidates still
// produces a snapshot; absence is recorded, not retried.
func (e *ConversionEngine) CaptureCandidates(ctx context.Context, jobID string, progress chan<- ProgressUpdate) (*SearchResult, error) {
	if err := e.requireDone(jobID); err != nil {
		return nil, err
	}

	tracks, err := e.tracks.ListByJob(jobID)
	if err != nil {
		return nil, err
	}

	result := &SearchResult{}
	total := len(tracks)

	for i, track := range tracks {
		if e.store.HasSearch(track.SpotifyTrackID) {
			e.sendProgress(progress, searchSkipUpdate(i+1, total, track.SpotifyTrackID))
			result.Skipped++
			continue
		}

		query := fmt.Sprintf("%s %s lyrics", track.TrackName, track.Artist)
		e.sendProgress(progress, searchTrackUpdate(i+1, total, query))

		var candidates []snapshots.RawCandidate
		err := shared.Retry(ctx, e.retry, func() error {
			var searchErr error
			candidates, searchErr = e.searcher.SearchCandidates(ctx, query, e.searchLimit)
			return searchErr
		})
		if err != nil {
			return nil, fmt.Errorf("candidate search failed for %s: %w", track.SpotifyTrackID, err)
		}

		snap := &snapshots.SearchSnapshot{
			SpotifyTrackID: track.SpotifyTrackID,
			Query:          query,
			FetchedAt:      shared.NowISO(),
			Candidates:     candidates,
		}
		if err := e.store.WriteSearch(track.SpotifyTrackID, snap); err != nil {
			return nil, err
		}

		result.Searched++
	}

	e.logger.Info("candidate capture complete", "job", jobID, "searched", result.Searched, "skipped", result.Skipped)

	return result, nil
}

// requireDone verifies that the job's capture finished successfully.
// Downstream stages treat only DONE jobs as eligible sources of truth.
func (e *ConversionEngine) requireDone(jobID string) error {
	job, err := e.jobs.Get(jobID)
	if err != nil {
		return err
	}
	if job.Status != models.StatusDone {
		return fmt.Errorf("%w: job %s is %s, capture must complete first", shared.ErrInvalidInput, jobID, job.Status)
	}
	return nil
}

// failJob marks the job FAILED before the error is surfaced to the operator.
func (e *ConversionEngine) failJob(jobID string, cause error) {
	if err := e.jobs.Transition(jobID, models.StatusFailed); err != nil {
		e.logger.Error("failed to mark job as FAILED", "job", jobID, "error", err)
	}
	e.logger.Error("job failed", "job", jobID, "error", cause)
}

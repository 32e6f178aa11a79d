package tasks

import (
	"context"
)

// RunResult aggregates the stage summaries of one end-to-end conversion.
type RunResult struct {
	Capture   *CaptureResult
	Normalize *NormalizeResult
	Search    *SearchResult
	Selection *SelectionResult
	Promote   *PromoteResult
	Playlist  *MaterializeResult
}

// Run executes the full conversion pipeline for one job: capture the source
// playlist, normalize it, capture and select video candidates, promote to
// gold and the ledger, then materialize the playlist.
//
// Stages run strictly in order and the first error aborts the run. Capture
// owns the job state machine, so a failure there leaves the job FAILED; later
// stages leave it DONE and can be re-run individually once the cause is fixed.
func (e *ConversionEngine) Run(ctx context.Context, jobID string, progress chan<- ProgressUpdate) (*RunResult, error) {
	result := &RunResult{}
	var err error

	if result.Capture, err = e.CaptureSource(ctx, jobID, progress); err != nil {
		return nil, err
	}
	if result.Normalize, err = e.NormalizeSource(ctx, jobID, progress); err != nil {
		return nil, err
	}
	if result.Search, err = e.CaptureCandidates(ctx, jobID, progress); err != nil {
		return nil, err
	}
	if result.Selection, err = e.SelectVideos(ctx, jobID, progress); err != nil {
		return nil, err
	}
	if result.Promote, err = e.Promote(ctx, jobID, progress); err != nil {
		return nil, err
	}
	if result.Playlist, err = e.Materialize(ctx, jobID, progress); err != nil {
		return nil, err
	}

	e.logger.Info("conversion complete",
		"job", jobID,
		"tracks", result.Normalize.Inserted,
		"selected", result.Selection.Selected,
		"playlist", result.Playlist.PlaylistID,
	)

	return result, nil
}

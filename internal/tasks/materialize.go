package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/medley/internal/shared"
)

// MaterializeResult summarizes a playlist materialization.
type MaterializeResult struct {
	PlaylistID string
	Submitted  int
	Batches    int
	Unmapped   int // tracks with no ledger entry, left out of the playlist
}

// Materialize replays the job's mapped videos into a new YouTube Music
// playlist in source order, submitting fixed-size batches with a mandatory
// pacing delay between them.
//
// Video ids come from the ledger, so a track resolved by an earlier job keeps
// its first accepted mapping. A rejected batch aborts the operation; no batch
// cursor is persisted, and the caller decides whether to retry from scratch.
func (e *ConversionEngine) Materialize(ctx context.Context, jobID string, progress chan<- ProgressUpdate) (*MaterializeResult, error) {
	if err := e.requireDone(jobID); err != nil {
		return nil, err
	}

	job, err := e.jobs.Get(jobID)
	if err != nil {
		return nil, err
	}

	tracks, err := e.tracks.ListByJob(jobID)
	if err != nil {
		return nil, err
	}

	result := &MaterializeResult{}
	var videoIDs []string
	for _, track := range tracks {
		entry, err := e.mappings.Get(track.SpotifyTrackID)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			result.Unmapped++
			continue
		}
		videoIDs = append(videoIDs, entry.YouTubeVideoID)
	}

	if len(videoIDs) == 0 {
		return nil, fmt.Errorf("%w: no mapped videos for job %s", shared.ErrInvalidInput, jobID)
	}

	description := fmt.Sprintf(
		"Converted from Spotify playlist %s.\nSynced at %s.",
		job.SpotifyPlaylistID, shared.NowISO(),
	)

	e.sendProgress(progress, createPlaylistUpdate(job.PlaylistName))
	playlistID, err := e.sink.CreatePlaylist(ctx, job.PlaylistName, description)
	if err != nil {
		return nil, err
	}
	result.PlaylistID = playlistID

	batches := (len(videoIDs) + e.batchSize - 1) / e.batchSize
	for i := 0; i < len(videoIDs); i += e.batchSize {
		end := i + e.batchSize
		if end > len(videoIDs) {
			end = len(videoIDs)
		}

		batch := videoIDs[i:end]
		e.sendProgress(progress, submitBatchUpdate(result.Batches+1, batches, i+1, end))

		if err := e.sink.AddPlaylistItems(ctx, playlistID, batch); err != nil {
			return result, fmt.Errorf("batch %d/%d rejected: %w", result.Batches+1, batches, err)
		}

		result.Batches++
		result.Submitted += len(batch)

		if end < len(videoIDs) {
			select {
			case <-time.After(e.batchPause):
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}
	}

	e.logger.Info("materialization complete", "job", jobID, "playlist", playlistID, "submitted", result.Submitted, "batches", result.Batches, "unmapped", result.Unmapped)

	return result, nil
}

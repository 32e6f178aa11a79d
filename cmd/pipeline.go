package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/medley/internal/shared"
	"github.com/desertthunder/medley/internal/tasks"
	"github.com/urfave/cli/v3"
)

// requireJobID extracts the job id positional argument.
func requireJobID(cmd *cli.Command) (string, error) {
	jobID := cmd.Args().First()
	if jobID == "" {
		return "", fmt.Errorf("%w: job id is required", shared.ErrMissingArgument)
	}
	return jobID, nil
}

// printProgress consumes pipeline progress updates and renders them as plain
// console lines. Returns the channel to hand to the engine.
func (r *Runner) printProgress() chan tasks.ProgressUpdate {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case tasks.CaptureSource:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.SearchCandidates:
				r.writePlain("🔍 %s\n", update.Message)
			case tasks.CreatePlaylist:
				r.writePlain("\n📝 %s\n", update.Message)
			case tasks.SubmitBatch:
				r.writePlain("   %s\n", update.Message)
			default:
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()
	return progressCh
}

// PipelineRun executes the full conversion pipeline for one job.
func (r *Runner) PipelineRun(ctx context.Context, cmd *cli.Command) error {
	jobID, err := requireJobID(cmd)
	if err != nil {
		return err
	}

	engine, err := r.openEngine()
	if err != nil {
		return err
	}

	r.logger.Info("starting conversion", "job", jobID)
	r.writePlain("Converting job %s...\n\n", jobID)

	progressCh := r.printProgress()
	result, err := engine.Run(ctx, jobID, progressCh)
	close(progressCh)

	if err != nil {
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Conversion Complete!")
	r.writePlain("Tracks:     %d\n", result.Normalize.Inserted)
	r.writePlain("Matched:    %d\n", result.Selection.Selected)
	r.writePlain("Unresolved: %d\n", result.Selection.Unresolved)
	r.writePlain("Playlist:   %s (%d videos in %d batches)\n",
		result.Playlist.PlaylistID, result.Playlist.Submitted, result.Playlist.Batches)
	if result.Playlist.Unmapped > 0 {
		r.writePlain("Unmapped:   %d tracks left out of the playlist\n", result.Playlist.Unmapped)
	}

	return nil
}

// stageAction wraps one pipeline stage as a CLI action.
func (r *Runner) stageAction(run func(ctx context.Context, engine *tasks.ConversionEngine, jobID string, progress chan tasks.ProgressUpdate) (any, error)) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		jobID, err := requireJobID(cmd)
		if err != nil {
			return err
		}

		engine, err := r.openEngine()
		if err != nil {
			return err
		}

		progressCh := r.printProgress()
		result, err := run(ctx, engine, jobID, progressCh)
		close(progressCh)

		if err != nil {
			return err
		}
		return r.writeJSON(result, true)
	}
}

// pipelineCommand exposes the full run plus each stage individually.
func pipelineCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run the conversion pipeline for a job",
		ArgsUsage: "<job-id>",
		Action:    r.PipelineRun,
		Commands: []*cli.Command{
			{
				Name:      "capture",
				Usage:     "Capture the source playlist snapshot",
				ArgsUsage: "<job-id>",
				Action: r.stageAction(func(ctx context.Context, engine *tasks.ConversionEngine, jobID string, progress chan tasks.ProgressUpdate) (any, error) {
					return engine.CaptureSource(ctx, jobID, progress)
				}),
			},
			{
				Name:      "normalize",
				Usage:     "Normalize the captured playlist into silver rows",
				ArgsUsage: "<job-id>",
				Action: r.stageAction(func(ctx context.Context, engine *tasks.ConversionEngine, jobID string, progress chan tasks.ProgressUpdate) (any, error) {
					return engine.NormalizeSource(ctx, jobID, progress)
				}),
			},
			{
				Name:      "search",
				Usage:     "Capture video candidates for every track",
				ArgsUsage: "<job-id>",
				Action: r.stageAction(func(ctx context.Context, engine *tasks.ConversionEngine, jobID string, progress chan tasks.ProgressUpdate) (any, error) {
					return engine.CaptureCandidates(ctx, jobID, progress)
				}),
			},
			{
				Name:      "select",
				Usage:     "Select the best video per track",
				ArgsUsage: "<job-id>",
				Action: r.stageAction(func(ctx context.Context, engine *tasks.ConversionEngine, jobID string, progress chan tasks.ProgressUpdate) (any, error) {
					return engine.SelectVideos(ctx, jobID, progress)
				}),
			},
			{
				Name:      "promote",
				Usage:     "Rebuild the gold table and append to the ledger",
				ArgsUsage: "<job-id>",
				Action: r.stageAction(func(ctx context.Context, engine *tasks.ConversionEngine, jobID string, progress chan tasks.ProgressUpdate) (any, error) {
					return engine.Promote(ctx, jobID, progress)
				}),
			},
			{
				Name:      "materialize",
				Usage:     "Create the YouTube Music playlist from the ledger",
				ArgsUsage: "<job-id>",
				Action: r.stageAction(func(ctx context.Context, engine *tasks.ConversionEngine, jobID string, progress chan tasks.ProgressUpdate) (any, error) {
					return engine.Materialize(ctx, jobID, progress)
				}),
			},
		},
	}
}

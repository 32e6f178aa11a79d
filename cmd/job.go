package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/medley/internal/models"
	"github.com/urfave/cli/v3"
)

// JobCreate registers a new PENDING conversion job for a Spotify playlist.
func (r *Runner) JobCreate(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.openEngine()
	if err != nil {
		return err
	}

	job, err := engine.Jobs().Create(cmd.String("playlist"), cmd.String("name"), cmd.String("user"))
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	r.logger.Info("job created", "job", job.JobID, "playlist", job.SpotifyPlaylistID)
	if cmd.Bool("json") {
		return r.writeJSON(job, true)
	}

	r.writePlain("Created job %s\n", job.JobID)
	r.writePlain("Run the pipeline with: medley run %s\n", job.JobID)
	return nil
}

// JobShow displays one job, or the most recent one when no id is given.
func (r *Runner) JobShow(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.openEngine()
	if err != nil {
		return err
	}

	var job *models.ConversionJob
	if jobID := cmd.Args().First(); jobID != "" {
		job, err = engine.Jobs().Get(jobID)
	} else {
		job, err = engine.Jobs().Latest()
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(job, true)
	}

	r.writePlain("Job:      %s\n", job.JobID)
	r.writePlain("Playlist: %s (%s)\n", job.PlaylistName, job.SpotifyPlaylistID)
	r.writePlain("User:     %s\n", job.UserIdentifier)
	r.writePlain("Status:   %s\n", job.Status)
	r.writePlain("Created:  %s\n", job.CreatedAt.Format("2006-01-02 15:04:05"))
	if job.FinishedAt != nil {
		r.writePlain("Finished: %s\n", job.FinishedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// JobList displays all jobs, newest first.
func (r *Runner) JobList(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.openEngine()
	if err != nil {
		return err
	}

	jobs, err := engine.Jobs().List()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(jobs, true)
	}

	if len(jobs) == 0 {
		r.writePlain("No jobs yet. Create one with: medley job create\n")
		return nil
	}

	for _, job := range jobs {
		r.writePlain("%s  %-7s  %s (%s)\n", job.JobID, job.Status, job.PlaylistName, job.SpotifyPlaylistID)
	}
	return nil
}

// jobCommand manages conversion jobs.
func jobCommand(r *Runner) *cli.Command {
	jsonFlag := &cli.BoolFlag{
		Name:  "json",
		Usage: "Output as JSON",
	}

	return &cli.Command{
		Name:  "job",
		Usage: "Manage conversion jobs",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Register a new conversion job",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "playlist",
						Aliases:  []string{"p"},
						Usage:    "Spotify playlist ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "Playlist display name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "user",
						Usage: "User identifier recorded on the job",
						Value: "default",
					},
					jsonFlag,
				},
				Action: r.JobCreate,
			},
			{
				Name:      "show",
				Usage:     "Show a job (latest when no id is given)",
				ArgsUsage: "[job-id]",
				Flags:     []cli.Flag{jsonFlag},
				Action:    r.JobShow,
			},
			{
				Name:   "list",
				Usage:  "List all jobs, newest first",
				Flags:  []cli.Flag{jsonFlag},
				Action: r.JobList,
			},
		},
	}
}

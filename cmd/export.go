package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/medley/internal/formatter"
	"github.com/desertthunder/medley/internal/repositories"
	"github.com/desertthunder/medley/internal/shared"
	"github.com/urfave/cli/v3"
)

// ExportReport renders a job's conversion report in the requested format.
func (r *Runner) ExportReport(ctx context.Context, cmd *cli.Command) error {
	jobID, err := requireJobID(cmd)
	if err != nil {
		return err
	}

	engine, err := r.openEngine()
	if err != nil {
		return err
	}

	job, err := engine.Jobs().Get(jobID)
	if err != nil {
		return err
	}

	tracks, err := repositories.NewSpotifySilverRepository(r.db).ListByJob(jobID)
	if err != nil {
		return err
	}
	matches, err := repositories.NewYouTubeSilverRepository(r.db).ListByJob(jobID)
	if err != nil {
		return err
	}

	report := &formatter.ConversionReport{Job: job, Tracks: tracks, Matches: matches}

	var data []byte
	switch format := cmd.String("format"); format {
	case "md", "markdown":
		data, err = formatter.ReportToMarkdown(report)
	case "txt", "text":
		data, err = formatter.ReportToText(report)
	case "csv":
		data, err = formatter.TracksToCSV(tracks)
	default:
		return fmt.Errorf("%w: unknown format %q (md, txt, csv)", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteFile(path, data); err != nil {
			return err
		}
		r.writePlain("Report written to %s\n", path)
		return nil
	}

	return r.writePlain("%s", data)
}

// exportCommand renders conversion reports.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export a job's conversion report",
		ArgsUsage: "<job-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Report format: md, txt, or csv",
				Value:   "md",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to a file instead of stdout",
			},
		},
		Action: r.ExportReport,
	}
}

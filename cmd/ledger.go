package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/medley/internal/formatter"
	"github.com/desertthunder/medley/internal/repositories"
	"github.com/desertthunder/medley/internal/shared"
	"github.com/urfave/cli/v3"
)

// LedgerList displays every accepted track-to-video mapping in insertion order.
func (r *Runner) LedgerList(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.openEngine(); err != nil {
		return err
	}

	mappings := repositories.NewMappingRepository(r.db)
	entries, err := mappings.List()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, true)
	}
	if path := cmd.String("csv"); path != "" {
		data, err := formatter.MappingsToCSV(entries)
		if err != nil {
			return err
		}
		if err := formatter.WriteFile(path, data); err != nil {
			return err
		}
		r.writePlain("Wrote %d mappings to %s\n", len(entries), path)
		return nil
	}

	if len(entries) == 0 {
		r.writePlain("Ledger is empty.\n")
		return nil
	}

	for _, entry := range entries {
		r.writePlain("%s -> %s (%s)\n", entry.SpotifyTrackID, entry.YouTubeVideoID, entry.CreatedAt)
	}
	r.writePlain("\n%d mappings\n", len(entries))
	return nil
}

// LedgerLookup shows the accepted mapping for one Spotify track.
func (r *Runner) LedgerLookup(ctx context.Context, cmd *cli.Command) error {
	trackID := cmd.Args().First()
	if trackID == "" {
		return fmt.Errorf("%w: spotify track id is required", shared.ErrMissingArgument)
	}

	if _, err := r.openEngine(); err != nil {
		return err
	}

	mappings := repositories.NewMappingRepository(r.db)
	entry, err := mappings.Get(trackID)
	if err != nil {
		return err
	}
	if entry == nil {
		r.writePlain("No mapping recorded for %s\n", trackID)
		return nil
	}

	if cmd.Bool("json") {
		return r.writeJSON(entry, true)
	}

	r.writePlain("%s -> %s (recorded %s)\n", entry.SpotifyTrackID, entry.YouTubeVideoID, entry.CreatedAt)
	return nil
}

// ledgerCommand inspects the append-only mapping ledger.
func ledgerCommand(r *Runner) *cli.Command {
	jsonFlag := &cli.BoolFlag{
		Name:  "json",
		Usage: "Output as JSON",
	}

	return &cli.Command{
		Name:  "ledger",
		Usage: "Inspect the track-to-video mapping ledger",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List every accepted mapping",
				Flags: []cli.Flag{
					jsonFlag,
					&cli.StringFlag{
						Name:  "csv",
						Usage: "Write mappings to a CSV file at this path",
					},
				},
				Action: r.LedgerList,
			},
			{
				Name:      "lookup",
				Usage:     "Show the mapping for one Spotify track",
				ArgsUsage: "<spotify-track-id>",
				Flags:     []cli.Flag{jsonFlag},
				Action:    r.LedgerLookup,
			},
		},
	}
}

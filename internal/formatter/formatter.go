// package formatter renders conversion data for export (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/desertthunder/medley/internal/models"
	"github.com/desertthunder/medley/internal/shared"
)

// ConversionReport bundles everything the report renderers need about one job.
type ConversionReport struct {
	Job     *models.ConversionJob
	Tracks  []models.SourceTrack
	Matches []models.SelectedMatch
}

// MappingsToCSV renders ledger entries as CSV with columns: SpotifyTrackID, YouTubeVideoID, CreatedAt
func MappingsToCSV(entries []models.MappingEntry) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"SpotifyTrackID", "YouTubeVideoID", "CreatedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range entries {
		record := []string{entry.SpotifyTrackID, entry.YouTubeVideoID, entry.CreatedAt}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// TracksToCSV renders a job's normalized tracks as CSV.
func TracksToCSV(tracks []models.SourceTrack) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"SpotifyTrackID", "Name", "Artist", "Album", "Duration", "Explicit", "Popularity"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		record := []string{
			track.SpotifyTrackID,
			track.TrackName,
			track.Artist,
			track.AlbumName,
			shared.FormatDuration(track.DurationMS),
			strconv.FormatBool(track.IsExplicit),
			strconv.Itoa(track.Popularity),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ReportToMarkdown renders a conversion report as Markdown: job summary,
// per-track match table, and the tracks that found no video.
func ReportToMarkdown(report *ConversionReport) ([]byte, error) {
	if report.Job == nil {
		return nil, fmt.Errorf("report requires a job")
	}

	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", report.Job.PlaylistName))
	buf.WriteString(fmt.Sprintf("**Job**: %s\n", report.Job.JobID))
	buf.WriteString(fmt.Sprintf("**Source playlist**: %s\n", report.Job.SpotifyPlaylistID))
	buf.WriteString(fmt.Sprintf("**Status**: %s\n", report.Job.Status))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", len(report.Tracks)))
	buf.WriteString(fmt.Sprintf("**Matched**: %d\n\n", len(report.Matches)))

	matched := make(map[string]models.SelectedMatch, len(report.Matches))
	for _, match := range report.Matches {
		matched[match.SpotifyTrackID] = match
	}

	buf.WriteString("## Matches\n\n")
	buf.WriteString("| # | Track | Artist | Video | Channel |\n")
	buf.WriteString("|---|-------|--------|-------|--------|\n")

	var unmatched []models.SourceTrack
	row := 0
	for _, track := range report.Tracks {
		match, ok := matched[track.SpotifyTrackID]
		if !ok {
			unmatched = append(unmatched, track)
			continue
		}
		row++
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n",
			row, track.TrackName, track.Artist, match.YouTubeVideoID, match.ChannelName))
	}

	if len(unmatched) > 0 {
		buf.WriteString("\n## Unmatched\n\n")
		for i, track := range unmatched {
			buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.TrackName))
		}
	}

	return buf.Bytes(), nil
}

// ReportToText renders a conversion report as plain text.
func ReportToText(report *ConversionReport) ([]byte, error) {
	if report.Job == nil {
		return nil, fmt.Errorf("report requires a job")
	}

	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", report.Job.PlaylistName))
	buf.WriteString(fmt.Sprintf("Job: %s (%s)\n", report.Job.JobID, report.Job.Status))
	buf.WriteString(fmt.Sprintf("Tracks: %d, matched: %d\n\n", len(report.Tracks), len(report.Matches)))

	matched := make(map[string]models.SelectedMatch, len(report.Matches))
	for _, match := range report.Matches {
		matched[match.SpotifyTrackID] = match
	}

	for i, track := range report.Tracks {
		line := fmt.Sprintf("%d. %s - %s", i+1, track.Artist, track.TrackName)
		if match, ok := matched[track.SpotifyTrackID]; ok {
			line += fmt.Sprintf(" -> %s", match.YouTubeVideoID)
		} else {
			line += " (no match)"
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}

// WriteFile writes rendered export bytes to the given path.
func WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

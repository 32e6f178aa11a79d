package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/medley/internal/models"
)

// SpotifySilverRepository persists normalized source tracks, one row per
// distinct track per job (enforced by a unique constraint).
//
// Inserts are blind: re-running normalization must clear the job's rows first.
type SpotifySilverRepository struct {
	db *sql.DB
}

// NewSpotifySilverRepository creates a new SpotifySilverRepository with the given database connection
func NewSpotifySilverRepository(db *sql.DB) *SpotifySilverRepository {
	return &SpotifySilverRepository{db: db}
}

// ClearJob removes all silver track rows for a job ahead of re-normalization.
func (r *SpotifySilverRepository) ClearJob(jobID string) error {
	if _, err := r.db.Exec("DELETE FROM spotify_tracks_silver WHERE job_id = ?", jobID); err != nil {
		return fmt.Errorf("failed to clear silver tracks: %w", err)
	}
	return nil
}

// Insert writes one normalized track row.
func (r *SpotifySilverRepository) Insert(track *models.SourceTrack) error {
	query := `
		INSERT INTO spotify_tracks_silver (job_id, spotify_track_id, track_name, artist, album_name, duration_ms, is_explicit, added_at, popularity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	explicit := 0
	if track.IsExplicit {
		explicit = 1
	}

	if _, err := r.db.Exec(query,
		track.JobID,
		track.SpotifyTrackID,
		track.TrackName,
		track.Artist,
		track.AlbumName,
		track.DurationMS,
		explicit,
		track.AddedAt,
		track.Popularity,
	); err != nil {
		return fmt.Errorf("failed to insert silver track: %w", err)
	}

	return nil
}

// ListByJob retrieves every silver track row for a job in insertion order.
func (r *SpotifySilverRepository) ListByJob(jobID string) ([]models.SourceTrack, error) {
	query := `
		SELECT job_id, spotify_track_id, track_name, artist, album_name, duration_ms, is_explicit, added_at, popularity
		FROM spotify_tracks_silver
		WHERE job_id = ?
		ORDER BY rowid ASC
	`

	rows, err := r.db.Query(query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query silver tracks: %w", err)
	}
	defer rows.Close()

	var tracks []models.SourceTrack
	for rows.Next() {
		var (
			track    models.SourceTrack
			explicit int
			album    sql.NullString
		)
		if err := rows.Scan(&track.JobID, &track.SpotifyTrackID, &track.TrackName, &track.Artist, &album, &track.DurationMS, &explicit, &track.AddedAt, &track.Popularity); err != nil {
			return nil, fmt.Errorf("failed to scan silver track: %w", err)
		}
		track.IsExplicit = explicit != 0
		track.AlbumName = album.String
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

// YouTubeSilverRepository persists the selected video per source track for a
// job. Exactly one row per (job, track) by unique constraint; the selector
// has already reduced the raw candidate set before rows land here.
type YouTubeSilverRepository struct {
	db *sql.DB
}

// NewYouTubeSilverRepository creates a new YouTubeSilverRepository with the given database connection
func NewYouTubeSilverRepository(db *sql.DB) *YouTubeSilverRepository {
	return &YouTubeSilverRepository{db: db}
}

// ClearJob removes all selected-video rows for a job ahead of re-selection.
func (r *YouTubeSilverRepository) ClearJob(jobID string) error {
	if _, err := r.db.Exec("DELETE FROM youtube_tracks_silver WHERE job_id = ?", jobID); err != nil {
		return fmt.Errorf("failed to clear silver videos: %w", err)
	}
	return nil
}

// Insert writes the selected video row for one track.
func (r *YouTubeSilverRepository) Insert(match *models.SelectedMatch) error {
	query := `
		INSERT INTO youtube_tracks_silver (job_id, spotify_track_id, youtube_video_id, title, channel_name, ranking_in_search, time_of_upload, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	if _, err := r.db.Exec(query,
		match.JobID,
		match.SpotifyTrackID,
		match.YouTubeVideoID,
		match.Title,
		match.ChannelName,
		match.RankingInSearch,
		match.PublishTime,
		match.FetchedAt,
	); err != nil {
		return fmt.Errorf("failed to insert silver video: %w", err)
	}

	return nil
}

// ListByJob retrieves every selected video for a job in insertion order,
// which preserves the source playlist's track order.
func (r *YouTubeSilverRepository) ListByJob(jobID string) ([]models.SelectedMatch, error) {
	query := `
		SELECT job_id, spotify_track_id, youtube_video_id, title, channel_name, ranking_in_search, time_of_upload, fetched_at
		FROM youtube_tracks_silver
		WHERE job_id = ?
		ORDER BY rowid ASC
	`

	rows, err := r.db.Query(query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query silver videos: %w", err)
	}
	defer rows.Close()

	var matches []models.SelectedMatch
	for rows.Next() {
		match, err := scanMatch(rows.Scan)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *match)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return matches, nil
}

func scanMatch(scan func(dest ...any) error) (*models.SelectedMatch, error) {
	var (
		match   models.SelectedMatch
		title   sql.NullString
		channel sql.NullString
		upload  sql.NullString
		fetched sql.NullString
	)

	if err := scan(&match.JobID, &match.SpotifyTrackID, &match.YouTubeVideoID, &title, &channel, &match.RankingInSearch, &upload, &fetched); err != nil {
		return nil, fmt.Errorf("failed to scan silver video: %w", err)
	}

	match.Title = title.String
	match.ChannelName = channel.String
	match.PublishTime = upload.String
	match.FetchedAt = fetched.String

	return &match, nil
}

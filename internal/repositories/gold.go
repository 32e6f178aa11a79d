package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/medley/internal/models"
)

// GoldRepository maintains youtube_tracks_gold, the authoritative
// one-row-per-track projection.
//
// Gold is derived and recomputable: every promotion run drops and rebuilds it
// from the job's silver rows. The silver unique constraint guarantees one row
// per track, so promotion copies rows instead of re-filtering by search rank.
type GoldRepository struct {
	db *sql.DB
}

// NewGoldRepository creates a new GoldRepository with the given database connection
func NewGoldRepository(db *sql.DB) *GoldRepository {
	return &GoldRepository{db: db}
}

// Rebuild destructively recreates the gold table from a job's silver rows and
// returns the number of promoted tracks.
func (r *GoldRepository) Rebuild(jobID string) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DROP TABLE IF EXISTS youtube_tracks_gold"); err != nil {
		return 0, fmt.Errorf("failed to drop gold table: %w", err)
	}

	createSQL := `
		CREATE TABLE youtube_tracks_gold (
			spotify_track_id TEXT PRIMARY KEY,
			youtube_video_id TEXT NOT NULL,
			title TEXT,
			channel_name TEXT,
			time_of_upload TEXT,
			fetched_at TEXT
		)
	`
	if _, err := tx.Exec(createSQL); err != nil {
		return 0, fmt.Errorf("failed to create gold table: %w", err)
	}

	insertSQL := `
		INSERT INTO youtube_tracks_gold (spotify_track_id, youtube_video_id, title, channel_name, time_of_upload, fetched_at)
		SELECT spotify_track_id, youtube_video_id, title, channel_name, time_of_upload, fetched_at
		FROM youtube_tracks_silver
		WHERE job_id = ?
		ORDER BY rowid ASC
	`
	result, err := tx.Exec(insertSQL, jobID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert gold rows: %w", err)
	}

	promoted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit gold rebuild: %w", err)
	}

	return int(promoted), nil
}

// List retrieves every gold row in promotion order.
func (r *GoldRepository) List() ([]models.SelectedMatch, error) {
	query := `
		SELECT spotify_track_id, youtube_video_id, title, channel_name, time_of_upload, fetched_at
		FROM youtube_tracks_gold
		ORDER BY rowid ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query gold rows: %w", err)
	}
	defer rows.Close()

	var matches []models.SelectedMatch
	for rows.Next() {
		var (
			match   models.SelectedMatch
			title   sql.NullString
			channel sql.NullString
			upload  sql.NullString
			fetched sql.NullString
		)
		if err := rows.Scan(&match.SpotifyTrackID, &match.YouTubeVideoID, &title, &channel, &upload, &fetched); err != nil {
			return nil, fmt.Errorf("failed to scan gold row: %w", err)
		}
		match.Title = title.String
		match.ChannelName = channel.String
		match.PublishTime = upload.String
		match.FetchedAt = fetched.String
		matches = append(matches, match)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return matches, nil
}

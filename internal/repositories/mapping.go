package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/medley/internal/models"
	"github.com/desertthunder/medley/internal/shared"
)

// MappingRepository maintains spotify_youtube_mapping, the append-only ledger
// of accepted track-to-video mappings.
//
// The ledger is insert-if-absent: promoting the same track twice is a no-op,
// and a later job's differing selection never overwrites an earlier accepted
// mapping. First write wins.
type MappingRepository struct {
	db *sql.DB
}

// NewMappingRepository creates a new MappingRepository with the given database connection
func NewMappingRepository(db *sql.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

// Append records a mapping unless one already exists for the track.
// Returns true when a new ledger row was written.
func (r *MappingRepository) Append(spotifyTrackID, youtubeVideoID string) (bool, error) {
	query := `
		INSERT OR IGNORE INTO spotify_youtube_mapping (spotify_track_id, youtube_video_id, created_at)
		VALUES (?, ?, ?)
	`

	result, err := r.db.Exec(query, spotifyTrackID, youtubeVideoID, shared.NowISO())
	if err != nil {
		return false, fmt.Errorf("failed to append mapping: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows > 0, nil
}

// Get retrieves the ledger entry for a track, or nil when none exists.
func (r *MappingRepository) Get(spotifyTrackID string) (*models.MappingEntry, error) {
	query := `
		SELECT spotify_track_id, youtube_video_id, created_at
		FROM spotify_youtube_mapping
		WHERE spotify_track_id = ?
	`

	var entry models.MappingEntry
	err := r.db.QueryRow(query, spotifyTrackID).Scan(&entry.SpotifyTrackID, &entry.YouTubeVideoID, &entry.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan mapping: %w", err)
	}

	return &entry, nil
}

// List retrieves every ledger entry in insertion order.
func (r *MappingRepository) List() ([]models.MappingEntry, error) {
	query := `
		SELECT spotify_track_id, youtube_video_id, created_at
		FROM spotify_youtube_mapping
		ORDER BY rowid ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query mappings: %w", err)
	}
	defer rows.Close()

	var entries []models.MappingEntry
	for rows.Next() {
		var entry models.MappingEntry
		if err := rows.Scan(&entry.SpotifyTrackID, &entry.YouTubeVideoID, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan mapping: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// Count returns the number of ledger entries.
func (r *MappingRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM spotify_youtube_mapping").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count mappings: %w", err)
	}
	return count, nil
}

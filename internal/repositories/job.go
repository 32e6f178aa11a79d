package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/medley/internal/models"
	"github.com/desertthunder/medley/internal/shared"
)

// JobRepository persists conversion jobs and enforces the status state
// machine: PENDING → RUNNING → {DONE, FAILED}, terminal states final.
type JobRepository struct {
	db *sql.DB
}

// NewJobRepository creates a new JobRepository with the given database connection
func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new PENDING job and returns its generated id.
func (r *JobRepository) Create(spotifyPlaylistID, playlistName, userIdentifier string) (*models.ConversionJob, error) {
	job := &models.ConversionJob{
		JobID:             shared.GenerateID(),
		SpotifyPlaylistID: spotifyPlaylistID,
		PlaylistName:      playlistName,
		UserIdentifier:    userIdentifier,
		Status:            models.StatusPending,
		CreatedAt:         time.Now().UTC(),
	}

	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO playlist_conversion_job (job_id, spotify_playlist_id, playlist_name, user_identifier, status, created_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL)
	`

	if _, err := r.db.Exec(query,
		job.JobID,
		job.SpotifyPlaylistID,
		job.PlaylistName,
		job.UserIdentifier,
		string(job.Status),
		job.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to insert job: %w", err)
	}

	return job, nil
}

// Get retrieves a job by id. Returns [shared.ErrJobNotFound] for unknown ids.
func (r *JobRepository) Get(jobID string) (*models.ConversionJob, error) {
	query := `
		SELECT job_id, spotify_playlist_id, playlist_name, user_identifier, status, created_at, finished_at
		FROM playlist_conversion_job
		WHERE job_id = ?
	`

	return r.scanOne(r.db.QueryRow(query, jobID))
}

// Latest retrieves the most recently created job. Kept as a convenience for
// `job show` without an argument; pipeline stages always receive an explicit
// job id instead.
func (r *JobRepository) Latest() (*models.ConversionJob, error) {
	query := `
		SELECT job_id, spotify_playlist_id, playlist_name, user_identifier, status, created_at, finished_at
		FROM playlist_conversion_job
		ORDER BY created_at DESC
		LIMIT 1
	`

	return r.scanOne(r.db.QueryRow(query))
}

// List retrieves all jobs, newest first.
func (r *JobRepository) List() ([]*models.ConversionJob, error) {
	query := `
		SELECT job_id, spotify_playlist_id, playlist_name, user_identifier, status, created_at, finished_at
		FROM playlist_conversion_job
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.ConversionJob
	for rows.Next() {
		job, err := scanJob(rows.Scan)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return jobs, nil
}

// Transition moves a job to the next status as a single durable write.
//
// Terminal statuses record finished_at. Illegal transitions return
// [shared.ErrInvalidTransition] (or [shared.ErrJobFinished] when the job is
// already DONE or FAILED) without touching the row.
func (r *JobRepository) Transition(jobID string, next models.JobStatus) error {
	job, err := r.Get(jobID)
	if err != nil {
		return err
	}

	if job.Status.Terminal() {
		return fmt.Errorf("%w: %s is %s", shared.ErrJobFinished, jobID, job.Status)
	}
	if !job.Status.CanTransition(next) {
		return fmt.Errorf("%w: %s → %s", shared.ErrInvalidTransition, job.Status, next)
	}

	var result sql.Result
	if next.Terminal() {
		result, err = r.db.Exec(
			"UPDATE playlist_conversion_job SET status = ?, finished_at = ? WHERE job_id = ? AND status = ?",
			string(next), time.Now().UTC(), jobID, string(job.Status),
		)
	} else {
		result, err = r.db.Exec(
			"UPDATE playlist_conversion_job SET status = ? WHERE job_id = ? AND status = ?",
			string(next), jobID, string(job.Status),
		)
	}
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: job %s changed state concurrently", shared.ErrInvalidTransition, jobID)
	}

	return nil
}

// scanOne scans a single row into a [models.ConversionJob]
func (r *JobRepository) scanOne(row *sql.Row) (*models.ConversionJob, error) {
	job, err := scanJob(row.Scan)
	if err == sql.ErrNoRows {
		return nil, shared.ErrJobNotFound
	}
	return job, err
}

func scanJob(scan func(dest ...any) error) (*models.ConversionJob, error) {
	var (
		job        models.ConversionJob
		status     string
		finishedAt sql.NullTime
	)

	err := scan(&job.JobID, &job.SpotifyPlaylistID, &job.PlaylistName, &job.UserIdentifier, &status, &job.CreatedAt, &finishedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}

	job.Status = models.JobStatus(status)
	if finishedAt.Valid {
		t := finishedAt.Time
		job.FinishedAt = &t
	}

	return &job, nil
}

package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/medley/internal/models"
	"github.com/desertthunder/medley/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func mustCreateJob(t *testing.T, repo *JobRepository) *models.ConversionJob {
	t.Helper()
	job, err := repo.Create("spotify_pl_1", "Road Trip", "tester")
	if err != nil {
		t.Fatalf("failed to create job: %v", err)
	}
	return job
}

func TestJobRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := NewJobRepository(setupTestDB(t))
		job := mustCreateJob(t, repo)

		if job.JobID == "" {
			t.Error("job id should be generated")
		}
		if job.Status != models.StatusPending {
			t.Errorf("new job should be PENDING, got %s", job.Status)
		}
		if job.FinishedAt != nil {
			t.Error("new job should have no finished_at")
		}
	})

	t.Run("GetUnknown", func(t *testing.T) {
		repo := NewJobRepository(setupTestDB(t))

		_, err := repo.Get("nope")
		if !errors.Is(err, shared.ErrJobNotFound) {
			t.Errorf("expected ErrJobNotFound, got %v", err)
		}
	})

	t.Run("HappyPathTransitions", func(t *testing.T) {
		repo := NewJobRepository(setupTestDB(t))
		job := mustCreateJob(t, repo)

		if err := repo.Transition(job.JobID, models.StatusRunning); err != nil {
			t.Fatalf("PENDING to RUNNING failed: %v", err)
		}
		if err := repo.Transition(job.JobID, models.StatusDone); err != nil {
			t.Fatalf("RUNNING to DONE failed: %v", err)
		}

		stored, err := repo.Get(job.JobID)
		if err != nil {
			t.Fatalf("failed to load job: %v", err)
		}
		if stored.Status != models.StatusDone {
			t.Errorf("expected DONE, got %s", stored.Status)
		}
		if stored.FinishedAt == nil {
			t.Error("terminal transition should record finished_at")
		}
	})

	t.Run("SkippingRunningIsRejected", func(t *testing.T) {
		repo := NewJobRepository(setupTestDB(t))
		job := mustCreateJob(t, repo)

		err := repo.Transition(job.JobID, models.StatusDone)
		if !errors.Is(err, shared.ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition for PENDING to DONE, got %v", err)
		}
	})

	t.Run("TerminalStatesAreFinal", func(t *testing.T) {
		for _, terminal := range []models.JobStatus{models.StatusDone, models.StatusFailed} {
			repo := NewJobRepository(setupTestDB(t))
			job := mustCreateJob(t, repo)

			if err := repo.Transition(job.JobID, models.StatusRunning); err != nil {
				t.Fatalf("setup transition failed: %v", err)
			}
			if err := repo.Transition(job.JobID, terminal); err != nil {
				t.Fatalf("transition to %s failed: %v", terminal, err)
			}

			for _, next := range []models.JobStatus{models.StatusPending, models.StatusRunning, models.StatusDone, models.StatusFailed} {
				if err := repo.Transition(job.JobID, next); !errors.Is(err, shared.ErrJobFinished) {
					t.Errorf("%s to %s: expected ErrJobFinished, got %v", terminal, next, err)
				}
			}
		}
	})

	t.Run("LatestAndList", func(t *testing.T) {
		repo := NewJobRepository(setupTestDB(t))

		first := mustCreateJob(t, repo)
		second, err := repo.Create("spotify_pl_2", "Focus", "tester")
		if err != nil {
			t.Fatalf("failed to create second job: %v", err)
		}

		jobs, err := repo.List()
		if err != nil {
			t.Fatalf("failed to list jobs: %v", err)
		}
		if len(jobs) != 2 {
			t.Fatalf("expected 2 jobs, got %d", len(jobs))
		}

		latest, err := repo.Latest()
		if err != nil {
			t.Fatalf("failed to get latest job: %v", err)
		}
		if latest.JobID != first.JobID && latest.JobID != second.JobID {
			t.Errorf("latest returned unknown job %s", latest.JobID)
		}
	})
}

func TestSpotifySilverRepository(t *testing.T) {
	track := func(jobID, trackID, name string) *models.SourceTrack {
		return &models.SourceTrack{
			JobID:          jobID,
			SpotifyTrackID: trackID,
			TrackName:      name,
			Artist:         "Artist",
			AddedAt:        1709294400,
		}
	}

	t.Run("UniquePerJobAndTrack", func(t *testing.T) {
		repo := NewSpotifySilverRepository(setupTestDB(t))

		if err := repo.Insert(track("job1", "t1", "Alpha")); err != nil {
			t.Fatalf("first insert failed: %v", err)
		}
		if err := repo.Insert(track("job1", "t1", "Alpha again")); err == nil {
			t.Error("duplicate (job, track) insert should fail")
		}
		// same track under a different job is a separate silver row
		if err := repo.Insert(track("job2", "t1", "Alpha")); err != nil {
			t.Errorf("insert for different job failed: %v", err)
		}
	})

	t.Run("ListPreservesInsertionOrder", func(t *testing.T) {
		repo := NewSpotifySilverRepository(setupTestDB(t))

		for _, id := range []string{"t3", "t1", "t2"} {
			if err := repo.Insert(track("job1", id, "Song "+id)); err != nil {
				t.Fatalf("insert failed: %v", err)
			}
		}

		tracks, err := repo.ListByJob("job1")
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		want := []string{"t3", "t1", "t2"}
		for i, w := range want {
			if tracks[i].SpotifyTrackID != w {
				t.Errorf("position %d: expected %s, got %s", i, w, tracks[i].SpotifyTrackID)
			}
		}
	})

	t.Run("ClearJobScopedToJob", func(t *testing.T) {
		repo := NewSpotifySilverRepository(setupTestDB(t))

		if err := repo.Insert(track("job1", "t1", "Alpha")); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
		if err := repo.Insert(track("job2", "t1", "Alpha")); err != nil {
			t.Fatalf("insert failed: %v", err)
		}

		if err := repo.ClearJob("job1"); err != nil {
			t.Fatalf("clear failed: %v", err)
		}

		cleared, err := repo.ListByJob("job1")
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(cleared) != 0 {
			t.Errorf("expected no rows for cleared job, got %d", len(cleared))
		}

		kept, err := repo.ListByJob("job2")
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(kept) != 1 {
			t.Errorf("other job's rows should survive, got %d", len(kept))
		}
	})
}

func TestGoldRepository(t *testing.T) {
	match := func(jobID, trackID, videoID string) *models.SelectedMatch {
		return &models.SelectedMatch{
			JobID:           jobID,
			SpotifyTrackID:  trackID,
			YouTubeVideoID:  videoID,
			Title:           "Title " + trackID,
			ChannelName:     "Channel",
			RankingInSearch: 1,
		}
	}

	t.Run("RebuildCopiesJobRows", func(t *testing.T) {
		db := setupTestDB(t)
		silver := NewYouTubeSilverRepository(db)
		gold := NewGoldRepository(db)

		for _, id := range []string{"t1", "t2"} {
			if err := silver.Insert(match("job1", id, "v_"+id)); err != nil {
				t.Fatalf("insert failed: %v", err)
			}
		}
		if err := silver.Insert(match("job2", "t9", "v_t9")); err != nil {
			t.Fatalf("insert failed: %v", err)
		}

		promoted, err := gold.Rebuild("job1")
		if err != nil {
			t.Fatalf("rebuild failed: %v", err)
		}
		if promoted != 2 {
			t.Errorf("expected 2 promoted rows, got %d", promoted)
		}

		rows, err := gold.List()
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("expected 2 gold rows, got %d", len(rows))
		}
		for _, row := range rows {
			if row.SpotifyTrackID == "t9" {
				t.Error("other job's silver rows leaked into gold")
			}
		}
	})

	t.Run("RebuildIsDestructive", func(t *testing.T) {
		db := setupTestDB(t)
		silver := NewYouTubeSilverRepository(db)
		gold := NewGoldRepository(db)

		if err := silver.Insert(match("job1", "t1", "v1")); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
		if _, err := gold.Rebuild("job1"); err != nil {
			t.Fatalf("first rebuild failed: %v", err)
		}

		// rebuilding for another job replaces the projection entirely
		if err := silver.Insert(match("job2", "t2", "v2")); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
		if _, err := gold.Rebuild("job2"); err != nil {
			t.Fatalf("second rebuild failed: %v", err)
		}

		rows, err := gold.List()
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(rows) != 1 || rows[0].SpotifyTrackID != "t2" {
			t.Errorf("expected only job2's row after rebuild, got %+v", rows)
		}
	})
}

func TestMappingRepository(t *testing.T) {
	t.Run("FirstWriteWins", func(t *testing.T) {
		repo := NewMappingRepository(setupTestDB(t))

		added, err := repo.Append("t1", "video_a")
		if err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if !added {
			t.Error("first append should report a new row")
		}

		added, err = repo.Append("t1", "video_b")
		if err != nil {
			t.Fatalf("second append failed: %v", err)
		}
		if added {
			t.Error("second append for same track should be ignored")
		}

		entry, err := repo.Get("t1")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if entry == nil || entry.YouTubeVideoID != "video_a" {
			t.Errorf("expected original mapping to survive, got %+v", entry)
		}
	})

	t.Run("GetAbsentReturnsNil", func(t *testing.T) {
		repo := NewMappingRepository(setupTestDB(t))

		entry, err := repo.Get("unknown")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if entry != nil {
			t.Errorf("expected nil for absent mapping, got %+v", entry)
		}
	})

	t.Run("ListAndCountGrowMonotonically", func(t *testing.T) {
		repo := NewMappingRepository(setupTestDB(t))

		for _, id := range []string{"t1", "t2", "t1", "t3"} {
			if _, err := repo.Append(id, "v_"+id); err != nil {
				t.Fatalf("append failed: %v", err)
			}
		}

		entries, err := repo.List()
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(entries))
		}
		want := []string{"t1", "t2", "t3"}
		for i, w := range want {
			if entries[i].SpotifyTrackID != w {
				t.Errorf("position %d: expected %s, got %s", i, w, entries[i].SpotifyTrackID)
			}
		}

		count, err := repo.Count()
		if err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if count != 3 {
			t.Errorf("expected count 3, got %d", count)
		}
	})
}

package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/medley/internal/models"
	"github.com/desertthunder/medley/internal/repositories"
	"github.com/desertthunder/medley/internal/shared"
	"github.com/desertthunder/medley/internal/snapshots"
	mocks "github.com/desertthunder/medley/internal/testing"
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

func quietLogger() *log.Logger {
	return shared.NewLogger(io.Discard)
}

func playlistSnapshot(tracks ...snapshots.RawTrack) *snapshots.PlaylistSnapshot {
	snap := &snapshots.PlaylistSnapshot{
		Name:      "Test Playlist",
		FetchedAt: shared.NowISO(),
	}
	for _, track := range tracks {
		snap.Tracks.Items = append(snap.Tracks.Items, snapshots.PlaylistTrackItem{
			AddedAt: "2024-03-01T12:00:00Z",
			Track:   track,
		})
	}
	snap.Tracks.Total = len(snap.Tracks.Items)
	return snap
}

func rawTrack(id, name, artist string) snapshots.RawTrack {
	return snapshots.RawTrack{
		ID:      id,
		Name:    name,
		Artists: []snapshots.RawArtist{{Name: artist}},
		Album:   snapshots.RawAlbum{Name: "Album"},
	}
}

// testEngine wires a ConversionEngine around an in-memory database, a temp
// snapshot store, and mock services, returning the engine and its
// collaborators for assertions.
func testEngine(t *testing.T, source *mocks.MockPlaylistSource, searcher *mocks.MockVideoSearcher, sink *mocks.MockPlaylistSink) (*ConversionEngine, *sql.DB, *snapshots.Store) {
	t.Helper()

	db := setupTestDB(t)
	store := snapshots.NewStore(t.TempDir())

	engine := NewConversionEngine(EngineOpts{
		DB:         db,
		Snapshots:  store,
		Spotify:    source,
		Searcher:   searcher,
		Sink:       sink,
		Logger:     quietLogger(),
		BatchSize:  2,
		BatchPause: time.Millisecond,
		Retry:      shared.RetryPolicy{MaxAttempts: 2, Base: time.Millisecond},
	})
	return engine, db, store
}

func createJob(t *testing.T, db *sql.DB) *models.ConversionJob {
	t.Helper()
	job, err := repositories.NewJobRepository(db).Create("spotify_pl_1", "Test Playlist", "tester")
	if err != nil {
		t.Fatalf("failed to create job: %v", err)
	}
	return job
}

func searchResults(tracks map[string][]snapshots.RawCandidate) map[string][]snapshots.RawCandidate {
	results := make(map[string][]snapshots.RawCandidate, len(tracks))
	for name, candidates := range tracks {
		results[fmt.Sprintf("%s Artist lyrics", name)] = candidates
	}
	return results
}

func TestConversionEngineRun(t *testing.T) {
	source := &mocks.MockPlaylistSource{
		Snapshot: playlistSnapshot(
			rawTrack("t1", "Alpha", "Artist"),
			rawTrack("t2", "Beta", "Artist"),
			rawTrack("t3", "Gamma", "Artist"),
		),
	}
	searcher := &mocks.MockVideoSearcher{
		Results: searchResults(map[string][]snapshots.RawCandidate{
			"Alpha": {
				{VideoID: "a_plain", Channel: "Uploader", RankingInSearch: 1},
				{VideoID: "a_topic", Channel: "Artist - Topic", RankingInSearch: 2},
			},
			"Beta": {
				{VideoID: "b1", Channel: "Uploader", RankingInSearch: 1},
			},
			"Gamma": {}, // nothing found, track stays unresolved
		}),
	}
	sink := &mocks.MockPlaylistSink{PlaylistID: "PL_new"}

	engine, db, _ := testEngine(t, source, searcher, sink)
	job := createJob(t, db)

	result, err := engine.Run(context.Background(), job.JobID, nil)
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	stored, err := engine.Jobs().Get(job.JobID)
	if err != nil {
		t.Fatalf("failed to load job: %v", err)
	}
	if stored.Status != models.StatusDone {
		t.Errorf("expected DONE job, got %s", stored.Status)
	}
	if stored.FinishedAt == nil {
		t.Error("expected finished_at to be set on DONE")
	}

	if result.Normalize.Inserted != 3 {
		t.Errorf("expected 3 silver tracks, got %d", result.Normalize.Inserted)
	}
	if result.Selection.Selected != 2 || result.Selection.Unresolved != 1 {
		t.Errorf("unexpected selection counts: %+v", result.Selection)
	}
	if result.Promote.Promoted != 2 || result.Promote.Appended != 2 {
		t.Errorf("unexpected promotion counts: %+v", result.Promote)
	}

	// topic channel wins over the lower-ranked plain upload
	entry, err := repositories.NewMappingRepository(db).Get("t1")
	if err != nil {
		t.Fatalf("ledger lookup failed: %v", err)
	}
	if entry == nil || entry.YouTubeVideoID != "a_topic" {
		t.Errorf("expected topic video in ledger, got %+v", entry)
	}

	if result.Playlist.PlaylistID != "PL_new" {
		t.Errorf("unexpected playlist id %q", result.Playlist.PlaylistID)
	}
	if result.Playlist.Submitted != 2 || result.Playlist.Unmapped != 1 {
		t.Errorf("unexpected materialization counts: %+v", result.Playlist)
	}
	if len(sink.Batches) != 1 || len(sink.Batches[0]) != 2 {
		t.Errorf("expected one batch of 2 videos, got %+v", sink.Batches)
	}
	if sink.CreatedTitle != "Test Playlist" {
		t.Errorf("unexpected playlist title %q", sink.CreatedTitle)
	}
}

func TestCaptureSource(t *testing.T) {
	t.Run("FailureMarksJobFailed", func(t *testing.T) {
		source := &mocks.MockPlaylistSource{Err: fmt.Errorf("%w: spotify is down", shared.ErrRetryable)}
		engine, db, _ := testEngine(t, source, &mocks.MockVideoSearcher{}, &mocks.MockPlaylistSink{})
		job := createJob(t, db)

		if _, err := engine.CaptureSource(context.Background(), job.JobID, nil); err == nil {
			t.Fatal("expected capture to fail")
		}

		stored, err := engine.Jobs().Get(job.JobID)
		if err != nil {
			t.Fatalf("failed to load job: %v", err)
		}
		if stored.Status != models.StatusFailed {
			t.Errorf("expected FAILED job, got %s", stored.Status)
		}
		if stored.FinishedAt == nil {
			t.Error("expected finished_at to be set on FAILED")
		}
		if source.Calls != 2 {
			t.Errorf("expected 2 attempts for retryable error, got %d", source.Calls)
		}
	})

	t.Run("UnknownJob", func(t *testing.T) {
		engine, _, _ := testEngine(t, &mocks.MockPlaylistSource{}, &mocks.MockVideoSearcher{}, &mocks.MockPlaylistSink{})

		_, err := engine.CaptureSource(context.Background(), "missing", nil)
		if !errors.Is(err, shared.ErrJobNotFound) {
			t.Errorf("expected ErrJobNotFound, got %v", err)
		}
	})
}

func TestCaptureCandidatesSkipsExistingSnapshots(t *testing.T) {
	source := &mocks.MockPlaylistSource{
		Snapshot: playlistSnapshot(
			rawTrack("t1", "Alpha", "Artist"),
			rawTrack("t2", "Beta", "Artist"),
		),
	}
	searcher := &mocks.MockVideoSearcher{Results: map[string][]snapshots.RawCandidate{}}
	engine, db, store := testEngine(t, source, searcher, &mocks.MockPlaylistSink{})
	job := createJob(t, db)

	ctx := context.Background()
	if _, err := engine.CaptureSource(ctx, job.JobID, nil); err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if _, err := engine.NormalizeSource(ctx, job.JobID, nil); err != nil {
		t.Fatalf("normalize failed: %v", err)
	}

	if err := store.WriteSearch("t1", &snapshots.SearchSnapshot{SpotifyTrackID: "t1"}); err != nil {
		t.Fatalf("failed to seed snapshot: %v", err)
	}

	result, err := engine.CaptureCandidates(ctx, job.JobID, nil)
	if err != nil {
		t.Fatalf("candidate capture failed: %v", err)
	}
	if result.Skipped != 1 || result.Searched != 1 {
		t.Errorf("expected 1 skipped and 1 searched, got %+v", result)
	}
	if len(searcher.Queries) != 1 || searcher.Queries[0] != "Beta Artist lyrics" {
		t.Errorf("unexpected queries %v", searcher.Queries)
	}
}

func TestStagesRequireDoneCapture(t *testing.T) {
	engine, db, _ := testEngine(t, &mocks.MockPlaylistSource{}, &mocks.MockVideoSearcher{}, &mocks.MockPlaylistSink{})
	job := createJob(t, db)

	ctx := context.Background()
	stages := map[string]func() error{
		"normalize": func() error { _, err := engine.NormalizeSource(ctx, job.JobID, nil); return err },
		"search":    func() error { _, err := engine.CaptureCandidates(ctx, job.JobID, nil); return err },
		"select":    func() error { _, err := engine.SelectVideos(ctx, job.JobID, nil); return err },
		"promote":   func() error { _, err := engine.Promote(ctx, job.JobID, nil); return err },
		"playlist":  func() error { _, err := engine.Materialize(ctx, job.JobID, nil); return err },
	}

	for name, stage := range stages {
		if err := stage(); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("%s on PENDING job: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestLedgerFirstWriteWins(t *testing.T) {
	run := func(t *testing.T, engine *ConversionEngine, db *sql.DB) {
		t.Helper()
		job := createJob(t, db)
		if _, err := engine.Run(context.Background(), job.JobID, nil); err != nil {
			t.Fatalf("pipeline failed: %v", err)
		}
	}

	source := &mocks.MockPlaylistSource{
		Snapshot: playlistSnapshot(rawTrack("t1", "Alpha", "Artist")),
	}
	searcher := &mocks.MockVideoSearcher{
		Results: searchResults(map[string][]snapshots.RawCandidate{
			"Alpha": {{VideoID: "first_video", Channel: "Uploader", RankingInSearch: 1}},
		}),
	}

	engine, db, store := testEngine(t, source, searcher, &mocks.MockPlaylistSink{})
	run(t, engine, db)

	// second job selects a different video for the same track
	second := snapshots.SearchSnapshot{
		SpotifyTrackID: "t1",
		Candidates:     []snapshots.RawCandidate{{VideoID: "second_video", Channel: "Uploader", RankingInSearch: 1}},
	}
	if err := store.WriteSearch("t1", &second); err != nil {
		t.Fatalf("failed to overwrite snapshot: %v", err)
	}
	run(t, engine, db)

	mappings := repositories.NewMappingRepository(db)
	entry, err := mappings.Get("t1")
	if err != nil {
		t.Fatalf("ledger lookup failed: %v", err)
	}
	if entry == nil || entry.YouTubeVideoID != "first_video" {
		t.Errorf("ledger overwritten: %+v", entry)
	}

	count, err := mappings.Count()
	if err != nil {
		t.Fatalf("ledger count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected single ledger entry, got %d", count)
	}
}

func TestNormalizeSourceIsIdempotent(t *testing.T) {
	source := &mocks.MockPlaylistSource{
		Snapshot: playlistSnapshot(
			rawTrack("t1", "Alpha", "Artist"),
			rawTrack("t1", "Alpha", "Artist"), // duplicate entry in the playlist
			rawTrack("", "Nameless", "Artist"),
		),
	}
	engine, db, _ := testEngine(t, source, &mocks.MockVideoSearcher{}, &mocks.MockPlaylistSink{})
	job := createJob(t, db)

	ctx := context.Background()
	if _, err := engine.CaptureSource(ctx, job.JobID, nil); err != nil {
		t.Fatalf("capture failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		result, err := engine.NormalizeSource(ctx, job.JobID, nil)
		if err != nil {
			t.Fatalf("normalize run %d failed: %v", i+1, err)
		}
		if result.Inserted != 1 || result.Skipped != 2 {
			t.Errorf("run %d: expected 1 inserted and 2 skipped, got %+v", i+1, result)
		}
	}

	tracks, err := repositories.NewSpotifySilverRepository(db).ListByJob(job.JobID)
	if err != nil {
		t.Fatalf("failed to list tracks: %v", err)
	}
	if len(tracks) != 1 {
		t.Errorf("expected 1 silver row after re-run, got %d", len(tracks))
	}
}

func TestMaterializeBatching(t *testing.T) {
	tracks := make([]snapshots.RawTrack, 5)
	results := make(map[string][]snapshots.RawCandidate, 5)
	for i := range tracks {
		id := fmt.Sprintf("t%d", i+1)
		name := fmt.Sprintf("Song%d", i+1)
		tracks[i] = rawTrack(id, name, "Artist")
		results[name] = []snapshots.RawCandidate{{VideoID: "v_" + id, Channel: "Uploader", RankingInSearch: 1}}
	}

	source := &mocks.MockPlaylistSource{Snapshot: playlistSnapshot(tracks...)}
	searcher := &mocks.MockVideoSearcher{Results: searchResults(results)}
	sink := &mocks.MockPlaylistSink{PlaylistID: "PL_batched"}

	engine, db, _ := testEngine(t, source, searcher, sink) // batch size 2
	job := createJob(t, db)

	result, err := engine.Run(context.Background(), job.JobID, nil)
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	if result.Playlist.Batches != 3 || result.Playlist.Submitted != 5 {
		t.Errorf("unexpected batching: %+v", result.Playlist)
	}
	if len(sink.Batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(sink.Batches))
	}
	// source order preserved across batches
	var got []string
	for _, batch := range sink.Batches {
		got = append(got, batch...)
	}
	for i, videoID := range got {
		want := fmt.Sprintf("v_t%d", i+1)
		if videoID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, videoID)
		}
	}
}

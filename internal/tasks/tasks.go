package tasks

import (
	"database/sql"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/medley/internal/repositories"
	"github.com/desertthunder/medley/internal/services"
	"github.com/desertthunder/medley/internal/shared"
	"github.com/desertthunder/medley/internal/snapshots"
)

// EngineOpts contains the collaborators and tuning knobs for a ConversionEngine.
type EngineOpts struct {
	DB        *sql.DB
	Snapshots *snapshots.Store
	Spotify   services.PlaylistSource
	Searcher  services.VideoSearcher
	Sink      services.PlaylistSink
	Logger    *log.Logger

	SearchLimit int
	BatchSize   int
	BatchPause  time.Duration
	Retry       shared.RetryPolicy
}

// ConversionEngine runs the stages of one conversion job strictly in order.
// It is single-threaded by design: one job is processed start to finish, and
// the only suspension points are external calls.
type ConversionEngine struct {
	jobs     *repositories.JobRepository
	tracks   *repositories.SpotifySilverRepository
	videos   *repositories.YouTubeSilverRepository
	gold     *repositories.GoldRepository
	mappings *repositories.MappingRepository

	store    *snapshots.Store
	spotify  services.PlaylistSource
	searcher services.VideoSearcher
	sink     services.PlaylistSink
	logger   *log.Logger

	searchLimit int
	batchSize   int
	batchPause  time.Duration
	retry       shared.RetryPolicy
}

// NewConversionEngine creates a ConversionEngine from the provided options.
// Zero tuning values fall back to the documented defaults (5 candidates per
// search, batches of 100 with a 10s pause, 3 retry attempts).
func NewConversionEngine(opts EngineOpts) *ConversionEngine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = 5
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.BatchPause <= 0 {
		opts.BatchPause = 10 * time.Second
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = shared.DefaultRetryPolicy()
	}

	return &ConversionEngine{
		jobs:        repositories.NewJobRepository(opts.DB),
		tracks:      repositories.NewSpotifySilverRepository(opts.DB),
		videos:      repositories.NewYouTubeSilverRepository(opts.DB),
		gold:        repositories.NewGoldRepository(opts.DB),
		mappings:    repositories.NewMappingRepository(opts.DB),
		store:       opts.Snapshots,
		spotify:     opts.Spotify,
		searcher:    opts.Searcher,
		sink:        opts.Sink,
		logger:      opts.Logger,
		searchLimit: opts.SearchLimit,
		batchSize:   opts.BatchSize,
		batchPause:  opts.BatchPause,
		retry:       opts.Retry,
	}
}

// Jobs exposes the job repository for CLI commands that share the engine's
// database handle.
func (e *ConversionEngine) Jobs() *repositories.JobRepository {
	return e.jobs
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ConversionEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/medley/internal/services"
	"github.com/desertthunder/medley/internal/shared"
	"github.com/desertthunder/medley/internal/snapshots"
	"github.com/desertthunder/medley/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	spotify  services.PlaylistSource
	searcher services.VideoSearcher
	sink     services.PlaylistSink
	ytmusic  *services.YTMusicService
	logger   *log.Logger
	output   io.Writer

	db     *sql.DB
	engine *tasks.ConversionEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	Spotify  services.PlaylistSource
	Searcher services.VideoSearcher
	Sink     services.PlaylistSink
	YTMusic  *services.YTMusicService
	Logger   *log.Logger
	Output   io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:   opts.Config,
		spotify:  opts.Spotify,
		searcher: opts.Searcher,
		sink:     opts.Sink,
		ytmusic:  opts.YTMusic,
		logger:   opts.Logger,
		output:   opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, jobCommand, pipelineCommand, ledgerCommand, exportCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openEngine opens the configured database and builds the conversion engine.
// Commands that touch pipeline state call this once at the start of their
// action; setup commands don't, since the database may not exist yet.
func (r *Runner) openEngine() (*tasks.ConversionEngine, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	r.engine = tasks.NewConversionEngine(tasks.EngineOpts{
		DB:          db,
		Snapshots:   snapshots.NewStore(r.config.Pipeline.DataDir),
		Spotify:     r.spotify,
		Searcher:    r.searcher,
		Sink:        r.sink,
		Logger:      r.logger,
		SearchLimit: r.config.Pipeline.SearchLimit,
		BatchSize:   r.config.Pipeline.BatchSize,
		BatchPause:  time.Duration(r.config.Pipeline.BatchPauseSeconds) * time.Second,
		Retry: shared.RetryPolicy{
			MaxAttempts: r.config.Pipeline.RetryAttempts,
			Base:        time.Second,
		},
	})

	return r.engine, nil
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close releases the runner's database handle, if one was opened.
func (r *Runner) Close() {
	if r.db != nil {
		r.db.Close()
		r.db = nil
		r.engine = nil
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// Package wire provides dependency injection for the monosync application.
// It builds the service graph for one invocation from the resolved config.
package wire

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	cliadapter "github.com/example/monosync/internal/adapters/cli"
	"github.com/example/monosync/internal/adapters/filesystem"
	gitadapter "github.com/example/monosync/internal/adapters/git"
	"github.com/example/monosync/internal/adapters/sqlite"
	"github.com/example/monosync/internal/app"
	"github.com/example/monosync/internal/config"
	"github.com/example/monosync/internal/core/syncerr"
	"github.com/example/monosync/internal/core/syncflow"
	"github.com/example/monosync/internal/db"
	"github.com/example/monosync/internal/ports/secondary"
)

// Options are the per-invocation inputs the CLI collects.
type Options struct {
	// Dir is the working directory; empty means os.Getwd.
	Dir string
	// Apply layers command-line overrides on top of the loaded config.
	Apply func(*config.Config)
	// Out receives rendered results; Progress receives per-commit progress.
	Out      io.Writer
	Progress io.Writer
	Logger   *slog.Logger
}

// Application is the wired object graph of one invocation.
type Application struct {
	Config   config.Config
	TopLevel string
	Sync     *cliadapter.SyncAdapter

	journal *sql.DB
}

// Close releases the journal database, if one was opened.
func (a *Application) Close() error {
	if a.journal == nil {
		return nil
	}
	return a.journal.Close()
}

// LoadConfig locates the repository containing dir and builds its config:
// defaults, the user file, the repository file, then opts.Apply.
func LoadConfig(ctx context.Context, opts Options) (config.Config, secondary.RepositoryInfo, error) {
	dir, err := workDir(opts.Dir)
	if err != nil {
		return config.Config{}, secondary.RepositoryInfo{}, err
	}

	local, err := gitadapter.NewRepository(dir, nil, opts.Logger)
	if err != nil {
		return config.Config{}, secondary.RepositoryInfo{}, syncerr.E("wire.locate", syncerr.Environment, err)
	}
	info, err := local.Repository(ctx)
	if errors.Is(err, secondary.ErrNotRepository) {
		return config.Config{}, info, syncflow.CanRun(syncflow.EnvironmentContext{}).Error()
	}
	if err != nil {
		return config.Config{}, info, syncerr.E("wire.locate", syncerr.Environment, err)
	}

	cfg, err := config.Load(config.LoadOptions{TopLevel: info.TopLevel})
	if err != nil {
		return config.Config{}, info, err
	}
	if opts.Apply != nil {
		opts.Apply(&cfg)
	}
	cfg = cfg.Resolved()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, info, err
	}
	return cfg, info, nil
}

// Build wires the adapters and services for the repository containing opts.Dir.
// The run journal is best effort: when it cannot be opened the engine still
// runs and history is unavailable.
func Build(ctx context.Context, opts Options) (*Application, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	progressOut := opts.Progress
	if progressOut == nil {
		progressOut = io.Discard
	}

	cfg, info, err := LoadConfig(ctx, opts)
	if err != nil {
		return nil, err
	}
	dir, err := workDir(opts.Dir)
	if err != nil {
		return nil, err
	}

	bridge, err := gitadapter.NewBridge(cfg.Target, cfg.TrackingRef)
	if err != nil {
		return nil, syncerr.E("wire.bridge", syncerr.Configuration, err)
	}
	// The adapter runs from dir, not the top level, so the environment guard
	// can tell when it was started from a subdirectory.
	repo, err := gitadapter.NewRepository(dir, bridge, logger)
	if err != nil {
		return nil, syncerr.E("wire.repository", syncerr.Environment, err)
	}

	stateFS := filesystem.OpenDir(info.GitDir)
	deps := app.SyncServiceDeps{
		VCS:         repo,
		State:       filesystem.NewStateStore(stateFS),
		ConflictLog: filesystem.NewConflictLog(stateFS),
		Progress:    cliadapter.NewProgressReporter(progressOut, cfg.Verbose),
		Logger:      logger,
	}

	application := &Application{Config: cfg, TopLevel: info.TopLevel}
	if conn, err := db.Open(db.Path(info.GitDir)); err != nil {
		logger.Warn("run journal unavailable", "error", err)
	} else {
		application.journal = conn
		deps.Journal = sqlite.NewRunJournal(conn)
	}

	service := app.NewSyncService(cfg, deps)
	application.Sync = cliadapter.NewSyncAdapter(service, out, cfg.ExportBranch)
	return application, nil
}

func workDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return wd, nil
}

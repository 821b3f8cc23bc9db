package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/amirbrooks/plannersync/internal/config"
	"github.com/amirbrooks/plannersync/internal/store"
	"github.com/amirbrooks/plannersync/internal/syncer"
	"github.com/amirbrooks/plannersync/internal/task"
	"github.com/amirbrooks/plannersync/internal/vault"
)

// app bundles the wired pieces every command works with: config, logger,
// store over the configured provider, the vault file store and the sync
// coordinator on top of both.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	store  *store.TaskStore
	files  vault.FileStore
	sync   *syncer.Coordinator
	close  func()
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg)

	var provider store.Provider
	closeFn := func() {}
	if cfg.Redis.Enabled {
		rp, err := store.NewRedisProvider(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Redis.Namespace)
		if err != nil {
			return nil, err
		}
		if err := rp.Ping(ctx); err != nil {
			_ = rp.Close()
			return nil, fmt.Errorf("redis at %s: %w", cfg.Redis.Addr, err)
		}
		provider = rp
		closeFn = func() { _ = rp.Close() }
	} else {
		fp, err := store.NewFileProvider(cfg.DataFile, cfg.DataFormat, logger)
		if err != nil {
			return nil, err
		}
		provider = fp
	}

	st := store.New(provider, store.Options{
		Logger:          logger,
		DoneStatus:      cfg.DoneStatus,
		DefaultStatus:   cfg.DefaultStatus,
		DefaultPriority: cfg.DefaultPriority,
	})
	if err := st.EnsureLoaded(ctx); err != nil {
		closeFn()
		return nil, err
	}

	files := vault.NewDisk(logger)
	coord := syncer.New(st, files, cfg.VaultPath, syncer.Options{
		Window:       cfg.Sync.Window(),
		CreateDelay:  cfg.Sync.CreateDelay(),
		ScanCooldown: cfg.Sync.ScanCooldown(),
		FilePause:    cfg.Sync.FilePause(),
		Logger:       logger,
	})

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  st,
		files:  files,
		sync:   coord,
		close:  closeFn,
	}, nil
}

// loadConfig runs the config pipeline and lays the global flags on top.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if flagConfig != "" {
		cfg, err = config.LoadFile(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if flagVault != "" {
		cfg.VaultPath = flagVault
	}
	if flagDataFile != "" {
		cfg.DataFile = flagDataFile
	}
	if flagDataFormat != "" {
		cfg.DataFormat = flagDataFormat
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagLogFormat != "" {
		cfg.LogFormat = flagLogFormat
	}
	// Flags may have introduced new values; run the same expansion and
	// validation the loader applies.
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *log.Logger {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		Formatter:       logFormatter(cfg.LogFormat),
		ReportTimestamp: true,
		Prefix:          "plannersync",
	})
}

func logFormatter(format string) log.Formatter {
	switch format {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// activeProject resolves the registry entry behind the active bucket.
func (a *app) activeProject() (task.Project, error) {
	id := a.store.ActiveProject()
	if p, ok := a.store.ProjectByID(id); ok {
		return p, nil
	}
	return task.Project{}, fmt.Errorf("%w: active project %s", store.ErrNotFound, id)
}

// resolveProject maps a --project value to a registry entry, trying the
// name first and the id second. Empty means the active project.
func (a *app) resolveProject(nameOrID string) (task.Project, error) {
	if nameOrID == "" {
		return a.activeProject()
	}
	if p, ok := a.store.ProjectByName(nameOrID); ok {
		return p, nil
	}
	if p, ok := a.store.ProjectByID(nameOrID); ok {
		return p, nil
	}
	return task.Project{}, fmt.Errorf("%w: project %s", store.ErrNotFound, nameOrID)
}

// resolveTask finds a task by id, accepting any unambiguous prefix so
// the short ids from ls work everywhere an id is expected.
func (a *app) resolveTask(id string) (task.Task, error) {
	if t, ok := a.store.Get(id); ok {
		return t, nil
	}
	var hit task.Task
	matches := 0
	for _, t := range a.store.All() {
		if strings.HasPrefix(t.ID, id) {
			hit = t
			matches++
		}
	}
	switch matches {
	case 1:
		return hit, nil
	case 0:
		return task.Task{}, notFoundErr(id)
	default:
		return task.Task{}, fmt.Errorf("%w: id %q matches %d tasks", store.ErrInvalid, id, matches)
	}
}

// shortID trims a ULID-based id down to a prefix that stays unique in
// practice and fits a table column.
func shortID(id string) string {
	if len(id) <= 14 {
		return id
	}
	return id[:14]
}

func outputJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

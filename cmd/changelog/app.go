package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JonMunkholm/changelog/internal/client"
	"github.com/JonMunkholm/changelog/internal/config"
	"github.com/JonMunkholm/changelog/internal/core"
	"github.com/JonMunkholm/changelog/internal/filters"
	"github.com/JonMunkholm/changelog/internal/logging"
	"github.com/JonMunkholm/changelog/internal/notify"
)

// app holds the collaborators shared by every command.
type app struct {
	cfg      *config.Config
	client   *client.Client
	limiter  *client.Limiter
	filters  *filters.Store
	notifier *notify.Center
	tables   *core.TableSet
	defs     []core.TableDefinition

	closeLog func()
}

// logTarget selects where console logs go.
type logTarget int

const (
	logStderr logTarget = iota
	// logFile writes to LOG_FILE, or nowhere when unset, so the terminal
	// browser keeps the screen.
	logFile
)

// newApp loads configuration, installs logging and mounts the configured
// tables.
func newApp(target logTarget) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	var out io.Writer = os.Stderr
	closeFile := func() {}
	if target == logFile {
		out = io.Discard
		if cfg.Logging.File != "" {
			f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, fmt.Errorf("open log file: %w", err)
			}
			out = f
			closeFile = func() { _ = f.Close() }
		}
	}

	flush := logging.Setup(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		SeqURL: cfg.Logging.SeqURL,
		Output: out,
	})
	closeLog := func() {
		flush()
		closeFile()
	}

	defs, err := config.LoadTables(cfg.Table.File)
	if err != nil {
		closeLog()
		return nil, err
	}
	core.Clear()
	for _, def := range defs {
		core.Register(def)
	}

	limiter := client.NewLimiter(cfg.Fetch.MaxConcurrent, cfg.Fetch.MaxWaitTime)
	c := client.New(client.Options{
		BaseURL: cfg.API.URL,
		APIKey:  cfg.API.Key,
		Timeout: cfg.API.Timeout,
		Limiter: limiter,
		Logger:  slog.Default(),
	})

	fs := filters.NewStore()
	nc := notify.NewCenter(cfg.Notify.Capacity, slog.Default())
	tables := core.NewTableSet(core.All(), c, nc, fs, core.TableOptions{
		PageSize: cfg.Table.PageSize,
		Locale:   cfg.Table.LocaleTag(),
		Logger:   slog.Default(),
	})

	slog.Info("configuration loaded",
		"api_url", c.BaseURL(),
		"tables", core.TableCount(),
		"fetch_max_concurrent", cfg.Fetch.MaxConcurrent,
		"database", cfg.Database.Enabled(),
	)
	slog.Debug("effective configuration", "config", cfg.String())

	return &app{
		cfg:      cfg,
		client:   c,
		limiter:  limiter,
		filters:  fs,
		notifier: nc,
		tables:   tables,
		defs:     defs,
		closeLog: closeLog,
	}, nil
}

func (a *app) Close() {
	a.closeLog()
}

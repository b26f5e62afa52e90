package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/changelog/internal/store"
	"github.com/JonMunkholm/changelog/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web UI",
	Long: `Serve the dashboard on SERVER_HOST:SERVER_PORT.

When DATABASE_URL is set the server also exposes GET /api/v1/{dataset}
(services, commits, deploys) backed by PostgreSQL, so the tables can fetch
from the same process.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(logStderr)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := web.Deps{
		Tables:   a.tables,
		Filters:  a.filters,
		Notifier: a.notifier,
		Limiter:  a.limiter,
	}

	if a.cfg.Database.Enabled() {
		pool, err := store.Connect(ctx, a.cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()

		st, err := store.New(pool, store.DefaultDatasets(), slog.Default())
		if err != nil {
			return err
		}
		deps.Store = st
		slog.Info("data endpoints enabled", "datasets", st.Datasets())
	}

	server := web.NewServer(a.cfg, deps)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if st := a.limiter.Status(); st.Active > 0 {
		slog.Info("waiting for fetches to finish", "active", st.Active)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		return err
	}
	slog.Info("server stopped")
	return nil
}

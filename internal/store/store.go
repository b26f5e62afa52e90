// Package store serves changelog datasets from PostgreSQL in the shape the
// table fetcher expects: {"data": [...], "count": n}.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/changelog/internal/config"
	"github.com/JonMunkholm/changelog/internal/core"
)

// ErrUnknownDataset is returned for a dataset name that is not served.
var ErrUnknownDataset = errors.New("unknown dataset")

// Querier is the subset of pgxpool.Pool used by Store.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store reads dataset pages.
type Store struct {
	db       Querier
	datasets map[string]Dataset
	logger   *slog.Logger
}

// New creates a Store over db serving datasets.
func New(db Querier, datasets []Dataset, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m := make(map[string]Dataset, len(datasets))
	for _, ds := range datasets {
		if err := ds.validate(); err != nil {
			return nil, err
		}
		if _, dup := m[ds.Name]; dup {
			return nil, fmt.Errorf("dataset %q: duplicate name", ds.Name)
		}
		m[ds.Name] = ds
	}
	return &Store{db: db, datasets: m, logger: logger}, nil
}

// Connect opens and pings a pgx pool configured from cfg.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}
	return pool, nil
}

// Datasets returns the served dataset names, sorted.
func (s *Store) Datasets() []string {
	names := make([]string, 0, len(s.datasets))
	for name := range s.datasets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Query returns one page of dataset rows and the total matching count.
func (s *Store) Query(ctx context.Context, dataset string, p Page) (*core.Response, error) {
	ds, ok := s.datasets[dataset]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDataset, dataset)
	}

	countSQL, pageSQL, args, err := buildQueries(ds, p)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	var count int64
	if err := s.db.QueryRow(ctx, countSQL, args...).Scan(&count); err != nil {
		return nil, fmt.Errorf("count %s: %w", dataset, err)
	}

	rows, err := s.db.Query(ctx, pageSQL, append(args, p.Limit, p.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", dataset, err)
	}
	texts, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dataset, err)
	}

	data := make([]core.Record, len(texts))
	for i, text := range texts {
		if err := json.Unmarshal([]byte(text), &data[i]); err != nil {
			return nil, fmt.Errorf("decode %s row %d: %w", dataset, i, err)
		}
	}

	s.logger.Debug("dataset page",
		"dataset", dataset,
		"offset", p.Offset,
		"limit", p.Limit,
		"rows", len(data),
		"count", count,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &core.Response{Data: data, Count: int(count)}, nil
}

package cmd

import (
	"context"
	"fmt"

	"github.com/dbsmedya/pagetable/internal/config"
	"github.com/dbsmedya/pagetable/internal/database"
	"github.com/dbsmedya/pagetable/internal/generator"
	"github.com/dbsmedya/pagetable/internal/logger"
	"github.com/dbsmedya/pagetable/internal/metrics"
	"github.com/dbsmedya/pagetable/internal/pagination"
	"github.com/dbsmedya/pagetable/internal/source"
)

// app holds what the commands build from the configuration.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *database.Manager   // nil for the memory driver
	sql     *source.SQLSource   // nil for the memory driver
	store   *source.Store       // nil for the mysql driver
	breaker *source.Breaker
	src     source.Source
	metrics *metrics.Collector
}

// loadConfig loads the env file, the config file and the CLI overrides,
// then validates the result.
func loadConfig() (*config.Config, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, err
	}

	cfg, err := config.LoadOptional(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.ApplyOverrides(GetCLIOverrides())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp builds the logger and the source chain for cfg. For the mysql
// driver it connects and creates the table if needed.
func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*app, error) {
	a := &app{
		cfg:     cfg,
		log:     log,
		metrics: metrics.NewCollector(),
	}

	gen := generator.New(cfg.Source.SeedValue())

	var base source.Source
	switch cfg.Source.Driver {
	case config.DriverMySQL:
		a.db = database.NewManager(&cfg.Database)
		if err := a.db.Connect(ctx); err != nil {
			return nil, err
		}
		sqlSrc, err := source.NewSQLSource(a.db.DB, gen, source.SQLOptions{
			Table:       cfg.Source.Table,
			MinResults:  cfg.Source.MinResults,
			MaxResults:  cfg.Source.MaxResults,
			LockTimeout: cfg.Database.LockTimeout,
		}, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		if err := sqlSrc.EnsureTable(ctx); err != nil {
			a.Close()
			return nil, err
		}
		a.sql = sqlSrc
		base = sqlSrc
	default:
		a.store = source.NewStore(gen, source.StoreOptions{
			MinResults:     cfg.Source.MinResults,
			MaxResults:     cfg.Source.MaxResults,
			InitialResults: cfg.Source.InitialResults,
			SubRowDepth:    cfg.Source.SubRowDepth,
		})
		base = source.NewMemorySource(a.store, cfg.Source.Delay(), log)
	}

	retrying := source.NewRetrying(base, cfg.Source.Retry.MaxAttempts, cfg.Source.Retry.Backoff(), log)
	a.breaker = source.NewBreaker(cfg.Source.Driver, retrying, source.BreakerSettings{})
	a.src = a.breaker

	log.Infow("Source ready",
		"driver", cfg.Source.Driver,
		"delay", cfg.Source.Delay(),
		"retry_attempts", cfg.Source.Retry.MaxAttempts,
	)
	return a, nil
}

// newController creates a controller over the app's source. A non-empty
// query pins the query token, which makes results reproducible together
// with a fixed seed.
func (a *app) newController(query string) (*pagination.Controller, error) {
	opts := pagination.Options{
		DefaultPageSize: a.cfg.Table.DefaultPageSize,
		PageSizeOptions: a.cfg.Table.PageSizeOptions,
		Observer:        a.metrics,
		Logger:          a.log,
	}
	if query != "" {
		opts.NewToken = func() string { return query }
	}
	return pagination.NewController(a.src, opts)
}

// Close releases the database connection, if any.
func (a *app) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warnw("Failed to close database", "error", err)
		}
	}
	_ = a.log.Sync()
}

// Package app wires configuration, storage, events and services together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/thenoetrevino/dealboard/internal/board"
	"github.com/thenoetrevino/dealboard/internal/cache"
	"github.com/thenoetrevino/dealboard/internal/config"
	"github.com/thenoetrevino/dealboard/internal/database"
	"github.com/thenoetrevino/dealboard/internal/enrich"
	"github.com/thenoetrevino/dealboard/internal/events"
	"github.com/thenoetrevino/dealboard/internal/services/commit"
	dealservice "github.com/thenoetrevino/dealboard/internal/services/deal"
	pipelineservice "github.com/thenoetrevino/dealboard/internal/services/pipeline"
)

// App holds all application services and provides dependency injection.
// This is the main application container that manages service lifecycles.
type App struct {
	Config *config.Config
	Board  *board.Board

	// Service layer (business logic)
	DealService     dealservice.Service
	PipelineService pipelineservice.Service
	Enricher        *enrich.Coordinator

	store       database.SnapshotStore
	eventClient events.EventPublisher
	logger      *slog.Logger
	closers     []func() error
}

// New creates a new App: it opens the configured store, loads the board
// snapshot and initializes all services.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	ac := &appConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(ac)
	}

	stages, err := cfg.StageSet()
	if err != nil {
		return nil, fmt.Errorf("invalid pipeline: %w", err)
	}

	a := &App{
		Config:      cfg,
		Board:       board.New(stages, ac.boardOptions...),
		store:       ac.store,
		eventClient: ac.eventClient,
		logger:      ac.logger,
	}

	if a.store == nil {
		if err := a.openStore(ctx); err != nil {
			return nil, err
		}
	}

	snap, err := a.store.Load(ctx)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to load board: %w", err)
	}
	if err := a.Board.Load(snap); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("stored board is inconsistent: %w", err)
	}

	if a.eventClient == nil && cfg.Daemon.Enabled {
		a.connectDaemon(ctx)
	}

	provider := ac.provider
	if provider == nil {
		provider, err = enrich.NewProvider(ctx, enrich.Config{
			Provider: cfg.Enrichment.Provider,
			Model:    cfg.Enrichment.Model,
			BaseURL:  cfg.Enrichment.BaseURL,
			APIKey:   cfg.Enrichment.APIKey(),
			Timeout:  cfg.Enrichment.Timeout,
		})
		if err != nil {
			_ = a.Close()
			return nil, err
		}
	}

	committer := commit.New(a.Board, a.store, a.eventClient, snap.Version)
	a.DealService = dealservice.NewService(committer)
	a.PipelineService = pipelineservice.NewService(committer)
	a.Enricher = enrich.NewCoordinator(provider, a.DealService, cfg.Enrichment.Concurrency, cfg.Enrichment.Timeout)

	a.logger.Debug("app initialized",
		"storage", cfg.Storage.Backend,
		"version", snap.Version,
		"deals", len(snap.Deals),
		"provider", provider.Name())
	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	switch a.Config.Storage.Backend {
	case config.StorageRedis:
		store, err := cache.NewRedisStore(a.Config.Storage.RedisURL, a.Config.Storage.Board)
		if err != nil {
			return err
		}
		a.store = store
		a.closers = append(a.closers, store.Close)
	default:
		path := a.Config.Storage.Path
		if path == "" {
			p, err := database.DefaultPath()
			if err != nil {
				return err
			}
			path = p
		}
		db, err := database.InitDB(ctx, path)
		if err != nil {
			return err
		}
		a.store = database.NewSnapshotRepo(db)
		a.closers = append(a.closers, db.Close)
	}
	return nil
}

// connectDaemon attaches an event client; a missing daemon only disables live updates
func (a *App) connectDaemon(ctx context.Context) {
	client, err := events.NewClient(a.Config.Daemon.SocketPath)
	if err != nil {
		a.logger.Warn("event client unavailable", "error", err)
		return
	}
	connectCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := client.Connect(connectCtx); err != nil {
		a.logger.Debug("daemon not reachable, live updates disabled",
			"socket", a.Config.Daemon.SocketPath, "error", err)
		_ = client.Close()
		return
	}
	a.eventClient = client
}

// Store returns the snapshot store
func (a *App) Store() database.SnapshotStore {
	return a.store
}

// Close flushes pending events and closes the store
func (a *App) Close() error {
	var errs []error
	if a.eventClient != nil {
		if err := a.eventClient.Close(); err != nil {
			errs = append(errs, err)
		}
		a.eventClient = nil
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

package app

import (
	"log/slog"

	"github.com/thenoetrevino/dealboard/internal/board"
	"github.com/thenoetrevino/dealboard/internal/database"
	"github.com/thenoetrevino/dealboard/internal/enrich"
	"github.com/thenoetrevino/dealboard/internal/events"
)

// Option is a functional option for configuring App initialization
type Option func(*appConfig)

// appConfig holds the configuration for App initialization
type appConfig struct {
	eventClient  events.EventPublisher
	logger       *slog.Logger
	store        database.SnapshotStore
	provider     enrich.Provider
	boardOptions []board.Option
}

// WithEventPublisher sets the event publisher for the application
func WithEventPublisher(ec events.EventPublisher) Option {
	return func(cfg *appConfig) {
		cfg.eventClient = ec
	}
}

// WithLogger sets the logger for the application
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *appConfig) {
		cfg.logger = logger
	}
}

// WithStore replaces the configured snapshot store
func WithStore(store database.SnapshotStore) Option {
	return func(cfg *appConfig) {
		cfg.store = store
	}
}

// WithProvider replaces the configured enrichment provider
func WithProvider(p enrich.Provider) Option {
	return func(cfg *appConfig) {
		cfg.provider = p
	}
}

// WithBoardOptions passes options (clock, id generator) to the board
func WithBoardOptions(opts ...board.Option) Option {
	return func(cfg *appConfig) {
		cfg.boardOptions = append(cfg.boardOptions, opts...)
	}
}

// Package commit persists the board after a mutation and notifies listeners.
package commit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/thenoetrevino/dealboard/internal/board"
	"github.com/thenoetrevino/dealboard/internal/database"
	"github.com/thenoetrevino/dealboard/internal/events"
	"github.com/thenoetrevino/dealboard/internal/models"
)

const publishRetries = 3

// Committer saves board snapshots with optimistic concurrency and publishes
// a board_changed event for every committed mutation. Store and publisher
// are both optional.
type Committer struct {
	mu        sync.Mutex
	board     *board.Board
	store     database.SnapshotStore
	publisher events.EventPublisher
	saved     int64 // version of the last snapshot known to be in the store
}

// New creates a committer. savedVersion is the version the board was loaded at.
func New(b *board.Board, store database.SnapshotStore, publisher events.EventPublisher, savedVersion int64) *Committer {
	return &Committer{
		board:     b,
		store:     store,
		publisher: publisher,
		saved:     savedVersion,
	}
}

// Board returns the board being committed
func (c *Committer) Board() *board.Board {
	return c.board
}

// Commit persists the current board state, then publishes an event naming the
// deal and stage that changed (either may be empty).
//
// When another writer saved first, the save fails with models.ErrVersionConflict
// and the board is reloaded from the store: the uncommitted mutation is dropped
// and later commits start from the stored version.
func (c *Committer) Commit(ctx context.Context, dealID string, stage models.StageID) error {
	c.mu.Lock()
	snap := c.board.Snapshot()
	if c.store != nil && snap.Version != c.saved {
		if err := c.store.Save(ctx, snap, c.saved); err != nil {
			if errors.Is(err, models.ErrVersionConflict) {
				c.resyncLocked(ctx)
			}
			c.mu.Unlock()
			return fmt.Errorf("failed to save board: %w", err)
		}
		c.saved = snap.Version
	}
	c.mu.Unlock()

	if c.publisher != nil {
		event := events.Event{
			Type:      events.EventBoardChanged,
			DealID:    dealID,
			Stage:     stage,
			Version:   snap.Version,
			Timestamp: time.Now(),
		}
		if err := events.PublishWithRetry(c.publisher, event, publishRetries); err != nil {
			slog.Warn("failed to publish board event", "deal_id", dealID, "error", err)
		}
	}
	return nil
}

// resyncLocked replaces the board with the stored snapshot. Requires c.mu.
func (c *Committer) resyncLocked(ctx context.Context) {
	stored, err := c.store.Load(ctx)
	if err != nil {
		slog.Error("failed to reload board after version conflict", "error", err)
		return
	}
	if err := c.board.Load(stored); err != nil {
		slog.Error("stored board is inconsistent", "version", stored.Version, "error", err)
		return
	}
	c.saved = stored.Version
	slog.Warn("board reloaded after version conflict", "version", stored.Version)
}

// SavedVersion returns the version of the last saved snapshot
func (c *Committer) SavedVersion() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saved
}

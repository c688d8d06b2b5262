package database

import (
	"context"

	"github.com/thenoetrevino/dealboard/internal/models"
)

// SnapshotStore loads and saves whole board snapshots.
// Save is a compare-and-swap: it fails with models.ErrVersionConflict unless
// the stored version still equals expectedVersion.
type SnapshotStore interface {
	Load(ctx context.Context) (*models.Snapshot, error)
	Save(ctx context.Context, snap *models.Snapshot, expectedVersion int64) error
}

var _ SnapshotStore = (*SnapshotRepo)(nil)

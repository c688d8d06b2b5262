// Package board implements the in-memory pipeline board: the deal and column
// stores, the move engine, the search projector and the aggregate calculator.
//
// A Board is the single writer of its stores. Every exported method holds the
// board lock for its whole duration, so readers never observe a half-applied
// mutation.
package board

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/thenoetrevino/dealboard/internal/models"
)

// Board owns a DealStore and a ColumnStore and keeps them consistent:
// every deal appears in exactly one column, and that column is the deal's stage.
type Board struct {
	mu      sync.RWMutex
	stages  *StageSet
	deals   *DealStore
	columns *ColumnStore
	version int64
	now     func() time.Time
	newID   func() string
}

// Option configures a Board
type Option func(*Board)

// WithClock overrides the time source used for CreatedAt/UpdatedAt
func WithClock(now func() time.Time) Option {
	return func(b *Board) {
		b.now = now
	}
}

// WithIDGenerator overrides the deal id generator
func WithIDGenerator(gen func() string) Option {
	return func(b *Board) {
		b.newID = gen
	}
}

// New creates an empty board for the given stages
func New(stages *StageSet, opts ...Option) *Board {
	b := &Board{
		stages:  stages,
		deals:   NewDealStore(),
		columns: NewColumnStore(stages),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.deals.newID = b.newID
	return b
}

// Stages returns the board's stage set
func (b *Board) Stages() *StageSet {
	return b.stages
}

// Version returns the mutation counter. It only increases when the board changes.
func (b *Board) Version() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// Load replaces the board contents with a snapshot.
// The snapshot must satisfy the board invariants; otherwise the board is left unchanged.
func (b *Board) Load(snap *models.Snapshot) error {
	deals := NewDealStore()
	deals.newID = b.newID
	columns := NewColumnStore(b.stages)

	for _, d := range snap.Deals {
		if d == nil || d.ID == "" {
			return fmt.Errorf("%w: snapshot contains a deal without id", models.ErrInvariantViolation)
		}
		if !b.stages.Has(d.Stage) {
			return fmt.Errorf("%w: deal %s has unknown stage %q", models.ErrInvariantViolation, d.ID, d.Stage)
		}
		if err := deals.insert(d.Clone()); err != nil {
			return err
		}
	}

	for _, col := range snap.Columns {
		if col == nil {
			continue
		}
		if !b.stages.Has(col.Stage) {
			return fmt.Errorf("%w: snapshot column for unknown stage %q", models.ErrInvariantViolation, col.Stage)
		}
		for _, id := range col.DealIDs {
			d, ok := deals.deals[id]
			if !ok {
				return fmt.Errorf("%w: column %s lists unknown deal %s", models.ErrInvariantViolation, col.Stage, id)
			}
			if d.Stage != col.Stage {
				return fmt.Errorf("%w: deal %s has stage %s but is listed in %s",
					models.ErrInvariantViolation, id, d.Stage, col.Stage)
			}
		}
		if err := columns.SetColumnOrder(col.Stage, col.DealIDs); err != nil {
			return err
		}
	}

	if err := checkInvariants(deals, columns); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.deals = deals
	b.columns = columns
	b.version = snap.Version
	return nil
}

// Snapshot returns a deep copy of the board state
func (b *Board) Snapshot() *models.Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return &models.Snapshot{
		Version: b.version,
		Deals:   b.deals.All(),
		Columns: b.columns.Columns(),
	}
}

// Deal returns a copy of one deal
func (b *Board) Deal(id string) (*models.Deal, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.deals.Get(id)
}

// Deals returns copies of all deals in insertion order
func (b *Board) Deals() []*models.Deal {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.deals.All()
}

// Column returns a copy of one column
func (b *Board) Column(stage models.StageID) (*models.Column, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.columns.GetColumn(stage)
}

// Columns returns copies of all columns in stage order
func (b *Board) Columns() []*models.Column {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.columns.Columns()
}

// Locate returns the stage and position of a deal
func (b *Board) Locate(id string) (models.StageID, int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	stage, idx, ok := b.columns.Locate(id)
	if !ok {
		return "", -1, fmt.Errorf("deal %s: %w", id, models.ErrNotFound)
	}
	return stage, idx, nil
}

// CreateDeal validates d, stores it and appends it to the bottom of its stage column.
// An empty stage means the first stage; an empty priority means the default priority.
func (b *Board) CreateDeal(d *models.Deal) (*models.Deal, error) {
	record := d.Clone()
	if record.Stage == "" {
		record.Stage = b.stages.First()
	}
	if record.Priority == "" {
		record.Priority = models.DefaultPriority
	}
	if !b.stages.Has(record.Stage) {
		return nil, fmt.Errorf("stage %s: %w", record.Stage, models.ErrNotFound)
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if record.ID != "" && b.deals.Has(record.ID) {
		return nil, fmt.Errorf("%w: deal %s already exists", models.ErrInvariantViolation, record.ID)
	}
	created, err := b.deals.Create(record, b.now())
	if err != nil {
		return nil, err
	}
	if err := b.columns.Append(created.Stage, created.ID); err != nil {
		_ = b.deals.Delete(created.ID)
		return nil, err
	}
	b.version++
	return created, nil
}

// UpdateDeal merges patch into a deal and refreshes UpdatedAt.
// A stage change is routed through the move engine and lands at the bottom
// of the destination column, so the stage field is never written directly.
func (b *Board) UpdateDeal(id string, patch models.DealPatch) (*models.Deal, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.updateLocked(id, patch)
}

// UpdateIfUnchanged applies patch only if the deal's UpdatedAt still equals
// expected. It returns ErrStaleUpdate when the deal changed in between and
// ErrNotFound when it was deleted.
func (b *Board) UpdateIfUnchanged(id string, expected time.Time, patch models.DealPatch) (*models.Deal, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	current, ok := b.deals.deals[id]
	if !ok {
		return nil, fmt.Errorf("deal %s: %w", id, models.ErrNotFound)
	}
	if !current.UpdatedAt.Equal(expected) {
		return nil, fmt.Errorf("deal %s: %w", id, models.ErrStaleUpdate)
	}
	return b.updateLocked(id, patch)
}

func (b *Board) updateLocked(id string, patch models.DealPatch) (*models.Deal, error) {
	current, ok := b.deals.deals[id]
	if !ok {
		return nil, fmt.Errorf("deal %s: %w", id, models.ErrNotFound)
	}

	// Validate the merged record before touching either store
	merged := current.Clone()
	patch.Apply(merged)
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	stageChange := patch.Stage != nil && *patch.Stage != current.Stage
	if stageChange && !b.stages.Has(*patch.Stage) {
		return nil, fmt.Errorf("stage %s: %w", *patch.Stage, models.ErrNotFound)
	}

	now := b.now()
	if stageChange {
		dest, err := b.columns.column(*patch.Stage)
		if err != nil {
			return nil, err
		}
		srcIdx := b.columns.columns[current.Stage].IndexOf(id)
		if _, err := b.applyMoveLocked(models.Move{
			DealID:      id,
			SourceStage: current.Stage,
			SourceIndex: srcIdx,
			DestStage:   *patch.Stage,
			DestIndex:   dest.Len(),
		}, now); err != nil {
			return nil, err
		}
	}

	rest := patch
	rest.Stage = nil
	updated, err := b.deals.Update(id, rest, now)
	if err != nil {
		return nil, err
	}
	if !stageChange {
		b.version++
	}
	return updated, nil
}

// DeleteDeal removes a deal from the deal store and from its column in one step
func (b *Board) DeleteDeal(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.deals.Has(id) {
		return fmt.Errorf("deal %s: %w", id, models.ErrNotFound)
	}
	if _, _, ok := b.columns.Remove(id); !ok {
		return fmt.Errorf("%w: deal %s is not in any column", models.ErrInvariantViolation, id)
	}
	if err := b.deals.Delete(id); err != nil {
		return err
	}
	b.version++
	return nil
}

// ReorderColumn replaces the order of a column. ids must be a permutation of
// the column's current ids.
func (b *Board) ReorderColumn(stage models.StageID, ids []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	col, err := b.columns.column(stage)
	if err != nil {
		return err
	}
	if len(ids) != col.Len() {
		return fmt.Errorf("%w: reorder of %s lists %d deals, column has %d",
			models.ErrInvariantViolation, stage, len(ids), col.Len())
	}
	for _, id := range ids {
		if col.IndexOf(id) < 0 {
			return fmt.Errorf("%w: deal %s is not in %s", models.ErrInvariantViolation, id, stage)
		}
	}
	if err := b.columns.SetColumnOrder(stage, ids); err != nil {
		return err
	}
	b.version++
	return nil
}

// CheckInvariants verifies the deal/column consistency rules
func (b *Board) CheckInvariants() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return checkInvariants(b.deals, b.columns)
}

func checkInvariants(deals *DealStore, columns *ColumnStore) error {
	seen := make(map[string]models.StageID, deals.Len())
	for stage, col := range columns.columns {
		for _, id := range col.DealIDs {
			if other, dup := seen[id]; dup {
				return fmt.Errorf("%w: deal %s appears in %s and %s", models.ErrInvariantViolation, id, other, stage)
			}
			seen[id] = stage

			d, ok := deals.deals[id]
			if !ok {
				return fmt.Errorf("%w: column %s lists unknown deal %s", models.ErrInvariantViolation, stage, id)
			}
			if d.Stage != stage {
				return fmt.Errorf("%w: deal %s has stage %s but is listed in %s",
					models.ErrInvariantViolation, id, d.Stage, stage)
			}
		}
	}
	for id := range deals.deals {
		if _, ok := seen[id]; !ok {
			return fmt.Errorf("%w: deal %s is not in any column", models.ErrInvariantViolation, id)
		}
	}
	return nil
}

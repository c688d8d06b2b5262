package board

import (
	"fmt"
	"time"

	"github.com/thenoetrevino/dealboard/internal/models"
)

// ApplyMove is the single entry point for drag-and-drop reordering and stage
// transitions:
//
//   - an empty or unknown destination stage cancels the move (no mutation)
//   - identical source and destination is a no-op (no mutation, UpdatedAt kept)
//   - a move inside one column reorders it without touching the deal record
//   - a move across columns updates both stores and bumps UpdatedAt, all or nothing
//
// The destination index is clamped into [0, destination length] after the
// source item is removed. A move whose deal or source position does not match
// the stores returns ErrInvariantViolation.
func (b *Board) ApplyMove(m models.Move) (models.MoveResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.applyMoveLocked(m, b.now())
}

// MoveToStage moves a deal to the bottom of another stage's column
func (b *Board) MoveToStage(dealID string, stage models.StageID) (models.MoveResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	src, idx, ok := b.columns.Locate(dealID)
	if !ok {
		return models.MoveResult{}, fmt.Errorf("deal %s: %w", dealID, models.ErrNotFound)
	}
	if !b.stages.Has(stage) {
		return models.MoveResult{}, fmt.Errorf("stage %s: %w", stage, models.ErrNotFound)
	}

	destIdx := b.columns.columns[stage].Len()
	if src == stage {
		destIdx = idx
	}
	return b.applyMoveLocked(models.Move{
		DealID:      dealID,
		SourceStage: src,
		SourceIndex: idx,
		DestStage:   stage,
		DestIndex:   destIdx,
	}, b.now())
}

// MoveToNextStage moves a deal to the bottom of the column right of its own
func (b *Board) MoveToNextStage(dealID string) (models.MoveResult, error) {
	return b.moveAdjacent(dealID, b.stages.Next, models.ErrAlreadyLastStage)
}

// MoveToPrevStage moves a deal to the bottom of the column left of its own
func (b *Board) MoveToPrevStage(dealID string) (models.MoveResult, error) {
	return b.moveAdjacent(dealID, b.stages.Prev, models.ErrAlreadyFirstStage)
}

func (b *Board) moveAdjacent(
	dealID string,
	adjacent func(models.StageID) (models.StageID, bool),
	edgeErr error,
) (models.MoveResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	src, idx, ok := b.columns.Locate(dealID)
	if !ok {
		return models.MoveResult{}, fmt.Errorf("deal %s: %w", dealID, models.ErrNotFound)
	}
	dest, ok := adjacent(src)
	if !ok {
		return models.MoveResult{}, edgeErr
	}
	return b.applyMoveLocked(models.Move{
		DealID:      dealID,
		SourceStage: src,
		SourceIndex: idx,
		DestStage:   dest,
		DestIndex:   b.columns.columns[dest].Len(),
	}, b.now())
}

// applyMoveLocked requires b.mu to be held for writing
func (b *Board) applyMoveLocked(m models.Move, now time.Time) (models.MoveResult, error) {
	// No destination resolved: the card snaps back
	if m.DestStage == "" || !b.stages.Has(m.DestStage) {
		return models.MoveResult{Kind: models.MoveCancelled}, nil
	}

	// Dropped where it was picked up
	if m.SourceStage == m.DestStage && m.SourceIndex == m.DestIndex {
		result := models.MoveResult{Kind: models.MoveNoOp, Index: m.SourceIndex}
		if d, ok := b.deals.deals[m.DealID]; ok {
			result.Deal = d.Clone()
		}
		return result, nil
	}

	deal, ok := b.deals.deals[m.DealID]
	if !ok {
		return models.MoveResult{}, fmt.Errorf("%w: move references unknown deal %s",
			models.ErrInvariantViolation, m.DealID)
	}
	src, ok := b.columns.columns[m.SourceStage]
	if !ok {
		return models.MoveResult{}, fmt.Errorf("%w: move references unknown source stage %q",
			models.ErrInvariantViolation, m.SourceStage)
	}
	if m.SourceIndex < 0 || m.SourceIndex >= src.Len() {
		return models.MoveResult{}, fmt.Errorf("%w: %w: source index %d in %s (length %d)",
			models.ErrInvariantViolation, models.ErrIndexOutOfRange, m.SourceIndex, m.SourceStage, src.Len())
	}
	if src.DealIDs[m.SourceIndex] != m.DealID {
		return models.MoveResult{}, fmt.Errorf("%w: %s[%d] holds %s, not %s",
			models.ErrInvariantViolation, m.SourceStage, m.SourceIndex, src.DealIDs[m.SourceIndex], m.DealID)
	}
	if deal.Stage != m.SourceStage {
		return models.MoveResult{}, fmt.Errorf("%w: deal %s has stage %s but sits in %s",
			models.ErrInvariantViolation, m.DealID, deal.Stage, m.SourceStage)
	}

	if m.SourceStage == m.DestStage {
		return b.reorderLocked(deal, m)
	}
	return b.transitionLocked(deal, m, now)
}

// reorderLocked handles a move inside one column. Display order carries no
// business meaning, so the deal record (and its UpdatedAt) is left alone.
func (b *Board) reorderLocked(deal *models.Deal, m models.Move) (models.MoveResult, error) {
	last := b.columns.columns[m.SourceStage].Len() - 1
	to := clamp(m.DestIndex, 0, last)
	if to == m.SourceIndex {
		return models.MoveResult{Kind: models.MoveNoOp, Deal: deal.Clone(), Index: to}, nil
	}

	if err := b.columns.MoveWithinColumn(m.SourceStage, m.SourceIndex, to); err != nil {
		return models.MoveResult{}, err
	}
	b.version++
	return models.MoveResult{Kind: models.MoveReordered, Deal: deal.Clone(), Index: to}, nil
}

// transitionLocked moves a deal across columns and updates its stage.
// If the deal update fails the column move is reverted.
func (b *Board) transitionLocked(deal *models.Deal, m models.Move, now time.Time) (models.MoveResult, error) {
	to, err := b.columns.MoveAcrossColumns(m.SourceStage, m.SourceIndex, m.DestStage, m.DestIndex)
	if err != nil {
		return models.MoveResult{}, err
	}

	dest := m.DestStage
	updated, err := b.deals.Update(deal.ID, models.DealPatch{Stage: &dest}, now)
	if err != nil {
		if _, rbErr := b.columns.MoveAcrossColumns(m.DestStage, to, m.SourceStage, m.SourceIndex); rbErr != nil {
			return models.MoveResult{}, fmt.Errorf("%w: rollback failed: %v (after %v)",
				models.ErrInvariantViolation, rbErr, err)
		}
		return models.MoveResult{}, err
	}

	b.version++
	return models.MoveResult{Kind: models.MoveTransitioned, Deal: updated, Index: to}, nil
}

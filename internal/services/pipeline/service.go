// Package pipeline exposes the board's move engine, search projection and
// aggregates as a service that persists and announces every real change.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/thenoetrevino/dealboard/internal/board"
	"github.com/thenoetrevino/dealboard/internal/models"
	"github.com/thenoetrevino/dealboard/internal/services/commit"
)

// Service defines the pipeline (board level) operations
type Service interface {
	// Views
	Stages() []models.Stage
	Project(ctx context.Context, term string) *board.Projection
	Summary(ctx context.Context, term string) *board.Summary
	Column(ctx context.Context, stage models.StageID) (*models.Column, error)
	Locate(ctx context.Context, dealID string) (models.StageID, int, error)

	// Moves
	Move(ctx context.Context, m models.Move) (models.MoveResult, error)
	MoveToStage(ctx context.Context, dealID string, stage models.StageID) (models.MoveResult, error)
	MoveToNextStage(ctx context.Context, dealID string) (models.MoveResult, error)
	MoveToPrevStage(ctx context.Context, dealID string) (models.MoveResult, error)
	MoveUp(ctx context.Context, dealID string) (models.MoveResult, error)
	MoveDown(ctx context.Context, dealID string) (models.MoveResult, error)
	ReorderColumn(ctx context.Context, stage models.StageID, ids []string) error

	// Snapshot returns the full board state
	Snapshot(ctx context.Context) *models.Snapshot
}

type service struct {
	board     *board.Board
	committer *commit.Committer
}

// NewService creates a new pipeline service
func NewService(c *commit.Committer) Service {
	return &service{
		board:     c.Board(),
		committer: c,
	}
}

func (s *service) Stages() []models.Stage {
	return s.board.Stages().Stages()
}

// Project filters the board by a search term
func (s *service) Project(ctx context.Context, term string) *board.Projection {
	return s.board.Project(term)
}

// Summary computes aggregates over the projection for term
func (s *service) Summary(ctx context.Context, term string) *board.Summary {
	return s.board.Summary(term)
}

// Column returns the unfiltered column of a stage
func (s *service) Column(ctx context.Context, stage models.StageID) (*models.Column, error) {
	return s.board.Column(stage)
}

// Locate returns the stage and column position of a deal
func (s *service) Locate(ctx context.Context, dealID string) (models.StageID, int, error) {
	if strings.TrimSpace(dealID) == "" {
		return "", -1, ErrInvalidDealID
	}
	return s.board.Locate(dealID)
}

func (s *service) Snapshot(ctx context.Context) *models.Snapshot {
	return s.board.Snapshot()
}

// Move applies a drag gesture. Cancelled and no-op moves are not persisted.
func (s *service) Move(ctx context.Context, m models.Move) (models.MoveResult, error) {
	result, err := s.board.ApplyMove(m)
	return s.finish(ctx, m.DealID, result, err)
}

// MoveToStage moves a deal to the bottom of stage
func (s *service) MoveToStage(ctx context.Context, dealID string, stage models.StageID) (models.MoveResult, error) {
	if strings.TrimSpace(dealID) == "" {
		return models.MoveResult{}, ErrInvalidDealID
	}
	result, err := s.board.MoveToStage(dealID, stage)
	return s.finish(ctx, dealID, result, err)
}

// MoveToNextStage moves a deal one column to the right
func (s *service) MoveToNextStage(ctx context.Context, dealID string) (models.MoveResult, error) {
	if strings.TrimSpace(dealID) == "" {
		return models.MoveResult{}, ErrInvalidDealID
	}
	result, err := s.board.MoveToNextStage(dealID)
	return s.finish(ctx, dealID, result, err)
}

// MoveToPrevStage moves a deal one column to the left
func (s *service) MoveToPrevStage(ctx context.Context, dealID string) (models.MoveResult, error) {
	if strings.TrimSpace(dealID) == "" {
		return models.MoveResult{}, ErrInvalidDealID
	}
	result, err := s.board.MoveToPrevStage(dealID)
	return s.finish(ctx, dealID, result, err)
}

// MoveUp swaps a deal with the one above it
func (s *service) MoveUp(ctx context.Context, dealID string) (models.MoveResult, error) {
	return s.moveVertical(ctx, dealID, -1)
}

// MoveDown swaps a deal with the one below it
func (s *service) MoveDown(ctx context.Context, dealID string) (models.MoveResult, error) {
	return s.moveVertical(ctx, dealID, 1)
}

func (s *service) moveVertical(ctx context.Context, dealID string, delta int) (models.MoveResult, error) {
	if strings.TrimSpace(dealID) == "" {
		return models.MoveResult{}, ErrInvalidDealID
	}
	stage, idx, err := s.board.Locate(dealID)
	if err != nil {
		return models.MoveResult{}, err
	}
	col, err := s.board.Column(stage)
	if err != nil {
		return models.MoveResult{}, err
	}
	target := idx + delta
	if target < 0 {
		return models.MoveResult{}, ErrAlreadyTop
	}
	if target >= col.Len() {
		return models.MoveResult{}, ErrAlreadyBottom
	}
	return s.Move(ctx, models.Move{
		DealID:      dealID,
		SourceStage: stage,
		SourceIndex: idx,
		DestStage:   stage,
		DestIndex:   target,
	})
}

// ReorderColumn replaces the order of one column
func (s *service) ReorderColumn(ctx context.Context, stage models.StageID, ids []string) error {
	if err := s.board.ReorderColumn(stage, ids); err != nil {
		logMoveError(err, "", stage)
		return err
	}
	return s.committer.Commit(ctx, "", stage)
}

func (s *service) finish(ctx context.Context, dealID string, result models.MoveResult, err error) (models.MoveResult, error) {
	if err != nil {
		logMoveError(err, dealID, "")
		return result, err
	}
	if !result.Changed() {
		slog.Debug("move not applied", "deal_id", dealID, "kind", result.Kind.String())
		return result, nil
	}
	if err := s.committer.Commit(ctx, dealID, result.Deal.Stage); err != nil {
		return result, err
	}
	slog.Debug("deal moved",
		"deal_id", dealID,
		"kind", result.Kind.String(),
		"stage", result.Deal.Stage,
		"index", result.Index)
	return result, nil
}

// logMoveError reports engine failures; consistency errors are logged at error level
func logMoveError(err error, dealID string, stage models.StageID) {
	if errors.Is(err, models.ErrInvariantViolation) || errors.Is(err, models.ErrIndexOutOfRange) {
		slog.Error("board move rejected", "deal_id", dealID, "stage", stage, "error", err)
		return
	}
	slog.Debug("board move failed", "deal_id", dealID, "stage", stage, "error", err)
}

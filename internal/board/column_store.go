package board

import (
	"fmt"
	"slices"

	"github.com/thenoetrevino/dealboard/internal/models"
)

// ColumnStore holds one ordered column of deal ids per stage
type ColumnStore struct {
	stages  *StageSet
	columns map[models.StageID]*models.Column
}

// NewColumnStore creates an empty column for every stage in the set
func NewColumnStore(stages *StageSet) *ColumnStore {
	columns := make(map[models.StageID]*models.Column, stages.Len())
	for _, st := range stages.Stages() {
		columns[st.ID] = &models.Column{
			Stage:   st.ID,
			Title:   st.Title,
			Color:   st.Color,
			DealIDs: []string{},
		}
	}
	return &ColumnStore{stages: stages, columns: columns}
}

func (s *ColumnStore) column(stage models.StageID) (*models.Column, error) {
	col, ok := s.columns[stage]
	if !ok {
		return nil, fmt.Errorf("stage %s: %w", stage, models.ErrNotFound)
	}
	return col, nil
}

// GetColumn returns a copy of the column for stage
func (s *ColumnStore) GetColumn(stage models.StageID) (*models.Column, error) {
	col, err := s.column(stage)
	if err != nil {
		return nil, err
	}
	return col.Clone(), nil
}

// Columns returns copies of all columns in stage order
func (s *ColumnStore) Columns() []*models.Column {
	result := make([]*models.Column, 0, len(s.columns))
	for _, id := range s.stages.IDs() {
		result = append(result, s.columns[id].Clone())
	}
	return result
}

// SetColumnOrder replaces the ordered ids of a column wholesale.
// It fails if an id would appear twice, in this or another column.
func (s *ColumnStore) SetColumnOrder(stage models.StageID, ids []string) error {
	col, err := s.column(stage)
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: deal %s listed twice in %s", models.ErrInvariantViolation, id, stage)
		}
		seen[id] = struct{}{}

		if other, _, ok := s.Locate(id); ok && other != stage {
			return fmt.Errorf("%w: deal %s is already in %s", models.ErrInvariantViolation, id, other)
		}
	}

	col.DealIDs = append([]string{}, ids...)
	return nil
}

// MoveWithinColumn moves the id at from to position to inside one column
func (s *ColumnStore) MoveWithinColumn(stage models.StageID, from, to int) error {
	col, err := s.column(stage)
	if err != nil {
		return err
	}
	n := len(col.DealIDs)
	if from < 0 || from >= n {
		return fmt.Errorf("%w: source index %d in %s (length %d)", models.ErrIndexOutOfRange, from, stage, n)
	}
	if to < 0 || to >= n {
		return fmt.Errorf("%w: destination index %d in %s (length %d)", models.ErrIndexOutOfRange, to, stage, n)
	}
	if from == to {
		return nil
	}

	id := col.DealIDs[from]
	col.DealIDs = slices.Delete(col.DealIDs, from, from+1)
	col.DealIDs = slices.Insert(col.DealIDs, to, id)
	return nil
}

// MoveAcrossColumns removes the id at from in the source column and inserts it
// into the destination column at to, clamped into [0, destination length].
// It returns the final destination index.
func (s *ColumnStore) MoveAcrossColumns(fromStage models.StageID, from int, toStage models.StageID, to int) (int, error) {
	src, err := s.column(fromStage)
	if err != nil {
		return 0, err
	}
	dst, err := s.column(toStage)
	if err != nil {
		return 0, err
	}
	if from < 0 || from >= len(src.DealIDs) {
		return 0, fmt.Errorf("%w: source index %d in %s (length %d)",
			models.ErrIndexOutOfRange, from, fromStage, len(src.DealIDs))
	}

	id := src.DealIDs[from]
	src.DealIDs = slices.Delete(src.DealIDs, from, from+1)

	to = clamp(to, 0, len(dst.DealIDs))
	dst.DealIDs = slices.Insert(dst.DealIDs, to, id)
	return to, nil
}

// Append adds id to the bottom of a column
func (s *ColumnStore) Append(stage models.StageID, id string) error {
	col, err := s.column(stage)
	if err != nil {
		return err
	}
	if other, _, ok := s.Locate(id); ok {
		return fmt.Errorf("%w: deal %s is already in %s", models.ErrInvariantViolation, id, other)
	}
	col.DealIDs = append(col.DealIDs, id)
	return nil
}

// Remove deletes id from whichever column holds it and reports where it was
func (s *ColumnStore) Remove(id string) (models.StageID, int, bool) {
	stage, idx, ok := s.Locate(id)
	if !ok {
		return "", -1, false
	}
	col := s.columns[stage]
	col.DealIDs = slices.Delete(col.DealIDs, idx, idx+1)
	return stage, idx, true
}

// Locate finds the column and position holding id
func (s *ColumnStore) Locate(id string) (models.StageID, int, bool) {
	for _, stage := range s.stages.IDs() {
		if idx := s.columns[stage].IndexOf(id); idx >= 0 {
			return stage, idx, true
		}
	}
	return "", -1, false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

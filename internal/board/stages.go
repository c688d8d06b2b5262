package board

import (
	"fmt"

	"github.com/thenoetrevino/dealboard/internal/models"
)

// StageSet is the fixed, ordered list of pipeline stages.
// The order determines left-to-right column rendering and is configuration, not data.
type StageSet struct {
	stages []models.Stage
	index  map[models.StageID]int
	won    models.StageID
	lost   models.StageID
}

// NewStageSet validates and builds a stage set. won and lost may be empty when
// the pipeline has no terminal stages; otherwise they must be members of stages.
func NewStageSet(stages []models.Stage, won, lost models.StageID) (*StageSet, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("stage set cannot be empty")
	}

	index := make(map[models.StageID]int, len(stages))
	for i, st := range stages {
		if st.ID == "" {
			return nil, fmt.Errorf("stage %d has an empty id", i)
		}
		if _, dup := index[st.ID]; dup {
			return nil, fmt.Errorf("duplicate stage id %q", st.ID)
		}
		index[st.ID] = i
	}

	for _, terminal := range []models.StageID{won, lost} {
		if terminal == "" {
			continue
		}
		if _, ok := index[terminal]; !ok {
			return nil, fmt.Errorf("terminal stage %q is not in the stage set", terminal)
		}
	}
	if won != "" && won == lost {
		return nil, fmt.Errorf("won and lost stages must differ, both are %q", won)
	}

	return &StageSet{
		stages: append([]models.Stage(nil), stages...),
		index:  index,
		won:    won,
		lost:   lost,
	}, nil
}

// DefaultStageSet returns the default six-stage sales pipeline
func DefaultStageSet() *StageSet {
	set, err := NewStageSet(models.DefaultStages(), models.StageClosedWon, models.StageClosedLost)
	if err != nil {
		panic(err) // default stages are static
	}
	return set
}

// Has reports whether id is a configured stage
func (s *StageSet) Has(id models.StageID) bool {
	_, ok := s.index[id]
	return ok
}

// Get returns the metadata of a stage
func (s *StageSet) Get(id models.StageID) (models.Stage, bool) {
	i, ok := s.index[id]
	if !ok {
		return models.Stage{}, false
	}
	return s.stages[i], true
}

// Index returns the board position of a stage
func (s *StageSet) Index(id models.StageID) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

// Stages returns a copy of the stages in board order
func (s *StageSet) Stages() []models.Stage {
	return append([]models.Stage(nil), s.stages...)
}

// IDs returns the stage ids in board order
func (s *StageSet) IDs() []models.StageID {
	ids := make([]models.StageID, len(s.stages))
	for i, st := range s.stages {
		ids[i] = st.ID
	}
	return ids
}

// First returns the left-most stage, where new deals land by default
func (s *StageSet) First() models.StageID {
	return s.stages[0].ID
}

// Next returns the stage to the right of id
func (s *StageSet) Next(id models.StageID) (models.StageID, bool) {
	i, ok := s.index[id]
	if !ok || i+1 >= len(s.stages) {
		return "", false
	}
	return s.stages[i+1].ID, true
}

// Prev returns the stage to the left of id
func (s *StageSet) Prev(id models.StageID) (models.StageID, bool) {
	i, ok := s.index[id]
	if !ok || i == 0 {
		return "", false
	}
	return s.stages[i-1].ID, true
}

// Won returns the "won" terminal stage (may be empty)
func (s *StageSet) Won() models.StageID {
	return s.won
}

// Lost returns the "lost" terminal stage (may be empty)
func (s *StageSet) Lost() models.StageID {
	return s.lost
}

// Len returns the number of stages
func (s *StageSet) Len() int {
	return len(s.stages)
}

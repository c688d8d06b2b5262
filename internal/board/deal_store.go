package board

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/thenoetrevino/dealboard/internal/models"
)

// DealStore holds deal records keyed by id.
// It does not validate stage/column consistency; the Board does.
type DealStore struct {
	deals map[string]*models.Deal
	order []string // insertion order, for deterministic iteration
	newID func() string
}

// NewDealStore creates an empty deal store that generates UUID identifiers
func NewDealStore() *DealStore {
	return &DealStore{
		deals: make(map[string]*models.Deal),
		newID: uuid.NewString,
	}
}

// Get returns a copy of the deal with the given id
func (s *DealStore) Get(id string) (*models.Deal, error) {
	d, ok := s.deals[id]
	if !ok {
		return nil, fmt.Errorf("deal %s: %w", id, models.ErrNotFound)
	}
	return d.Clone(), nil
}

// Has reports whether the deal exists
func (s *DealStore) Has(id string) bool {
	_, ok := s.deals[id]
	return ok
}

// Create inserts a new deal, generating an id if absent and setting both timestamps
func (s *DealStore) Create(d *models.Deal, now time.Time) (*models.Deal, error) {
	record := d.Clone()
	if record.ID == "" {
		record.ID = s.newID()
	}
	record.CreatedAt = now
	record.UpdatedAt = now
	if err := s.insert(record); err != nil {
		return nil, err
	}
	return record.Clone(), nil
}

// insert stores a record as-is, keeping its timestamps
func (s *DealStore) insert(d *models.Deal) error {
	if _, exists := s.deals[d.ID]; exists {
		return fmt.Errorf("%w: deal %s already exists", models.ErrInvariantViolation, d.ID)
	}
	s.deals[d.ID] = d
	s.order = append(s.order, d.ID)
	return nil
}

// Update merges patch into the deal and refreshes UpdatedAt
func (s *DealStore) Update(id string, patch models.DealPatch, now time.Time) (*models.Deal, error) {
	d, ok := s.deals[id]
	if !ok {
		return nil, fmt.Errorf("deal %s: %w", id, models.ErrNotFound)
	}
	patch.Apply(d)
	d.UpdatedAt = now
	return d.Clone(), nil
}

// Delete removes the deal record. The caller must also remove it from its column.
func (s *DealStore) Delete(id string) error {
	if _, ok := s.deals[id]; !ok {
		return fmt.Errorf("deal %s: %w", id, models.ErrNotFound)
	}
	delete(s.deals, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return nil
}

// All returns copies of every deal in insertion order
func (s *DealStore) All() []*models.Deal {
	result := make([]*models.Deal, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.deals[id].Clone())
	}
	return result
}

// Len returns the number of deals
func (s *DealStore) Len() int {
	return len(s.deals)
}

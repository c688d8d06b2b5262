package deal

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/thenoetrevino/dealboard/internal/board"
	"github.com/thenoetrevino/dealboard/internal/models"
	"github.com/thenoetrevino/dealboard/internal/services/commit"
)

// Service defines all deal-related business operations
type Service interface {
	// Read operations
	GetDeal(ctx context.Context, id string) (*models.Deal, error)
	ListDeals(ctx context.Context, filter ListFilter) ([]*models.Deal, error)

	// Write operations
	CreateDeal(ctx context.Context, req CreateDealRequest) (*models.Deal, error)
	UpdateDeal(ctx context.Context, req UpdateDealRequest) (*models.Deal, error)
	DeleteDeal(ctx context.Context, id string) error
	ToggleFavorite(ctx context.Context, id string) (*models.Deal, error)
	ImportDeals(ctx context.Context, reqs []CreateDealRequest) ([]*models.Deal, error)

	// ApplyEnrichment applies an asynchronous result only if the deal is unchanged
	// since expected; otherwise it returns ErrStaleUpdate or ErrNotFound.
	ApplyEnrichment(ctx context.Context, id string, expected time.Time, patch models.DealPatch) (*models.Deal, error)
}

// CreateDealRequest encapsulates all data needed to create a deal
type CreateDealRequest struct {
	ID           string // Optional: generated when empty
	Title        string
	Company      string
	ContactName  string
	Value        float64
	Stage        models.StageID  // Optional: empty means the first stage
	Probability  int
	Priority     models.Priority // Optional: empty means the default priority
	DueDate      *time.Time
	Favorite     bool
	Tags         []string
	CustomFields map[string]string
}

// UpdateDealRequest encapsulates a partial deal update
type UpdateDealRequest struct {
	ID    string
	Patch models.DealPatch
}

// ListFilter narrows ListDeals. Zero value lists every deal.
type ListFilter struct {
	Stage         models.StageID
	Term          string
	FavoritesOnly bool
}

// service implements Service on top of a board committer
type service struct {
	board     *board.Board
	committer *commit.Committer
}

// NewService creates a new deal service
func NewService(c *commit.Committer) Service {
	return &service{
		board:     c.Board(),
		committer: c,
	}
}

// GetDeal retrieves a single deal
func (s *service) GetDeal(ctx context.Context, id string) (*models.Deal, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidDealID
	}
	return s.board.Deal(id)
}

// ListDeals returns deals in board order (stage order, then column position)
func (s *service) ListDeals(ctx context.Context, filter ListFilter) ([]*models.Deal, error) {
	if filter.Stage != "" && !s.board.Stages().Has(filter.Stage) {
		return nil, fmt.Errorf("stage %s: %w", filter.Stage, models.ErrNotFound)
	}

	p := s.board.Project(filter.Term)
	var result []*models.Deal
	for _, col := range p.Columns {
		if filter.Stage != "" && col.Stage != filter.Stage {
			continue
		}
		for _, d := range p.DealsByStage(col.Stage) {
			if filter.FavoritesOnly && !d.Favorite {
				continue
			}
			result = append(result, d)
		}
	}
	return result, nil
}

// CreateDeal validates and adds a deal at the bottom of its stage column
func (s *service) CreateDeal(ctx context.Context, req CreateDealRequest) (*models.Deal, error) {
	d, err := s.create(req)
	if err != nil {
		return nil, err
	}
	if err := s.committer.Commit(ctx, d.ID, d.Stage); err != nil {
		return nil, err
	}
	slog.Debug("deal created", "deal_id", d.ID, "stage", d.Stage)
	return d, nil
}

func (s *service) create(req CreateDealRequest) (*models.Deal, error) {
	if err := validateTags(req.Tags); err != nil {
		return nil, err
	}
	if err := validateFields(req.CustomFields); err != nil {
		return nil, err
	}
	return s.board.CreateDeal(&models.Deal{
		ID:           req.ID,
		Title:        strings.TrimSpace(req.Title),
		Company:      strings.TrimSpace(req.Company),
		ContactName:  strings.TrimSpace(req.ContactName),
		Value:        req.Value,
		Stage:        req.Stage,
		Probability:  req.Probability,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
		Favorite:     req.Favorite,
		Tags:         normalizeTags(req.Tags),
		CustomFields: req.CustomFields,
	})
}

// UpdateDeal merges a patch into a deal. A stage change moves the deal to the
// bottom of the new stage's column.
func (s *service) UpdateDeal(ctx context.Context, req UpdateDealRequest) (*models.Deal, error) {
	if strings.TrimSpace(req.ID) == "" {
		return nil, ErrInvalidDealID
	}
	if req.Patch.IsEmpty() {
		return nil, ErrNothingToUpdate
	}
	if req.Patch.Tags != nil {
		if err := validateTags(*req.Patch.Tags); err != nil {
			return nil, err
		}
		tags := normalizeTags(*req.Patch.Tags)
		req.Patch.Tags = &tags
	}
	if err := validateFields(req.Patch.CustomFields); err != nil {
		return nil, err
	}

	d, err := s.board.UpdateDeal(req.ID, req.Patch)
	if err != nil {
		return nil, err
	}
	if err := s.committer.Commit(ctx, d.ID, d.Stage); err != nil {
		return nil, err
	}
	slog.Debug("deal updated", "deal_id", d.ID)
	return d, nil
}

// DeleteDeal removes a deal and its column entry
func (s *service) DeleteDeal(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidDealID
	}
	stage, _, err := s.board.Locate(id)
	if err != nil {
		return err
	}
	if err := s.board.DeleteDeal(id); err != nil {
		return err
	}
	if err := s.committer.Commit(ctx, id, stage); err != nil {
		return err
	}
	slog.Debug("deal deleted", "deal_id", id)
	return nil
}

// ToggleFavorite flips the favorite flag of a deal
func (s *service) ToggleFavorite(ctx context.Context, id string) (*models.Deal, error) {
	current, err := s.GetDeal(ctx, id)
	if err != nil {
		return nil, err
	}
	fav := !current.Favorite
	return s.UpdateDeal(ctx, UpdateDealRequest{ID: id, Patch: models.DealPatch{Favorite: &fav}})
}

// ImportDeals creates all deals and commits once. The first invalid deal stops
// the import; deals created before it stay on the board.
func (s *service) ImportDeals(ctx context.Context, reqs []CreateDealRequest) ([]*models.Deal, error) {
	if len(reqs) == 0 {
		return nil, ErrEmptyImport
	}

	created := make([]*models.Deal, 0, len(reqs))
	var importErr error
	for i, req := range reqs {
		d, err := s.create(req)
		if err != nil {
			importErr = fmt.Errorf("deal %d (%q): %w", i+1, req.Title, err)
			break
		}
		created = append(created, d)
	}

	if len(created) > 0 {
		if err := s.committer.Commit(ctx, "", ""); err != nil {
			return nil, err
		}
	}
	slog.Debug("deals imported", "count", len(created))
	return created, importErr
}

// ApplyEnrichment applies patch guarded by the deal's UpdatedAt
func (s *service) ApplyEnrichment(ctx context.Context, id string, expected time.Time, patch models.DealPatch) (*models.Deal, error) {
	if patch.IsEmpty() {
		return nil, ErrNothingToUpdate
	}
	if err := validateFields(patch.CustomFields); err != nil {
		return nil, err
	}
	d, err := s.board.UpdateIfUnchanged(id, expected, patch)
	if err != nil {
		return nil, err
	}
	if err := s.committer.Commit(ctx, d.ID, d.Stage); err != nil {
		return nil, err
	}
	slog.Debug("enrichment applied", "deal_id", d.ID)
	return d, nil
}

func validateTags(tags []string) error {
	if len(tags) > MaxTags {
		return ErrTooManyTags
	}
	return nil
}

func validateFields(fields map[string]string) error {
	for k := range fields {
		if strings.TrimSpace(k) == "" {
			return ErrEmptyFieldName
		}
	}
	return nil
}

// normalizeTags trims, lowercases and de-duplicates tags, keeping first occurrence order
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

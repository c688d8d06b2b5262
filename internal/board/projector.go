package board

import (
	"strings"

	"github.com/thenoetrevino/dealboard/internal/models"
)

// Projection is a filtered, read-only view of the board.
// Columns are always present and in stage order, even when the filter empties them.
type Projection struct {
	Term    string
	Deals   []*models.Deal
	Columns []*models.Column
}

// DealsByStage returns the projected deals of one column in column order
func (p *Projection) DealsByStage(stage models.StageID) []*models.Deal {
	byID := make(map[string]*models.Deal, len(p.Deals))
	for _, d := range p.Deals {
		byID[d.ID] = d
	}
	for _, col := range p.Columns {
		if col.Stage != stage {
			continue
		}
		result := make([]*models.Deal, 0, len(col.DealIDs))
		for _, id := range col.DealIDs {
			if d, ok := byID[id]; ok {
				result = append(result, d)
			}
		}
		return result
	}
	return nil
}

// Matches reports whether a deal matches a search term.
// The match is a case-insensitive substring test over title, company and contact name;
// an empty term matches everything.
func Matches(d *models.Deal, term string) bool {
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)
	return strings.Contains(strings.ToLower(d.Title), needle) ||
		strings.Contains(strings.ToLower(d.Company), needle) ||
		strings.Contains(strings.ToLower(d.ContactName), needle)
}

// Project filters deals and columns by term. It does not modify its inputs and
// returns the same result for the same arguments. An empty term returns every
// deal and every column unchanged (as copies).
func Project(deals []*models.Deal, columns []*models.Column, term string) *Projection {
	p := &Projection{
		Term:    term,
		Deals:   make([]*models.Deal, 0, len(deals)),
		Columns: make([]*models.Column, 0, len(columns)),
	}

	kept := make(map[string]struct{}, len(deals))
	for _, d := range deals {
		if Matches(d, term) {
			p.Deals = append(p.Deals, d.Clone())
			kept[d.ID] = struct{}{}
		}
	}

	for _, col := range columns {
		filtered := col.Clone()
		filtered.DealIDs = make([]string, 0, len(col.DealIDs))
		for _, id := range col.DealIDs {
			if _, ok := kept[id]; ok {
				filtered.DealIDs = append(filtered.DealIDs, id)
			}
		}
		p.Columns = append(p.Columns, filtered)
	}
	return p
}

// Project returns the projection of a consistent view of the board
func (b *Board) Project(term string) *Projection {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Project(b.deals.All(), b.columns.Columns(), term)
}

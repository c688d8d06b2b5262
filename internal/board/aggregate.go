package board

import (
	"github.com/thenoetrevino/dealboard/internal/models"
)

// ColumnTotal is the value and deal count of one column
type ColumnTotal struct {
	Stage models.StageID `json:"stage"`
	Title string         `json:"title"`
	Value float64        `json:"value"`
	Count int            `json:"count"`
}

// Summary combines the board aggregates for one projection
type Summary struct {
	Term        string        `json:"term,omitempty"`
	TotalValue  float64       `json:"total_value"`  // excludes the lost stage
	ActiveCount int           `json:"active_count"` // excludes the lost stage
	WonValue    float64       `json:"won_value"`
	DealCount   int           `json:"deal_count"`
	Columns     []ColumnTotal `json:"columns"`
}

// TotalPipelineValue sums the value of every deal not in the lost stage.
// Won deals are included.
func TotalPipelineValue(deals []*models.Deal, lost models.StageID) float64 {
	var total float64
	for _, d := range deals {
		if d.Stage != lost {
			total += d.Value
		}
	}
	return total
}

// ActiveDealCount counts deals not in the lost stage
func ActiveDealCount(deals []*models.Deal, lost models.StageID) int {
	count := 0
	for _, d := range deals {
		if d.Stage != lost {
			count++
		}
	}
	return count
}

// PerColumnValue totals every column, lost included, in column order.
// Ids without a matching deal are skipped.
func PerColumnValue(columns []*models.Column, deals []*models.Deal) []ColumnTotal {
	byID := make(map[string]*models.Deal, len(deals))
	for _, d := range deals {
		byID[d.ID] = d
	}

	totals := make([]ColumnTotal, 0, len(columns))
	for _, col := range columns {
		t := ColumnTotal{Stage: col.Stage, Title: col.Title}
		for _, id := range col.DealIDs {
			if d, ok := byID[id]; ok {
				t.Value += d.Value
				t.Count++
			}
		}
		totals = append(totals, t)
	}
	return totals
}

// Summarize computes all aggregates of a projection
func Summarize(p *Projection, stages *StageSet) *Summary {
	s := &Summary{
		Term:        p.Term,
		TotalValue:  TotalPipelineValue(p.Deals, stages.Lost()),
		ActiveCount: ActiveDealCount(p.Deals, stages.Lost()),
		DealCount:   len(p.Deals),
		Columns:     PerColumnValue(p.Columns, p.Deals),
	}
	for _, d := range p.Deals {
		if d.Stage == stages.Won() {
			s.WonValue += d.Value
		}
	}
	return s
}

// Summary returns the aggregates of the board filtered by term
func (b *Board) Summary(term string) *Summary {
	return Summarize(b.Project(term), b.stages)
}

package enrich

import (
	"context"
	"time"

	"github.com/thenoetrevino/dealboard/internal/models"
)

// StaticProvider derives suggestions from the deal itself. It needs no network
// access and always returns the same answer for the same deal.
type StaticProvider struct {
	now func() time.Time
}

// NewStaticProvider creates a static provider
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{now: time.Now}
}

func (p *StaticProvider) Name() string {
	return ProviderStatic
}

var stageProbability = map[models.StageID]int{
	models.StageDiscovery:     10,
	models.StageQualification: 25,
	models.StageProposal:      50,
	models.StageNegotiation:   75,
	models.StageClosedWon:     100,
	models.StageClosedLost:    0,
}

// Enrich estimates probability from stage and priority and tags the deal's segment by value
func (p *StaticProvider) Enrich(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d := req.Deal
	prob, known := stageProbability[d.Stage]
	if !known {
		prob = d.Probability
	}
	if d.Stage != models.StageClosedWon && d.Stage != models.StageClosedLost {
		switch d.Priority {
		case models.PriorityHigh:
			prob += 10
		case models.PriorityLow:
			prob -= 5
		}
		prob = min(max(prob, 0), 95)
	}

	segment := "smb"
	switch {
	case d.Value >= 100_000:
		segment = "enterprise"
	case d.Value >= 10_000:
		segment = "mid-market"
	}

	return &Result{
		Probability:  &prob,
		CustomFields: map[string]string{"segment": segment},
		Confidence:   0.5,
		Provider:     p.Name(),
		Timestamp:    p.now(),
	}, nil
}

package board

import (
	"math/rand"
	"testing"

	"github.com/thenoetrevino/dealboard/internal/models"
)

// Scenario: three won deals (100, 200, 300) and one lost deal (500)
func TestAggregatesExcludeLost(t *testing.T) {
	b := newTestBoard(t)
	addDeal(t, b, "W1", models.StageClosedWon, 100)
	addDeal(t, b, "W2", models.StageClosedWon, 200)
	addDeal(t, b, "W3", models.StageClosedWon, 300)
	addDeal(t, b, "L1", models.StageClosedLost, 500)

	deals := b.Deals()
	if got := TotalPipelineValue(deals, models.StageClosedLost); got != 600 {
		t.Errorf("TotalPipelineValue = %v, want 600", got)
	}
	if got := ActiveDealCount(deals, models.StageClosedLost); got != 3 {
		t.Errorf("ActiveDealCount = %d, want 3", got)
	}

	s := b.Summary("")
	if s.TotalValue != 600 || s.ActiveCount != 3 || s.WonValue != 600 || s.DealCount != 4 {
		t.Errorf("Summary = %+v", s)
	}
	for _, col := range s.Columns {
		switch col.Stage {
		case models.StageClosedWon:
			if col.Value != 600 || col.Count != 3 {
				t.Errorf("closed-won total = %+v", col)
			}
		case models.StageClosedLost:
			if col.Value != 500 || col.Count != 1 {
				t.Errorf("per-column values include lost, got %+v", col)
			}
		default:
			if col.Value != 0 || col.Count != 0 {
				t.Errorf("%s total = %+v, want zero", col.Stage, col)
			}
		}
	}
}

func TestSummaryFollowsProjection(t *testing.T) {
	b := seedSearchBoard(t)
	if _, err := b.UpdateDeal("d2", models.DealPatch{Value: ptr(5000.0)}); err != nil {
		t.Fatalf("UpdateDeal failed: %v", err)
	}

	s := b.Summary("techcorp")
	if s.Term != "techcorp" || s.DealCount != 1 || s.TotalValue != 5000 {
		t.Errorf("Summary = %+v", s)
	}
}

func TestTotalPipelineValueRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	stages := DefaultStageSet().IDs()

	for round := 0; round < 50; round++ {
		n := rng.Intn(30)
		deals := make([]*models.Deal, n)
		var want float64
		active := 0
		for i := range deals {
			// whole numbers keep the float sums exact
			d := &models.Deal{Stage: stages[rng.Intn(len(stages))], Value: float64(rng.Intn(100000))}
			deals[i] = d
			if d.Stage != models.StageClosedLost {
				want += d.Value
				active++
			}
		}
		if got := TotalPipelineValue(deals, models.StageClosedLost); got != want {
			t.Fatalf("round %d: TotalPipelineValue = %v, want %v", round, got, want)
		}
		if got := ActiveDealCount(deals, models.StageClosedLost); got != active {
			t.Fatalf("round %d: ActiveDealCount = %d, want %d", round, got, active)
		}
	}
}

func TestPerColumnValueSkipsUnknownIDs(t *testing.T) {
	cols := []*models.Column{{Stage: models.StageDiscovery, DealIDs: []string{"a", "ghost"}}}
	deals := []*models.Deal{{ID: "a", Value: 10}}

	totals := PerColumnValue(cols, deals)
	if len(totals) != 1 || totals[0].Value != 10 || totals[0].Count != 1 {
		t.Errorf("PerColumnValue = %+v", totals)
	}
}

func ptr[T any](v T) *T {
	return &v
}

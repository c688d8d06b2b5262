package board

import (
	"fmt"
	"testing"
	"time"

	"github.com/thenoetrevino/dealboard/internal/models"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

// tickingClock returns a clock that advances one second on every call
func tickingClock() func() time.Time {
	t := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

// sequentialIDs returns an id generator producing d1, d2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("d%d", n)
	}
}

func newTestBoard(t *testing.T) *Board {
	t.Helper()
	return New(DefaultStageSet(), WithClock(tickingClock()), WithIDGenerator(sequentialIDs()))
}

// addDeal creates a deal and fails the test on error
func addDeal(t *testing.T, b *Board, title string, stage models.StageID, value float64) *models.Deal {
	t.Helper()
	d, err := b.CreateDeal(&models.Deal{Title: title, Stage: stage, Value: value})
	if err != nil {
		t.Fatalf("CreateDeal(%q) failed: %v", title, err)
	}
	return d
}

func columnIDs(t *testing.T, b *Board, stage models.StageID) []string {
	t.Helper()
	col, err := b.Column(stage)
	if err != nil {
		t.Fatalf("Column(%s) failed: %v", stage, err)
	}
	return col.DealIDs
}

func assertInvariants(t *testing.T, b *Board) {
	t.Helper()
	if err := b.CheckInvariants(); err != nil {
		t.Fatalf("board invariants broken: %v", err)
	}
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

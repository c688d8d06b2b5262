package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/dealboard/internal/models"
	"github.com/thenoetrevino/dealboard/internal/testutil"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

func setupService(t *testing.T) (Service, *testutil.Setup) {
	t.Helper()
	s := testutil.SetupCommitter(t)
	return NewService(s.Committer), s
}

func addDeal(t *testing.T, s *testutil.Setup, title string, stage models.StageID, value float64) *models.Deal {
	t.Helper()
	d, err := s.Board.CreateDeal(&models.Deal{Title: title, Stage: stage, Value: value})
	require.NoError(t, err)
	return d
}

func columnIDs(t *testing.T, s *testutil.Setup, stage models.StageID) []string {
	t.Helper()
	col, err := s.Board.Column(stage)
	require.NoError(t, err)
	return col.DealIDs
}

// ============================================================================
// MOVES
// ============================================================================

func TestMoveAcrossColumnsPersists(t *testing.T) {
	svc, s := setupService(t)
	ctx := context.Background()
	d := addDeal(t, s, "Renewal", models.StageDiscovery, 100)
	addDeal(t, s, "Other", models.StageProposal, 50)

	result, err := svc.Move(ctx, models.Move{
		DealID:      d.ID,
		SourceStage: models.StageDiscovery,
		SourceIndex: 0,
		DestStage:   models.StageProposal,
		DestIndex:   0,
	})
	require.NoError(t, err)
	assert.Equal(t, models.MoveTransitioned, result.Kind)
	assert.Equal(t, models.StageProposal, result.Deal.Stage)
	assert.Equal(t, []string{"d1", "d2"}, columnIDs(t, s, models.StageProposal))

	snap, err := s.Store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.Board.Version(), snap.Version)

	evs := s.Publisher.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, models.StageProposal, evs[0].Stage)
}

func TestMoveWithoutChangeIsNotCommitted(t *testing.T) {
	svc, s := setupService(t)
	ctx := context.Background()
	d := addDeal(t, s, "Renewal", models.StageDiscovery, 100)

	cancelled, err := svc.Move(ctx, models.Move{DealID: d.ID, SourceStage: models.StageDiscovery})
	require.NoError(t, err)
	assert.Equal(t, models.MoveCancelled, cancelled.Kind)

	noop, err := svc.Move(ctx, models.Move{
		DealID: d.ID, SourceStage: models.StageDiscovery, DestStage: models.StageDiscovery,
	})
	require.NoError(t, err)
	assert.Equal(t, models.MoveNoOp, noop.Kind)

	assert.Empty(t, s.Publisher.Events())
	assert.Equal(t, int64(0), s.Committer.SavedVersion())
}

func TestMoveInvariantViolation(t *testing.T) {
	svc, s := setupService(t)
	ctx := context.Background()
	addDeal(t, s, "Renewal", models.StageDiscovery, 100)

	_, err := svc.Move(ctx, models.Move{
		DealID: "d1", SourceStage: models.StageProposal, SourceIndex: 0,
		DestStage: models.StageNegotiation,
	})
	assert.ErrorIs(t, err, models.ErrInvariantViolation)

	_, err = svc.Move(ctx, models.Move{
		DealID: "d1", SourceStage: models.StageDiscovery, SourceIndex: 4,
		DestStage: models.StageNegotiation,
	})
	assert.ErrorIs(t, err, models.ErrIndexOutOfRange)
	assert.Empty(t, s.Publisher.Events())
}

func TestMoveToStage(t *testing.T) {
	svc, s := setupService(t)
	ctx := context.Background()
	addDeal(t, s, "a", models.StageClosedWon, 10)
	d := addDeal(t, s, "b", models.StageDiscovery, 20)

	result, err := svc.MoveToStage(ctx, d.ID, models.StageClosedWon)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Index)
	assert.Equal(t, []string{"d1", "d2"}, columnIDs(t, s, models.StageClosedWon))

	_, err = svc.MoveToStage(ctx, d.ID, "archived")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.MoveToStage(ctx, "", models.StageClosedWon)
	assert.ErrorIs(t, err, ErrInvalidDealID)
}

func TestMoveToNextAndPrevStage(t *testing.T) {
	svc, s := setupService(t)
	ctx := context.Background()
	d := addDeal(t, s, "Renewal", models.StageDiscovery, 100)

	_, err := svc.MoveToPrevStage(ctx, d.ID)
	assert.ErrorIs(t, err, models.ErrAlreadyFirstStage)

	result, err := svc.MoveToNextStage(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageQualification, result.Deal.Stage)

	result, err = svc.MoveToPrevStage(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageDiscovery, result.Deal.Stage)

	for range 5 {
		_, err = svc.MoveToNextStage(ctx, d.ID)
		require.NoError(t, err)
	}
	_, err = svc.MoveToNextStage(ctx, d.ID)
	assert.ErrorIs(t, err, models.ErrAlreadyLastStage)
	assert.NoError(t, s.Board.CheckInvariants())
}

func TestMoveUpAndDown(t *testing.T) {
	svc, s := setupService(t)
	ctx := context.Background()
	addDeal(t, s, "a", models.StageProposal, 1)
	addDeal(t, s, "b", models.StageProposal, 2)
	addDeal(t, s, "c", models.StageProposal, 3)

	_, err := svc.MoveUp(ctx, "d1")
	assert.ErrorIs(t, err, ErrAlreadyTop)
	_, err = svc.MoveDown(ctx, "d3")
	assert.ErrorIs(t, err, ErrAlreadyBottom)

	result, err := svc.MoveDown(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, models.MoveReordered, result.Kind)
	assert.Equal(t, []string{"d2", "d1", "d3"}, columnIDs(t, s, models.StageProposal))

	_, err = svc.MoveUp(ctx, "d3")
	require.NoError(t, err)
	assert.Equal(t, []string{"d2", "d3", "d1"}, columnIDs(t, s, models.StageProposal))

	_, err = svc.MoveUp(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestReorderColumn(t *testing.T) {
	svc, s := setupService(t)
	ctx := context.Background()
	addDeal(t, s, "a", models.StageProposal, 1)
	addDeal(t, s, "b", models.StageProposal, 2)

	require.NoError(t, svc.ReorderColumn(ctx, models.StageProposal, []string{"d2", "d1"}))
	assert.Equal(t, []string{"d2", "d1"}, columnIDs(t, s, models.StageProposal))

	err := svc.ReorderColumn(ctx, models.StageProposal, []string{"d2"})
	assert.ErrorIs(t, err, models.ErrInvariantViolation)
}

// ============================================================================
// VIEWS
// ============================================================================

func TestProjectAndSummary(t *testing.T) {
	svc, s := setupService(t)
	ctx := context.Background()
	addDeal(t, s, "Website", models.StageDiscovery, 100)
	addDeal(t, s, "Support", models.StageClosedWon, 200)
	addDeal(t, s, "Hosting", models.StageClosedLost, 300)

	p := svc.Project(ctx, "o")
	assert.Len(t, p.Columns, len(svc.Stages()))
	assert.Len(t, p.Deals, 2) // Support, Hosting

	sum := svc.Summary(ctx, "")
	assert.Equal(t, 300.0, sum.TotalValue)
	assert.Equal(t, 2, sum.ActiveCount)
	assert.Equal(t, 200.0, sum.WonValue)
	assert.Equal(t, 3, sum.DealCount)

	snap := svc.Snapshot(ctx)
	assert.Len(t, snap.Deals, 3)
}

func TestLocateAndColumn(t *testing.T) {
	svc, s := setupService(t)
	ctx := context.Background()
	addDeal(t, s, "A", models.StageProposal, 1)
	b := addDeal(t, s, "B", models.StageProposal, 2)

	stage, idx, err := svc.Locate(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageProposal, stage)
	assert.Equal(t, 1, idx)

	col, err := svc.Column(ctx, models.StageProposal)
	require.NoError(t, err)
	assert.Len(t, col.DealIDs, 2)

	_, _, err = svc.Locate(ctx, "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, _, err = svc.Locate(ctx, " ")
	assert.ErrorIs(t, err, ErrInvalidDealID)
	_, err = svc.Column(ctx, "mars")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

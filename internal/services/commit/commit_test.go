package commit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/dealboard/internal/events"
	"github.com/thenoetrevino/dealboard/internal/models"
	"github.com/thenoetrevino/dealboard/internal/services/commit"
	"github.com/thenoetrevino/dealboard/internal/testutil"
)

func TestCommitSavesAndPublishes(t *testing.T) {
	s := testutil.SetupCommitter(t)
	ctx := context.Background()

	d, err := s.Board.CreateDeal(&models.Deal{Title: "Renewal", Value: 100})
	require.NoError(t, err)
	require.NoError(t, s.Committer.Commit(ctx, d.ID, d.Stage))

	assert.Equal(t, int64(1), s.Committer.SavedVersion())
	loaded, err := s.Store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), loaded.Version)
	require.Len(t, loaded.Deals, 1)
	assert.Equal(t, "Renewal", loaded.Deals[0].Title)

	evs := s.Publisher.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, events.EventBoardChanged, evs[0].Type)
	assert.Equal(t, d.ID, evs[0].DealID)
	assert.Equal(t, models.StageDiscovery, evs[0].Stage)
	assert.Equal(t, int64(1), evs[0].Version)
}

func TestCommitWithoutChangesSkipsSave(t *testing.T) {
	s := testutil.SetupCommitter(t)
	ctx := context.Background()

	require.NoError(t, s.Committer.Commit(ctx, "", ""))
	assert.Equal(t, int64(0), s.Committer.SavedVersion())
	assert.Len(t, s.Publisher.Events(), 1)
}

func TestCommitDetectsConcurrentWriter(t *testing.T) {
	s := testutil.SetupCommitter(t)
	ctx := context.Background()

	// Another process saves first
	other := testutil.NewTestBoard(t)
	_, err := other.CreateDeal(&models.Deal{Title: "theirs"})
	require.NoError(t, err)
	require.NoError(t, s.Store.Save(ctx, other.Snapshot(), 0))

	_, err = s.Board.CreateDeal(&models.Deal{Title: "ours"})
	require.NoError(t, err)
	err = s.Committer.Commit(ctx, "", "")
	assert.ErrorIs(t, err, models.ErrVersionConflict)
	assert.Empty(t, s.Publisher.Events(), "nothing is announced when the save fails")
}

func TestCommitReloadsBoardAfterConflict(t *testing.T) {
	s := testutil.SetupCommitter(t)
	ctx := context.Background()

	other := testutil.NewTestBoard(t)
	theirs, err := other.CreateDeal(&models.Deal{ID: "theirs", Title: "theirs"})
	require.NoError(t, err)
	require.NoError(t, s.Store.Save(ctx, other.Snapshot(), 0))

	_, err = s.Board.CreateDeal(&models.Deal{ID: "ours", Title: "ours"})
	require.NoError(t, err)
	require.ErrorIs(t, s.Committer.Commit(ctx, "", ""), models.ErrVersionConflict)

	// The board now mirrors the store
	assert.Equal(t, int64(1), s.Committer.SavedVersion())
	_, err = s.Board.Deal("ours")
	assert.ErrorIs(t, err, models.ErrNotFound)
	got, err := s.Board.Deal(theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, "theirs", got.Title)
	require.NoError(t, s.Board.CheckInvariants())

	// and the next mutation commits on top of it
	_, err = s.Board.CreateDeal(&models.Deal{Title: "second try"})
	require.NoError(t, err)
	require.NoError(t, s.Committer.Commit(ctx, "", ""))
	assert.Equal(t, int64(2), s.Committer.SavedVersion())

	loaded, err := s.Store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded.Deals, 2)
}

func TestCommitPublishFailureIsNotFatal(t *testing.T) {
	s := testutil.SetupCommitter(t)
	s.Publisher.Err = errors.New("daemon gone")

	_, err := s.Board.CreateDeal(&models.Deal{Title: "Renewal"})
	require.NoError(t, err)
	assert.NoError(t, s.Committer.Commit(context.Background(), "", ""))
	assert.Equal(t, int64(1), s.Committer.SavedVersion())
}

func TestCommitWithoutStoreOrPublisher(t *testing.T) {
	b := testutil.NewTestBoard(t)
	c := commit.New(b, nil, nil, 0)

	_, err := b.CreateDeal(&models.Deal{Title: "Renewal"})
	require.NoError(t, err)
	assert.NoError(t, c.Commit(context.Background(), "", ""))
	assert.Equal(t, int64(0), c.SavedVersion())
}

func TestCommitReachesDaemonSubscribers(t *testing.T) {
	d := testutil.StartDaemon(t)
	publisher := d.Client(t)
	ch := d.Subscribe(t, "")

	b := testutil.NewTestBoard(t)
	c := commit.New(b, nil, publisher, 0)
	deal, err := b.CreateDeal(&models.Deal{Title: "Renewal", Stage: models.StageProposal})
	require.NoError(t, err)
	require.NoError(t, c.Commit(context.Background(), deal.ID, deal.Stage))

	ev := testutil.NextBoardChange(t, ch)
	assert.Equal(t, deal.ID, ev.DealID)
	assert.Equal(t, models.StageProposal, ev.Stage)
	assert.Equal(t, b.Version(), ev.Version)
}

func TestCommitSkipsOtherStageSubscribers(t *testing.T) {
	d := testutil.StartDaemon(t)
	publisher := d.Client(t)
	negotiation := d.Subscribe(t, models.StageNegotiation)
	proposal := d.Subscribe(t, models.StageProposal)

	b := testutil.NewTestBoard(t)
	c := commit.New(b, nil, publisher, 0)
	deal, err := b.CreateDeal(&models.Deal{Title: "Renewal", Stage: models.StageProposal})
	require.NoError(t, err)
	require.NoError(t, c.Commit(context.Background(), deal.ID, deal.Stage))

	assert.Equal(t, deal.ID, testutil.NextBoardChange(t, proposal).DealID)
	testutil.ExpectNoBoardChange(t, negotiation, 300*time.Millisecond)
}

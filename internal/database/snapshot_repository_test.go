package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/thenoetrevino/dealboard/internal/board"
	"github.com/thenoetrevino/dealboard/internal/models"
)

// ============================================================================
// DATABASE SETUP HELPERS
// ============================================================================

// setupTestDB creates an in-memory database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitDB(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sampleBoard(t *testing.T) *board.Board {
	t.Helper()
	tick := time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC)
	b := board.New(board.DefaultStageSet(), board.WithClock(func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}))

	due := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	for _, d := range []*models.Deal{
		{Title: "Annual licence", Company: "Acme", Value: 12000, Stage: models.StageProposal, Probability: 60,
			Tags: []string{"renewal", "enterprise"}, CustomFields: map[string]string{"region": "emea"}, DueDate: &due},
		{Title: "Pilot", Company: "Initech", Value: 800, Stage: models.StageProposal, Favorite: true},
		{Title: "Lost cause", Company: "Globex", Value: 50, Stage: models.StageClosedLost, Priority: models.PriorityLow},
	} {
		if _, err := b.CreateDeal(d); err != nil {
			t.Fatalf("CreateDeal failed: %v", err)
		}
	}
	return b
}

// ============================================================================
// SNAPSHOT TESTS
// ============================================================================

func TestLoadEmptyDatabase(t *testing.T) {
	repo := NewSnapshotRepo(setupTestDB(t))

	snap, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if snap.Version != 0 || len(snap.Deals) != 0 || len(snap.Columns) != 0 {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewSnapshotRepo(setupTestDB(t))
	b := sampleBoard(t)

	// Put the pilot above the licence so column order differs from insertion order
	if _, err := b.ApplyMove(models.Move{
		DealID: b.Deals()[1].ID, SourceStage: models.StageProposal, SourceIndex: 1,
		DestStage: models.StageProposal, DestIndex: 0,
	}); err != nil {
		t.Fatalf("ApplyMove failed: %v", err)
	}
	snap := b.Snapshot()

	if err := repo.Save(ctx, snap, 0); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	restored := board.New(board.DefaultStageSet())
	if err := restored.Load(loaded); err != nil {
		t.Fatalf("board rejected the stored snapshot: %v", err)
	}
	if diff := cmp.Diff(snap, restored.Snapshot()); diff != "" {
		t.Errorf("snapshot changed through storage (-saved +restored):\n%s", diff)
	}
}

func TestSaveVersionConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewSnapshotRepo(setupTestDB(t))
	snap := sampleBoard(t).Snapshot()

	if err := repo.Save(ctx, snap, 0); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	// A second writer that also started from version 0 loses
	err := repo.Save(ctx, &models.Snapshot{Version: 1}, 0)
	if !errors.Is(err, models.ErrVersionConflict) {
		t.Fatalf("error = %v, want ErrVersionConflict", err)
	}

	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Version != snap.Version || len(loaded.Deals) != len(snap.Deals) {
		t.Errorf("conflicting save modified the store: version %d, %d deals", loaded.Version, len(loaded.Deals))
	}

	next := snap.Clone()
	next.Version++
	if err := repo.Save(ctx, next, snap.Version); err != nil {
		t.Errorf("save from the current version failed: %v", err)
	}
}

func TestSaveRejectsOrphanDeal(t *testing.T) {
	repo := NewSnapshotRepo(setupTestDB(t))
	snap := &models.Snapshot{
		Version: 1,
		Deals:   []*models.Deal{{ID: "a", Title: "a", Stage: models.StageDiscovery, Priority: models.PriorityMedium}},
	}

	if err := repo.Save(context.Background(), snap, 0); !errors.Is(err, models.ErrInvariantViolation) {
		t.Fatalf("error = %v, want ErrInvariantViolation", err)
	}
	loaded, _ := repo.Load(context.Background())
	if loaded.Version != 0 {
		t.Error("failed save must roll back the version bump")
	}
}

func TestLoadDetectsPositionGaps(t *testing.T) {
	db := setupTestDB(t)
	now := formatTime(time.Now())
	if _, err := db.Exec(
		`INSERT INTO deals (id, seq, title, stage, position, created_at, updated_at)
		 VALUES ('a', 0, 'a', 'discovery', 3, ?, ?)`, now, now,
	); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if _, err := NewSnapshotRepo(db).Load(context.Background()); !errors.Is(err, models.ErrInvariantViolation) {
		t.Errorf("error = %v, want ErrInvariantViolation", err)
	}
}

func TestInitDBFilePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "board.db")

	db, err := InitDB(ctx, path)
	if err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	snap := sampleBoard(t).Snapshot()
	if err := NewSnapshotRepo(db).Save(ctx, snap, 0); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	_ = db.Close()

	// Reopening runs the migrations again, which must not disturb the data
	db, err = InitDB(ctx, path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db.Close()

	loaded, err := NewSnapshotRepo(db).Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Version != snap.Version || len(loaded.Deals) != 3 {
		t.Errorf("loaded version %d with %d deals", loaded.Version, len(loaded.Deals))
	}
}

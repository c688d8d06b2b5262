package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/thenoetrevino/dealboard/internal/cache"
	"github.com/thenoetrevino/dealboard/internal/config"
	"github.com/thenoetrevino/dealboard/internal/enrich"
	"github.com/thenoetrevino/dealboard/internal/models"
	dealservice "github.com/thenoetrevino/dealboard/internal/services/deal"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Path = filepath.Join(t.TempDir(), "board.db")
	cfg.Daemon.Enabled = false
	return cfg
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	app, err := New(ctx, testConfig(t))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer func() { _ = app.Close() }()

	if app.DealService == nil {
		t.Error("Expected DealService to be initialized")
	}
	if app.PipelineService == nil {
		t.Error("Expected PipelineService to be initialized")
	}
	if app.Enricher == nil {
		t.Error("Expected Enricher to be initialized")
	}
	if app.Board.Stages().Len() != 6 {
		t.Errorf("Expected 6 default stages, got %d", app.Board.Stages().Len())
	}
}

func TestBoardSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	first, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	d, err := first.DealService.CreateDeal(ctx, dealservice.CreateDealRequest{Title: "Renewal", Value: 500})
	if err != nil {
		t.Fatalf("CreateDeal() failed: %v", err)
	}
	if _, err := first.PipelineService.MoveToStage(ctx, d.ID, models.StageProposal); err != nil {
		t.Fatalf("MoveToStage() failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	second, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("New() after restart failed: %v", err)
	}
	defer func() { _ = second.Close() }()

	got, err := second.DealService.GetDeal(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetDeal() after restart failed: %v", err)
	}
	if got.Stage != models.StageProposal {
		t.Errorf("stage after restart = %s, want proposal", got.Stage)
	}
	if second.Board.Version() != first.Board.Version() {
		t.Errorf("version after restart = %d, want %d", second.Board.Version(), first.Board.Version())
	}

	// The restarted app keeps saving on top of the loaded version
	if _, err := second.DealService.ToggleFavorite(ctx, d.ID); err != nil {
		t.Fatalf("ToggleFavorite() after restart failed: %v", err)
	}
}

func TestNewWithRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := cache.NewRedisStoreWithClient(client, "test")

	app, err := New(ctx, testConfig(t), WithStore(store), WithProvider(enrich.NewStaticProvider()))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer func() { _ = client.Close() }()

	d, err := app.DealService.CreateDeal(ctx, dealservice.CreateDealRequest{Title: "Renewal", Stage: models.StageNegotiation})
	if err != nil {
		t.Fatalf("CreateDeal() failed: %v", err)
	}

	report, err := app.Enricher.Run(ctx, []string{d.ID})
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if report.Count(enrich.StatusApplied) != 1 {
		t.Fatalf("expected one applied result, got %+v", report.Outcomes)
	}

	snap, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(snap.Deals) != 1 || snap.Deals[0].Probability != 75 {
		t.Errorf("stored deal not enriched: %+v", snap.Deals)
	}
}

func TestNewRejectsInvalidPipeline(t *testing.T) {
	cfg := testConfig(t)
	cfg.Pipeline.Stages = nil
	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("expected New() to fail without stages")
	}
}

func TestClose(t *testing.T) {
	app, err := New(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := app.Close(); err != nil {
		t.Errorf("Expected Close to succeed, got error: %v", err)
	}
	if err := app.Close(); err != nil {
		t.Errorf("Expected second Close to succeed, got error: %v", err)
	}
}

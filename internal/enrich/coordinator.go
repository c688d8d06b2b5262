package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/thenoetrevino/dealboard/internal/models"
	"golang.org/x/sync/errgroup"
)

// Target is the deal owner enrichment results are applied to
type Target interface {
	GetDeal(ctx context.Context, id string) (*models.Deal, error)
	// ApplyEnrichment applies patch only if the deal's UpdatedAt still equals expected
	ApplyEnrichment(ctx context.Context, id string, expected time.Time, patch models.DealPatch) (*models.Deal, error)
}

// Status is the fate of one enrichment request
type Status string

const (
	StatusApplied   Status = "applied"
	StatusUnchanged Status = "unchanged" // provider suggested nothing
	StatusStale     Status = "stale"     // deal was edited while the provider ran
	StatusDeleted   Status = "deleted"   // deal was removed while the provider ran
	StatusFailed    Status = "failed"
)

// Outcome reports what happened to one deal
type Outcome struct {
	DealID string  `json:"deal_id"`
	Status Status  `json:"status"`
	Result *Result `json:"result,omitempty"`
	Err    error   `json:"-"`
}

// Report collects the outcomes of a run, in request order
type Report struct {
	Outcomes []Outcome `json:"outcomes"`
}

// Count returns how many outcomes have the given status
func (r Report) Count(status Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Coordinator runs a provider over many deals with bounded concurrency
type Coordinator struct {
	provider    Provider
	target      Target
	concurrency int
	timeout     time.Duration
}

// NewCoordinator creates a coordinator. Non-positive concurrency means 1 and
// non-positive timeout means 30s per deal.
func NewCoordinator(provider Provider, target Target, concurrency int, timeout time.Duration) *Coordinator {
	if concurrency <= 0 {
		concurrency = 1
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Coordinator{
		provider:    provider,
		target:      target,
		concurrency: concurrency,
		timeout:     timeout,
	}
}

// Run enriches each deal id. Per-deal failures are recorded in the report;
// the returned error is non-nil only when ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context, ids []string) (Report, error) {
	report := Report{Outcomes: make([]Outcome, len(ids))}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, id := range ids {
		g.Go(func() error {
			outcome := c.enrichOne(gctx, id)
			mu.Lock()
			report.Outcomes[i] = outcome
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// ProviderName names the provider the coordinator runs
func (c *Coordinator) ProviderName() string {
	return c.provider.Name()
}

// Enrich runs the provider for a single deal
func (c *Coordinator) Enrich(ctx context.Context, id string) Outcome {
	return c.enrichOne(ctx, id)
}

func (c *Coordinator) enrichOne(ctx context.Context, id string) Outcome {
	out := Outcome{DealID: id}

	deal, err := c.target.GetDeal(ctx, id)
	if err != nil {
		return failed(out, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	result, err := c.provider.Enrich(callCtx, Request{DealID: id, Deal: deal})
	cancel()
	if err != nil {
		return failed(out, fmt.Errorf("%s enrichment: %w", c.provider.Name(), err))
	}
	if err := result.Validate(); err != nil {
		return failed(out, err)
	}
	out.Result = result

	patch := result.Patch()
	if patch.IsEmpty() {
		out.Status = StatusUnchanged
		return out
	}

	_, err = c.target.ApplyEnrichment(ctx, id, deal.UpdatedAt, patch)
	switch {
	case err == nil:
		out.Status = StatusApplied
	case errors.Is(err, models.ErrStaleUpdate):
		slog.Debug("discarding stale enrichment result", "deal_id", id, "provider", result.Provider)
		out.Status = StatusStale
	case errors.Is(err, models.ErrNotFound):
		slog.Debug("discarding enrichment result for deleted deal", "deal_id", id, "provider", result.Provider)
		out.Status = StatusDeleted
	default:
		return failed(out, err)
	}
	return out
}

func failed(out Outcome, err error) Outcome {
	if errors.Is(err, models.ErrNotFound) {
		out.Status = StatusDeleted
		out.Err = err
		return out
	}
	slog.Warn("enrichment failed", "deal_id", out.DealID, "error", err)
	out.Status = StatusFailed
	out.Err = err
	return out
}

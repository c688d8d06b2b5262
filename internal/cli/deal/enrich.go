package deal

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/dealboard/internal/cli"
	"github.com/thenoetrevino/dealboard/internal/cli/handler"
	"github.com/thenoetrevino/dealboard/internal/enrich"
	dealservice "github.com/thenoetrevino/dealboard/internal/services/deal"
)

// EnrichCmd returns the deal enrich subcommand
func EnrichCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enrich [id...]",
		Short: "Suggest probability and custom fields for deals",
		Long: `Run the configured enrichment provider (openai, gemini or static) over deals.
Suggestions are applied only if the deal was not edited while the provider ran.

Examples:
  dealboard deal enrich d1 d2
  dealboard deal enrich --all --json
`,
		RunE: handler.Command(handler.HandlerFunc(runEnrich)),
	}

	cmd.Flags().Bool("all", false, "Enrich every open deal (won and lost deals are skipped)")
	cli.AddOutputFlags(cmd)

	return cmd
}

// reportView is the result of deal enrich
type reportView struct {
	Provider string           `json:"provider"`
	Outcomes []enrich.Outcome `json:"outcomes"`
	Applied  int              `json:"applied"`
	Failed   int              `json:"failed"`
}

// GetIDs lists the ids of deals that received a suggestion
func (v reportView) GetIDs() []string {
	var ids []string
	for _, o := range v.Outcomes {
		if o.Status == enrich.StatusApplied {
			ids = append(ids, o.DealID)
		}
	}
	return ids
}

func (v reportView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Enriched %d of %d deal(s) with %s\n", v.Applied, len(v.Outcomes), v.Provider)
	for _, o := range v.Outcomes {
		switch {
		case o.Status == enrich.StatusApplied && o.Result != nil && o.Result.Probability != nil:
			fmt.Fprintf(&b, "  ✓ %s: probability %d%%", o.DealID, *o.Result.Probability)
		case o.Status == enrich.StatusApplied:
			fmt.Fprintf(&b, "  ✓ %s: fields updated", o.DealID)
		case o.Err != nil:
			fmt.Fprintf(&b, "  ✗ %s: %s (%v)", o.DealID, o.Status, o.Err)
		default:
			fmt.Fprintf(&b, "  - %s: %s", o.DealID, o.Status)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func runEnrich(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	ids, err := handler.NewFlagParser(args.GetCmd()).ParseDealIDs(args.Args)
	if err != nil {
		return nil, &cli.ExitError{Code: cli.ExitUsage, Err: err}
	}
	if args.GetBool("all") {
		deals, err := c.App.DealService.ListDeals(ctx, dealservice.ListFilter{})
		if err != nil {
			return nil, err
		}
		stages := c.App.Board.Stages()
		ids = ids[:0:0]
		for _, d := range deals {
			if d.Stage != stages.Won() && d.Stage != stages.Lost() {
				ids = append(ids, d.ID)
			}
		}
	}
	if len(ids) == 0 && !args.GetBool("all") {
		return nil, &cli.ExitError{Code: cli.ExitUsage, Err: cli.Suggest(
			fmt.Errorf("no deals to enrich"), "Pass deal ids or --all")}
	}

	report, err := c.App.Enricher.Run(ctx, ids)
	if err != nil {
		return nil, err
	}

	view := reportView{
		Provider: c.App.Enricher.ProviderName(),
		Outcomes: report.Outcomes,
		Applied:  report.Count(enrich.StatusApplied),
		Failed:   report.Count(enrich.StatusFailed),
	}
	if view.Outcomes == nil {
		view.Outcomes = []enrich.Outcome{}
	}
	return view, nil
}

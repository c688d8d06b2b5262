package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/dealboard/internal/board"
	"github.com/thenoetrevino/dealboard/internal/cli"
	"github.com/thenoetrevino/dealboard/internal/cli/handler"
	"github.com/thenoetrevino/dealboard/internal/cli/styles"
)

// StatsCmd returns the stats command
func StatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show pipeline totals",
		Long: `Show the total pipeline value (lost deals excluded, won deals included),
the active deal count, the won value and per-stage totals.`,
		Args: cobra.NoArgs,
		RunE: handler.Command(handler.HandlerFunc(runStats)),
	}

	cmd.Flags().String("search", "", "Only count deals matching this term")
	cli.AddOutputFlags(cmd)

	return cmd
}

// statsView is the result of the stats command
type statsView struct {
	*board.Summary
}

func (v statsView) String() string {
	var b strings.Builder
	if v.Term != "" {
		fmt.Fprintf(&b, "%s %q\n", styles.LabelStyle.Render("Filter:"), v.Term)
	}
	fmt.Fprintf(&b, "%s %s\n", styles.LabelStyle.Render("Pipeline value:"), cli.FormatMoney(v.TotalValue))
	fmt.Fprintf(&b, "%s %d of %d\n", styles.LabelStyle.Render("Active deals:"), v.ActiveCount, v.DealCount)
	fmt.Fprintf(&b, "%s %s\n\n", styles.LabelStyle.Render("Won value:"), cli.FormatMoney(v.WonValue))
	for _, col := range v.Columns {
		fmt.Fprintf(&b, "  %-16s %3d  %12s\n", col.Title, col.Count, cli.FormatMoney(col.Value))
	}
	return strings.TrimRight(b.String(), "\n")
}

func runStats(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	styles.Init(c.Config().ColorScheme)
	return statsView{Summary: c.App.PipelineService.Summary(ctx, args.GetString("search", ""))}, nil
}

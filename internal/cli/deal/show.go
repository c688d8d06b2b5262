package deal

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/dealboard/internal/cli"
	"github.com/thenoetrevino/dealboard/internal/cli/handler"
	"github.com/thenoetrevino/dealboard/internal/cli/styles"
)

// ShowCmd returns the deal show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show deal details",
		Long:  "Display all details of a deal including stage, value, tags, custom fields and timestamps.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  handler.Command(handler.HandlerFunc(runShow)),
	}

	// Flags
	cmd.Flags().String("id", "", "Deal ID (can also be provided as positional argument)")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runShow(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	id, err := handler.NewFlagParser(args.GetCmd()).ParseDealID(args.Args)
	if err != nil {
		return nil, &cli.ExitError{Code: cli.ExitUsage, Err: cli.Suggest(err,
			"Usage: dealboard deal show <id> or dealboard deal show --id=<id>")}
	}

	d, err := c.App.DealService.GetDeal(ctx, id)
	if err != nil {
		return nil, notFoundHint(err)
	}

	styles.Init(c.Config().ColorScheme)

	view := detailView{Deal: d, stageName: string(d.Stage)}
	if s, ok := c.App.Board.Stages().Get(d.Stage); ok {
		view.stageName = s.Title
	}
	return view, nil
}

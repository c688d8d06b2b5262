package deal

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/dealboard/internal/cli"
	"github.com/thenoetrevino/dealboard/internal/cli/handler"
)

// FavoriteCmd returns the deal favorite subcommand
func FavoriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorite [id]",
		Short: "Toggle the favorite flag of a deal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  handler.Command(handler.HandlerFunc(runFavorite)),
	}

	cmd.Flags().String("id", "", "Deal ID (can also be provided as positional argument)")
	cli.AddOutputFlags(cmd)

	return cmd
}

func runFavorite(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	id, err := handler.NewFlagParser(args.GetCmd()).ParseDealID(args.Args)
	if err != nil {
		return nil, &cli.ExitError{Code: cli.ExitUsage, Err: cli.Suggest(err, "Usage: dealboard deal favorite <id>")}
	}

	d, err := c.App.DealService.ToggleFavorite(ctx, id)
	if err != nil {
		return nil, notFoundHint(err)
	}

	action := "unmarked as favorite"
	if d.Favorite {
		action = "marked as favorite"
	}
	return newDealView(d, c.App.Board.Stages(), action), nil
}

package deal

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/dealboard/internal/cli"
	"github.com/thenoetrevino/dealboard/internal/cli/handler"
	dealservice "github.com/thenoetrevino/dealboard/internal/services/deal"
)

// ListCmd returns the deal list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List deals",
		Long: `List deals in board order, optionally narrowed by stage, search term or favorites.

Examples:
  dealboard deal list
  dealboard deal list --stage=negotiation
  dealboard deal list --search=acme --json
  dealboard deal list --favorites --quiet
`,
		Args: cobra.NoArgs,
		RunE: handler.Command(handler.HandlerFunc(runList)),
	}

	cmd.Flags().String("stage", "", "Only deals in this stage")
	cmd.Flags().String("search", "", "Case-insensitive match on title, company or contact")
	cmd.Flags().Bool("favorites", false, "Only favorite deals")

	cli.AddOutputFlags(cmd)

	return cmd
}

func runList(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	filter := dealservice.ListFilter{
		Term:          args.GetString("search", ""),
		FavoritesOnly: args.GetBool("favorites"),
	}
	if args.Has("stage") {
		stage, err := handler.NewFlagParser(args.GetCmd()).ParseStage(c.App.Board.Stages(), "stage")
		if err != nil {
			return nil, err
		}
		filter.Stage = stage
	}

	deals, err := c.App.DealService.ListDeals(ctx, filter)
	if err != nil {
		return nil, err
	}
	return listView{Deals: deals, Count: len(deals)}, nil
}

package deal

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/dealboard/internal/cli"
	"github.com/thenoetrevino/dealboard/internal/cli/handler"
)

// DeleteCmd returns the deal delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a deal",
		Long:  "Delete a deal by ID (requires confirmation unless --force, --json or --quiet).",
		Args:  cobra.MaximumNArgs(1),
		RunE:  handler.Command(handler.HandlerFunc(runDelete)),
	}

	cmd.Flags().String("id", "", "Deal ID (can also be provided as positional argument)")
	cmd.Flags().Bool("force", false, "Skip confirmation")

	cli.AddOutputFlags(cmd)

	return cmd
}

func runDelete(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	cmd := args.GetCmd()
	id, err := handler.NewFlagParser(cmd).ParseDealID(args.Args)
	if err != nil {
		return nil, &cli.ExitError{Code: cli.ExitUsage, Err: cli.Suggest(err, "Usage: dealboard deal delete <id>")}
	}

	d, err := c.App.DealService.GetDeal(ctx, id)
	if err != nil {
		return nil, notFoundHint(err)
	}

	// Ask for confirmation unless forced or machine output was requested
	if !args.GetBool("force") && !args.Formatter.JSON && !args.Formatter.Quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Delete deal %s: '%s'? (y/N): ", d.ID, d.Title)
		response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
			return nil, nil
		}
	}

	if err := c.App.DealService.DeleteDeal(ctx, id); err != nil {
		return nil, err
	}
	return deletedView{ID: id, Deleted: true}, nil
}

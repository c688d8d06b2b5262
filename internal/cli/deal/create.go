package deal

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/dealboard/internal/cli"
	"github.com/thenoetrevino/dealboard/internal/cli/handler"
	dealservice "github.com/thenoetrevino/dealboard/internal/services/deal"
)

// CreateCmd returns the deal create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new deal",
		Long: `Create a new deal at the bottom of its stage column.

Examples:
  # Simple deal (human-readable output)
  dealboard deal create --title="Acme renewal" --value=12000

  # JSON output for agents
  dealboard deal create --title="Acme renewal" --company=Acme --json

  # Quiet mode for bash capture
  DEAL_ID=$(dealboard deal create --title="Acme renewal" --quiet)

  # Full example with all options
  dealboard deal create \
    --title="Globex expansion" \
    --company=Globex \
    --contact="Hank Scorpio" \
    --value=250000 \
    --stage=proposal \
    --probability=40 \
    --priority=high \
    --due=2026-06-30 \
    --tag=enterprise --tag=q2 \
    --field=source=referral
`,
		Args: cobra.NoArgs,
		RunE: handler.Command(handler.HandlerFunc(runCreate)),
	}

	// Required flags
	cmd.Flags().String("title", "", "Deal title (required)")
	if err := cmd.MarkFlagRequired("title"); err != nil {
		slog.Error("error marking flag as required", "error", err)
	}

	// Optional flags
	cmd.Flags().String("id", "", "Deal ID (generated when empty)")
	cmd.Flags().String("company", "", "Company name")
	cmd.Flags().String("contact", "", "Contact name")
	cmd.Flags().Float64("value", 0, "Deal value")
	cmd.Flags().String("stage", "", "Stage id or title (defaults to first stage)")
	cmd.Flags().Int("probability", 0, "Win probability 0-100")
	cmd.Flags().String("priority", "medium", "Priority: low, medium, high")
	cmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().Bool("favorite", false, "Mark as favorite")
	cmd.Flags().StringSlice("tag", nil, "Tag (repeatable)")
	cmd.Flags().StringArray("field", nil, "Custom field key=value (repeatable)")

	cli.AddOutputFlags(cmd)

	return cmd
}

func runCreate(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	stages := c.App.Board.Stages()

	req := dealservice.CreateDealRequest{
		ID:          args.GetString("id", ""),
		Title:       args.GetString("title", ""),
		Company:     args.GetString("company", ""),
		ContactName: args.GetString("contact", ""),
		Value:       args.GetFloat("value", 0),
		Probability: args.GetInt("probability", 0),
		Favorite:    args.GetBool("favorite"),
		Tags:        args.GetStringSlice("tag", nil),
	}

	if args.Has("stage") {
		stage, err := handler.NewFlagParser(args.GetCmd()).ParseStage(stages, "stage")
		if err != nil {
			return nil, err
		}
		req.Stage = stage
	}

	priority, err := cli.ParsePriority(args.GetString("priority", ""))
	if err != nil {
		return nil, cli.Suggest(err, "Valid priorities are: low, medium, high")
	}
	req.Priority = priority

	if req.DueDate, err = handler.NewFlagParser(args.GetCmd()).ParseDueDate("due"); err != nil {
		return nil, err
	}

	fields, err := cli.ParseFields(args.GetStringSlice("field", nil))
	if err != nil {
		return nil, &cli.ExitError{Code: cli.ExitValidation, Err: err}
	}
	req.CustomFields = fields

	d, err := c.App.DealService.CreateDeal(ctx, req)
	if err != nil {
		return nil, err
	}
	return newDealView(d, stages, "created"), nil
}

package deal

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/dealboard/internal/cli"
	"github.com/thenoetrevino/dealboard/internal/cli/handler"
	"github.com/thenoetrevino/dealboard/internal/models"
	dealservice "github.com/thenoetrevino/dealboard/internal/services/deal"
)

// UpdateCmd returns the deal update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Update a deal",
		Long: `Update the fields given on the command line; other fields keep their values.
Changing --stage moves the deal to the bottom of the new stage column.

Examples:
  dealboard deal update d1 --value=18000 --probability=60
  dealboard deal update d1 --stage=negotiation
  dealboard deal update d1 --field=segment=enterprise --field=old=
  dealboard deal update d1 --clear-due --json
`,
		Args: cobra.MaximumNArgs(1),
		RunE: handler.Command(handler.HandlerFunc(runUpdate)),
	}

	cmd.Flags().String("id", "", "Deal ID (can also be provided as positional argument)")
	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("company", "", "New company")
	cmd.Flags().String("contact", "", "New contact name")
	cmd.Flags().Float64("value", 0, "New value")
	cmd.Flags().String("stage", "", "Move to stage (id or title)")
	cmd.Flags().Int("probability", 0, "New win probability 0-100")
	cmd.Flags().String("priority", "", "New priority: low, medium, high")
	cmd.Flags().String("due", "", "New due date (YYYY-MM-DD)")
	cmd.Flags().Bool("clear-due", false, "Remove the due date")
	cmd.Flags().StringSlice("tag", nil, "Replace tags (repeatable)")
	cmd.Flags().StringArray("field", nil, "Set custom field key=value; an empty value removes it")

	cli.AddOutputFlags(cmd)

	return cmd
}

func runUpdate(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	id, err := handler.NewFlagParser(args.GetCmd()).ParseDealID(args.Args)
	if err != nil {
		return nil, &cli.ExitError{Code: cli.ExitUsage, Err: cli.Suggest(err,
			"Usage: dealboard deal update <id> --value=<amount>")}
	}

	patch, err := buildPatch(c, args)
	if err != nil {
		return nil, err
	}

	d, err := c.App.DealService.UpdateDeal(ctx, dealservice.UpdateDealRequest{ID: id, Patch: patch})
	if errors.Is(err, dealservice.ErrNothingToUpdate) {
		return nil, cli.Suggest(err, "Pass at least one field flag, e.g. --value or --stage")
	}
	if err != nil {
		return nil, notFoundHint(err)
	}
	return newDealView(d, c.App.Board.Stages(), "updated"), nil
}

// buildPatch turns the explicitly set flags into a deal patch
func buildPatch(c *cli.CLI, args *handler.Arguments) (models.DealPatch, error) {
	var patch models.DealPatch

	if args.Has("title") {
		v := args.GetString("title", "")
		patch.Title = &v
	}
	if args.Has("company") {
		v := args.GetString("company", "")
		patch.Company = &v
	}
	if args.Has("contact") {
		v := args.GetString("contact", "")
		patch.ContactName = &v
	}
	if args.Has("value") {
		v := args.GetFloat("value", 0)
		patch.Value = &v
	}
	if args.Has("probability") {
		v := args.GetInt("probability", 0)
		patch.Probability = &v
	}
	if args.Has("stage") {
		stage, err := handler.NewFlagParser(args.GetCmd()).ParseStage(c.App.Board.Stages(), "stage")
		if err != nil {
			return patch, err
		}
		patch.Stage = &stage
	}
	if args.Has("priority") {
		p, err := models.ParsePriority(args.GetString("priority", ""))
		if err != nil {
			return patch, cli.Suggest(err, "Valid priorities are: low, medium, high")
		}
		patch.Priority = &p
	}
	if args.GetBool("clear-due") {
		patch.ClearDueDate = true
	} else if args.Has("due") {
		due, err := handler.NewFlagParser(args.GetCmd()).ParseDueDate("due")
		if err != nil {
			return patch, err
		}
		if due == nil {
			patch.ClearDueDate = true
		} else {
			patch.DueDate = due
		}
	}
	if args.Has("tag") {
		tags := args.GetStringSlice("tag", nil)
		patch.Tags = &tags
	}
	if args.Has("field") {
		fields, err := cli.ParseFields(args.GetStringSlice("field", nil))
		if err != nil {
			return patch, &cli.ExitError{Code: cli.ExitValidation, Err: err}
		}
		patch.CustomFields = fields
	}
	return patch, nil
}

// notFoundHint points at deal list when err is a missing deal
func notFoundHint(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return cli.Suggest(err, "Use 'dealboard deal list' to see available deals")
	}
	return err
}

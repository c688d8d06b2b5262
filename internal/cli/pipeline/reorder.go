package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/dealboard/internal/cli"
	"github.com/thenoetrevino/dealboard/internal/cli/handler"
	"github.com/thenoetrevino/dealboard/internal/models"
)

// ReorderCmd returns the reorder command
func ReorderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reorder <stage> <id>...",
		Short: "Set the order of a stage column",
		Long: `Replace the order of one column. The ids must be exactly the deals of the stage.

Example:
  dealboard reorder proposal d4 d1 d7
`,
		Args: cobra.MinimumNArgs(2),
		RunE: handler.Command(handler.HandlerFunc(runReorder)),
	}

	cli.AddOutputFlags(cmd)

	return cmd
}

// reorderView is the result of the reorder command
type reorderView struct {
	Stage   models.StageID `json:"stage"`
	DealIDs []string       `json:"deal_ids"`
}

func (v reorderView) GetIDs() []string { return v.DealIDs }

func (v reorderView) String() string {
	return fmt.Sprintf("✓ %s reordered: %s", v.Stage, strings.Join(v.DealIDs, ", "))
}

func runReorder(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	stages := c.App.Board.Stages()
	stage, err := cli.ParseStage(stages, args.Args[0])
	if err != nil {
		return nil, cli.Suggest(err, "Available stages: "+cli.StageList(stages))
	}

	ids := args.Args[1:]
	if err := c.App.PipelineService.ReorderColumn(ctx, stage, ids); err != nil {
		return nil, cli.Suggest(err, fmt.Sprintf("List the current order with 'dealboard deal list --stage=%s --quiet'", stage))
	}

	col, err := c.App.Board.Column(stage)
	if err != nil {
		return nil, err
	}
	return reorderView{Stage: stage, DealIDs: col.DealIDs}, nil
}

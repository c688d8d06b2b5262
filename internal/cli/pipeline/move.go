package pipeline

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/dealboard/internal/cli"
	"github.com/thenoetrevino/dealboard/internal/cli/handler"
	"github.com/thenoetrevino/dealboard/internal/models"
)

// MoveCmd returns the move command
func MoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move [id]",
		Short: "Move a deal on the board",
		Long: `Move a deal to another stage or position, like dragging its card.

Exactly one of --to, --index, --next, --prev, --up or --down selects the gesture
(--to and --index may be combined). Positions are zero-based and clamped to the
destination column; moving a deal onto its own position does nothing.

Examples:
  dealboard move d1 --to=negotiation           # bottom of negotiation
  dealboard move d1 --to=proposal --index=0    # top of proposal
  dealboard move d1 --index=2                  # reorder inside its column
  dealboard move d1 --next
  dealboard move d1 --up --json
`,
		Args: cobra.MaximumNArgs(1),
		RunE: handler.Command(handler.HandlerFunc(runMove)),
	}

	cmd.Flags().String("id", "", "Deal ID (can also be provided as positional argument)")
	cmd.Flags().String("to", "", "Destination stage (id or title)")
	cmd.Flags().Int("index", 0, "Destination position (zero-based)")
	cmd.Flags().Bool("next", false, "Move to the next stage")
	cmd.Flags().Bool("prev", false, "Move to the previous stage")
	cmd.Flags().Bool("up", false, "Move one position up")
	cmd.Flags().Bool("down", false, "Move one position down")
	cmd.MarkFlagsMutuallyExclusive("to", "next", "prev", "up", "down")
	cmd.MarkFlagsMutuallyExclusive("index", "next", "prev", "up", "down")

	cli.AddOutputFlags(cmd)

	return cmd
}

// moveView is the result of the move command
type moveView struct {
	DealID string         `json:"deal_id"`
	Kind   string         `json:"kind"`
	Stage  models.StageID `json:"stage"`
	Index  int            `json:"index"`
	Deal   *models.Deal   `json:"deal,omitempty"`

	stageName string
}

func (v moveView) GetID() string { return v.DealID }

func (v moveView) String() string {
	switch v.Kind {
	case models.MoveTransitioned.String():
		return fmt.Sprintf("✓ Deal %s moved to %s (position %d)", v.DealID, v.stageName, v.Index)
	case models.MoveReordered.String():
		return fmt.Sprintf("✓ Deal %s moved to position %d in %s", v.DealID, v.Index, v.stageName)
	default:
		return fmt.Sprintf("Deal %s did not move", v.DealID)
	}
}

func runMove(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	id, err := handler.NewFlagParser(args.GetCmd()).ParseDealID(args.Args)
	if err != nil {
		return nil, &cli.ExitError{Code: cli.ExitUsage, Err: cli.Suggest(err, "Usage: dealboard move <id> --to=<stage>")}
	}

	svc := c.App.PipelineService
	stages := c.App.Board.Stages()

	var result models.MoveResult
	switch {
	case args.GetBool("next"):
		result, err = svc.MoveToNextStage(ctx, id)
	case args.GetBool("prev"):
		result, err = svc.MoveToPrevStage(ctx, id)
	case args.GetBool("up"):
		result, err = svc.MoveUp(ctx, id)
	case args.GetBool("down"):
		result, err = svc.MoveDown(ctx, id)
	case args.Has("index"):
		result, err = moveToIndex(ctx, c, id, args)
	case args.Has("to"):
		var dest models.StageID
		if dest, err = handler.NewFlagParser(args.GetCmd()).ParseStage(stages, "to"); err != nil {
			return nil, err
		}
		result, err = svc.MoveToStage(ctx, id, dest)
	default:
		return nil, &cli.ExitError{Code: cli.ExitUsage, Err: cli.Suggest(
			fmt.Errorf("no move given"), "Pass one of --to, --index, --next, --prev, --up, --down")}
	}
	if err != nil {
		return nil, err
	}

	view := moveView{DealID: id, Kind: result.Kind.String(), Index: result.Index, Deal: result.Deal}
	if result.Deal != nil {
		view.Stage = result.Deal.Stage
	} else if stage, idx, lerr := c.App.Board.Locate(id); lerr == nil {
		view.Stage, view.Index = stage, idx
	}
	view.stageName = string(view.Stage)
	if s, ok := stages.Get(view.Stage); ok {
		view.stageName = s.Title
	}
	return view, nil
}

// moveToIndex builds a drag gesture from the deal's current position
func moveToIndex(ctx context.Context, c *cli.CLI, id string, args *handler.Arguments) (models.MoveResult, error) {
	srcStage, srcIdx, err := c.App.Board.Locate(id)
	if err != nil {
		return models.MoveResult{}, err
	}

	dest := srcStage
	if args.Has("to") {
		if dest, err = handler.NewFlagParser(args.GetCmd()).ParseStage(c.App.Board.Stages(), "to"); err != nil {
			return models.MoveResult{}, err
		}
	}

	return c.App.PipelineService.Move(ctx, models.Move{
		DealID:      id,
		SourceStage: srcStage,
		SourceIndex: srcIdx,
		DestStage:   dest,
		DestIndex:   args.GetInt("index", 0),
	})
}

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/thenoetrevino/dealboard/internal/cli"
	"github.com/thenoetrevino/dealboard/internal/cli/handler"
)

// ExportCmd returns the export command
func ExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the board snapshot as JSON",
		Long: `Write the full board snapshot (version, deals and column orders) as JSON to
stdout or to --output.`,
		Args: cobra.NoArgs,
		RunE: handler.Command(handler.HandlerFunc(runExport)),
	}

	cmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
	cli.AddOutputFlags(cmd)

	return cmd
}

// exportedView is the result of an export written to a file
type exportedView struct {
	Path    string `json:"path"`
	Version int64  `json:"version"`
	Deals   int    `json:"deals"`
}

func (v exportedView) GetID() string { return v.Path }

func (v exportedView) String() string {
	return fmt.Sprintf("✓ Exported %d deal(s) at version %d to %s", v.Deals, v.Version, v.Path)
}

func runExport(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	snap := c.App.PipelineService.Snapshot(ctx)

	path := args.GetString("output", "")
	if path == "" {
		if args.Formatter.JSON {
			return snap, nil
		}
		enc := json.NewEncoder(args.Formatter.Writer())
		enc.SetIndent("", "  ")
		return nil, enc.Encode(snap)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write export: %w", err)
	}
	return exportedView{Path: path, Version: snap.Version, Deals: len(snap.Deals)}, nil
}

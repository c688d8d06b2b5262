// Package deal implements the dealboard deal subcommands
package deal

import (
	"github.com/spf13/cobra"
)

// DealCmd returns the deal parent command
func DealCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deal",
		Short: "Manage deals",
	}

	cmd.AddCommand(CreateCmd())
	cmd.AddCommand(ListCmd())
	cmd.AddCommand(ShowCmd())
	cmd.AddCommand(UpdateCmd())
	cmd.AddCommand(DeleteCmd())
	cmd.AddCommand(FavoriteCmd())
	cmd.AddCommand(EnrichCmd())

	return cmd
}

// Package tutorial prints a short dealboard workflow primer
package tutorial

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

//go:embed tutorial.md
var tutorialContent string

// TutorialCmd returns the tutorial command
func TutorialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tutorial",
		Short: "Output the dealboard workflow primer",
		Long: `Output the essential dealboard commands as markdown.

Plain markdown is printed by default so scripts and agents can read it;
--render formats it for the terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			render, _ := cmd.Flags().GetBool("render")
			out, err := Content(render)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().Bool("render", false, "Render the markdown for the terminal")
	return cmd
}

// Content returns the primer, optionally rendered with glamour
func Content(render bool) (string, error) {
	if !render {
		return tutorialContent, nil
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return "", err
	}
	out, err := renderer.Render(tutorialContent)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n") + "\n", nil
}

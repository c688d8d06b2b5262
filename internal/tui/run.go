package tui

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/thenoetrevino/dealboard/internal/app"
	"github.com/thenoetrevino/dealboard/internal/cli/styles"
)

// Run shows the interactive board until the user quits
func Run(ctx context.Context, a *app.App) error {
	styles.Init(a.Config.ColorScheme)

	p := tea.NewProgram(New(ctx, a.PipelineService, a.DealService), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running board: %w", err)
	}
	return nil
}

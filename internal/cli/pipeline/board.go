// Package pipeline implements the board-level dealboard commands
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"
	"github.com/thenoetrevino/dealboard/internal/board"
	"github.com/thenoetrevino/dealboard/internal/cli"
	"github.com/thenoetrevino/dealboard/internal/cli/handler"
	"github.com/thenoetrevino/dealboard/internal/cli/styles"
	"github.com/thenoetrevino/dealboard/internal/models"
	"github.com/thenoetrevino/dealboard/internal/tui"
)

// BoardCmd returns the board command
func BoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show the pipeline board",
		Long: `Render every stage column with its deal cards, optionally filtered by a search term.
Columns stay visible even when the filter empties them.
With --interactive the board opens full screen: pick up cards with space,
drop them with enter, and filter live with /.

Examples:
  dealboard board
  dealboard board --search=acme
  dealboard board --json
  dealboard board -i
`,
		Args: cobra.NoArgs,
		RunE: handler.Command(handler.HandlerFunc(runBoard)),
	}

	cmd.Flags().String("search", "", "Case-insensitive match on title, company or contact")
	cmd.Flags().BoolP("interactive", "i", false, "Open the interactive board")
	cli.AddOutputFlags(cmd)
	cmd.MarkFlagsMutuallyExclusive("interactive", "json")
	cmd.MarkFlagsMutuallyExclusive("interactive", "quiet")

	return cmd
}

// columnView is one rendered column
type columnView struct {
	Stage models.StageID `json:"stage"`
	Title string         `json:"title"`
	Color string         `json:"color"`
	Value float64        `json:"value"`
	Deals []*models.Deal `json:"deals"`
}

// boardView is the result of the board command
type boardView struct {
	Term    string        `json:"term,omitempty"`
	Columns []columnView  `json:"columns"`
	Summary board.Summary `json:"summary"`
}

func newBoardView(p *board.Projection, s *board.Summary, stages *board.StageSet) boardView {
	v := boardView{Term: p.Term, Summary: *s, Columns: make([]columnView, 0, len(p.Columns))}
	for i, col := range p.Columns {
		cv := columnView{
			Stage: col.Stage,
			Title: col.Title,
			Color: col.Color,
			Deals: p.DealsByStage(col.Stage),
		}
		if i < len(s.Columns) {
			cv.Value = s.Columns[i].Value
		}
		if stage, ok := stages.Get(col.Stage); ok && cv.Color == "" {
			cv.Color = stage.Color
		}
		v.Columns = append(v.Columns, cv)
	}
	return v
}

// GetIDs lists the visible deal ids in board order
func (v boardView) GetIDs() []string {
	var ids []string
	for _, col := range v.Columns {
		for _, d := range col.Deals {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

func (v boardView) String() string {
	rendered := make([]string, 0, len(v.Columns))
	for _, col := range v.Columns {
		rendered = append(rendered, renderColumn(col))
	}

	var b strings.Builder
	if v.Term != "" {
		b.WriteString(styles.SubtitleStyle.Render(fmt.Sprintf("Filter: %q", v.Term)) + "\n")
	}
	b.WriteString(styles.JoinColumns(rendered...))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s  %s %d  %s %s",
		styles.LabelStyle.Render("Pipeline:"),
		styles.MoneyStyle.Render(cli.FormatMoney(v.Summary.TotalValue)),
		styles.LabelStyle.Render("Active:"),
		v.Summary.ActiveCount,
		styles.LabelStyle.Render("Won:"),
		styles.WonStyle.Render(cli.FormatMoney(v.Summary.WonValue)),
	))
	return b.String()
}

func renderColumn(col columnView) string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(col.Color)).
		Render(fmt.Sprintf("%s (%d)", col.Title, len(col.Deals)))

	lines := []string{header, styles.MoneyStyle.Render(cli.FormatMoney(col.Value))}
	if len(col.Deals) == 0 {
		lines = append(lines, styles.SubtitleStyle.Italic(true).Render("No deals"))
	}
	for _, d := range col.Deals {
		lines = append(lines, renderCard(d))
	}
	return styles.ColumnStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func renderCard(d *models.Deal) string {
	title := styles.TitleStyle.Render(d.Title)
	if d.Favorite {
		title = styles.FavoriteStyle.Render("★ ") + title
	}
	meta := fmt.Sprintf("%s · %d%%", cli.FormatMoney(d.Value), d.Probability)
	body := []string{title, styles.SubtitleStyle.Render(d.ID + "  " + meta)}
	if d.Company != "" {
		body = append(body, styles.ValueStyle.Render(d.Company))
	}
	return styles.DealCardStyle.Render(strings.Join(body, "\n"))
}

func runBoard(ctx context.Context, c *cli.CLI, args *handler.Arguments) (any, error) {
	if args.GetBool("interactive") {
		if err := tui.Run(ctx, c.App); err != nil {
			return nil, err
		}
		return nil, nil
	}

	styles.Init(c.Config().ColorScheme)

	term := args.GetString("search", "")
	p := c.App.PipelineService.Project(ctx, term)
	s := c.App.PipelineService.Summary(ctx, term)
	return newBoardView(p, s, c.App.Board.Stages()), nil
}

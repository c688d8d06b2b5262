package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/thenoetrevino/dealboard/internal/cli"
	"github.com/thenoetrevino/dealboard/internal/cli/styles"
	"github.com/thenoetrevino/dealboard/internal/models"
)

// View implements tea.Model
func (m Model) View() tea.View {
	var view tea.View
	view.AltScreen = true
	view.Content = m.render()
	return view
}

func (m Model) render() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Dealboard"))
	if m.term != "" && m.mode != SearchMode {
		b.WriteString("  " + styles.SubtitleStyle.Render(fmt.Sprintf("Filter: %q", m.term)))
	}
	b.WriteString("\n")

	rendered := make([]string, 0, len(m.projection.Columns))
	for i := range m.projection.Columns {
		rendered = append(rendered, m.renderColumn(i))
	}
	b.WriteString(styles.JoinColumns(rendered...))
	b.WriteString("\n")
	b.WriteString(m.renderSummary())
	b.WriteString("\n")

	if m.mode == SearchMode {
		b.WriteString(m.search.View() + "\n")
	}
	if m.status != "" {
		if m.statusErr {
			b.WriteString(styles.ErrorStyle.Render(m.status) + "\n")
		} else {
			b.WriteString(styles.SuccessStyle.Render(m.status) + "\n")
		}
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderColumn(i int) string {
	col := m.projection.Columns[i]
	deals := m.columnDeals(i)
	grabbing := m.mode == GrabMode
	if grabbing {
		deals = m.withoutGrabbed(deals)
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(col.Color)).
		Render(fmt.Sprintf("%s (%d)", col.Title, len(deals)))
	var value float64
	if i < len(m.summary.Columns) {
		value = m.summary.Columns[i].Value
	}
	lines := []string{header, styles.MoneyStyle.Render(cli.FormatMoney(value))}

	for idx, d := range deals {
		if grabbing && i == m.grab.targetCol && idx == m.grab.targetPos {
			lines = append(lines, m.renderGhost())
		}
		lines = append(lines, renderCard(d, !grabbing && i == m.col && idx == m.row))
	}
	if grabbing && i == m.grab.targetCol && m.grab.targetPos >= len(deals) {
		lines = append(lines, m.renderGhost())
	}
	if len(lines) == 2 {
		lines = append(lines, styles.SubtitleStyle.Italic(true).Render("No deals"))
	}

	style := styles.ColumnStyle
	if (!grabbing && i == m.col) || (grabbing && i == m.grab.targetCol) {
		style = style.BorderForeground(lipgloss.Color(styles.Scheme().Accent))
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) withoutGrabbed(deals []*models.Deal) []*models.Deal {
	out := make([]*models.Deal, 0, len(deals))
	for _, d := range deals {
		if d.ID != m.grab.dealID {
			out = append(out, d)
		}
	}
	return out
}

func renderCard(d *models.Deal, selected bool) string {
	title := styles.TitleStyle.Render(d.Title)
	if d.Favorite {
		title = styles.FavoriteStyle.Render("★ ") + title
	}
	body := []string{title, styles.SubtitleStyle.Render(fmt.Sprintf("%s · %d%%", cli.FormatMoney(d.Value), d.Probability))}
	if d.Company != "" {
		body = append(body, styles.ValueStyle.Render(d.Company))
	}

	style := styles.DealCardStyle
	if selected {
		style = style.BorderForeground(lipgloss.Color(styles.Scheme().Accent))
	}
	return style.Render(strings.Join(body, "\n"))
}

// renderGhost draws the picked-up card at its landing position
func (m Model) renderGhost() string {
	title := m.grab.dealID
	if d, err := m.deals.GetDeal(m.ctx, m.grab.dealID); err == nil {
		title = d.Title
	}
	return styles.DealCardStyle.
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(lipgloss.Color(styles.Scheme().Accent)).
		Render("▸ " + title)
}

func (m Model) renderSummary() string {
	return fmt.Sprintf("%s %s  %s %d  %s %s",
		styles.LabelStyle.Render("Pipeline:"),
		styles.MoneyStyle.Render(cli.FormatMoney(m.summary.TotalValue)),
		styles.LabelStyle.Render("Active:"),
		m.summary.ActiveCount,
		styles.LabelStyle.Render("Won:"),
		styles.WonStyle.Render(cli.FormatMoney(m.summary.WonValue)),
	)
}

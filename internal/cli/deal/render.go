package deal

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/thenoetrevino/dealboard/internal/board"
	"github.com/thenoetrevino/dealboard/internal/cli"
	"github.com/thenoetrevino/dealboard/internal/cli/styles"
	"github.com/thenoetrevino/dealboard/internal/models"
)

// Cache Glamour renderers by width to avoid expensive re-creation
var rendererCache sync.Map // map[int]*glamour.TermRenderer

// getRenderer returns a cached renderer for the given width
func getRenderer(width int) (*glamour.TermRenderer, error) {
	if cached, ok := rendererCache.Load(width); ok {
		return cached.(*glamour.TermRenderer), nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}

	rendererCache.Store(width, renderer)
	return renderer, nil
}

// dealView is the result of a single-deal command. JSON carries the deal
// fields; the human form is a short confirmation.
type dealView struct {
	*models.Deal
	action    string
	stageName string
}

func newDealView(d *models.Deal, stages *board.StageSet, action string) dealView {
	name := string(d.Stage)
	if s, ok := stages.Get(d.Stage); ok {
		name = s.Title
	}
	return dealView{Deal: d, action: action, stageName: name}
}

func (v dealView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "✓ Deal '%s' %s (ID: %s)\n", v.Title, v.action, v.ID)
	fmt.Fprintf(&b, "  Stage: %s\n", v.stageName)
	fmt.Fprintf(&b, "  Value: %s\n", cli.FormatMoney(v.Value))
	if v.Company != "" {
		fmt.Fprintf(&b, "  Company: %s\n", v.Company)
	}
	fmt.Fprintf(&b, "  Priority: %s", v.Priority)
	if v.Favorite {
		b.WriteString("\n  ★ Favorite")
	}
	return b.String()
}

// detailView is the result of deal show
type detailView struct {
	*models.Deal
	stageName string
}

// markdown describes the deal as a markdown document for glamour
func (v detailView) markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", v.Title)

	fmt.Fprintf(&b, "| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Stage | %s |\n", v.stageName)
	fmt.Fprintf(&b, "| Value | %s |\n", cli.FormatMoney(v.Value))
	fmt.Fprintf(&b, "| Probability | %d%% |\n", v.Probability)
	fmt.Fprintf(&b, "| Priority | %s |\n", v.Priority)
	if v.Company != "" {
		fmt.Fprintf(&b, "| Company | %s |\n", v.Company)
	}
	if v.ContactName != "" {
		fmt.Fprintf(&b, "| Contact | %s |\n", v.ContactName)
	}
	if v.DueDate != nil {
		fmt.Fprintf(&b, "| Due | %s |\n", v.DueDate.Format(cli.DateLayout))
	}

	if len(v.CustomFields) > 0 {
		b.WriteString("\n## Fields\n\n")
		keys := make([]string, 0, len(v.CustomFields))
		for k := range v.CustomFields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "- **%s**: %s\n", k, v.CustomFields[k])
		}
	}
	return b.String()
}

func (v detailView) String() string {
	var content strings.Builder

	header := styles.TitleStyle.Render(v.ID)
	if v.Favorite {
		header += " " + styles.FavoriteStyle.Render("★")
	}
	content.WriteString(header + "\n")

	body := v.markdown()
	if renderer, err := getRenderer(styles.CardWidth - 6); err == nil {
		if rendered, err := renderer.Render(body); err == nil {
			body = strings.TrimSpace(rendered)
		}
	}
	content.WriteString(body + "\n")

	if len(v.Tags) > 0 {
		content.WriteString(styles.SectionStyle.Render("Tags") + "\n")
		chips := make([]string, len(v.Tags))
		for i, tag := range v.Tags {
			chips[i] = styles.RenderTagChip(tag)
		}
		content.WriteString("  " + strings.Join(chips, " ") + "\n")
	}

	content.WriteString(fmt.Sprintf("\n%s %s  %s %s",
		styles.LabelStyle.Render("Created:"),
		styles.SubtitleStyle.Render(v.CreatedAt.Format("Jan 2, 2006 3:04 PM")),
		styles.LabelStyle.Render("Updated:"),
		styles.SubtitleStyle.Render(v.UpdatedAt.Format("Jan 2, 2006 3:04 PM")),
	))

	return styles.RenderCard(content.String())
}

// listView is the result of deal list
type listView struct {
	Deals []*models.Deal `json:"deals"`
	Count int            `json:"count"`
}

// GetIDs lists the deal ids for quiet output
func (v listView) GetIDs() []string {
	ids := make([]string, len(v.Deals))
	for i, d := range v.Deals {
		ids[i] = d.ID
	}
	return ids
}

func (v listView) String() string {
	if len(v.Deals) == 0 {
		return "No deals found"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d deal(s):\n\n", v.Count)
	for _, d := range v.Deals {
		star := " "
		if d.Favorite {
			star = styles.FavoriteStyle.Render("★")
		}
		fmt.Fprintf(&b, "%s %-8s %-32s %12s  %-14s %s\n",
			star, d.ID, d.Title, styles.MoneyStyle.Render(cli.FormatMoney(d.Value)), d.Stage, d.Company)
	}
	return strings.TrimRight(b.String(), "\n")
}

// deletedView is the result of deal delete
type deletedView struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

func (v deletedView) GetID() string { return v.ID }

func (v deletedView) String() string {
	return fmt.Sprintf("✓ Deal %s deleted successfully", v.ID)
}

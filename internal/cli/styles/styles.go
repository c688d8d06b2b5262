// Package styles holds the lipgloss styles used by the dealboard commands
package styles

import (
	"charm.land/lipgloss/v2"
	"github.com/thenoetrevino/dealboard/internal/config"
)

var (
	// Card styles
	CardStyle lipgloss.Style
	CardWidth = 80

	// Board styles
	ColumnStyle       lipgloss.Style
	ColumnWidth       = 28
	ColumnHeaderStyle lipgloss.Style
	DealCardStyle     lipgloss.Style

	// Text styles
	TitleStyle    lipgloss.Style
	SubtitleStyle lipgloss.Style
	LabelStyle    lipgloss.Style // For field labels like "Stage:", "Priority:"
	ValueStyle    lipgloss.Style // For field values
	SectionStyle  lipgloss.Style // For section headers like "Tags", "Fields"

	// Money styles
	MoneyStyle lipgloss.Style
	WonStyle   lipgloss.Style
	LostStyle  lipgloss.Style

	// Status styles
	FavoriteStyle lipgloss.Style
	SuccessStyle  lipgloss.Style
	ErrorStyle    lipgloss.Style

	scheme config.ColorScheme
)

func init() {
	Init(config.DefaultColorScheme())
}

// Init initializes all CLI styles with the given color scheme
func Init(colors config.ColorScheme) {
	scheme = colors

	CardStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(colors.Accent)).
		Padding(1, 2).
		Width(CardWidth)

	ColumnStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(colors.ColumnBorder)).
		Padding(0, 1).
		Width(ColumnWidth)

	ColumnHeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.Title))

	DealCardStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(colors.CardBorder)).
		Width(ColumnWidth - 4)

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.Title))

	SubtitleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.Subtle))

	LabelStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.Accent))

	ValueStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.Normal))

	SectionStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.Accent)).
		Bold(true).
		MarginTop(1)

	MoneyStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.Value))

	WonStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.Won))

	LostStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.Lost))

	FavoriteStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.Favorite))

	SuccessStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.InfoFg)).
		Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.ErrorFg)).
		Background(lipgloss.Color(colors.ErrorBg)).
		Padding(0, 1)
}

// Scheme returns the color scheme the styles were built from
func Scheme() config.ColorScheme {
	return scheme
}

// ═══════════════════════════════════════════════════════════════════
// HELPER FUNCTIONS
// ═══════════════════════════════════════════════════════════════════

// ColoredText renders text with a hex color
func ColoredText(text, hexColor string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(hexColor)).
		Render(text)
}

// BoldColoredText renders bold text with a hex color
func BoldColoredText(text, hexColor string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(hexColor)).
		Render(text)
}

// RenderTagChip renders a tag as "[name]"
func RenderTagChip(tag string) string {
	return LabelStyle.Render("[" + tag + "]")
}

// RenderCard wraps content in a styled card border
func RenderCard(content string) string {
	return CardStyle.Render(content)
}

// JoinColumns lays rendered columns side by side
func JoinColumns(columns ...string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}

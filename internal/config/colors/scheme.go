package colors

// ColorScheme defines all configurable color values of the terminal board
type ColorScheme struct {
	// Preset name (e.g., "default", "monochrome")
	Preset string `yaml:"preset"`

	// Primary accent color (used for titles, highlights)
	Accent string `yaml:"accent"`

	// Board element colors
	ColumnBorder string `yaml:"column_border"`
	CardBorder   string `yaml:"card_border"`
	Favorite     string `yaml:"favorite"`

	// Money colors
	Value string `yaml:"value"`
	Won   string `yaml:"won"`
	Lost  string `yaml:"lost"`

	// Text colors
	Title  string `yaml:"title"`
	Subtle string `yaml:"subtle"` // Muted/placeholder text
	Normal string `yaml:"normal"`

	// Message colors (foreground/background pairs)
	InfoFg  string `yaml:"info_fg"`
	ErrorFg string `yaml:"error_fg"`
	ErrorBg string `yaml:"error_bg"`
}

// GetPreset returns a preset color scheme by name
func GetPreset(name string) *ColorScheme {
	switch name {
	case "monochrome":
		return Monochrome()
	default:
		return Default()
	}
}

// ApplyDefaults fills in missing color values using the preset as base
// If preset is specified, loads that preset first, then overrides with custom values
func (c *ColorScheme) ApplyDefaults() {
	preset := GetPreset(c.Preset)

	fill := func(field *string, fallback string) {
		if *field == "" {
			*field = fallback
		}
	}
	fill(&c.Accent, preset.Accent)
	fill(&c.ColumnBorder, preset.ColumnBorder)
	fill(&c.CardBorder, preset.CardBorder)
	fill(&c.Favorite, preset.Favorite)
	fill(&c.Value, preset.Value)
	fill(&c.Won, preset.Won)
	fill(&c.Lost, preset.Lost)
	fill(&c.Title, preset.Title)
	fill(&c.Subtle, preset.Subtle)
	fill(&c.Normal, preset.Normal)
	fill(&c.InfoFg, preset.InfoFg)
	fill(&c.ErrorFg, preset.ErrorFg)
	fill(&c.ErrorBg, preset.ErrorBg)
}

// MergeFrom overrides every non-empty value of other onto c
func (c *ColorScheme) MergeFrom(other ColorScheme) {
	merge := func(field *string, value string) {
		if value != "" {
			*field = value
		}
	}
	merge(&c.Preset, other.Preset)
	merge(&c.Accent, other.Accent)
	merge(&c.ColumnBorder, other.ColumnBorder)
	merge(&c.CardBorder, other.CardBorder)
	merge(&c.Favorite, other.Favorite)
	merge(&c.Value, other.Value)
	merge(&c.Won, other.Won)
	merge(&c.Lost, other.Lost)
	merge(&c.Title, other.Title)
	merge(&c.Subtle, other.Subtle)
	merge(&c.Normal, other.Normal)
	merge(&c.InfoFg, other.InfoFg)
	merge(&c.ErrorFg, other.ErrorFg)
	merge(&c.ErrorBg, other.ErrorBg)
}

package colors

// Monochrome returns a black and white color scheme
func Monochrome() *ColorScheme {
	return &ColorScheme{
		Preset: "monochrome",

		Accent: "#FFFFFF",

		ColumnBorder: "#808080",
		CardBorder:   "#4E4E4E",
		Favorite:     "#FFFFFF",

		Value: "#D0D0D0",
		Won:   "#FFFFFF",
		Lost:  "#808080",

		Title:  "#FFFFFF",
		Subtle: "#808080",
		Normal: "#D0D0D0",

		InfoFg:  "#FFFFFF",
		ErrorFg: "#FFFFFF",
		ErrorBg: "#4E4E4E",
	}
}

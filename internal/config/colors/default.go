package colors

// Default returns the default color scheme (purple theme)
func Default() *ColorScheme {
	return &ColorScheme{
		Preset: "default",

		// Primary
		Accent: "#874BFD",

		// Board
		ColumnBorder: "#5F87D7",
		CardBorder:   "#585858",
		Favorite:     "#FFD700",

		// Money
		Value: "#5FD75F",
		Won:   "#22C55E",
		Lost:  "#EF4444",

		// Text
		Title:  "#D75FD7",
		Subtle: "#585858",
		Normal: "#D0D0D0",

		// Messages
		InfoFg:  "#00AFFF",
		ErrorFg: "#FF0000",
		ErrorBg: "#5F0000",
	}
}

package config

import "github.com/thenoetrevino/dealboard/internal/config/colors"

// ColorScheme is the terminal color configuration
type ColorScheme = colors.ColorScheme

// DefaultColorScheme returns the default color scheme (purple theme)
func DefaultColorScheme() ColorScheme {
	return *colors.Default()
}

// MonochromeColorScheme returns a black and white color scheme
func MonochromeColorScheme() ColorScheme {
	return *colors.Monochrome()
}

// ColorSchemeFor returns the named preset; unknown names give the default scheme
func ColorSchemeFor(preset string) *ColorScheme {
	return colors.GetPreset(preset)
}

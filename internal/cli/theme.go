package cli

import "github.com/charmbracelet/lipgloss"

// Theme defines the color roles used by CLI output.
type Theme struct {
	Name      string
	Border    lipgloss.Color
	TextDim   lipgloss.Color // hints, separators
	TextMuted lipgloss.Color // labels, metadata
	Text      lipgloss.Color
	Accent    lipgloss.Color // headers
	Green     lipgloss.Color
	Orange    lipgloss.Color
	Red       lipgloss.Color
	Yellow    lipgloss.Color
}

// FlexokiDark is the default theme - warm, paper-inspired dark theme.
var FlexokiDark = Theme{
	Name:      "flexoki-dark",
	Border:    lipgloss.Color("#403E3C"),
	TextDim:   lipgloss.Color("#575653"),
	TextMuted: lipgloss.Color("#878580"),
	Text:      lipgloss.Color("#FFFCF0"),
	Accent:    lipgloss.Color("#3AA99F"),
	Green:     lipgloss.Color("#879A39"),
	Orange:    lipgloss.Color("#DA702C"),
	Red:       lipgloss.Color("#D14D41"),
	Yellow:    lipgloss.Color("#D0A215"),
}

// CatppuccinMocha is a soothing pastel theme.
var CatppuccinMocha = Theme{
	Name:      "catppuccin-mocha",
	Border:    lipgloss.Color("#585B70"),
	TextDim:   lipgloss.Color("#6C7086"),
	TextMuted: lipgloss.Color("#A6ADC8"),
	Text:      lipgloss.Color("#CDD6F4"),
	Accent:    lipgloss.Color("#89B4FA"),
	Green:     lipgloss.Color("#A6E3A1"),
	Orange:    lipgloss.Color("#FAB387"),
	Red:       lipgloss.Color("#F38BA8"),
	Yellow:    lipgloss.Color("#F9E2AF"),
}

// TokyoNight is a dark theme inspired by Tokyo city lights.
var TokyoNight = Theme{
	Name:      "tokyo-night",
	Border:    lipgloss.Color("#565F89"),
	TextDim:   lipgloss.Color("#565F89"),
	TextMuted: lipgloss.Color("#A9B1D6"),
	Text:      lipgloss.Color("#C0CAF5"),
	Accent:    lipgloss.Color("#7AA2F7"),
	Green:     lipgloss.Color("#9ECE6A"),
	Orange:    lipgloss.Color("#FF9E64"),
	Red:       lipgloss.Color("#F7768E"),
	Yellow:    lipgloss.Color("#E0AF68"),
}

// Terminal uses the 16 ANSI colors so output follows the terminal palette.
var Terminal = Theme{
	Name:      "terminal",
	Border:    lipgloss.Color("8"),
	TextDim:   lipgloss.Color("8"),
	TextMuted: lipgloss.Color("7"),
	Text:      lipgloss.Color("15"),
	Accent:    lipgloss.Color("6"),
	Green:     lipgloss.Color("2"),
	Orange:    lipgloss.Color("3"),
	Red:       lipgloss.Color("1"),
	Yellow:    lipgloss.Color("3"),
}

// Themes lists the available themes in display order.
var Themes = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// ThemeByName returns the theme with the given name, or FlexokiDark.
func ThemeByName(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetTheme switches the active theme. Unknown names select FlexokiDark.
func SetTheme(name string) {
	applyTheme(ThemeByName(name))
}

package render

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// TUITheme defines the color scheme for the TUI
type TUITheme struct {
	Name        string
	Description string

	Surface lipgloss.Color
	Border  lipgloss.Color

	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Success   lipgloss.Color

	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color

	// Marker colors the chart's boundary line
	Marker lipgloss.Color
}

// DefaultTUITheme is used when the configured theme is unknown
const DefaultTUITheme = "tokyonight"

var tuiThemes = map[string]TUITheme{
	"tokyonight": {
		Name:        "tokyonight",
		Description: "Tokyo Night - dark with blue accents",
		Surface:     "#24283b",
		Border:      "#414868",
		Primary:     "#7aa2f7",
		Secondary:   "#9ece6a",
		Warning:     "#e0af68",
		Error:       "#f7768e",
		Success:     "#73daca",
		Text:        "#c0caf5",
		TextDim:     "#565f89",
		TextMute:    "#3b4261",
		Marker:      "#a9b1d6",
	},
	"catppuccin": {
		Name:        "catppuccin",
		Description: "Catppuccin Mocha - warm dark pastels",
		Surface:     "#313244",
		Border:      "#45475a",
		Primary:     "#89b4fa",
		Secondary:   "#a6e3a1",
		Warning:     "#f9e2af",
		Error:       "#f38ba8",
		Success:     "#94e2d5",
		Text:        "#cdd6f4",
		TextDim:     "#6c7086",
		TextMute:    "#45475a",
		Marker:      "#bac2de",
	},
	"nord": {
		Name:        "nord",
		Description: "Nord - arctic cool tones",
		Surface:     "#3b4252",
		Border:      "#4c566a",
		Primary:     "#88c0d0",
		Secondary:   "#a3be8c",
		Warning:     "#ebcb8b",
		Error:       "#bf616a",
		Success:     "#8fbcbb",
		Text:        "#eceff4",
		TextDim:     "#7b88a1",
		TextMute:    "#4c566a",
		Marker:      "#d8dee9",
	},
	"light": {
		Name:        "light",
		Description: "Light - for bright terminals",
		Surface:     "#f4f4f4",
		Border:      "#c8c8c8",
		Primary:     "#2c3e50",
		Secondary:   "#27ae60",
		Warning:     "#d35400",
		Error:       "#c0392b",
		Success:     "#16a085",
		Text:        "#1e1e1e",
		TextDim:     "#6b6b6b",
		TextMute:    "#a0a0a0",
		Marker:      "#4b4b4b",
	},
}

// TUIThemeByName returns a theme by its name
func TUIThemeByName(name string) (TUITheme, bool) {
	t, ok := tuiThemes[name]
	return t, ok
}

// ResolveTUITheme returns the named theme or the default one
func ResolveTUITheme(name string) TUITheme {
	if t, ok := TUIThemeByName(name); ok {
		return t
	}
	return tuiThemes[DefaultTUITheme]
}

// TUIThemeNames returns the theme names in sorted order
func TUIThemeNames() []string {
	names := make([]string, 0, len(tuiThemes))
	for name := range tuiThemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

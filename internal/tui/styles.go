// Package tui provides the terminal user interface for forecastchat.
package tui

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/forecastchat/internal/chart"
	"github.com/diogo/forecastchat/internal/errors"
	"github.com/diogo/forecastchat/internal/render"
)

// Color variables (updated from theme)
var (
	colorSurface lipgloss.Color
	colorBorder  lipgloss.Color

	colorPrimary   lipgloss.Color
	colorSecondary lipgloss.Color
	colorWarning   lipgloss.Color
	colorError     lipgloss.Color
	colorSuccess   lipgloss.Color
	colorMarker    lipgloss.Color

	colorText     lipgloss.Color
	colorTextDim  lipgloss.Color
	colorTextMute lipgloss.Color
)

// Style variables (rebuilt when theme changes)
var (
	headerStyle   lipgloss.Style
	titleStyle    lipgloss.Style
	subtitleStyle lipgloss.Style
	hintStyle     lipgloss.Style

	// Connection indicator
	liveStyle         lipgloss.Style
	connectingStyle   lipgloss.Style
	disconnectedStyle lipgloss.Style

	// Side-by-side panels
	chatPanelStyle  lipgloss.Style
	chartPanelStyle lipgloss.Style
	panelTitleStyle lipgloss.Style

	userBubbleStyle      lipgloss.Style
	userLabelStyle       lipgloss.Style
	assistantBubbleStyle lipgloss.Style
	assistantLabelStyle  lipgloss.Style

	inputPanelStyle    lipgloss.Style
	inputLabelStyle    lipgloss.Style
	inputDisabledStyle lipgloss.Style

	loadingStyle lipgloss.Style

	statusBarStyle  lipgloss.Style
	statusKeyStyle  lipgloss.Style
	statusDescStyle lipgloss.Style
	noticeStyle     lipgloss.Style

	errorStyle lipgloss.Style

	// Config menu styles
	configHeaderStyle       lipgloss.Style
	configTitleStyle        lipgloss.Style
	configPanelStyle        lipgloss.Style
	configSectionTitleStyle lipgloss.Style
	configMenuItemStyle     lipgloss.Style
	configMenuSelectedStyle lipgloss.Style
	configCursorStyle       lipgloss.Style
	configValueStyle        lipgloss.Style
	configEnabledStyle      lipgloss.Style
	configDisabledStyle     lipgloss.Style
	configPathStyle         lipgloss.Style
	configFeedbackStyle     lipgloss.Style
	configStatusBarStyle    lipgloss.Style

	// chartStyles is handed to the chart renderer
	chartStyles chart.Styles
)

// currentTheme is the name of the active TUI theme
var currentTheme string

func init() {
	UpdateTheme(render.DefaultTUITheme)
}

// UpdateTheme switches to the named TUI theme, falling back to the default
// for unknown names, and rebuilds every style.
func UpdateTheme(name string) {
	theme := render.ResolveTUITheme(name)
	currentTheme = theme.Name

	colorSurface = theme.Surface
	colorBorder = theme.Border
	colorPrimary = theme.Primary
	colorSecondary = theme.Secondary
	colorWarning = theme.Warning
	colorError = theme.Error
	colorSuccess = theme.Success
	colorMarker = theme.Marker
	colorText = theme.Text
	colorTextDim = theme.TextDim
	colorTextMute = theme.TextMute

	rebuildStyles()
}

func rebuildStyles() {
	headerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 2)

	titleStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	subtitleStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	hintStyle = lipgloss.NewStyle().
		Foreground(colorTextMute).
		Italic(true)

	liveStyle = lipgloss.NewStyle().
		Foreground(colorSuccess).
		Bold(true)

	connectingStyle = lipgloss.NewStyle().
		Foreground(colorWarning)

	disconnectedStyle = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	chatPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	chartPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Bold(true)

	userBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorSecondary).
		Foreground(colorText).
		Padding(0, 1).
		MarginLeft(2)

	userLabelStyle = lipgloss.NewStyle().
		Foreground(colorSecondary).
		Bold(true).
		MarginLeft(2)

	assistantBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Foreground(colorText).
		Padding(0, 1).
		MarginRight(2)

	assistantLabelStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	inputPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	inputLabelStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		MarginRight(1)

	inputDisabledStyle = lipgloss.NewStyle().
		Foreground(colorTextMute).
		Italic(true)

	loadingStyle = lipgloss.NewStyle().
		Foreground(colorWarning).
		Bold(true)

	statusBarStyle = lipgloss.NewStyle().
		Foreground(colorTextMute)

	statusKeyStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Bold(true)

	statusDescStyle = lipgloss.NewStyle().
		Foreground(colorTextMute)

	noticeStyle = lipgloss.NewStyle().
		Foreground(colorSuccess).
		Italic(true)

	errorStyle = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	configHeaderStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		MarginBottom(1).
		Align(lipgloss.Center)

	configTitleStyle = lipgloss.NewStyle().
		Foreground(colorText).
		Bold(true).
		PaddingLeft(1)

	configPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(1, 2).
		MarginBottom(1)

	configSectionTitleStyle = lipgloss.NewStyle().
		Foreground(colorSecondary).
		Bold(true)

	configMenuItemStyle = lipgloss.NewStyle().
		Foreground(colorText)

	configMenuSelectedStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	configCursorStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	configValueStyle = lipgloss.NewStyle().
		Foreground(colorSecondary)

	configEnabledStyle = lipgloss.NewStyle().
		Foreground(colorSuccess)

	configDisabledStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	configPathStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Italic(true)

	configFeedbackStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Italic(true).
		MarginTop(1)

	configStatusBarStyle = lipgloss.NewStyle().
		Foreground(colorTextMute).
		MarginTop(1).
		Align(lipgloss.Center)

	chartStyles = chart.Styles{
		Title:  lipgloss.NewStyle().Foreground(colorPrimary).Bold(true),
		Axis:   lipgloss.NewStyle().Foreground(colorTextDim),
		Label:  lipgloss.NewStyle().Foreground(colorTextDim),
		Marker: lipgloss.NewStyle().Foreground(colorMarker),
		Legend: lipgloss.NewStyle().Foreground(colorText),
	}
}

// ChartStyles returns chart styles matching the active theme
func ChartStyles() chart.Styles {
	return chartStyles
}

// FormatError returns a styled error message with a hint for known failures
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	errStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errStyle.Render(fmt.Sprintf("✗ %v", err)))

	var connErr *errors.ConnectionError
	var cfgErr *errors.ConfigError
	switch {
	case stderrors.As(err, &connErr):
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", connErr.Endpoint)))
		sb.WriteString(dimStyle.Render("\n  Hint: Is the forecast backend running? Set --endpoint or FORECASTCHAT_ENDPOINT to point elsewhere"))
	case stderrors.As(err, &cfgErr):
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Hint: Fix it with 'forecastchat config set %s <value>'", cfgErr.Field)))
	case errors.IsFrameError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The backend sent a frame that is not a JSON object"))
	case stderrors.Is(err, context.DeadlineExceeded):
		sb.WriteString(dimStyle.Render("\n  Hint: The server did not reply in time. Try a longer --timeout"))
	case stderrors.Is(err, errors.ErrSessionClosed):
		sb.WriteString(dimStyle.Render("\n  Hint: The server closed the connection before replying"))
	}

	return sb.String()
}

// PrintError prints a styled error message to stderr
func PrintError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, FormatError(err))
}

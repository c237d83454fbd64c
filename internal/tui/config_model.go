package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/forecastchat/internal/config"
	"github.com/diogo/forecastchat/internal/render"
)

// configView represents the current view in the config menu
type configView int

const (
	viewMain configView = iota
	viewMarkdownSelect
	viewTUIThemeSelect
)

// Menu item indices for main view
const (
	menuGreeting = iota
	menuVerbose
	menuCopyToClipboard
	menuMarkdownStyle
	menuTUITheme
	menuExit
	menuItemCount
)

// markdownStyles are the glamour styles offered in the menu
var markdownStyles = []string{"dark", "light", "dracula", "tokyo-night", "pink", "ascii", "notty"}

// feedbackClearMsg is sent to clear feedback messages
type feedbackClearMsg struct{}

// ConfigModel is an interactive editor for the user configuration
type ConfigModel struct {
	config     config.Config
	configPath string
	logPath    string
	save       func(config.Config) error

	// Navigation
	view   configView
	cursor int
	choice int

	// Feedback
	feedback        string
	feedbackTimeout time.Duration

	// Dimensions
	width  int
	height int
	ready  bool
}

// NewConfigModel creates a config editor starting from cfg
func NewConfigModel(cfg config.Config) ConfigModel {
	configPath, _ := config.GetConfigPath()
	logPath, _ := config.GetLogPath(cfg)

	return ConfigModel{
		config:          cfg,
		configPath:      configPath,
		logPath:         logPath,
		save:            config.SaveConfig,
		view:            viewMain,
		feedbackTimeout: 2 * time.Second,
	}
}

// Config returns the configuration as edited so far
func (m ConfigModel) Config() config.Config {
	return m.config
}

// Init initializes the model
func (m ConfigModel) Init() tea.Cmd {
	return nil
}

// clearFeedback returns a command that clears the feedback message after a delay
func clearFeedback(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return feedbackClearMsg{}
	})
}

// options returns the choices of the active sub-menu
func (m ConfigModel) options() []string {
	switch m.view {
	case viewMarkdownSelect:
		return markdownStyles
	case viewTUIThemeSelect:
		return render.TUIThemeNames()
	}
	return nil
}

// Update handles messages and updates the model
func (m ConfigModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case feedbackClearMsg:
		m.feedback = ""

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			if m.view != viewMain {
				m.view = viewMain
			} else {
				return m, tea.Quit
			}

		case "up", "k":
			if m.view == viewMain {
				m.cursor = (m.cursor - 1 + menuItemCount) % menuItemCount
			} else {
				n := len(m.options())
				m.choice = (m.choice - 1 + n) % n
			}

		case "down", "j":
			if m.view == viewMain {
				m.cursor = (m.cursor + 1) % menuItemCount
			} else {
				m.choice = (m.choice + 1) % len(m.options())
			}

		case "enter", " ":
			return m.handleSelect()
		}
	}

	return m, nil
}

// handleSelect handles menu item selection
func (m ConfigModel) handleSelect() (tea.Model, tea.Cmd) {
	if m.view != viewMain {
		value := m.options()[m.choice]
		if m.view == viewMarkdownSelect {
			m.config.Markdown.Style = value
			m.persist("Markdown theme set to " + value)
		} else {
			m.config.TUITheme = value
			UpdateTheme(value)
			m.persist("TUI theme set to " + value)
		}
		m.view = viewMain
		return m, clearFeedback(m.feedbackTimeout)
	}

	switch m.cursor {
	case menuGreeting:
		m.config.Greeting = !m.config.Greeting
		m.persist("Greeting " + enabledWord(m.config.Greeting))
	case menuVerbose:
		m.config.Verbose = !m.config.Verbose
		m.persist("Verbose logging " + enabledWord(m.config.Verbose))
	case menuCopyToClipboard:
		m.config.CopyToClipboard = !m.config.CopyToClipboard
		m.persist("Copy to clipboard " + enabledWord(m.config.CopyToClipboard))
	case menuMarkdownStyle:
		m.view = viewMarkdownSelect
		m.choice = indexOf(markdownStyles, m.config.Markdown.Style)
		return m, nil
	case menuTUITheme:
		m.view = viewTUIThemeSelect
		m.choice = indexOf(render.TUIThemeNames(), m.config.TUITheme)
		return m, nil
	case menuExit:
		return m, tea.Quit
	}

	return m, clearFeedback(m.feedbackTimeout)
}

// persist saves the config and records the outcome as feedback
func (m *ConfigModel) persist(success string) {
	if err := m.save(m.config); err != nil {
		m.feedback = fmt.Sprintf("Error: %v", err)
		return
	}
	m.feedback = success
}

func enabledWord(v bool) string {
	if v {
		return "enabled"
	}
	return "disabled"
}

func indexOf(items []string, value string) int {
	for i, item := range items {
		if item == value {
			return i
		}
	}
	return 0
}

// View renders the TUI
func (m ConfigModel) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := max(m.width-4, 40)

	header := configHeaderStyle.Width(contentWidth).Render(configTitleStyle.Render("✦ Configuration"))
	sections = append(sections, header)

	pathsContent := lipgloss.JoinVertical(lipgloss.Left,
		configSectionTitleStyle.Render("Paths"),
		fmt.Sprintf("   Config:   %s", configPathStyle.Render(m.configPath)),
		fmt.Sprintf("   Log:      %s", configPathStyle.Render(m.logPath)),
		fmt.Sprintf("   Endpoint: %s", configValueStyle.Render(m.config.Endpoint)),
	)
	sections = append(sections, configPanelStyle.Width(contentWidth).Render(pathsContent))

	var settings string
	switch m.view {
	case viewMain:
		settings = m.renderMainMenu()
	case viewMarkdownSelect:
		settings = m.renderSelect("Select Markdown Theme", m.config.Markdown.Style)
	case viewTUIThemeSelect:
		settings = m.renderSelect("Select TUI Theme", m.config.TUITheme)
	}
	sections = append(sections, configPanelStyle.Width(contentWidth).Render(settings))

	if m.feedback != "" {
		sections = append(sections, configFeedbackStyle.Render("✓ "+m.feedback))
	}

	sections = append(sections, m.renderStatusBar(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderMainMenu renders the main settings menu
func (m ConfigModel) renderMainMenu() string {
	rows := []struct {
		label string
		value string
	}{
		{"Greeting", m.renderBoolValue(m.config.Greeting)},
		{"Verbose Logging", m.renderBoolValue(m.config.Verbose)},
		{"Copy to Clipboard", m.renderBoolValue(m.config.CopyToClipboard)},
		{"Markdown Theme", configValueStyle.Render(m.config.Markdown.Style)},
		{"TUI Theme", configValueStyle.Render(m.config.TUITheme)},
	}

	items := []string{configSectionTitleStyle.Render("Settings"), ""}
	for i, row := range rows {
		cursor, style := m.cursorFor(m.cursor == i)
		pad := strings.Repeat(" ", max(20-len(row.label), 1))
		items = append(items, cursor+style.Render(row.label)+pad+row.value)
	}

	items = append(items, "")
	cursor, style := m.cursorFor(m.cursor == menuExit)
	items = append(items, cursor+style.Render("Exit"))

	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

// renderSelect renders a sub-menu of choices
func (m ConfigModel) renderSelect(title, current string) string {
	items := []string{configSectionTitleStyle.Render(title), ""}
	for i, option := range m.options() {
		cursor, style := m.cursorFor(m.choice == i)
		mark := ""
		if option == current {
			mark = configEnabledStyle.Render(" (current)")
		}
		items = append(items, cursor+style.Render(option)+mark)
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (m ConfigModel) cursorFor(selected bool) (string, lipgloss.Style) {
	if selected {
		return configCursorStyle.Render("▸ "), configMenuSelectedStyle
	}
	return "  ", configMenuItemStyle
}

// renderBoolValue renders a boolean value with appropriate styling
func (m ConfigModel) renderBoolValue(value bool) string {
	if value {
		return configEnabledStyle.Render("enabled")
	}
	return configDisabledStyle.Render("disabled")
}

// renderStatusBar renders the bottom status bar
func (m ConfigModel) renderStatusBar(width int) string {
	back := "Exit"
	if m.view != viewMain {
		back = "Back"
	}

	shortcuts := []struct {
		key  string
		desc string
	}{
		{"↑↓", "Navigate"},
		{"Enter", "Select"},
		{"Esc", back},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	return configStatusBarStyle.Width(width).Render(strings.Join(items, "  │  "))
}

// RunConfig starts the config TUI
func RunConfig(cfg config.Config) error {
	UpdateTheme(cfg.TUITheme)

	p := tea.NewProgram(
		NewConfigModel(cfg),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}

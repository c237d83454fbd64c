package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/forecastchat/internal/chart"
	"github.com/diogo/forecastchat/internal/config"
	"github.com/diogo/forecastchat/internal/conversation"
	apierrors "github.com/diogo/forecastchat/internal/errors"
	"github.com/diogo/forecastchat/internal/models"
	"github.com/diogo/forecastchat/internal/render"
	"github.com/diogo/forecastchat/internal/session"
)

// Message types for the TUI
type (
	// sessionEventMsg carries one event from the session, in delivery order
	sessionEventMsg struct {
		event session.Event
	}
	// sessionDoneMsg is sent once the event channel is closed
	sessionDoneMsg struct{}
	// startErrMsg is sent when the session could not be started
	startErrMsg struct {
		err error
	}
	// copiedMsg reports the result of /copy
	copiedMsg struct {
		err error
	}
)

// SessionInterface defines the session operations needed by the TUI
type SessionInterface interface {
	Start(ctx context.Context) error
	Events() <-chan session.Event
	Send(text string) error
	State() session.State
	Close() error
	Endpoint() string
}

// copyToClipboard is replaced in tests
var copyToClipboard = clipboard.WriteAll

// exitCommands end the chat when submitted
var exitCommands = map[string]bool{
	"exit":  true,
	"quit":  true,
	"/exit": true,
	"/quit": true,
}

// scrollKeys are the only keys forwarded to the chat viewport
var scrollKeys = map[string]bool{
	"up":     true,
	"down":   true,
	"pgup":   true,
	"pgdown": true,
}

const helpText = "**Commands**\n\n" +
	"- Describe a change in plain language, e.g. *Increase steel by 20% next week*\n" +
	"- `/copy` copies the last reply to the clipboard\n" +
	"- `/help` shows this message\n" +
	"- `/quit` or `Esc` leaves the chat"

// Model is the forecast chat view: a chat panel next to a forecast chart.
// It owns the session and the chart for its whole lifetime.
type Model struct {
	session  SessionInterface
	log      *conversation.Log
	renderer *chart.Renderer
	markdown render.Options
	greeting bool

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// State
	state    session.State
	ready    bool
	torndown bool
	notice   string
	err      error

	// Dimensions
	width  int
	height int
}

// NewChatModel creates the chat view for sess using cfg for chart and
// rendering options. Nothing is dialed until the program starts.
func NewChatModel(sess SessionInterface, cfg config.Config) Model {
	ti := textinput.New()
	ti.Placeholder = "Describe a change to the forecast..."
	ti.CharLimit = 2000
	ti.Prompt = "› "
	ti.PromptStyle = inputLabelStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(colorText)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(colorTextDim)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = loadingStyle

	renderer := chart.NewRenderer(
		chart.WithWindow(cfg.HistoryWindow),
		chart.WithMaxTicks(cfg.MaxTicks),
		chart.WithStyles(ChartStyles()),
	)

	return Model{
		session:  sess,
		log:      &conversation.Log{},
		renderer: renderer,
		markdown: render.OptionsFromConfig(cfg.Markdown),
		greeting: cfg.Greeting,
		input:    ti,
		spinner:  s,
		state:    session.StateConnecting,
	}
}

// Init starts the session and begins listening for its events
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.startSession(),
		m.spinner.Tick,
	)
}

// startSession dials in the background and then waits for the first event
func (m Model) startSession() tea.Cmd {
	return func() tea.Msg {
		if err := m.session.Start(context.Background()); err != nil {
			return startErrMsg{err: err}
		}
		return waitForEvent(m.session.Events())()
	}
}

// waitForEvent returns a command that delivers the next session event
func waitForEvent(events <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return sessionDoneMsg{}
		}
		return sessionEventMsg{event: ev}
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if m.torndown {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			return m.submit()
		}

	case sessionEventMsg:
		cmds = append(cmds, m.handleEvent(msg.event))

	case sessionDoneMsg:
		m.state = m.session.State()

	case startErrMsg:
		m.err = msg.err

	case copiedMsg:
		if msg.err != nil {
			m.notice = ""
			m.err = fmt.Errorf("copy failed: %w", msg.err)
		} else {
			m.notice = "Copied last reply to clipboard"
		}

	case spinner.TickMsg:
		if m.state == session.StateConnecting {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	// Only forward keys while the input is enabled
	if _, ok := msg.(tea.KeyMsg); ok && m.state == session.StateOpen {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	// Typed text must not reach the viewport's letter bindings
	if key, ok := msg.(tea.KeyMsg); !ok || scrollKeys[key.String()] {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleEvent applies one session event and keeps listening
func (m *Model) handleEvent(ev session.Event) tea.Cmd {
	switch ev.Kind {
	case session.EventOpen:
		m.state = session.StateOpen
		m.err = nil
		if m.greeting {
			m.appendEntry(models.AssistantEntry(models.Greeting))
		}
		return tea.Batch(m.input.Focus(), waitForEvent(m.session.Events()))

	case session.EventFrame:
		frame := ev.Frame
		if frame.HasMessage && frame.Message != "" {
			m.appendEntry(models.AssistantEntry(frame.Message))
		}
		if frame.Payload != nil {
			m.renderer.Render(*frame.Payload)
		}

	case session.EventError:
		m.state = session.StateClosedError
		m.input.Blur()
		m.appendEntry(models.AssistantEntry(models.DisconnectedNotice))
	}

	return waitForEvent(m.session.Events())
}

// submit handles the enter key
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	trimmed := strings.TrimSpace(text)

	if exitCommands[trimmed] {
		return m, tea.Quit
	}

	switch trimmed {
	case "/help":
		m.input.Reset()
		m.appendEntry(models.AssistantEntry(helpText))
		return m, nil
	case "/copy":
		m.input.Reset()
		return m, m.copyLastReply()
	}

	if trimmed == "" || m.state != session.StateOpen {
		return m, nil
	}

	if err := m.session.Send(text); err != nil {
		if !apierrors.IsRejected(err) {
			m.err = err
		}
		return m, nil
	}

	m.input.Reset()
	m.notice = ""
	m.appendEntry(models.UserEntry(text))
	return m, nil
}

// copyLastReply copies the newest assistant entry to the clipboard
func (m Model) copyLastReply() tea.Cmd {
	entry, ok := m.log.Last(models.RoleAssistant)
	if !ok {
		return nil
	}
	return func() tea.Msg {
		return copiedMsg{err: copyToClipboard(entry.Text)}
	}
}

func (m *Model) appendEntry(entry models.ChatEntry) {
	m.log.Append(entry)
	m.updateViewport()
	m.viewport.GotoBottom()
}

// Teardown closes the session and releases the chart. It is safe to call
// more than once.
func (m *Model) Teardown() error {
	if m.torndown {
		return nil
	}
	m.torndown = true
	m.renderer.Release()
	slog.Debug("chat view torn down",
		"entries", len(m.log.Entries()),
		"charts_built", m.renderer.Builds(),
		"charts_live", m.renderer.Live(),
	)
	return m.session.Close()
}

// Entries returns the conversation log in order
func (m Model) Entries() []models.ChatEntry {
	return m.log.Entries()
}

// Renderer exposes the chart renderer owned by the view
func (m Model) Renderer() *chart.Renderer {
	return m.renderer
}

// State returns the connection state as last observed by the view
func (m Model) State() session.State {
	return m.state
}

// Layout constants
const (
	headerHeight = 3 // Header panel with border
	inputHeight  = 3 // Input panel with border
	statusHeight = 1 // Status bar
	minBodyLines = 8
	minChatWidth = 30
)

// panelWidths splits the terminal between the chat and chart panels
func (m Model) panelWidths() (chatW, chartW int) {
	chatW = max(m.width*2/5, minChatWidth)
	chartW = max(m.width-chatW, 0)
	return chatW, chartW
}

// bodyHeight is the outer height of the chat and chart panels
func (m Model) bodyHeight() int {
	return max(m.height-headerHeight-inputHeight-statusHeight-1, minBodyLines)
}

func (m *Model) layout() {
	chatW, _ := m.panelWidths()
	vpWidth := max(chatW-4, 10)
	vpHeight := m.bodyHeight() - 3

	if !m.ready {
		m.viewport = viewport.New(vpWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
	}
	m.input.Width = max(m.width-8, 10)
	m.updateViewport()
	m.viewport.GotoBottom()
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string

	// Header
	headerParts := []string{
		titleStyle.Render("✦ Supply Chain Forecast"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.session.Endpoint()),
		hintStyle.Render("  •  "),
		m.renderIndicator(),
	}
	header := headerStyle.Width(max(m.width-2, 0)).Render(
		lipgloss.JoinHorizontal(lipgloss.Center, headerParts...),
	)
	sections = append(sections, header)

	// Body: chat next to chart
	chatW, chartW := m.panelWidths()
	bodyH := m.bodyHeight()

	chatContent := lipgloss.JoinVertical(lipgloss.Left,
		panelTitleStyle.Render("Chat"),
		m.viewport.View(),
	)
	chatPanel := chatPanelStyle.
		Width(max(chatW-2, 0)).
		Height(max(bodyH-2, 0)).
		Render(chatContent)

	body := chatPanel
	if chartW > 4 {
		innerW := max(chartW-4, 1)
		innerH := max(bodyH-2, 1)
		chartPanel := chartPanelStyle.
			Width(max(chartW-2, 0)).
			Height(innerH).
			Render(m.renderChart(innerW, innerH))
		body = lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, chartPanel)
	}
	sections = append(sections, body)

	// Input
	sections = append(sections, inputPanelStyle.Width(max(m.width-2, 0)).Render(m.renderInput()))

	// Status bar
	sections = append(sections, m.renderStatusBar(m.width))

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("⚠ %v", m.err)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderIndicator shows the live connection state
func (m Model) renderIndicator() string {
	switch m.state {
	case session.StateOpen:
		return liveStyle.Render("● live")
	case session.StateConnecting:
		return connectingStyle.Render(m.spinner.View() + " connecting")
	default:
		return disconnectedStyle.Render("✕ disconnected")
	}
}

func (m Model) renderChart(width, height int) string {
	if m.renderer.Current() == nil {
		placeholder := hintStyle.Render("Waiting for forecast data...")
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, placeholder)
	}
	return m.renderer.View(width, height)
}

func (m Model) renderInput() string {
	switch m.state {
	case session.StateOpen:
		return m.input.View()
	case session.StateConnecting:
		return inputDisabledStyle.Render("Waiting for the connection...")
	default:
		return inputDisabledStyle.Render("Disconnected. Restart forecastchat to reconnect.")
	}
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Esc", "Quit"},
		{"↑↓", "Scroll"},
		{"/help", "Commands"},
	}

	var items []string
	for _, s := range shortcuts {
		item := lipgloss.JoinHorizontal(
			lipgloss.Center,
			statusKeyStyle.Render(s.key),
			statusDescStyle.Render(" "+s.desc),
		)
		items = append(items, item)
	}

	bar := strings.Join(items, "  │  ")
	if m.notice != "" {
		bar += "  " + noticeStyle.Render(m.notice)
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	var content strings.Builder
	bubbleWidth := max(m.viewport.Width-4, 10)

	for i, entry := range m.log.Entries() {
		if i > 0 {
			content.WriteString("\n")
		}

		if entry.Role == models.RoleUser {
			label := userLabelStyle.Render("You")
			bubble := userBubbleStyle.Width(bubbleWidth).Render(entry.Text)
			content.WriteString(label + "\n" + bubble)
		} else {
			label := assistantLabelStyle.Render("✦ Forecaster")
			rendered, err := render.Markdown(entry.Text, m.markdown.WithWidth(bubbleWidth-2))
			if err != nil {
				rendered = entry.Text
			}
			bubble := assistantBubbleStyle.Width(bubbleWidth).Render(rendered)
			content.WriteString(label + "\n" + bubble)
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// RunChat runs the chat view until the user quits and then tears it down
func RunChat(sess SessionInterface, cfg config.Config) error {
	UpdateTheme(cfg.TUITheme)
	m := NewChatModel(sess, cfg)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		if cerr := fm.Teardown(); err == nil {
			err = cerr
		}
	} else {
		if cerr := sess.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/otter/internal/logtail"
)

// LogTailLines is how many log lines the logs view keeps.
const LogTailLines = 500

// logState holds the logs view.
type logState struct {
	viewport viewport.Model
	entries  []logtail.Entry
	follow   bool
	err      string
}

func newLogState() logState {
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle()
	return logState{viewport: vp, follow: true}
}

type logsMsg struct {
	entries []logtail.Entry
	err     error
}

// refreshLogs reads the tail of the log file off the UI goroutine.
func (m Model) refreshLogs() tea.Cmd {
	path := m.logPath
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		entries, err := logtail.Tail(path, LogTailLines)
		return logsMsg{entries: entries, err: err}
	}
}

func (m *Model) handleLogs(msg logsMsg) {
	if msg.err != nil {
		m.logs.err = msg.err.Error()
		return
	}
	m.logs.err = ""
	m.logs.entries = msg.entries
	m.logs.viewport.SetContent(m.formatLogs())
	if m.logs.follow {
		m.logs.viewport.GotoBottom()
	}
}

func (m *Model) resizeLogs() {
	m.logs.viewport.Width = max(m.width, 1)
	m.logs.viewport.Height = max(m.contentHeight()-1, 1)
	if len(m.logs.entries) > 0 {
		m.logs.viewport.SetContent(m.formatLogs())
	}
	if m.logs.follow {
		m.logs.viewport.GotoBottom()
	}
}

// formatLogs renders entries one per line, coloured by level.
func (m Model) formatLogs() string {
	styles := m.theme.Styles()
	lines := make([]string, 0, len(m.logs.entries))
	for _, e := range m.logs.entries {
		line := truncate(logtail.Format(e), max(m.width-1, 10))
		lines = append(lines, levelStyle(styles, e.Level).Render(line))
	}
	return strings.Join(lines, "\n")
}

func levelStyle(styles Styles, level string) lipgloss.Style {
	switch level {
	case "debug":
		return styles.FaintText
	case "warn":
		return styles.WarningText
	case "error", "dpanic", "panic", "fatal":
		return styles.DangerText
	case "":
		return styles.MutedText
	default:
		return styles.Text
	}
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logs.follow = !m.logs.follow
		if m.logs.follow {
			m.logs.viewport.GotoBottom()
			return m, m.refreshLogs()
		}
	case key.Matches(msg, m.keys.Top):
		m.logs.follow = false
		m.logs.viewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.logs.follow = true
		m.logs.viewport.GotoBottom()
	case key.Matches(msg, m.keys.Down):
		m.logs.viewport.LineDown(1)
	case key.Matches(msg, m.keys.Up):
		m.logs.follow = false
		m.logs.viewport.LineUp(1)
	default:
		var cmd tea.Cmd
		m.logs.viewport, cmd = m.logs.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// renderLogs renders the log path line and the viewport.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()

	status := styles.MutedText.Render("following")
	if !m.logs.follow {
		status = styles.WarningText.Render("paused")
	}
	head := styles.FaintText.Render("log ") + styles.MutedText.Render(truncate(m.logPath, 60)) + "  " + status

	switch {
	case m.logPath == "":
		return head + "\n" + styles.MutedText.Render("Logging to a file is disabled.")
	case m.logs.err != "":
		return head + "\n" + styles.DangerText.Render(m.logs.err)
	case len(m.logs.entries) == 0:
		return head + "\n" + styles.MutedText.Render("No log lines yet.")
	}
	return head + "\n" + m.logs.viewport.View()
}

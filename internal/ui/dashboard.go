package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/otter/internal/entity"
	"github.com/five82/otter/internal/health"
	"github.com/five82/otter/internal/state"
)

const (
	gaugeWidth     = 24
	sparklineWidth = 20
)

// dashboardStates returns pinned entities in snapshot order.
func (m Model) dashboardStates() []entity.State {
	pinned := make(map[string]struct{}, len(m.data.values.Dashboard))
	for _, d := range m.data.values.Dashboard {
		pinned[d.EntityID] = struct{}{}
	}
	var out []entity.State
	for _, s := range m.data.snap.Entities {
		if _, ok := pinned[s.EntityID]; ok {
			out = append(out, s)
		}
	}
	return out
}

func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	states := m.dashboardStates()
	if len(states) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		m.dashCursor = clampCursor(m.dashCursor+1, len(states))
	case key.Matches(msg, m.keys.Up):
		m.dashCursor = clampCursor(m.dashCursor-1, len(states))
	case key.Matches(msg, m.keys.Top):
		m.dashCursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.dashCursor = len(states) - 1
	case key.Matches(msg, m.keys.Toggle):
		id := states[m.dashCursor].EntityID
		m.setFlash("Toggling "+id+"...", false)
		return m, toggleCmd(m.ctx, m.engine, id)
	case key.Matches(msg, m.keys.Remove):
		id := states[m.dashCursor].EntityID
		if err := m.engine.RemoveFromDashboard(id); err != nil {
			m.setFlash(err.Error(), true)
			return m, nil
		}
		m.setFlash("Unpinned "+id, false)
		return m, fetchSnapshotCmd(m.engine)
	}
	return m, nil
}

// renderDashboard renders the connection notice, system health gauges,
// the update card and pinned entities.
func (m Model) renderDashboard() string {
	styles := m.theme.Styles()
	var sections []string

	if notice := m.renderConnectionNotice(); notice != "" {
		sections = append(sections, notice)
	}
	if !m.data.values.HasToken && m.data.snap.Connection.Kind == state.Disconnected {
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	sections = append(sections, m.renderHealthPanel())
	if m.data.update.Available {
		sections = append(sections, m.renderUpdatePanel())
	}
	sections = append(sections, m.renderPinned())

	out := lipgloss.JoinVertical(lipgloss.Left, sections...)
	if lipgloss.Height(out) > m.contentHeight() {
		lines := strings.Split(out, "\n")
		out = strings.Join(lines[:m.contentHeight()], "\n")
	}
	return styles.Text.Render(out)
}

func (m Model) renderConnectionNotice() string {
	styles := m.theme.Styles()
	snap := m.data.snap
	switch {
	case !m.data.values.HasToken || m.data.values.BaseURL == "":
		return styles.MutedText.Render("Otter is not connected to Home Assistant yet.") + "\n" +
			styles.AccentText.Render("Press s to enter the server URL and a long-lived access token.")
	case snap.Connection.IsError():
		title := "Connection error"
		if snap.IsOffline() {
			title = fmt.Sprintf("Offline (%d failed refreshes)", snap.ConsecutiveFailures)
		}
		text := styles.DangerText.Render(title+": ") + styles.Text.Render(snap.Connection.Message)
		if len(snap.Entities) > 0 {
			text += "\n" + styles.MutedText.Render("Showing data from "+formatAge(snap.LastUpdate, m.now())+".")
		}
		return text + "\n" + styles.AccentText.Render("Press r to retry.")
	case snap.Connection.Kind == state.Connecting && len(snap.Entities) == 0:
		return styles.WarningText.Render("Connecting to " + m.data.values.BaseURL + "...")
	}
	return ""
}

// renderHealthPanel renders one gauge row per system metric.
func (m Model) renderHealthPanel() string {
	styles := m.theme.Styles()
	t := m.data.values.Thresholds

	title := styles.Text.Bold(true).Render("System Health") + "  " +
		styles.StatusText(m.data.health.String()).Bold(true).Render(strings.ToUpper(m.data.health.String()))
	if m.data.health == health.Warning || m.data.health == health.Critical {
		title += "  " + styles.MutedText.Render(health.Details(m.data.readings, t))
	}

	rows := []string{title}
	for _, r := range m.data.readings {
		rows = append(rows, m.renderGauge(r))
	}
	rows = append(rows, styles.FaintText.Render(
		fmt.Sprintf("warning ≥ %d%%  critical ≥ %d%%", t.Warning, t.Critical)))

	return styles.Panel.Render(strings.Join(rows, "\n"))
}

func (m Model) renderGauge(r health.Reading) string {
	styles := m.theme.Styles()

	class := "unknown"
	if r.OK {
		class = health.Level(r.Value, m.data.values.Thresholds).String()
	}
	filled, empty := gaugeCells(health.GaugePercent(r), gaugeWidth)
	gauge := styles.StatusText(class).Render(strings.Repeat("█", filled)) +
		styles.FaintText.Render(strings.Repeat("░", empty))

	line := styles.Text.Render(padRight(r.Metric.String(), 7)) + " " + gauge + " " +
		styles.StatusText(class).Bold(true).Render(padRight(readingValue(r), 6))

	if spark := sparkline(m.data.snap.History.Samples(r.Metric), sparklineWidth); spark != "" {
		line += " " + styles.AccentText.Render(padRight(spark, sparklineWidth))
	}
	if m.width >= 100 {
		line += " " + styles.FaintText.Render(truncate(readingSource(r), 40))
	}
	return line
}

func (m Model) renderUpdatePanel() string {
	styles := m.theme.Styles()
	u := m.data.update
	lines := []string{
		styles.InfoText.Bold(true).Render("⬆ Home Assistant update available"),
		styles.Text.Render(fmt.Sprintf("Installed %s, latest %s", orDash(u.Installed), orDash(u.Latest))),
	}
	if u.ReleaseURL != "" {
		lines = append(lines, styles.AccentText.Underline(true).Render(u.ReleaseURL))
	}
	return styles.Panel.BorderForeground(lipgloss.Color(m.theme.Info)).Render(strings.Join(lines, "\n"))
}

// renderPinned lists pinned entities with their state colors.
func (m Model) renderPinned() string {
	styles := m.theme.Styles()
	states := m.dashboardStates()

	header := styles.Text.Bold(true).Render(fmt.Sprintf("Pinned (%d)", len(states)))
	if len(states) == 0 {
		return header + "\n" + styles.MutedText.Render("Nothing pinned. Press b to browse entities and p to pin one.")
	}

	rows := []string{header}
	for i, s := range states {
		rows = append(rows, m.renderEntityRow(s, i == m.dashCursor, false))
	}
	return strings.Join(rows, "\n")
}

// renderEntityRow renders glyph, name, id and state on one line.
func (m Model) renderEntityRow(s entity.State, selected, markers bool) string {
	styles := m.theme.Styles()
	nameWidth := 28
	if m.width < 80 {
		nameWidth = 18
	}

	prefix := "  "
	if selected {
		prefix = "▸ "
	}
	if markers {
		pin, tray := " ", " "
		if m.isPinned(s.EntityID) {
			pin = "★"
		}
		if m.isMenuBarSensor(s.EntityID) {
			tray = "▣"
		}
		prefix += styles.WarningText.Render(pin) + styles.InfoText.Render(tray) + " "
	}

	row := prefix +
		styles.StatusText(s.StateColor().String()).Render(glyph(s.Icon())) + " " +
		styles.Text.Render(padRight(truncate(s.FriendlyName(), nameWidth), nameWidth)) + " " +
		styles.StatusText(s.StateColor().String()).Bold(true).Render(padRight(truncate(s.DisplayState(), 14), 14))
	if m.width >= 90 {
		row += " " + styles.FaintText.Render(truncate(s.EntityID, 40))
	}
	if selected {
		return styles.Selected.Render(row)
	}
	return row
}

func (m Model) isPinned(entityID string) bool {
	for _, d := range m.data.values.Dashboard {
		if d.EntityID == entityID {
			return true
		}
	}
	return false
}

func (m Model) isMenuBarSensor(entityID string) bool {
	for _, id := range m.data.values.MenuBarSensors {
		if id == entityID {
			return true
		}
	}
	return false
}

func orDash(s string) string {
	if s == "" {
		return "--"
	}
	return s
}

package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/otter/internal/entity"
	"github.com/five82/otter/internal/settings"
)

type rowKind int

const (
	rowURL rowKind = iota
	rowToken
	rowInterval
	rowWarning
	rowCritical
	rowMetric
	rowAppearance
	rowNotifications
	rowLaunch
	rowSensor
)

// editable reports whether enter opens the text input for the row.
func (k rowKind) editable() bool {
	switch k {
	case rowURL, rowToken, rowInterval, rowWarning, rowCritical, rowMetric:
		return true
	}
	return false
}

type formRow struct {
	kind   rowKind
	label  string
	value  string
	metric entity.Metric
	index  int // position in the menu bar list
}

// formState holds the settings form cursor and the active input.
type formState struct {
	cursor  int
	editing bool
	input   textinput.Model
}

func newFormState() formState {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Cursor.SetMode(cursor.CursorStatic)
	return formState{input: ti}
}

// formRows lists the settings in display order.
func (m Model) formRows() []formRow {
	v := m.data.values

	token := "not set"
	if v.HasToken {
		token = "••••••••"
	}
	rows := []formRow{
		{kind: rowURL, label: "Server URL", value: orDash(v.BaseURL)},
		{kind: rowToken, label: "Access token", value: token},
		{kind: rowInterval, label: "Refresh interval", value: fmt.Sprintf("%ds", v.RefreshInterval)},
		{kind: rowWarning, label: "Warning threshold", value: fmt.Sprintf("%d%%", v.Thresholds.Warning)},
		{kind: rowCritical, label: "Critical threshold", value: fmt.Sprintf("%d%%", v.Thresholds.Critical)},
	}
	for _, metric := range entity.Metrics {
		id := v.Mapping.For(metric)
		if id == "" {
			id = "auto-detect"
		}
		rows = append(rows, formRow{kind: rowMetric, label: metric.String() + " sensor", value: id, metric: metric})
	}
	rows = append(rows,
		formRow{kind: rowAppearance, label: "Appearance", value: string(v.Appearance)},
		formRow{kind: rowNotifications, label: "Notifications", value: onOff(v.NotificationsEnabled)},
		formRow{kind: rowLaunch, label: "Launch at login", value: onOff(v.LaunchAtLogin)},
	)
	for i, id := range v.MenuBarSensors {
		rows = append(rows, formRow{kind: rowSensor, label: fmt.Sprintf("Menu bar %d", i+1), value: id, index: i})
	}
	return rows
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// nextAppearance cycles auto → light → dark → auto.
func nextAppearance(a settings.Appearance) settings.Appearance {
	switch a {
	case settings.AppearanceAuto:
		return settings.AppearanceLight
	case settings.AppearanceLight:
		return settings.AppearanceDark
	default:
		return settings.AppearanceAuto
	}
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.formRows()
	m.form.cursor = clampCursor(m.form.cursor, len(rows))
	row := rows[m.form.cursor]

	switch {
	case key.Matches(msg, m.keys.Down):
		m.form.cursor = clampCursor(m.form.cursor+1, len(rows))
	case key.Matches(msg, m.keys.Up):
		m.form.cursor = clampCursor(m.form.cursor-1, len(rows))
	case key.Matches(msg, m.keys.Top):
		m.form.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.form.cursor = len(rows) - 1

	case key.Matches(msg, m.keys.TestConnect):
		m.setFlash("Testing connection...", false)
		return m, testConnectionCmd(m.ctx, m.engine, m.data.values.BaseURL, m.engine.StoredToken())

	case key.Matches(msg, m.keys.Toggle):
		return m.activateRow(row)

	case key.Matches(msg, m.keys.Remove):
		switch row.kind {
		case rowSensor:
			_, err := m.engine.RemoveMenuBarSensor(row.value)
			return m.afterSave(err, "Removed from menu bar: "+row.value)
		case rowMetric:
			err := m.engine.SetMetricEntity(row.metric, "")
			return m.afterSave(err, row.metric.String()+" sensor set to auto-detect")
		}

	case key.Matches(msg, m.keys.MoveUp):
		if row.kind == rowSensor {
			moved, err := m.engine.MoveMenuBarSensorUp(row.index)
			if moved {
				m.form.cursor--
			}
			return m.afterSave(err, "")
		}

	case key.Matches(msg, m.keys.MoveDown):
		if row.kind == rowSensor {
			moved, err := m.engine.MoveMenuBarSensorDown(row.index)
			if moved {
				m.form.cursor++
			}
			return m.afterSave(err, "")
		}
	}
	return m, nil
}

// activateRow edits text rows and flips the others in place.
func (m Model) activateRow(row formRow) (tea.Model, tea.Cmd) {
	v := m.data.values
	if row.kind.editable() {
		m.form.editing = true
		m.form.input.EchoMode = textinput.EchoNormal
		m.form.input.Placeholder = ""
		switch row.kind {
		case rowURL:
			m.form.input.SetValue(v.BaseURL)
			m.form.input.Placeholder = "http://homeassistant.local:8123"
		case rowToken:
			m.form.input.SetValue("")
			m.form.input.EchoMode = textinput.EchoPassword
			m.form.input.Placeholder = "long-lived access token"
		case rowInterval:
			m.form.input.SetValue(strconv.Itoa(v.RefreshInterval))
		case rowWarning:
			m.form.input.SetValue(strconv.Itoa(v.Thresholds.Warning))
		case rowCritical:
			m.form.input.SetValue(strconv.Itoa(v.Thresholds.Critical))
		case rowMetric:
			m.form.input.SetValue(v.Mapping.For(row.metric))
			m.form.input.Placeholder = "empty for auto-detect"
		}
		m.form.input.CursorEnd()
		cmd := m.form.input.Focus()
		return m, cmd
	}

	switch row.kind {
	case rowAppearance:
		next := nextAppearance(v.Appearance)
		return m.afterSave(m.engine.SetAppearance(next), "Appearance: "+string(next))
	case rowNotifications:
		on := !v.NotificationsEnabled
		return m.afterSave(m.engine.SetNotificationsEnabled(on), "Notifications "+onOff(on))
	case rowLaunch:
		on := !v.LaunchAtLogin
		return m.afterSave(m.engine.SetLaunchAtLogin(on), "Launch at login "+onOff(on))
	}
	return m, nil
}

func (m Model) handleFormInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.form.editing = false
		m.form.input.Blur()
		return m, nil
	case "enter":
		m.form.editing = false
		m.form.input.Blur()
		rows := m.formRows()
		return m.commitRow(rows[clampCursor(m.form.cursor, len(rows))], strings.TrimSpace(m.form.input.Value()))
	}
	var cmd tea.Cmd
	m.form.input, cmd = m.form.input.Update(msg)
	return m, cmd
}

// commitRow saves an edited value.
func (m Model) commitRow(row formRow, value string) (tea.Model, tea.Cmd) {
	switch row.kind {
	case rowURL:
		m.setFlash("Testing connection...", false)
		return m, testConnectionCmd(m.ctx, m.engine, value, m.engine.StoredToken())

	case rowToken:
		if value == "" {
			return m, nil
		}
		m.setFlash("Testing connection...", false)
		return m, testConnectionCmd(m.ctx, m.engine, m.data.values.BaseURL, value)

	case rowMetric:
		return m.afterSave(m.engine.SetMetricEntity(row.metric, value), row.metric.String()+" sensor saved")
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		m.setFlash(fmt.Sprintf("%q is not a number", value), true)
		return m, nil
	}
	switch row.kind {
	case rowInterval:
		stored, err := m.engine.SetRefreshInterval(n)
		return m.afterSave(err, fmt.Sprintf("Refreshing every %ds", stored))
	case rowWarning:
		t, err := m.engine.SetWarningThreshold(n)
		return m.afterSave(err, fmt.Sprintf("Thresholds: warning %d%%, critical %d%%", t.Warning, t.Critical))
	case rowCritical:
		t, err := m.engine.SetCriticalThreshold(n)
		return m.afterSave(err, fmt.Sprintf("Thresholds: warning %d%%, critical %d%%", t.Warning, t.Critical))
	}
	return m, nil
}

// afterSave reports a settings write and reloads the view data.
func (m Model) afterSave(err error, ok string) (tea.Model, tea.Cmd) {
	if err != nil {
		m.setFlash(err.Error(), true)
	} else if ok != "" {
		m.setFlash(ok, false)
	}
	return m, fetchSnapshotCmd(m.engine)
}

// renderSettings renders the settings form.
func (m Model) renderSettings() string {
	styles := m.theme.Styles()
	rows := m.formRows()

	lines := make([]string, 0, len(rows)+2)
	section := ""
	for i, row := range rows {
		if s := rowSection(row.kind); s != section {
			section = s
			lines = append(lines, styles.AccentText.Bold(true).Render(section))
		}

		prefix := "  "
		if i == m.form.cursor {
			prefix = "▸ "
		}
		label := styles.MutedText.Render(padRight(row.label, 20))

		value := styles.Text.Render(row.value)
		if i == m.form.cursor && m.form.editing {
			value = m.form.input.View()
		}

		line := prefix + label + " " + value
		if i == m.form.cursor && !m.form.editing {
			line = styles.Selected.Render(prefix+padRight(row.label, 20)+" "+row.value)
		}
		lines = append(lines, line)
	}

	if len(m.data.values.MenuBarSensors) == 0 {
		lines = append(lines, styles.FaintText.Render("  No menu bar sensors. Press m in the entity browser to add one."))
	}

	start, end := window(m.form.cursor, len(lines), m.contentHeight())
	return strings.Join(lines[start:end], "\n")
}

func rowSection(k rowKind) string {
	switch k {
	case rowURL, rowToken:
		return "Connection"
	case rowInterval, rowWarning, rowCritical, rowMetric:
		return "Monitoring"
	case rowSensor:
		return "Menu bar"
	default:
		return "General"
	}
}

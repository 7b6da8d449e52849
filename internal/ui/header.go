package ui

import (
	"fmt"
	"strings"

	"github.com/five82/otter/internal/state"
)

// renderHeader renders the status bar: indicator, connection, server,
// update, menu bar sensors and last refresh.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	b := newBar(m.theme.Surface)
	compact := m.width < 100
	snap := m.data.snap

	dot := b.render("●", styles.StatusText(indicatorClass(m.data.menuBar.Indicator)).Bold(true))
	parts := []string{
		b.render("otter", styles.Logo) + b.space + dot,
		m.connectionSegment(styles, b),
	}

	if snap.Config != nil && !compact {
		parts = append(parts, b.pair("HA", snap.Config.Version, styles.MutedText, styles.Text))
	}

	if snap.Connection.Kind == state.Connected || len(snap.Entities) > 0 {
		status := m.data.health
		parts = append(parts, b.pair("Health:", status.String(),
			styles.MutedText, styles.StatusText(status.String()).Bold(true)))
	}

	if m.data.update.Available {
		label := "Update"
		if m.data.update.Latest != "" {
			label += " " + m.data.update.Latest
		}
		parts = append(parts, b.render("⬆ "+label, styles.InfoText.Bold(true)))
	}

	if text := m.data.menuBar.Text; text != "" {
		parts = append(parts, b.render(truncate(text, 40), styles.Text))
	}

	if ts := formatAge(snap.LastUpdate, m.now()); ts != "" {
		parts = append(parts, b.render(ts, styles.MutedText))
	}

	if m.refreshing {
		parts = append(parts, b.render("refreshing...", styles.WarningText))
	}

	return styles.Header.Width(m.width).Render(b.join(parts, 2))
}

// connectionSegment describes the connection state in a few words.
func (m Model) connectionSegment(styles Styles, b bar) string {
	snap := m.data.snap
	switch snap.Connection.Kind {
	case state.Connected:
		name := "Connected"
		if snap.Config != nil && snap.Config.LocationName != "" {
			name = snap.Config.LocationName
		}
		return b.render(name, styles.SuccessText)
	case state.Connecting:
		return b.render("Connecting...", styles.WarningText.Bold(true))
	case state.Errored:
		label := "ERROR"
		if snap.IsOffline() {
			label = "OFFLINE"
		}
		limit := 60
		if m.width < 100 {
			limit = 30
		}
		return b.render(label, styles.DangerText) + b.space +
			b.render(truncate(snap.Connection.Message, limit), styles.DangerText)
	default:
		if !m.data.values.HasToken || m.data.values.BaseURL == "" {
			return b.render("Not configured", styles.MutedText)
		}
		return b.render("Disconnected", styles.MutedText)
	}
}

// renderCommandBar renders the key hints for the active view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	b := newBar(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewEntities:
		if m.browser.searching {
			commands = []cmd{{"enter", "Apply"}, {"esc", "Clear"}}
		} else {
			domain := m.browser.domain
			if domain == "" {
				domain = "all"
			}
			commands = []cmd{
				{"/", "Search"},
				{"f", domain},
				{"enter", "Toggle"},
				{"p", "Pin"},
				{"m", "Menu bar"},
				{"j/k", "Navigate"},
			}
		}
	case ViewSettings:
		if m.form.editing {
			commands = []cmd{{"enter", "Save"}, {"esc", "Cancel"}}
		} else {
			commands = []cmd{
				{"enter", "Edit"},
				{"c", "Test connection"},
				{"K/J", "Reorder"},
				{"x", "Remove"},
				{"j/k", "Navigate"},
			}
		}
	case ViewLogs:
		follow := "Pause"
		if !m.logs.follow {
			follow = "Follow"
		}
		commands = []cmd{
			{"F", follow},
			{"j/k", "Scroll"},
			{"g/G", "Top/Bottom"},
		}
	default:
		commands = []cmd{
			{"enter", "Toggle"},
			{"x", "Unpin"},
			{"j/k", "Navigate"},
			{"b", "Browse"},
			{"s", "Settings"},
			{"l", "Logs"},
		}
	}
	commands = append(commands, cmd{"r", "Refresh"}, cmd{"?", "More"})

	colon := b.render(":", styles.MutedText)
	segments := make([]string, 0, len(commands)+2)
	segments = append(segments, b.render(strings.ToUpper(m.currentView.String()), styles.AccentText.Bold(true)))
	for _, c := range commands {
		segments = append(segments,
			b.render(c.key, styles.AccentText)+colon+b.render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		b.render("T", styles.AccentText)+colon+b.render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(b.join(segments, 2))
}

// renderBanner shows the most recent notification until it expires.
func (m Model) renderBanner() string {
	if m.banner == nil {
		return ""
	}
	styles := m.theme.Styles()
	style := styles.Banner
	if m.banner.Severity != "critical" {
		style = style.Background(styles.StatusColor(bannerClass(m.banner.Severity)))
	}
	text := fmt.Sprintf("🔔 %s: %s", m.banner.Title, m.banner.Body)
	return style.Width(m.width).Render(truncate(text, max(m.width-2, 1)))
}

func bannerClass(severity string) string {
	switch severity {
	case "warning":
		return "warning"
	case "critical":
		return "critical"
	default:
		return "update"
	}
}

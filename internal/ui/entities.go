package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/otter/internal/entity"
	"github.com/five82/otter/internal/settings"
)

// browserState holds the entity browser's search box and selection.
type browserState struct {
	search    textinput.Model
	searching bool
	domain    string // empty means all
	cursor    int
}

func newBrowserState() browserState {
	ti := textinput.New()
	ti.Placeholder = "search id or name"
	ti.Prompt = "/ "
	ti.CharLimit = 64
	ti.Cursor.SetMode(cursor.CursorStatic)
	return browserState{search: ti}
}

// filteredEntities applies the domain and search filter to the snapshot.
func (m Model) filteredEntities() []entity.State {
	return entity.Filter(m.data.snap.Entities, m.browser.domain, m.browser.search.Value())
}

// nextDomain cycles all → each domain in sorted order → all.
func nextDomain(domains []string, current string) string {
	if current == "" {
		if len(domains) == 0 {
			return ""
		}
		return domains[0]
	}
	for i, d := range domains {
		if d == current && i+1 < len(domains) {
			return domains[i+1]
		}
	}
	return ""
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.browser.searching = false
		m.browser.search.Blur()
		return m, nil
	case "esc":
		m.browser.searching = false
		m.browser.search.Blur()
		m.browser.search.SetValue("")
		m.browser.cursor = 0
		return m, nil
	}
	var cmd tea.Cmd
	m.browser.search, cmd = m.browser.search.Update(msg)
	m.browser.cursor = 0
	return m, cmd
}

func (m Model) handleEntitiesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.browser.searching = true
		cmd := m.browser.search.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.CycleDomain):
		m.browser.domain = nextDomain(entity.Domains(m.data.snap.Entities), m.browser.domain)
		m.browser.cursor = 0
		return m, nil
	}

	states := m.filteredEntities()
	if len(states) == 0 {
		return m, nil
	}
	m.browser.cursor = clampCursor(m.browser.cursor, len(states))
	selected := states[m.browser.cursor]

	switch {
	case key.Matches(msg, m.keys.Down):
		m.browser.cursor = clampCursor(m.browser.cursor+1, len(states))
	case key.Matches(msg, m.keys.Up):
		m.browser.cursor = clampCursor(m.browser.cursor-1, len(states))
	case key.Matches(msg, m.keys.Top):
		m.browser.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.browser.cursor = len(states) - 1

	case key.Matches(msg, m.keys.Toggle):
		m.setFlash("Toggling "+selected.EntityID+"...", false)
		return m, toggleCmd(m.ctx, m.engine, selected.EntityID)

	case key.Matches(msg, m.keys.Pin):
		var err error
		verb := "Pinned "
		if m.isPinned(selected.EntityID) {
			verb = "Unpinned "
			err = m.engine.RemoveFromDashboard(selected.EntityID)
		} else {
			err = m.engine.AddToDashboard(selected.EntityID)
		}
		if err != nil {
			m.setFlash(err.Error(), true)
			return m, nil
		}
		m.setFlash(verb+selected.EntityID, false)
		return m, fetchSnapshotCmd(m.engine)

	case key.Matches(msg, m.keys.MenuBar):
		return m.toggleMenuBarSensor(selected.EntityID)
	}
	return m, nil
}

func (m Model) toggleMenuBarSensor(entityID string) (tea.Model, tea.Cmd) {
	var (
		changed bool
		err     error
		verb    string
	)
	if m.isMenuBarSensor(entityID) {
		changed, err = m.engine.RemoveMenuBarSensor(entityID)
		verb = "Removed from menu bar: "
	} else {
		changed, err = m.engine.AddMenuBarSensor(entityID)
		verb = "Added to menu bar: "
	}
	switch {
	case err != nil:
		m.setFlash(err.Error(), true)
		return m, nil
	case !changed:
		m.setFlash(fmt.Sprintf("Menu bar holds at most %d sensors", settings.MaxMenuBarSensors), true)
		return m, nil
	}
	m.setFlash(verb+entityID, false)
	return m, fetchSnapshotCmd(m.engine)
}

// renderEntities renders the search line and the filtered entity list.
func (m Model) renderEntities() string {
	styles := m.theme.Styles()
	states := m.filteredEntities()

	domain := m.browser.domain
	if domain == "" {
		domain = "all domains"
	}
	search := m.browser.search.View()
	if !m.browser.searching && m.browser.search.Value() == "" {
		search = styles.FaintText.Render("/ to search")
	}
	head := search + "  " + styles.AccentText.Render("["+domain+"]") + "  " +
		styles.MutedText.Render(fmt.Sprintf("%d of %d", len(states), len(m.data.snap.Entities)))

	lines := []string{head}
	if len(states) == 0 {
		msg := "No entities match."
		if len(m.data.snap.Entities) == 0 {
			msg = "No entities loaded yet."
		}
		lines = append(lines, styles.MutedText.Render(msg))
		return strings.Join(lines, "\n")
	}

	start, end := window(m.browser.cursor, len(states), m.contentHeight()-1)
	for i := start; i < end; i++ {
		lines = append(lines, m.renderEntityRow(states[i], i == m.browser.cursor, true))
	}
	return strings.Join(lines, "\n")
}

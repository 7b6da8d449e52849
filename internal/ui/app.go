package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/otter/internal/engine"
	"github.com/five82/otter/internal/health"
	"github.com/five82/otter/internal/notify"
	"github.com/five82/otter/internal/settings"
	"github.com/five82/otter/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewDashboard View = iota
	ViewEntities
	ViewSettings
	ViewLogs
)

var viewOrder = []View{ViewDashboard, ViewEntities, ViewSettings, ViewLogs}

// String returns the view title.
func (v View) String() string {
	switch v {
	case ViewEntities:
		return "Entities"
	case ViewSettings:
		return "Settings"
	case ViewLogs:
		return "Logs"
	default:
		return "Dashboard"
	}
}

// bannerTTL is how long a notification banner stays up.
const bannerTTL = 15 * time.Second

// Options configures the UI.
type Options struct {
	Context       context.Context
	Engine        *engine.Engine
	Notifications <-chan notify.Notification
	ThemeName     string
	LogPath       string
	// PollTick drives relative times, banner expiry and log follow.
	// Snapshot changes arrive through a store subscription.
	PollTick time.Duration
	// DarkTerminal reports the terminal background for auto appearance.
	// Nil queries the terminal.
	DarkTerminal func() bool
}

// viewData is everything the renderers read, collected in one pass so a
// frame never mixes two snapshots.
type viewData struct {
	snap     state.Snapshot
	values   settings.Values
	readings []health.Reading
	health   health.Status
	update   engine.Update
	menuBar  engine.MenuBarLabel
}

func collect(e *engine.Engine) viewData {
	snap := e.Snapshot()
	values := e.Settings()
	readings := health.Resolve(snap.Entities, values.Mapping)
	return viewData{
		snap:     snap,
		values:   values,
		readings: readings,
		health:   health.Evaluate(readings, values.Thresholds),
		update:   e.Update(),
		menuBar:  e.MenuBarLabel(),
	}
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx      context.Context
	engine   *engine.Engine
	notes    <-chan notify.Notification
	logPath  string
	pollTick time.Duration
	now      func() time.Time

	keys keyMap
	help help.Model

	// Theme
	themeName    string
	theme        Theme
	darkTerminal bool

	// Layout
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool

	data viewData

	dashCursor int
	browser    browserState
	form       formState
	logs       logState

	// Notification banner
	banner      *notify.Notification
	bannerUntil time.Time

	// One-line feedback for the last command
	flash    string
	flashErr bool

	refreshing bool

	// changes signals a store mutation; sends are coalesced.
	changes     <-chan struct{}
	unsubscribe func()
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = time.Second
	}

	var dark bool
	if opts.DarkTerminal != nil {
		dark = opts.DarkTerminal()
	} else {
		dark = lipgloss.HasDarkBackground()
	}

	m := Model{
		ctx:          ctx,
		engine:       opts.Engine,
		notes:        opts.Notifications,
		logPath:      opts.LogPath,
		pollTick:     pollTick,
		now:          time.Now,
		keys:         defaultKeyMap(),
		help:         help.New(),
		themeName:    opts.ThemeName,
		darkTerminal: dark,
		currentView:  ViewDashboard,
		browser:      newBrowserState(),
		form:         newFormState(),
		logs:         newLogState(),
	}
	if m.engine != nil {
		m.data = collect(m.engine)
		m.changes, m.unsubscribe = subscribe(m.engine.Store())
	}
	m.applyAppearance()
	return m
}

// subscribe turns store mutations into a wake-up channel. The listener runs
// on the mutating goroutine, so it must not block.
func subscribe(store *state.Store) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	unsub := store.Subscribe(func(state.Snapshot) {
		select {
		case ch <- struct{}{}:
		default:
		}
	})
	return ch, unsub
}

// applyAppearance picks the theme for the stored appearance mode.
func (m *Model) applyAppearance() {
	m.theme = ThemeFor(m.data.values.Appearance, m.themeName, m.darkTerminal)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.engine != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.engine))
	}
	if m.notes != nil {
		cmds = append(cmds, waitForNotification(m.notes))
	}
	if m.changes != nil {
		cmds = append(cmds, waitForChange(m.changes))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		m.resizeLogs()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.setData(viewData(msg))
		return m, nil

	case storeChangedMsg:
		return m, tea.Batch(fetchSnapshotCmd(m.engine), waitForChange(m.changes))

	case refreshedMsg:
		m.refreshing = false
		m.setData(msg.data)
		return m, nil

	case toggledMsg:
		m.setData(msg.data)
		m.setFlash("Toggled "+msg.entityID, false)
		return m, nil

	case connResultMsg:
		m.setData(msg.data)
		if msg.err != nil {
			m.setFlash("Connection failed: "+msg.err.Error(), true)
		} else {
			m.setFlash(msg.summary, false)
		}
		return m, nil

	case notificationMsg:
		n := notify.Notification(msg)
		m.banner = &n
		m.bannerUntil = m.now().Add(bannerTTL)
		return m, waitForNotification(m.notes)

	case logsMsg:
		m.handleLogs(msg)
		return m, nil
	}

	return m, nil
}

func (m *Model) setData(d viewData) {
	appearance := m.data.values.Appearance
	m.data = d
	if d.values.Appearance != appearance {
		m.applyAppearance()
	}
	m.dashCursor = clampCursor(m.dashCursor, len(m.dashboardStates()))
	m.browser.cursor = clampCursor(m.browser.cursor, len(m.filteredEntities()))
	m.form.cursor = clampCursor(m.form.cursor, len(m.formRows()))
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	// Text inputs own the keyboard while focused.
	if m.currentView == ViewEntities && m.browser.searching {
		return m.handleSearchKey(msg)
	}
	if m.currentView == ViewSettings && m.form.editing {
		return m.handleFormInputKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.themeName = NextTheme(m.theme.Name)
		m.theme = GetTheme(m.themeName)
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		cmd := m.refresh()
		return m, cmd

	case key.Matches(msg, m.keys.Tab):
		return m.switchView(m.offsetView(1))

	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView(m.offsetView(-1))

	case key.Matches(msg, m.keys.ViewDashboard), key.Matches(msg, m.keys.Escape):
		return m.switchView(ViewDashboard)

	case key.Matches(msg, m.keys.ViewEntities):
		return m.switchView(ViewEntities)

	case key.Matches(msg, m.keys.ViewSettings):
		return m.switchView(ViewSettings)

	case key.Matches(msg, m.keys.ViewLogs):
		return m.switchView(ViewLogs)
	}

	switch m.currentView {
	case ViewDashboard:
		return m.handleDashboardKey(msg)
	case ViewEntities:
		return m.handleEntitiesKey(msg)
	case ViewSettings:
		return m.handleSettingsKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	}
	return m, nil
}

func (m Model) offsetView(delta int) View {
	for i, v := range viewOrder {
		if v == m.currentView {
			return viewOrder[(i+delta+len(viewOrder))%len(viewOrder)]
		}
	}
	return ViewDashboard
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.currentView = v
	m.flash = ""
	if v == ViewLogs {
		return m, m.refreshLogs()
	}
	return m, nil
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.currentView == ViewLogs && m.logs.follow {
		if cmd := m.refreshLogs(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if m.banner != nil && m.now().After(m.bannerUntil) {
		m.banner = nil
	}

	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

func (m *Model) refresh() tea.Cmd {
	if m.engine == nil || m.refreshing {
		return nil
	}
	m.refreshing = true
	return refreshCmd(m.ctx, m.engine)
}

// renderMain renders header, command bar, banner and the active view.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	if banner := m.renderBanner(); banner != "" {
		b.WriteString(banner)
		b.WriteString("\n")
	}
	b.WriteString(m.renderContent())
	if m.flash != "" {
		b.WriteString("\n")
		style := m.theme.Styles().SuccessText
		if m.flashErr {
			style = m.theme.Styles().DangerText
		}
		b.WriteString(style.Render(truncate(m.flash, max(m.width-1, 1))))
	}
	return b.String()
}

// contentHeight is the number of rows left for the active view.
func (m Model) contentHeight() int {
	h := m.height - 3 // header, command bar, flash
	if m.banner != nil {
		h--
	}
	return max(h, 1)
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewEntities:
		return m.renderEntities()
	case ViewSettings:
		return m.renderSettings()
	case ViewLogs:
		return m.renderLogs()
	default:
		return m.renderDashboard()
	}
}

func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	h := m.help
	h.ShowAll = true
	title := styles.Text.Bold(true).Render("Keyboard Shortcuts")
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		styles.FaintText.Render(strings.Repeat("─", 30)),
		"",
		h.View(m.keys),
		"",
		styles.MutedText.Render("Press any key to close"),
	)
}

// Messages

type tickMsg time.Time

type snapshotMsg viewData

type refreshedMsg struct{ data viewData }

type toggledMsg struct {
	entityID string
	data     viewData
}

type connResultMsg struct {
	summary string
	err     error
	data    viewData
}

type notificationMsg notify.Notification

type storeChangedMsg struct{}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(e *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(collect(e))
	}
}

func refreshCmd(ctx context.Context, e *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		e.Refresh(ctx)
		return refreshedMsg{data: collect(e)}
	}
}

func toggleCmd(ctx context.Context, e *engine.Engine, entityID string) tea.Cmd {
	return func() tea.Msg {
		e.ToggleEntity(ctx, entityID)
		return toggledMsg{entityID: entityID, data: collect(e)}
	}
}

func testConnectionCmd(ctx context.Context, e *engine.Engine, url, token string) tea.Cmd {
	return func() tea.Msg {
		summary, err := e.TestConnection(ctx, url, token)
		return connResultMsg{summary: summary, err: err, data: collect(e)}
	}
}

func waitForNotification(ch <-chan notify.Notification) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return notificationMsg(n)
	}
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

// Run starts the Bubble Tea program and blocks until it exits or ctx is
// cancelled.
func Run(opts Options) error {
	m := New(opts)
	if m.unsubscribe != nil {
		defer m.unsubscribe()
	}
	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		progOpts = append(progOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, progOpts...)
	_, err := p.Run()
	return err
}

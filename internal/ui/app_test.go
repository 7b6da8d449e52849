package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/otter/internal/engine"
	"github.com/five82/otter/internal/entity"
	"github.com/five82/otter/internal/health"
	"github.com/five82/otter/internal/homeassistant"
	"github.com/five82/otter/internal/notify"
	"github.com/five82/otter/internal/prefs"
	"github.com/five82/otter/internal/settings"
)

type fakeAPI struct {
	mu     sync.Mutex
	states []entity.State
	fail   error
}

func (f *fakeAPI) FetchConfig(context.Context) (*entity.ServerConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	return &entity.ServerConfig{LocationName: "Home", Version: "2025.2.1"}, nil
}

func (f *fakeAPI) FetchStates(context.Context) ([]entity.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	return append([]entity.State(nil), f.states...), nil
}

func (f *fakeAPI) Toggle(context.Context, string) error { return nil }

func pct(id, value string) entity.State {
	return entity.State{EntityID: id, State: value, Attributes: entity.Attributes{UnitOfMeasurement: "%"}}
}

func newTestModel(t *testing.T) (Model, *engine.Engine, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{states: []entity.State{
		pct("sensor.processor_use", "96"),
		pct("sensor.memory_use_percent", "40"),
		{EntityID: "light.kitchen", State: "on", Attributes: entity.Attributes{FriendlyName: "Kitchen Light"}},
		{EntityID: "switch.fan", State: "off"},
	}}
	set := settings.New(prefs.NewMemory())
	if err := set.SetBaseURL("http://ha.local:8123"); err != nil {
		t.Fatalf("SetBaseURL: %v", err)
	}
	if err := set.SetToken("token"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	e := engine.New(engine.Options{
		Settings: set,
		Log:      zap.NewNop(),
		NewClient: func(string, string) (homeassistant.API, error) {
			return api, nil
		},
	})

	m := New(Options{Engine: e, DarkTerminal: func() bool { return true }})
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, e, api
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press sends a key and runs the resulting command, feeding its message
// back into the model.
func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	next, cmd := m.Update(keyMsg(k))
	m = next.(Model)
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case snapshotMsg, refreshedMsg, toggledMsg, connResultMsg, logsMsg:
		return update(t, m, msg)
	}
	return m
}

func TestRefreshKeyUpdatesDashboard(t *testing.T) {
	m, _, _ := newTestModel(t)

	m = press(t, m, "r")
	if m.refreshing {
		t.Fatalf("refreshing still set after refresh completed")
	}
	if m.data.health != health.Critical {
		t.Fatalf("health = %v, want critical", m.data.health)
	}
	view := m.View()
	for _, want := range []string{"CRITICAL", "Home", "CPU: 96%"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestRefreshFailureShowsRetry(t *testing.T) {
	m, _, api := newTestModel(t)
	api.fail = errors.New("HTTP error 401")

	m = press(t, m, "r")
	if !m.data.snap.Connection.IsError() {
		t.Fatalf("connection = %v, want error", m.data.snap.Connection)
	}
	view := m.View()
	if !strings.Contains(view, "HTTP error 401") || !strings.Contains(view, "Press r to retry.") {
		t.Fatalf("view does not show the error and retry hint:\n%s", view)
	}
}

func TestNotConfiguredPointsToSettings(t *testing.T) {
	e := engine.New(engine.Options{Settings: settings.New(prefs.NewMemory()), Log: zap.NewNop()})
	m := New(Options{Engine: e, DarkTerminal: func() bool { return true }})
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	if view := m.View(); !strings.Contains(view, "Press s to enter the server URL") {
		t.Fatalf("view = %q, want setup hint", view)
	}
}

func TestViewSwitching(t *testing.T) {
	m, _, _ := newTestModel(t)

	steps := []struct {
		key  string
		want View
	}{
		{"b", ViewEntities},
		{"s", ViewSettings},
		{"tab", ViewLogs},
		{"tab", ViewDashboard},
		{"2", ViewEntities},
		{"esc", ViewDashboard},
	}
	for _, step := range steps {
		m = press(t, m, step.key)
		if m.currentView != step.want {
			t.Fatalf("after %q view = %v, want %v", step.key, m.currentView, step.want)
		}
	}
}

func TestEntityBrowserSearchAndPin(t *testing.T) {
	m, e, _ := newTestModel(t)
	m = press(t, m, "r")
	m = press(t, m, "b")

	m = press(t, m, "/")
	if !m.browser.searching {
		t.Fatalf("search not focused")
	}
	// Keys typed into the search box must not switch views.
	m = press(t, m, "kit")
	m = press(t, m, "enter")
	if m.currentView != ViewEntities {
		t.Fatalf("view = %v, want entities", m.currentView)
	}

	states := m.filteredEntities()
	if len(states) != 1 || states[0].EntityID != "light.kitchen" {
		t.Fatalf("filtered = %v, want light.kitchen", states)
	}

	m = press(t, m, "p")
	if !e.IsInDashboard("light.kitchen") {
		t.Fatalf("light.kitchen not pinned")
	}
	if !m.isPinned("light.kitchen") {
		t.Fatalf("model did not reload settings after pin")
	}

	m = press(t, m, "p")
	if e.IsInDashboard("light.kitchen") {
		t.Fatalf("second p did not unpin")
	}
}

func TestEntityBrowserDomainCycle(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(t, m, "r")
	m = press(t, m, "b")

	var seen []string
	for i := 0; i < 4; i++ {
		m = press(t, m, "f")
		seen = append(seen, m.browser.domain)
	}
	want := []string{"light", "sensor", "switch", ""}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("domains = %q, want %q", seen, want)
		}
	}
}

func TestMenuBarSensorFromBrowser(t *testing.T) {
	m, e, _ := newTestModel(t)
	m = press(t, m, "r")
	m = press(t, m, "b")
	m = press(t, m, "/")
	m = press(t, m, "processor")
	m = press(t, m, "enter")

	m = press(t, m, "m")
	if got := e.Settings().MenuBarSensors; len(got) != 1 || got[0] != "sensor.processor_use" {
		t.Fatalf("menu bar sensors = %v", got)
	}
	if m.data.menuBar.Text != "96 %" {
		t.Fatalf("menu bar text = %q, want %q", m.data.menuBar.Text, "96 %")
	}
}

func TestSettingsEditThreshold(t *testing.T) {
	m, e, _ := newTestModel(t)
	m = press(t, m, "s")

	for m.formRows()[m.form.cursor].kind != rowWarning {
		m = press(t, m, "j")
	}
	m = press(t, m, "enter")
	if !m.form.editing {
		t.Fatalf("enter did not open the input")
	}
	if got := m.form.input.Value(); got != "75" {
		t.Fatalf("input prefilled with %q, want 75", got)
	}

	m.form.input.SetValue("90")
	m = press(t, m, "enter")
	got := e.Settings().Thresholds
	if got.Warning != 90 || got.Critical != 95 {
		t.Fatalf("thresholds = %+v, want 90/95", got)
	}
	if m.flashErr || !strings.Contains(m.flash, "critical 95%") {
		t.Fatalf("flash = %q", m.flash)
	}
}

func TestSettingsRejectsNonNumber(t *testing.T) {
	m, e, _ := newTestModel(t)
	m = press(t, m, "s")
	for m.formRows()[m.form.cursor].kind != rowInterval {
		m = press(t, m, "j")
	}
	m = press(t, m, "enter")
	m.form.input.SetValue("soon")
	m = press(t, m, "enter")

	if !m.flashErr {
		t.Fatalf("flash = %q, want error", m.flash)
	}
	if got := e.Settings().RefreshInterval; got != settings.DefaultRefreshInterval {
		t.Fatalf("interval = %d, want default", got)
	}
}

func TestSettingsAppearanceSwitchesTheme(t *testing.T) {
	m, _, _ := newTestModel(t)
	if !m.theme.Dark {
		t.Fatalf("auto on a dark terminal picked %s", m.theme.Name)
	}

	m = press(t, m, "s")
	for m.formRows()[m.form.cursor].kind != rowAppearance {
		m = press(t, m, "j")
	}
	m = press(t, m, "enter")

	if m.data.values.Appearance != settings.AppearanceLight {
		t.Fatalf("appearance = %q, want light", m.data.values.Appearance)
	}
	if m.theme.Name != DefaultLightTheme {
		t.Fatalf("theme = %q, want %q", m.theme.Name, DefaultLightTheme)
	}
}

func TestSettingsTestConnectionFailureRestores(t *testing.T) {
	m, e, api := newTestModel(t)
	api.fail = errors.New("HTTP error 401")

	m = press(t, m, "s")
	m = press(t, m, "enter") // URL row
	m.form.input.SetValue("http://other.local:8123")
	m = press(t, m, "enter")

	if !m.flashErr || !strings.Contains(m.flash, "HTTP error 401") {
		t.Fatalf("flash = %q, want failure", m.flash)
	}
	if got := e.Settings().BaseURL; got != "http://ha.local:8123" {
		t.Fatalf("url = %q, want previous value restored", got)
	}
}

func TestNotificationBanner(t *testing.T) {
	m, _, _ := newTestModel(t)
	ch := make(chan notify.Notification, 1)
	m.notes = ch

	next, cmd := m.Update(notificationMsg(notify.Notification{
		Kind:     notify.KindHealthAlert,
		Severity: "critical",
		Title:    "Otter Health Alert",
		Body:     "Critical: CPU: 96%",
	}))
	m = next.(Model)
	if cmd == nil {
		t.Fatalf("banner did not re-arm the notification listener")
	}
	if view := m.View(); !strings.Contains(view, "Critical: CPU: 96%") {
		t.Fatalf("banner missing from view")
	}

	m.now = func() time.Time { return m.bannerUntil.Add(time.Second) }
	m = update(t, m, tickMsg(m.now()))
	if m.banner != nil {
		t.Fatalf("banner still shown after expiry")
	}
}

func TestHelpOverlay(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = press(t, m, "?")
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help not shown")
	}
	m = press(t, m, "x")
	if m.showHelp {
		t.Fatalf("any key should close help")
	}
}

func TestStoreChangesReachModel(t *testing.T) {
	m, e, _ := newTestModel(t)

	// A refresh outside the UI, as the auto refresh task does.
	e.Refresh(context.Background())

	msg := waitForChange(m.changes)()
	if _, ok := msg.(storeChangedMsg); !ok {
		t.Fatalf("msg = %T, want storeChangedMsg", msg)
	}
	_, cmd := m.Update(msg)
	if cmd == nil {
		t.Fatalf("store change did not schedule a snapshot fetch")
	}

	m = update(t, m, fetchSnapshotCmd(e)())
	if m.data.health != health.Critical {
		t.Fatalf("health = %v, want critical", m.data.health)
	}
}

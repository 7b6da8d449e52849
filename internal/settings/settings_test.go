package settings

import (
	"path/filepath"
	"testing"

	"github.com/five82/otter/internal/entity"
	"github.com/five82/otter/internal/prefs"
)

func newTestSettings(t *testing.T) *Settings {
	t.Helper()
	return New(prefs.NewMemory())
}

func TestDefaults(t *testing.T) {
	s := newTestSettings(t)

	if s.IsConfigured() {
		t.Fatalf("IsConfigured = true on empty store")
	}
	if got := s.Thresholds(); got != (Thresholds{Warning: 75, Critical: 90}) {
		t.Fatalf("Thresholds = %+v, want 75/90", got)
	}
	if got := s.RefreshInterval(); got != 30 {
		t.Fatalf("RefreshInterval = %d, want 30", got)
	}
	if got := s.Appearance(); got != AppearanceAuto {
		t.Fatalf("Appearance = %q, want auto", got)
	}
	if s.LaunchAtLogin() || s.NotificationsEnabled() {
		t.Fatalf("flags should default to false")
	}
	if got := s.DashboardEntities(); len(got) != 0 {
		t.Fatalf("DashboardEntities = %v, want empty", got)
	}
	if got := s.MenuBarSensors(); len(got) != 0 {
		t.Fatalf("MenuBarSensors = %v, want empty", got)
	}
}

func TestGarbageValuesFallBackToDefaults(t *testing.T) {
	store := prefs.NewMemory()
	_ = store.Set(KeyRefreshInterval, "soon")
	_ = store.Set(KeyWarningThreshold, "high")
	_ = store.Set(KeyDashboard, "{not-json")
	_ = store.Set(KeyNotifications, "maybe")
	s := New(store)

	if got := s.RefreshInterval(); got != DefaultRefreshInterval {
		t.Fatalf("RefreshInterval = %d, want default", got)
	}
	if got := s.Thresholds().Warning; got != DefaultWarning {
		t.Fatalf("Warning = %d, want default", got)
	}
	if got := s.DashboardEntities(); got != nil {
		t.Fatalf("DashboardEntities = %v, want nil", got)
	}
	if s.NotificationsEnabled() {
		t.Fatalf("NotificationsEnabled = true, want default false")
	}
}

func TestConnectionTrimming(t *testing.T) {
	s := newTestSettings(t)
	if err := s.SetBaseURL("  http://ha.local:8123/  "); err != nil {
		t.Fatalf("SetBaseURL: %v", err)
	}
	if err := s.SetToken(" secret \n"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if got := s.BaseURL(); got != "http://ha.local:8123" {
		t.Fatalf("BaseURL = %q", got)
	}
	if got := s.Token(); got != "secret" {
		t.Fatalf("Token = %q", got)
	}
	if !s.IsConfigured() {
		t.Fatalf("IsConfigured = false with url and token")
	}
	if v := s.Values(); !v.HasToken || v.BaseURL != "http://ha.local:8123" {
		t.Fatalf("Values = %+v", v)
	}
}

func TestThresholdEdits(t *testing.T) {
	cases := []struct {
		name     string
		start    Thresholds
		warning  *int
		critical *int
		want     Thresholds
	}{
		{"warning below critical", Thresholds{75, 90}, intp(60), nil, Thresholds{60, 90}},
		{"warning reaches critical", Thresholds{75, 90}, intp(90), nil, Thresholds{90, 95}},
		{"warning above critical", Thresholds{75, 90}, intp(96), nil, Thresholds{96, 99}},
		{"warning at ceiling", Thresholds{75, 90}, intp(99), nil, Thresholds{94, 99}},
		{"critical above warning", Thresholds{75, 90}, nil, intp(80), Thresholds{75, 80}},
		{"critical reaches warning", Thresholds{75, 90}, nil, intp(75), Thresholds{70, 75}},
		{"critical below warning", Thresholds{75, 90}, nil, intp(3), Thresholds{0, 3}},
		{"critical at floor", Thresholds{75, 90}, nil, intp(0), Thresholds{0, 5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestSettings(t)
			if err := s.storeThresholds(tc.start); err != nil {
				t.Fatalf("storeThresholds: %v", err)
			}
			var got Thresholds
			var err error
			if tc.warning != nil {
				got, err = s.SetWarningThreshold(*tc.warning)
			} else {
				got, err = s.SetCriticalThreshold(*tc.critical)
			}
			if err != nil {
				t.Fatalf("set threshold: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
			if stored := s.Thresholds(); stored != tc.want {
				t.Fatalf("stored %+v, want %+v", stored, tc.want)
			}
			if got.Warning >= got.Critical {
				t.Fatalf("warning %d not below critical %d", got.Warning, got.Critical)
			}
		})
	}
}

func TestThresholdEdits_AlwaysOrdered(t *testing.T) {
	s := newTestSettings(t)
	for v := -5; v <= 105; v++ {
		if tt, _ := s.SetWarningThreshold(v); tt.Warning >= tt.Critical {
			t.Fatalf("SetWarningThreshold(%d) = %+v", v, tt)
		}
		if tt, _ := s.SetCriticalThreshold(100 - v); tt.Warning >= tt.Critical {
			t.Fatalf("SetCriticalThreshold(%d) = %+v", 100-v, tt)
		}
	}
}

func TestRefreshIntervalFloor(t *testing.T) {
	s := newTestSettings(t)
	got, err := s.SetRefreshInterval(3)
	if err != nil {
		t.Fatalf("SetRefreshInterval: %v", err)
	}
	if got != MinRefreshInterval || s.RefreshInterval() != MinRefreshInterval {
		t.Fatalf("interval = %d/%d, want floor %d", got, s.RefreshInterval(), MinRefreshInterval)
	}
	if got, _ := s.SetRefreshInterval(120); got != 120 {
		t.Fatalf("SetRefreshInterval(120) = %d", got)
	}
}

func TestMetricMapping(t *testing.T) {
	s := newTestSettings(t)
	if err := s.SetMetricEntity(entity.MetricDisk, " sensor.disk_use_percent "); err != nil {
		t.Fatalf("SetMetricEntity: %v", err)
	}
	m := s.Mapping()
	if m.For(entity.MetricDisk) != "sensor.disk_use_percent" || m.For(entity.MetricCPU) != "" {
		t.Fatalf("Mapping = %+v", m)
	}
	if err := s.SetMetricEntity(entity.Metric(42), "x"); err == nil {
		t.Fatalf("SetMetricEntity accepted unknown metric")
	}
}

func TestDashboardIdempotent(t *testing.T) {
	s := newTestSettings(t)

	if err := s.AddToDashboard("light.kitchen"); err != nil {
		t.Fatalf("AddToDashboard: %v", err)
	}
	if !s.IsInDashboard("light.kitchen") {
		t.Fatalf("IsInDashboard = false after add")
	}
	_ = s.AddToDashboard("light.kitchen")
	if got := len(s.DashboardEntities()); got != 1 {
		t.Fatalf("len after second add = %d, want 1", got)
	}
	_ = s.AddToDashboard("switch.fan")

	if err := s.RemoveFromDashboard("light.kitchen"); err != nil {
		t.Fatalf("RemoveFromDashboard: %v", err)
	}
	if s.IsInDashboard("light.kitchen") {
		t.Fatalf("IsInDashboard = true after remove")
	}
	_ = s.RemoveFromDashboard("light.kitchen")
	got := s.DashboardEntities()
	if len(got) != 1 || got[0].EntityID != "switch.fan" {
		t.Fatalf("DashboardEntities = %v, want [switch.fan]", got)
	}
}

func TestDashboardJSONLayout(t *testing.T) {
	store := prefs.NewMemory()
	s := New(store)
	_ = s.AddToDashboard("light.kitchen")
	raw, _ := store.Get(KeyDashboard)
	if raw != `[{"entityId":"light.kitchen"}]` {
		t.Fatalf("stored layout = %s", raw)
	}
}

func TestMenuBarSensors(t *testing.T) {
	s := newTestSettings(t)

	for _, id := range []string{"sensor.a", "sensor.b", "sensor.c"} {
		if changed, err := s.AddMenuBarSensor(id); err != nil || !changed {
			t.Fatalf("AddMenuBarSensor(%s) = %v, %v", id, changed, err)
		}
	}
	if changed, _ := s.AddMenuBarSensor("sensor.d"); changed {
		t.Fatalf("add past maximum changed list")
	}
	if changed, _ := s.AddMenuBarSensor("sensor.a"); changed {
		t.Fatalf("duplicate add changed list")
	}
	if got := s.MenuBarSensors(); len(got) != MaxMenuBarSensors {
		t.Fatalf("len = %d, want %d", len(got), MaxMenuBarSensors)
	}

	if changed, _ := s.MoveMenuBarSensorUp(0); changed {
		t.Fatalf("moving first element up changed list")
	}
	if changed, _ := s.MoveMenuBarSensorDown(2); changed {
		t.Fatalf("moving last element down changed list")
	}
	if changed, _ := s.MoveMenuBarSensorDown(7); changed {
		t.Fatalf("out-of-range move changed list")
	}
	if changed, _ := s.MoveMenuBarSensorDown(0); !changed {
		t.Fatalf("MoveMenuBarSensorDown(0) did not change list")
	}
	assertIDs(t, s.MenuBarSensors(), "sensor.b", "sensor.a", "sensor.c")

	if changed, _ := s.MoveMenuBarSensorUp(2); !changed {
		t.Fatalf("MoveMenuBarSensorUp(2) did not change list")
	}
	assertIDs(t, s.MenuBarSensors(), "sensor.b", "sensor.c", "sensor.a")

	if changed, _ := s.RemoveMenuBarSensor("sensor.c"); !changed {
		t.Fatalf("RemoveMenuBarSensor did not change list")
	}
	if changed, _ := s.RemoveMenuBarSensor("sensor.c"); changed {
		t.Fatalf("second remove changed list")
	}
	assertIDs(t, s.MenuBarSensors(), "sensor.b", "sensor.a")
}

func TestMenuBarSensors_LegacySeed(t *testing.T) {
	store := prefs.NewMemory()
	_ = store.Set(KeyMenuBarEntity, "sensor.outdoor_temp")
	s := New(store)

	assertIDs(t, s.MenuBarSensors(), "sensor.outdoor_temp")
	if _, err := s.AddMenuBarSensor("sensor.cpu"); err != nil {
		t.Fatalf("AddMenuBarSensor: %v", err)
	}
	assertIDs(t, s.MenuBarSensors(), "sensor.outdoor_temp", "sensor.cpu")
}

func TestSettingsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	store, err := prefs.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	s := New(store)
	_, _ = s.SetWarningThreshold(60)
	_ = s.SetAppearance(AppearanceDark)
	_ = s.SetNotificationsEnabled(true)

	reopened, err := prefs.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	s2 := New(reopened)
	if s2.Thresholds().Warning != 60 || s2.Appearance() != AppearanceDark || !s2.NotificationsEnabled() {
		t.Fatalf("reopened values = %+v", s2.Values())
	}
}

func assertIDs(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ids = %v, want %v", got, want)
		}
	}
}

func intp(v int) *int { return &v }

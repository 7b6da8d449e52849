// Package settings provides typed accessors over the prefs key-value store.
//
// Every getter returns a documented default when its key is unset or holds a
// value that does not parse. Setters persist immediately.
package settings

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/five82/otter/internal/entity"
	"github.com/five82/otter/internal/prefs"
)

// Keys used in the store. They match the layout older Otter builds wrote.
const (
	KeyBaseURL           = "homeAssistantURL"
	KeyToken             = "homeAssistantToken"
	KeyCPUEntity         = "cpuEntityId"
	KeyMemoryEntity      = "memoryEntityId"
	KeyDiskEntity        = "diskEntityId"
	KeyMenuBarSensors    = "menuBarSensorIds"
	KeyMenuBarEntity     = "menuBarEntityId" // legacy single sensor
	KeyDashboard         = "dashboardEntities"
	KeyWarningThreshold  = "healthWarningThreshold"
	KeyCriticalThreshold = "healthCriticalThreshold"
	KeyRefreshInterval   = "refreshInterval"
	KeyAppearance        = "appearanceMode"
	KeyLaunchAtLogin     = "launchAtLogin"
	KeyNotifications     = "notificationsEnabled"
)

// Defaults and limits.
const (
	DefaultWarning         = 75
	DefaultCritical        = 90
	MaxThreshold           = 99
	ThresholdGap           = 5
	DefaultRefreshInterval = 30
	MinRefreshInterval     = 10
	MaxMenuBarSensors      = 3
)

// Appearance selects the colour scheme.
type Appearance string

const (
	AppearanceAuto  Appearance = "auto"
	AppearanceLight Appearance = "light"
	AppearanceDark  Appearance = "dark"
)

// ParseAppearance maps a stored value to an Appearance, defaulting to auto.
func ParseAppearance(value string) Appearance {
	switch Appearance(strings.ToLower(strings.TrimSpace(value))) {
	case AppearanceLight:
		return AppearanceLight
	case AppearanceDark:
		return AppearanceDark
	default:
		return AppearanceAuto
	}
}

// DashboardEntity is a pinned entity reference.
type DashboardEntity struct {
	EntityID string `json:"entityId"`
}

// Thresholds holds the health bucket boundaries in percent.
type Thresholds struct {
	Warning  int `json:"warning"`
	Critical int `json:"critical"`
}

// Mapping holds explicitly configured metric entity ids. Empty means
// auto-detect.
type Mapping struct {
	CPU    string `json:"cpu,omitempty"`
	Memory string `json:"memory,omitempty"`
	Disk   string `json:"disk,omitempty"`
}

// For returns the configured id for a metric.
func (m Mapping) For(metric entity.Metric) string {
	switch metric {
	case entity.MetricCPU:
		return m.CPU
	case entity.MetricMemory:
		return m.Memory
	case entity.MetricDisk:
		return m.Disk
	}
	return ""
}

// Settings wraps a prefs.Store with typed accessors.
type Settings struct {
	store prefs.Store
}

// New returns Settings backed by store.
func New(store prefs.Store) *Settings {
	return &Settings{store: store}
}

// BaseURL returns the server URL without a trailing slash.
func (s *Settings) BaseURL() string {
	return strings.TrimRight(s.getString(KeyBaseURL), "/")
}

// SetBaseURL stores the trimmed server URL.
func (s *Settings) SetBaseURL(url string) error {
	return s.store.Set(KeyBaseURL, strings.TrimSpace(url))
}

// Token returns the long-lived access token. Never log it.
func (s *Settings) Token() string {
	return s.getString(KeyToken)
}

// SetToken stores the trimmed access token.
func (s *Settings) SetToken(token string) error {
	return s.store.Set(KeyToken, strings.TrimSpace(token))
}

// IsConfigured reports whether both URL and token are present.
func (s *Settings) IsConfigured() bool {
	return s.BaseURL() != "" && s.Token() != ""
}

// Mapping returns the explicit metric entity ids.
func (s *Settings) Mapping() Mapping {
	return Mapping{
		CPU:    s.getString(KeyCPUEntity),
		Memory: s.getString(KeyMemoryEntity),
		Disk:   s.getString(KeyDiskEntity),
	}
}

// SetMetricEntity stores the explicit entity id for a metric. An empty id
// restores auto-detection.
func (s *Settings) SetMetricEntity(metric entity.Metric, entityID string) error {
	key := metricKey(metric)
	if key == "" {
		return fmt.Errorf("unknown metric %d", metric)
	}
	return s.store.Set(key, strings.TrimSpace(entityID))
}

func metricKey(metric entity.Metric) string {
	switch metric {
	case entity.MetricCPU:
		return KeyCPUEntity
	case entity.MetricMemory:
		return KeyMemoryEntity
	case entity.MetricDisk:
		return KeyDiskEntity
	}
	return ""
}

// Thresholds returns warning/critical, defaulting to 75/90 when unset.
func (s *Settings) Thresholds() Thresholds {
	return Thresholds{
		Warning:  s.getInt(KeyWarningThreshold, DefaultWarning),
		Critical: s.getInt(KeyCriticalThreshold, DefaultCritical),
	}
}

// SetWarningThreshold stores warning, raising critical to
// min(warning+5, 99) when warning would reach it. Returns the stored pair.
func (s *Settings) SetWarningThreshold(warning int) (Thresholds, error) {
	t := s.Thresholds()
	t.Warning = clamp(warning, 0, MaxThreshold)
	if t.Warning >= t.Critical {
		t.Critical = min(t.Warning+ThresholdGap, MaxThreshold)
	}
	// At the ceiling there is no room above; make room below.
	if t.Warning >= t.Critical {
		t.Warning = t.Critical - ThresholdGap
	}
	return t, s.storeThresholds(t)
}

// SetCriticalThreshold stores critical, lowering warning to
// max(critical-5, 0) when critical would fall to it. Returns the stored pair.
func (s *Settings) SetCriticalThreshold(critical int) (Thresholds, error) {
	t := s.Thresholds()
	t.Critical = clamp(critical, 0, MaxThreshold)
	if t.Critical <= t.Warning {
		t.Warning = max(t.Critical-ThresholdGap, 0)
	}
	if t.Critical <= t.Warning {
		t.Critical = t.Warning + ThresholdGap
	}
	return t, s.storeThresholds(t)
}

func (s *Settings) storeThresholds(t Thresholds) error {
	if err := s.store.Set(KeyWarningThreshold, strconv.Itoa(t.Warning)); err != nil {
		return err
	}
	return s.store.Set(KeyCriticalThreshold, strconv.Itoa(t.Critical))
}

// RefreshInterval returns the poll interval in seconds (default 30).
func (s *Settings) RefreshInterval() int {
	n := s.getInt(KeyRefreshInterval, DefaultRefreshInterval)
	if n <= 0 {
		return DefaultRefreshInterval
	}
	return n
}

// SetRefreshInterval stores the interval, raised to the 10 second floor.
// Returns the stored value.
func (s *Settings) SetRefreshInterval(seconds int) (int, error) {
	seconds = max(seconds, MinRefreshInterval)
	return seconds, s.store.Set(KeyRefreshInterval, strconv.Itoa(seconds))
}

// Appearance returns the colour scheme (default auto).
func (s *Settings) Appearance() Appearance {
	return ParseAppearance(s.getString(KeyAppearance))
}

// SetAppearance stores the colour scheme.
func (s *Settings) SetAppearance(a Appearance) error {
	return s.store.Set(KeyAppearance, string(ParseAppearance(string(a))))
}

// LaunchAtLogin returns the stored launch-at-login flag (default false).
func (s *Settings) LaunchAtLogin() bool {
	return s.getBool(KeyLaunchAtLogin, false)
}

// SetLaunchAtLogin stores the launch-at-login flag.
func (s *Settings) SetLaunchAtLogin(enabled bool) error {
	return s.store.Set(KeyLaunchAtLogin, strconv.FormatBool(enabled))
}

// NotificationsEnabled returns the notification flag (default false).
func (s *Settings) NotificationsEnabled() bool {
	return s.getBool(KeyNotifications, false)
}

// SetNotificationsEnabled stores the notification flag.
func (s *Settings) SetNotificationsEnabled(enabled bool) error {
	return s.store.Set(KeyNotifications, strconv.FormatBool(enabled))
}

func (s *Settings) getString(key string) string {
	v, _ := s.store.Get(key)
	return strings.TrimSpace(v)
}

func (s *Settings) getInt(key string, def int) int {
	v, ok := s.store.Get(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

func (s *Settings) getBool(key string, def bool) bool {
	v, ok := s.store.Get(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

func (s *Settings) getJSON(key string, dest any) bool {
	v, ok := s.store.Get(key)
	if !ok || strings.TrimSpace(v) == "" {
		return false
	}
	return json.Unmarshal([]byte(v), dest) == nil
}

func (s *Settings) setJSON(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.store.Set(key, string(data))
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

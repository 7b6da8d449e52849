package engine

import (
	"strings"

	"github.com/five82/otter/internal/entity"
	"github.com/five82/otter/internal/health"
	"github.com/five82/otter/internal/state"
)

// Readings resolves the CPU, memory and disk sensors in the current
// snapshot.
func (e *Engine) Readings() []health.Reading {
	return health.Resolve(e.store.Snapshot().Entities, e.settings.Mapping())
}

// Health evaluates the current snapshot. It is recomputed on every call.
func (e *Engine) Health() health.Status {
	return health.Evaluate(e.Readings(), e.settings.Thresholds())
}

// Update describes the core update entity.
type Update struct {
	Available  bool   `json:"available"`
	Installed  string `json:"installedVersion,omitempty"`
	Latest     string `json:"latestVersion,omitempty"`
	ReleaseURL string `json:"releaseUrl,omitempty"`
}

// Update reports whether a Home Assistant core update is pending.
func (e *Engine) Update() Update {
	return updateFrom(e.store.Snapshot().Entities)
}

func updateFrom(states []entity.State) Update {
	s, ok := entity.Find(states, entity.CoreUpdateID)
	if !ok {
		return Update{}
	}
	return Update{
		Available:  s.State == "on",
		Installed:  s.Attributes.InstalledVersion,
		Latest:     s.Attributes.LatestVersion,
		ReleaseURL: s.Attributes.ReleaseURL,
	}
}

// DashboardStates returns pinned entities in snapshot order.
func (e *Engine) DashboardStates() []entity.State {
	states := e.store.Snapshot().Entities
	out := make([]entity.State, 0, len(states))
	for _, s := range states {
		if e.settings.IsInDashboard(s.EntityID) {
			out = append(out, s)
		}
	}
	return out
}

// Entities filters the snapshot for the entity browser.
func (e *Engine) Entities(domain, query string) []entity.State {
	return entity.Filter(e.store.Snapshot().Entities, domain, query)
}

// Indicator is the colour of the menu bar status dot.
type Indicator int

const (
	IndicatorUnknown Indicator = iota
	IndicatorHealthy
	IndicatorWarning
	IndicatorCritical
	IndicatorError
	IndicatorUpdate
)

// String returns the colour name.
func (i Indicator) String() string {
	switch i {
	case IndicatorHealthy:
		return "green"
	case IndicatorWarning:
		return "orange"
	case IndicatorCritical, IndicatorError:
		return "red"
	case IndicatorUpdate:
		return "blue"
	default:
		return "white"
	}
}

// MarshalText renders the colour name in JSON.
func (i Indicator) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// MenuBarSeparator joins menu bar sensor values.
const MenuBarSeparator = " │ "

// MenuBarLabel is the compact status line.
type MenuBarLabel struct {
	Indicator Indicator `json:"indicator"`
	Sensors   []string  `json:"sensors"`
	Text      string    `json:"text"`
}

// MenuBarLabel builds the status line from the snapshot and the menu bar
// sensor list. Sensors absent from the snapshot are skipped.
func (e *Engine) MenuBarLabel() MenuBarLabel {
	snap := e.store.Snapshot()
	label := MenuBarLabel{Indicator: e.indicator(snap)}
	for _, id := range e.settings.MenuBarSensors() {
		if s, ok := entity.Find(snap.Entities, id); ok {
			label.Sensors = append(label.Sensors, s.DisplayState())
		}
	}
	label.Text = strings.Join(label.Sensors, MenuBarSeparator)
	return label
}

func (e *Engine) indicator(snap state.Snapshot) Indicator {
	if updateFrom(snap.Entities).Available {
		return IndicatorUpdate
	}
	if snap.Connection.IsError() {
		return IndicatorError
	}
	readings := health.Resolve(snap.Entities, e.settings.Mapping())
	switch health.Evaluate(readings, e.settings.Thresholds()) {
	case health.Healthy:
		return IndicatorHealthy
	case health.Warning:
		return IndicatorWarning
	case health.Critical:
		return IndicatorCritical
	default:
		return IndicatorUnknown
	}
}

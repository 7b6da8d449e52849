// Package health derives a severity from CPU, memory and disk sensors.
package health

import (
	"fmt"
	"strings"

	"github.com/five82/otter/internal/entity"
	"github.com/five82/otter/internal/settings"
)

// Status is the derived severity.
type Status int

const (
	Unknown Status = iota
	Healthy
	Warning
	Critical
)

// String returns the lower-case status name.
func (s Status) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// MarshalText renders the status name in JSON.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Reading is the resolved sensor for one metric.
type Reading struct {
	Metric   entity.Metric
	EntityID string
	Unit     string
	Raw      string
	Value    float64
	OK       bool // Value parsed
	Found    bool // a sensor was resolved
	Detected bool // resolved by auto-detection
}

// Resolve picks the sensor for each metric: the configured id when it exists
// in states, otherwise the auto-detected one.
func Resolve(states []entity.State, mapping settings.Mapping) []Reading {
	readings := make([]Reading, 0, len(entity.Metrics))
	for _, metric := range entity.Metrics {
		r := Reading{Metric: metric}
		s, ok := entity.Find(states, mapping.For(metric))
		if !ok {
			s, ok = entity.Detect(states, metric)
			r.Detected = ok
		}
		if ok {
			r.Found = true
			r.EntityID = s.EntityID
			r.Unit = s.Attributes.UnitOfMeasurement
			r.Raw = s.State
			r.Value, r.OK = s.Value()
		}
		readings = append(readings, r)
	}
	return readings
}

// Level buckets a single value. Values on a boundary take the higher
// severity.
func Level(value float64, t settings.Thresholds) Status {
	switch {
	case value >= float64(t.Critical):
		return Critical
	case value >= float64(t.Warning):
		return Warning
	default:
		return Healthy
	}
}

// Evaluate buckets the highest parsed reading. With nothing parsed the
// result is Unknown.
func Evaluate(readings []Reading, t settings.Thresholds) Status {
	var (
		highest float64
		any     bool
	)
	for _, r := range readings {
		if !r.OK {
			continue
		}
		if !any || r.Value > highest {
			highest = r.Value
		}
		any = true
	}
	if !any {
		return Unknown
	}
	return Level(highest, t)
}

// Details lists metrics at or above the warning threshold, e.g.
// "CPU: 96%, Disk: 91%".
func Details(readings []Reading, t settings.Thresholds) string {
	var issues []string
	for _, r := range readings {
		if r.OK && r.Value >= float64(t.Warning) {
			issues = append(issues, fmt.Sprintf("%s: %d%%", r.Metric, int(r.Value)))
		}
	}
	if len(issues) == 0 {
		return "System threshold exceeded"
	}
	return strings.Join(issues, ", ")
}

// ShouldNotify reports whether moving from prev to cur deserves an alert.
// Only worsening into warning or critical qualifies.
func ShouldNotify(prev, cur Status) bool {
	switch cur {
	case Warning:
		return prev == Healthy || prev == Unknown
	case Critical:
		return prev != Critical
	default:
		return false
	}
}

// GaugePercent clamps a reading to [0, 100] for gauges. Unparsed readings
// render as 0.
func GaugePercent(r Reading) float64 {
	if !r.OK {
		return 0
	}
	return min(max(r.Value, 0), 100)
}

package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/five82/otter/internal/engine"
	"github.com/five82/otter/internal/entity"
	"github.com/five82/otter/internal/health"
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// sparkline renders percent samples as block characters, newest last. Only
// the last width samples are drawn.
func sparkline(samples []float64, width int) string {
	if width <= 0 || len(samples) == 0 {
		return ""
	}
	if len(samples) > width {
		samples = samples[len(samples)-width:]
	}
	var b strings.Builder
	top := len(sparkRunes) - 1
	for _, v := range samples {
		v = math.Max(0, math.Min(100, v))
		b.WriteRune(sparkRunes[int(math.Round(v/100*float64(top)))])
	}
	return b.String()
}

// gaugeCells splits width into filled and empty cells for percent.
func gaugeCells(percent float64, width int) (filled, empty int) {
	if width <= 0 {
		return 0, 0
	}
	percent = math.Max(0, math.Min(100, percent))
	filled = int(math.Round(percent / 100 * float64(width)))
	return filled, width - filled
}

// readingValue formats a reading for a gauge label.
func readingValue(r health.Reading) string {
	if !r.OK {
		return "--"
	}
	unit := r.Unit
	if unit == "" {
		unit = "%"
	}
	return fmt.Sprintf("%.0f%s", r.Value, unit)
}

// readingSource describes where a reading came from.
func readingSource(r health.Reading) string {
	switch {
	case !r.Found:
		return "no sensor"
	case r.Detected:
		return r.EntityID + " (auto)"
	default:
		return r.EntityID
	}
}

// indicatorClass maps the status dot to a theme status class.
func indicatorClass(i engine.Indicator) string {
	switch i {
	case engine.IndicatorHealthy:
		return "healthy"
	case engine.IndicatorWarning:
		return "warning"
	case engine.IndicatorCritical:
		return "critical"
	case engine.IndicatorError:
		return "error"
	case engine.IndicatorUpdate:
		return "update"
	default:
		return "unknown"
	}
}

var iconGlyphs = map[entity.Icon]string{
	entity.IconLightOn:       "●",
	entity.IconLightOff:      "○",
	entity.IconSwitchOn:      "⏻",
	entity.IconSwitchOff:     "⏼",
	entity.IconBinaryOn:      "◉",
	entity.IconBinaryOff:     "◯",
	entity.IconThermometer:   "🌡",
	entity.IconLocked:        "🔒",
	entity.IconUnlocked:      "🔓",
	entity.IconCoverOpen:     "▤",
	entity.IconCoverClosed:   "▦",
	entity.IconUpdatePending: "⬆",
	entity.IconUpToDate:      "✓",
	entity.IconPerson:        "☺",
	entity.IconSunUp:         "☀",
	entity.IconSunDown:       "☾",
	entity.IconWeather:       "☁",
	entity.IconPlaying:       "▶",
	entity.IconPaused:        "⏸",
	entity.IconVacuum:        "✦",
	entity.IconFan:           "✣",
	entity.IconCamera:        "◘",
	entity.IconAlarm:         "⛨",
	entity.IconHumidity:      "≈",
	entity.IconBattery:       "▮",
	entity.IconPower:         "ϟ",
	entity.IconLightLevel:    "☼",
	entity.IconSensor:        "◈",
}

// glyph returns a one-cell symbol for an icon.
func glyph(icon entity.Icon) string {
	if g, ok := iconGlyphs[icon]; ok {
		return g
	}
	return "?"
}

// formatAge renders a timestamp with a coarse relative suffix.
func formatAge(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	since := now.Sub(t)
	out := t.Local().Format("15:04:05")
	switch {
	case since < time.Minute:
		out += " (now)"
	case since < time.Hour:
		out += fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	case since < 24*time.Hour:
		out += fmt.Sprintf(" (%dh ago)", int(since.Hours()))
	}
	return out
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// padRight pads s with spaces to width runes.
func padRight(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// window returns the [start, end) slice bounds that keep cursor visible in
// a list of n rows shown height at a time.
func window(cursor, n, height int) (int, int) {
	if height <= 0 || n <= height {
		return 0, n
	}
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	if start+height > n {
		start = n - height
	}
	return start, start + height
}

// clampCursor keeps a list cursor within [0, n).
func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

package ui

import (
	"testing"
	"time"

	"github.com/five82/otter/internal/engine"
	"github.com/five82/otter/internal/entity"
	"github.com/five82/otter/internal/health"
	"github.com/five82/otter/internal/settings"
)

func TestSparkline(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		width   int
		want    string
	}{
		{"empty", nil, 10, ""},
		{"zero width", []float64{50}, 0, ""},
		{"bounds", []float64{0, 100}, 10, "▁█"},
		{"clamped", []float64{-20, 150}, 10, "▁█"},
		{"keeps newest", []float64{0, 0, 100, 100}, 2, "██"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sparkline(tt.samples, tt.width); got != tt.want {
				t.Fatalf("sparkline() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGaugeCells(t *testing.T) {
	tests := []struct {
		percent     float64
		width       int
		filled, gap int
	}{
		{0, 20, 0, 20},
		{50, 20, 10, 10},
		{100, 20, 20, 0},
		{140, 20, 20, 0},
		{-5, 20, 0, 20},
		{50, 0, 0, 0},
	}
	for _, tt := range tests {
		filled, gap := gaugeCells(tt.percent, tt.width)
		if filled != tt.filled || gap != tt.gap {
			t.Errorf("gaugeCells(%v, %d) = %d, %d; want %d, %d", tt.percent, tt.width, filled, gap, tt.filled, tt.gap)
		}
	}
}

func TestReadingLabels(t *testing.T) {
	ok := health.Reading{Metric: entity.MetricCPU, EntityID: "sensor.cpu", Value: 42.4, OK: true, Found: true}
	if got := readingValue(ok); got != "42%" {
		t.Fatalf("readingValue = %q, want 42%%", got)
	}
	if got := readingValue(health.Reading{Found: true, Raw: "unavailable"}); got != "--" {
		t.Fatalf("readingValue(unparsed) = %q, want --", got)
	}

	if got := readingSource(ok); got != "sensor.cpu" {
		t.Fatalf("readingSource = %q", got)
	}
	ok.Detected = true
	if got := readingSource(ok); got != "sensor.cpu (auto)" {
		t.Fatalf("readingSource(detected) = %q", got)
	}
	if got := readingSource(health.Reading{}); got != "no sensor" {
		t.Fatalf("readingSource(missing) = %q", got)
	}
}

func TestIndicatorClass(t *testing.T) {
	tests := map[engine.Indicator]string{
		engine.IndicatorUnknown:  "unknown",
		engine.IndicatorHealthy:  "healthy",
		engine.IndicatorWarning:  "warning",
		engine.IndicatorCritical: "critical",
		engine.IndicatorError:    "error",
		engine.IndicatorUpdate:   "update",
	}
	for in, want := range tests {
		if got := indicatorClass(in); got != want {
			t.Errorf("indicatorClass(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.Local)
	tests := []struct {
		ago    time.Duration
		suffix string
	}{
		{10 * time.Second, " (now)"},
		{5 * time.Minute, " (5m ago)"},
		{3 * time.Hour, " (3h ago)"},
		{48 * time.Hour, ""},
	}
	for _, tt := range tests {
		ts := now.Add(-tt.ago)
		want := ts.Format("15:04:05") + tt.suffix
		if got := formatAge(ts, now); got != want {
			t.Errorf("formatAge(-%v) = %q, want %q", tt.ago, got, want)
		}
	}
	if got := formatAge(time.Time{}, now); got != "" {
		t.Errorf("formatAge(zero) = %q, want empty", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"truncated text", 8, "trunc..."},
		{"abc", 2, "ab"},
		{"héllo wörld", 6, "hél..."},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		cursor, n, height int
		start, end        int
	}{
		{0, 5, 10, 0, 5},
		{0, 50, 10, 0, 10},
		{25, 50, 10, 20, 30},
		{49, 50, 10, 40, 50},
	}
	for _, tt := range tests {
		start, end := window(tt.cursor, tt.n, tt.height)
		if start != tt.start || end != tt.end {
			t.Errorf("window(%d, %d, %d) = %d, %d; want %d, %d", tt.cursor, tt.n, tt.height, start, end, tt.start, tt.end)
		}
	}
}

func TestNextDomain(t *testing.T) {
	domains := []string{"light", "sensor"}
	if got := nextDomain(domains, ""); got != "light" {
		t.Fatalf("nextDomain(all) = %q", got)
	}
	if got := nextDomain(domains, "light"); got != "sensor" {
		t.Fatalf("nextDomain(light) = %q", got)
	}
	if got := nextDomain(domains, "sensor"); got != "" {
		t.Fatalf("nextDomain(sensor) = %q, want all", got)
	}
	if got := nextDomain(nil, ""); got != "" {
		t.Fatalf("nextDomain(none) = %q", got)
	}
}

func TestNextAppearance(t *testing.T) {
	a := settings.AppearanceAuto
	for _, want := range []settings.Appearance{settings.AppearanceLight, settings.AppearanceDark, settings.AppearanceAuto} {
		a = nextAppearance(a)
		if a != want {
			t.Fatalf("nextAppearance = %q, want %q", a, want)
		}
	}
}

func TestGlyphFallback(t *testing.T) {
	if got := glyph(entity.IconGeneric); got != "?" {
		t.Fatalf("glyph(generic) = %q", got)
	}
	if got := glyph(entity.IconLightOn); got == "?" {
		t.Fatalf("glyph(light on) has no symbol")
	}
}

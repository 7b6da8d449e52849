package health

import (
	"testing"

	"github.com/five82/otter/internal/entity"
	"github.com/five82/otter/internal/settings"
)

var defaults = settings.Thresholds{Warning: settings.DefaultWarning, Critical: settings.DefaultCritical}

func sensor(id, value, unit string) entity.State {
	return entity.State{EntityID: id, State: value, Attributes: entity.Attributes{UnitOfMeasurement: unit}}
}

func TestResolve_PrefersConfiguredThenDetects(t *testing.T) {
	states := []entity.State{
		sensor("sensor.processor_use", "12", "%"),
		sensor("sensor.my_cpu", "40", "%"),
		sensor("sensor.memory_use_percent", "55", "%"),
	}
	readings := Resolve(states, settings.Mapping{CPU: "sensor.my_cpu", Disk: "sensor.gone"})

	if len(readings) != 3 {
		t.Fatalf("len(readings) = %d, want 3", len(readings))
	}
	cpu, mem, disk := readings[0], readings[1], readings[2]
	if cpu.EntityID != "sensor.my_cpu" || cpu.Detected || cpu.Value != 40 {
		t.Fatalf("cpu reading = %#v, want configured sensor.my_cpu", cpu)
	}
	if mem.EntityID != "sensor.memory_use_percent" || !mem.Detected || !mem.OK {
		t.Fatalf("memory reading = %#v, want detected sensor", mem)
	}
	if disk.Found || disk.OK {
		t.Fatalf("disk reading = %#v, want nothing resolved", disk)
	}
}

func TestEvaluate_Buckets(t *testing.T) {
	tests := []struct {
		name     string
		readings []Reading
		want     Status
	}{
		{"none", nil, Unknown},
		{"unparsed", []Reading{{Metric: entity.MetricCPU, Raw: "unavailable"}}, Unknown},
		{"healthy", []Reading{{Value: 10, OK: true}, {Value: 74.9, OK: true}}, Healthy},
		{"warning boundary", []Reading{{Value: 75, OK: true}}, Warning},
		{"critical boundary", []Reading{{Value: 20, OK: true}, {Value: 90, OK: true}}, Critical},
		{"max wins", []Reading{{Value: 96, OK: true}, {Value: 50, OK: true}, {Value: 10, OK: true}}, Critical},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Evaluate(tc.readings, defaults); got != tc.want {
				t.Fatalf("Evaluate = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDetails_ListsOffendingMetrics(t *testing.T) {
	readings := []Reading{
		{Metric: entity.MetricCPU, Value: 96.7, OK: true},
		{Metric: entity.MetricMemory, Value: 50, OK: true},
		{Metric: entity.MetricDisk, Value: 91, OK: true},
	}
	if got := Details(readings, defaults); got != "CPU: 96%, Disk: 91%" {
		t.Fatalf("Details = %q, want %q", got, "CPU: 96%, Disk: 91%")
	}
	if got := Details(readings[1:2], defaults); got != "System threshold exceeded" {
		t.Fatalf("Details = %q, want fallback text", got)
	}
}

func TestShouldNotify_Transitions(t *testing.T) {
	tests := []struct {
		prev, cur Status
		want      bool
	}{
		{Healthy, Warning, true},
		{Unknown, Warning, true},
		{Healthy, Critical, true},
		{Warning, Critical, true},
		{Unknown, Critical, true},
		{Warning, Warning, false},
		{Critical, Critical, false},
		{Critical, Warning, false},
		{Critical, Healthy, false},
		{Warning, Healthy, false},
		{Healthy, Unknown, false},
	}
	for _, tc := range tests {
		if got := ShouldNotify(tc.prev, tc.cur); got != tc.want {
			t.Errorf("ShouldNotify(%v, %v) = %v, want %v", tc.prev, tc.cur, got, tc.want)
		}
	}
}

func TestGaugePercent_Clamps(t *testing.T) {
	if got := GaugePercent(Reading{Value: 130, OK: true}); got != 100 {
		t.Fatalf("GaugePercent(130) = %v, want 100", got)
	}
	if got := GaugePercent(Reading{Value: -4, OK: true}); got != 0 {
		t.Fatalf("GaugePercent(-4) = %v, want 0", got)
	}
	if got := GaugePercent(Reading{Value: 50}); got != 0 {
		t.Fatalf("GaugePercent(unparsed) = %v, want 0", got)
	}
}

func TestHistory_KeepsWindow(t *testing.T) {
	var h History
	for i := 0; i < HistoryCapacity+5; i++ {
		h.Record([]Reading{{Metric: entity.MetricCPU, Value: float64(i), OK: true}, {Metric: entity.MetricDisk}})
	}
	got := h.Samples(entity.MetricCPU)
	if len(got) != HistoryCapacity {
		t.Fatalf("len(samples) = %d, want %d", len(got), HistoryCapacity)
	}
	if got[0] != 5 || got[len(got)-1] != float64(HistoryCapacity+4) {
		t.Fatalf("samples = %v, want oldest 5 newest %d", got, HistoryCapacity+4)
	}
	if h.Samples(entity.MetricDisk) != nil {
		t.Fatalf("unparsed disk readings were recorded")
	}

	clone := h.Clone()
	h.Record([]Reading{{Metric: entity.MetricCPU, Value: 999, OK: true}})
	if s := clone.Samples(entity.MetricCPU); s[len(s)-1] == 999 {
		t.Fatalf("clone shares storage with original")
	}
}

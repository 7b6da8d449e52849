package entity

import (
	"math"
	"strconv"
	"strings"
)

// Metric names a system sensor slot used for health.
type Metric int

const (
	MetricCPU Metric = iota
	MetricMemory
	MetricDisk
)

// Metrics lists every slot in display order.
var Metrics = []Metric{MetricCPU, MetricMemory, MetricDisk}

// String returns the human label of the metric.
func (m Metric) String() string {
	switch m {
	case MetricCPU:
		return "CPU"
	case MetricMemory:
		return "Memory"
	case MetricDisk:
		return "Disk"
	default:
		return "Unknown"
	}
}

var (
	cpuTokens    = []string{"processor", "cpu"}
	usageIDToks  = []string{"use", "usage", "load"}
	usageNameTok = []string{"use", "load"}
	memoryTokens = []string{"memory", "ram", "geheugen"}
	diskTokens   = []string{"disk", "storage", "schijf"}
)

// Detect returns the first sensor in states that looks like the metric. The
// match is a best effort; ties resolve to the order the server sent.
func Detect(states []State, metric Metric) (State, bool) {
	for _, s := range states {
		if !strings.HasPrefix(s.EntityID, "sensor.") {
			continue
		}
		if matches(s, metric) {
			return s, true
		}
	}
	return State{}, false
}

func matches(s State, metric Metric) bool {
	id := strings.ToLower(s.EntityID)
	name := strings.ToLower(s.FriendlyName())
	percent := s.Attributes.UnitOfMeasurement == "%"

	switch metric {
	case MetricCPU:
		isCPU := containsAny(id, cpuTokens) || containsAny(name, cpuTokens)
		isUsage := containsAny(id, usageIDToks) || containsAny(name, usageNameTok)
		return isCPU && isUsage
	case MetricMemory:
		return percent && (containsAny(id, memoryTokens) || containsAny(name, memoryTokens))
	case MetricDisk:
		return percent && (containsAny(id, diskTokens) || containsAny(name, diskTokens))
	}
	return false
}

func containsAny(s string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}

// ParseNumber parses a sensor value, accepting a comma decimal separator.
// Non-numeric states such as "unavailable" report ok=false.
func ParseNumber(value string) (float64, bool) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(value, ",", "."))
	if trimmed == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

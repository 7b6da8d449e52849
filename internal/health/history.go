package health

import (
	"github.com/five82/otter/internal/entity"
)

// HistoryCapacity is the number of samples kept per metric.
const HistoryCapacity = 20

// History keeps a short rolling window of values per metric for sparklines.
// The zero value is ready to use. History is not safe for concurrent use; the
// state store guards it.
type History struct {
	samples map[entity.Metric][]float64
}

// Record appends parsed readings, evicting the oldest sample past capacity.
func (h *History) Record(readings []Reading) {
	if h.samples == nil {
		h.samples = make(map[entity.Metric][]float64, len(entity.Metrics))
	}
	for _, r := range readings {
		if !r.OK {
			continue
		}
		window := append(h.samples[r.Metric], r.Value)
		if len(window) > HistoryCapacity {
			window = window[len(window)-HistoryCapacity:]
		}
		h.samples[r.Metric] = window
	}
}

// Samples returns a copy of the window for metric, oldest first.
func (h History) Samples(metric entity.Metric) []float64 {
	src := h.samples[metric]
	if len(src) == 0 {
		return nil
	}
	dup := make([]float64, len(src))
	copy(dup, src)
	return dup
}

// Clone returns an independent copy.
func (h History) Clone() History {
	if h.samples == nil {
		return History{}
	}
	dup := History{samples: make(map[entity.Metric][]float64, len(h.samples))}
	for metric := range h.samples {
		dup.samples[metric] = h.Samples(metric)
	}
	return dup
}

// Package metrics provides metrics implementations for the chunking engine
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/joaoccaldas/rag-sub006/pkg/interfaces"
)

// NoOpMetrics is a no-operation metrics implementation
type NoOpMetrics struct{}

// Counter increments a counter metric
func (m *NoOpMetrics) Counter(name string, value float64, labels map[string]string) {
	// No-op
}

// Gauge sets a gauge metric
func (m *NoOpMetrics) Gauge(name string, value float64, labels map[string]string) {
	// No-op
}

// Histogram records a histogram metric
func (m *NoOpMetrics) Histogram(name string, value float64, labels map[string]string) {
	// No-op
}

// Timer records timing metrics
func (m *NoOpMetrics) Timer(name string, duration float64, labels map[string]string) {
	// No-op
}

// MemoryMetrics is an in-memory metrics implementation for development and tests.
// Values are readable back through the *Value accessors.
type MemoryMetrics struct {
	mu         sync.Mutex
	counters   map[string]float64
	gauges     map[string]float64
	histograms map[string][]float64
	timers     map[string][]float64
}

// Counter increments a counter metric
func (m *MemoryMetrics) Counter(name string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[seriesKey(name, labels)] += value
}

// Gauge sets a gauge metric
func (m *MemoryMetrics) Gauge(name string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[seriesKey(name, labels)] = value
}

// Histogram records a histogram metric
func (m *MemoryMetrics) Histogram(name string, value float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := seriesKey(name, labels)
	m.histograms[key] = append(m.histograms[key], value)
}

// Timer records timing metrics
func (m *MemoryMetrics) Timer(name string, duration float64, labels map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := seriesKey(name, labels)
	m.timers[key] = append(m.timers[key], duration)
}

// CounterValue returns the accumulated value of a counter series
func (m *MemoryMetrics) CounterValue(name string, labels map[string]string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[seriesKey(name, labels)]
}

// GaugeValue returns the last value of a gauge series
func (m *MemoryMetrics) GaugeValue(name string, labels map[string]string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gauges[seriesKey(name, labels)]
}

// HistogramValues returns all recorded values of a histogram series
func (m *MemoryMetrics) HistogramValues(name string, labels map[string]string) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	values := m.histograms[seriesKey(name, labels)]
	out := make([]float64, len(values))
	copy(out, values)
	return out
}

// TimerValues returns all recorded durations of a timer series
func (m *MemoryMetrics) TimerValues(name string, labels map[string]string) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	values := m.timers[seriesKey(name, labels)]
	out := make([]float64, len(values))
	copy(out, values)
	return out
}

// seriesKey builds a stable series identifier from name and sorted labels
func seriesKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(fmt.Sprintf("%s=%s", k, labels[k]))
	}
	sb.WriteString("}")
	return sb.String()
}

var _ interfaces.Metrics = (*NoOpMetrics)(nil)
var _ interfaces.Metrics = (*MemoryMetrics)(nil)

// NewNoOpMetrics creates a new no-op metrics implementation
func NewNoOpMetrics() interfaces.Metrics {
	return &NoOpMetrics{}
}

// NewMemoryMetrics creates a new in-memory metrics implementation
func NewMemoryMetrics() *MemoryMetrics {
	return &MemoryMetrics{
		counters:   make(map[string]float64),
		gauges:     make(map[string]float64),
		histograms: make(map[string][]float64),
		timers:     make(map[string][]float64),
	}
}

// NewTestMetrics creates a metrics implementation for testing
func NewTestMetrics() *MemoryMetrics {
	return NewMemoryMetrics()
}

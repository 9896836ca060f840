package pipeline

import (
	"sort"
	"sync"
	"time"
)

type sample struct {
	timestamp  time.Time
	durationMs int64
}

// LatencySnapshot aggregates processing durations still inside the window.
type LatencySnapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// MetricsSnapshot is a point-in-time view of Metrics.
type MetricsSnapshot struct {
	Processed       int             `json:"processed"`
	Failed          int             `json:"failed"`
	TotalPages      int             `json:"total_pages"`
	TotalSources    int             `json:"total_sources"`
	TotalTextLength int             `json:"total_text_length"`
	Latency         LatencySnapshot `json:"latency"`
}

// Metrics counts processed documents since startup and keeps document
// processing latencies within a rolling window.
type Metrics struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration

	processed  int
	failed     int
	pages      int
	sources    int
	textLength int
}

func NewMetrics(maxAge time.Duration) *Metrics {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Metrics{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
	}
}

// RecordSuccess counts a processed document and its duration.
func (m *Metrics) RecordSuccess(d time.Duration, pages, sources, textLength int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processed++
	m.pages += pages
	m.sources += sources
	m.textLength += textLength
	m.recordLocked(d)
}

// RecordFailure counts a document that could not be processed.
func (m *Metrics) RecordFailure(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed++
	m.recordLocked(d)
}

func (m *Metrics) recordLocked(d time.Duration) {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	now := time.Now()
	m.pruneLocked(now)
	m.samples = append(m.samples, sample{timestamp: now, durationMs: ms})
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.pruneLocked(now)
	snap := MetricsSnapshot{
		Processed:       m.processed,
		Failed:          m.failed,
		TotalPages:      m.pages,
		TotalSources:    m.sources,
		TotalTextLength: m.textLength,
	}
	if len(m.samples) == 0 {
		return snap
	}

	values := make([]int64, 0, len(m.samples))
	var sum int64
	for _, sm := range m.samples {
		values = append(values, sm.durationMs)
		sum += sm.durationMs
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	snap.Latency = LatencySnapshot{
		Count: len(values),
		MinMs: values[0],
		MaxMs: values[len(values)-1],
		AvgMs: float64(sum) / float64(len(values)),
		P50Ms: percentile(values, 50),
		P95Ms: percentile(values, 95),
		P99Ms: percentile(values, 99),
	}
	return snap
}

func (m *Metrics) pruneLocked(now time.Time) {
	cutoff := now.Add(-m.maxAge)
	writeIdx := 0
	for _, sm := range m.samples {
		if !sm.timestamp.Before(cutoff) {
			m.samples[writeIdx] = sm
			writeIdx++
		}
	}
	m.samples = m.samples[:writeIdx]
}

func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}

package pipeline

import (
	"testing"
	"time"
)

func TestMetricsSnapshotPercentiles(t *testing.T) {
	m := NewMetrics(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400, 500} {
		m.RecordSuccess(time.Duration(ms)*time.Millisecond, 2, 1, 10)
	}

	snap := m.Snapshot()
	if snap.Processed != 5 || snap.Failed != 0 {
		t.Fatalf("expected 5 processed, 0 failed, got %d/%d", snap.Processed, snap.Failed)
	}
	if snap.TotalPages != 10 || snap.TotalSources != 5 || snap.TotalTextLength != 50 {
		t.Fatalf("unexpected totals: %+v", snap)
	}
	lat := snap.Latency
	if lat.Count != 5 {
		t.Fatalf("expected count=5, got %d", lat.Count)
	}
	if lat.MinMs != 100 || lat.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got min=%d max=%d", lat.MinMs, lat.MaxMs)
	}
	if lat.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", lat.AvgMs)
	}
	if lat.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", lat.P50Ms)
	}
	if lat.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", lat.P95Ms)
	}
	if lat.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", lat.P99Ms)
	}
}

func TestMetricsPrunesExpiredSamples(t *testing.T) {
	m := NewMetrics(10 * time.Millisecond)
	m.RecordSuccess(100*time.Millisecond, 1, 0, 0)
	time.Sleep(25 * time.Millisecond)

	snap := m.Snapshot()
	if snap.Latency.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Latency.Count)
	}
	if snap.Processed != 1 {
		t.Fatalf("counters must survive pruning, got processed=%d", snap.Processed)
	}

	m.RecordFailure(200 * time.Millisecond)
	snap = m.Snapshot()
	if snap.Latency.Count != 1 || snap.Failed != 1 {
		t.Fatalf("expected one fresh failed sample, got %+v", snap)
	}
	if snap.Latency.MinMs != 200 || snap.Latency.MaxMs != 200 {
		t.Fatalf("expected min=max=200, got min=%d max=%d", snap.Latency.MinMs, snap.Latency.MaxMs)
	}
}

func TestMetricsClampsNegativeDuration(t *testing.T) {
	m := NewMetrics(time.Hour)
	m.RecordFailure(-10 * time.Millisecond)
	snap := m.Snapshot()
	if snap.Latency.Count != 1 {
		t.Fatalf("expected count=1, got %d", snap.Latency.Count)
	}
	if snap.Latency.MinMs != 0 || snap.Latency.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got min=%d max=%d", snap.Latency.MinMs, snap.Latency.MaxMs)
	}
}

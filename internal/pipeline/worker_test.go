package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/citescan/internal/config"
	"github.com/dgallion1/citescan/internal/document"
	"github.com/dgallion1/citescan/internal/extract"
	"github.com/dgallion1/citescan/internal/pdftest"
)

func TestWorker_ProcessPDF(t *testing.T) {
	metrics := NewMetrics(time.Hour)
	w := NewWorker(testConfig(t), metrics, testLogger())

	job := NewJob("paper.pdf", pdftest.Build("Folding is slow [1].", "Nothing here."))
	job.SourceID = "SRC_001"
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (errors %v)", snap.Status, snap.Progress.Errors)
	}
	rep, err := job.Report()
	if err != nil {
		t.Fatal(err)
	}
	if rep.SourceID != "SRC_001" {
		t.Errorf("expected source id carried into report, got %q", rep.SourceID)
	}
	if len(rep.Sources) != 2 || len(rep.Sources[1]) != 1 || len(rep.Sources[2]) != 0 {
		t.Errorf("unexpected sources %v", rep.Sources)
	}
	if m := metrics.Snapshot(); m.Processed != 1 || m.TotalSources != 1 {
		t.Errorf("unexpected metrics %+v", m)
	}
}

func TestWorker_ProcessFailures(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     string
		want     error
	}{
		{"unsupported", "table.csv", "a,b\n1,2\n", document.ErrUnsupported},
		{"malformed", "paper.pdf", "not a pdf", document.ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := NewMetrics(time.Hour)
			w := NewWorker(testConfig(t), metrics, testLogger())
			job := NewJob(tt.filename, []byte(tt.data))
			w.Process(context.Background(), job)

			if snap := job.Snapshot(); snap.Status != StatusFailed {
				t.Fatalf("expected failed, got %q", snap.Status)
			}
			if _, err := job.Report(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if m := metrics.Snapshot(); m.Failed != 1 {
				t.Errorf("expected one failure recorded, got %d", m.Failed)
			}
		})
	}
}

func TestWorker_RecordsBlankPages(t *testing.T) {
	w := NewWorker(testConfig(t), NewMetrics(time.Hour), testLogger())
	job := NewJob("notes.txt", []byte("One page [1].\f\fThree page."))
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (errors %v)", snap.Status, snap.Progress.Errors)
	}
	if len(snap.Progress.Errors) != 1 || snap.Progress.Errors[0] != "page 2: no text extracted" {
		t.Errorf("unexpected errors %q", snap.Progress.Errors)
	}
	if snap.Progress.Pages != 3 {
		t.Errorf("expected 3 pages, got %d", snap.Progress.Pages)
	}
}

func TestWorker_RecoversPanic(t *testing.T) {
	cfg := testConfig(t)
	cfg.Extractor = &extract.Extractor{} // no compiled pattern
	metrics := NewMetrics(time.Hour)
	w := NewWorker(cfg, metrics, testLogger())

	job := NewJob("notes.txt", []byte("One page [1]."))
	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Fatalf("expected failed, got %q", snap.Status)
	}
	if snap.Phase != "extracting" {
		t.Errorf("expected failure in extracting phase, got %q", snap.Phase)
	}
	if _, err := job.Report(); err == nil || !strings.Contains(err.Error(), "panic") {
		t.Errorf("expected panic error, got %v", err)
	}
	if m := metrics.Snapshot(); m.Failed != 1 || m.Processed != 0 {
		t.Errorf("unexpected metrics %+v", m)
	}
}

func TestOrchestrator_ProcessesSubmittedJobs(t *testing.T) {
	cfg := config.Config{WorkerCount: 2, MaxQueueSize: 4, JobTTL: time.Hour}
	orch := NewOrchestrator(cfg, testConfig(t), NewMetrics(time.Hour), testLogger())
	orch.Start(context.Background())
	defer orch.Stop()

	job := NewJob("notes.txt", []byte("One page [1].\fTwo page."))
	if err := orch.Submit(job); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if orch.GetJob(job.ID) != job {
		t.Fatal("expected job to be retrievable by id")
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if job.Snapshot().Status == StatusCompleted {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if s := job.Snapshot().Status; s != StatusCompleted {
		t.Fatalf("expected completed, got %q", s)
	}
	if orch.Metrics().Snapshot().Processed != 1 {
		t.Error("expected one processed document in metrics")
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := config.Config{WorkerCount: 1, MaxQueueSize: 1, JobTTL: time.Hour}
	orch := NewOrchestrator(cfg, testConfig(t), NewMetrics(time.Hour), testLogger())
	// Not started: nothing drains the queue.

	if err := orch.Submit(NewJob("a.txt", []byte("a"))); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second := NewJob("b.txt", []byte("b"))
	if err := orch.Submit(second); err == nil {
		t.Fatal("expected queue full error")
	}
	if second.Snapshot().Status != StatusFailed {
		t.Error("rejected job should be marked failed")
	}
	if orch.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", orch.QueueDepth())
	}
}

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/citescan/internal/parser"
)

// Worker processes a single document job.
type Worker struct {
	cfg     ProcessorConfig
	metrics *Metrics
	log     *slog.Logger
}

func NewWorker(cfg ProcessorConfig, metrics *Metrics, log *slog.Logger) *Worker {
	return &Worker{cfg: cfg, metrics: metrics, log: log}
}

// Process parses the uploaded bytes and runs the full analysis for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename, "source_id", job.SourceID)
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("worker panic", "panic", rec)
			w.fail(job, job.Snapshot().Phase, fmt.Errorf("panic: %v", rec), start)
		}
	}()

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, w.cfg.Parser)
	if err != nil {
		log.Error("unsupported format", "error", err)
		w.fail(job, "parsing", err, start)
		return
	}
	doc, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		w.fail(job, "parsing", fmt.Errorf("parse: %w", err), start)
		return
	}
	if err := ctx.Err(); err != nil {
		w.fail(job, "parsing", err, start)
		return
	}

	for _, pg := range doc.Pages {
		if strings.TrimSpace(pg.Text) == "" {
			job.AddError(fmt.Sprintf("page %d: no text extracted", pg.Number))
		}
	}

	// Phase 2: Markers
	job.SetStatus(StatusExtracting, "extracting")
	proc := NewProcessor(w.cfg, log)
	proc.Load(doc)

	// Phase 3: Clean, segment, analyze
	job.SetStatus(StatusAnalyzing, "analyzing")
	rep, err := proc.Report()
	if err != nil {
		log.Error("analysis failed", "error", err)
		w.fail(job, "analyzing", err, start)
		return
	}
	rep.SourceID = job.SourceID
	rep.SourceLabel = job.SourceLabel

	job.Complete(rep)
	sources := job.Snapshot().Progress.Sources
	if w.metrics != nil {
		w.metrics.RecordSuccess(time.Since(start), rep.Pages, sources, rep.TextLength)
	}
	log.Info("analysis complete",
		"pages", rep.Pages,
		"sources", sources,
		"sentences", len(rep.Sentences),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (w *Worker) fail(job *Job, phase string, err error, start time.Time) {
	job.Fail(phase, err)
	if w.metrics != nil {
		w.metrics.RecordFailure(time.Since(start))
	}
}

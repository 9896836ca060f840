package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgallion1/citescan/internal/manifest"
	"github.com/dgallion1/citescan/internal/report"
)

// RunBatch processes every manifest entry with its own Processor. A failing
// document is logged and recorded in the batch and processing moves on.
// A cancelled ctx stops the run before the next document.
func RunBatch(ctx context.Context, docs []manifest.Document, cfg ProcessorConfig, metrics *Metrics, log *slog.Logger) *report.Batch {
	batch := report.NewBatch(time.Now())

	for i, entry := range docs {
		if ctx.Err() != nil {
			log.Warn("batch cancelled", "processed", i, "remaining", len(docs)-i)
			break
		}
		entryLog := log.With("source_id", entry.SourceID, "path", entry.Path)
		entryLog.Info("processing document", "index", i+1, "total", len(docs))

		start := time.Now()
		rep, err := processEntry(ctx, entry, cfg, entryLog)
		if err != nil {
			entryLog.Error("document failed", "error", err)
			if metrics != nil {
				metrics.RecordFailure(time.Since(start))
			}
			batch.Add(&report.Document{
				SourceID:    entry.SourceID,
				SourceLabel: entry.SourceLabel,
				Path:        entry.Path,
				ProcessedAt: time.Now(),
				Error:       err.Error(),
			})
			continue
		}

		sources := 0
		for _, srcs := range rep.Sources {
			sources += len(srcs)
		}
		if metrics != nil {
			metrics.RecordSuccess(time.Since(start), rep.Pages, sources, rep.TextLength)
		}
		batch.Add(rep)
	}

	log.Info("batch complete",
		"total", batch.TotalDocuments,
		"successful", batch.Successful,
		"failed", batch.Failed,
		"total_text_length", batch.TotalTextLength,
	)
	return batch
}

func processEntry(ctx context.Context, entry manifest.Document, cfg ProcessorConfig, log *slog.Logger) (*report.Document, error) {
	proc := NewProcessor(cfg, log)
	if err := proc.Extract(ctx, entry.Path); err != nil {
		return nil, err
	}
	rep, err := proc.Report()
	if err != nil {
		return nil, err
	}
	rep.SourceID = entry.SourceID
	rep.SourceLabel = entry.SourceLabel
	return rep, nil
}

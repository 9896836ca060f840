package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dgallion1/citescan/internal/api"
	"github.com/dgallion1/citescan/internal/config"
	"github.com/dgallion1/citescan/internal/extract"
	"github.com/dgallion1/citescan/internal/manifest"
	"github.com/dgallion1/citescan/internal/parser"
	"github.com/dgallion1/citescan/internal/pipeline"
	"github.com/dgallion1/citescan/internal/report"
	"github.com/dgallion1/citescan/internal/segment"
	"gopkg.in/alecthomas/kingpin.v2"
)

type options struct {
	logLevel  *string
	logFile   *string
	pattern   *string
	policy    *string
	topN      *int
	model     *string
	pdftotext *bool

	reportPath *string
	reportJSON *string

	manifestPath *string
	batchOut     *string

	port *string
}

func main() {
	cfg := config.Load()

	app := kingpin.New("citescan", "Extract citation markers, sentences and word statistics from PDF documents.")
	opts := options{
		logLevel:  app.Flag("log-level", "debug, info, warn or error").Default(cfg.LogLevel).String(),
		logFile:   app.Flag("log-file", "also write log records to this file").String(),
		pattern:   app.Flag("pattern", "citation marker regular expression").Default(cfg.CitationPattern).String(),
		policy:    app.Flag("policy", "strip or keep markers in the analysed text").Default(cfg.MarkerPolicy).String(),
		topN:      app.Flag("top-n", "number of most common words to report").Default(strconv.Itoa(cfg.TopN)).Int(),
		model:     app.Flag("model", "Punkt training JSON (default: bundled English model)").Default(cfg.PunktModel).String(),
		pdftotext: app.Flag("pdftotext", "fall back to pdftotext when the Go PDF decoders fail").Default(strconv.FormatBool(cfg.PDFFallbackPdftotext)).Bool(),
	}

	reportCmd := app.Command("report", "Analyse one document and print a summary.")
	opts.reportPath = reportCmd.Arg("path", "document to analyse").Required().String()
	opts.reportJSON = reportCmd.Flag("json", "also write the full report as JSON to this file").String()

	batchCmd := app.Command("batch", "Analyse every document listed in a YAML manifest.")
	opts.manifestPath = batchCmd.Arg("manifest", "YAML manifest listing documents and their sources").Required().String()
	opts.batchOut = batchCmd.Flag("out", "JSON export path (default processed_documents_<timestamp>.json)").Short('o').String()

	serveCmd := app.Command("serve", "Run the HTTP analysis service.")
	opts.port = serveCmd.Flag("port", "listen port").Default(cfg.Port).String()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg.LogLevel = *opts.logLevel
	cfg.CitationPattern = *opts.pattern
	cfg.MarkerPolicy = *opts.policy
	cfg.TopN = *opts.topN
	cfg.PunktModel = *opts.model
	cfg.PDFFallbackPdftotext = *opts.pdftotext

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	serving := command == serveCmd.FullCommand()
	log, closeLog, err := newLogger(cfg.LogLevel, *opts.logFile, serving)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch command {
	case reportCmd.FullCommand():
		err = runReport(ctx, cfg, *opts.reportPath, *opts.reportJSON, os.Stdout, log)
	case batchCmd.FullCommand():
		err = runBatch(ctx, cfg, *opts.manifestPath, *opts.batchOut, os.Stdout, log)
	case serveCmd.FullCommand():
		cfg.Port = *opts.port
		err = runServe(ctx, cfg, log)
	}
	if err != nil {
		log.Error("command failed", "command", command, "error", err)
		closeLog()
		os.Exit(1)
	}
}

// newLogger builds the text logger used by the CLI commands, or the JSON
// logger used by the server. A non-empty logFile receives every record too.
func newLogger(level, logFile string, jsonFormat bool) (*slog.Logger, func(), error) {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}
	var out io.Writer = os.Stderr
	if jsonFormat {
		out = os.Stdout
	}
	closer := func() {}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = io.MultiWriter(out, f)
		closer = func() { f.Close() }
	}
	handlerOpts := &slog.HandlerOptions{Level: lvl}
	if jsonFormat {
		return slog.New(slog.NewJSONHandler(out, handlerOpts)), closer, nil
	}
	return slog.New(slog.NewTextHandler(out, handlerOpts)), closer, nil
}

// processorConfig loads the segmentation model and compiles the marker
// pattern. A model that fails to load is fatal for every command.
func processorConfig(cfg config.Config, log *slog.Logger) (pipeline.ProcessorConfig, error) {
	policy, err := extract.ParsePolicy(cfg.MarkerPolicy)
	if err != nil {
		return pipeline.ProcessorConfig{}, err
	}
	ext, err := extract.New(cfg.CitationPattern, policy)
	if err != nil {
		return pipeline.ProcessorConfig{}, err
	}
	seg, err := segment.New(cfg.PunktModel)
	if err != nil {
		return pipeline.ProcessorConfig{}, err
	}
	log.Debug("processor configured",
		"citation_pattern", ext.Pattern(),
		"marker_policy", ext.Policy(),
		"model", seg.Model(),
		"top_n", cfg.TopN,
	)
	return pipeline.ProcessorConfig{
		Extractor: ext,
		Segmenter: seg,
		Parser:    parser.Options{FallbackPdftotext: cfg.PDFFallbackPdftotext},
		TopN:      cfg.TopN,
	}, nil
}

func runReport(ctx context.Context, cfg config.Config, path, jsonOut string, stdout io.Writer, log *slog.Logger) error {
	procCfg, err := processorConfig(cfg, log)
	if err != nil {
		return err
	}
	proc := pipeline.NewProcessor(procCfg, log)
	if err := proc.Extract(ctx, path); err != nil {
		return err
	}
	rep, err := proc.Report()
	if err != nil {
		return err
	}
	if err := report.WriteText(stdout, rep); err != nil {
		return err
	}
	if jsonOut != "" {
		if err := report.WriteJSON(jsonOut, rep); err != nil {
			return err
		}
		log.Info("report exported", "path", jsonOut)
	}
	return nil
}

func runBatch(ctx context.Context, cfg config.Config, manifestPath, out string, stdout io.Writer, log *slog.Logger) error {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}
	procCfg, err := processorConfig(cfg, log)
	if err != nil {
		return err
	}

	metrics := pipeline.NewMetrics(0)
	batch := pipeline.RunBatch(ctx, m.Documents, procCfg, metrics, log)
	if err := report.WriteBatchText(stdout, batch); err != nil {
		return err
	}

	if out == "" {
		out = report.DefaultExportName(batch.ProcessedAt)
	}
	if err := report.WriteJSON(out, batch); err != nil {
		return err
	}
	snap := metrics.Snapshot()
	log.Info("batch exported",
		"path", out,
		"processed", snap.Processed,
		"failed", snap.Failed,
		"p50_ms", snap.Latency.P50Ms,
	)
	if batch.Successful == 0 && batch.Failed > 0 {
		return errors.New("no document could be processed")
	}
	return nil
}

func runServe(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if err := cfg.ValidateServer(); err != nil {
		return err
	}
	procCfg, err := processorConfig(cfg, log)
	if err != nil {
		return err
	}

	orch := pipeline.NewOrchestrator(cfg, procCfg, pipeline.NewMetrics(time.Hour), log)
	orch.Start(ctx)

	srv := api.NewServer(orch, log, cfg)
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown. Handlers must be drained before the queue closes.
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting citescan", "port", cfg.Port, "model", procCfg.Segmenter.Model())
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		orch.Stop()
		return fmt.Errorf("server error: %w", err)
	}
	<-drained
	orch.Stop()
	return nil
}

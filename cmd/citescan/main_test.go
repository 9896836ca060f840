package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/citescan/internal/config"
	"github.com/dgallion1/citescan/internal/document"
	"github.com/dgallion1/citescan/internal/extract"
	"github.com/dgallion1/citescan/internal/pdftest"
	"github.com/dgallion1/citescan/internal/segment"
)

func testCLIConfig() config.Config {
	return config.Config{
		CitationPattern: extract.DefaultPattern,
		MarkerPolicy:    "strip",
		TopN:            10,
		LogLevel:        "error",
	}
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestRunReport(t *testing.T) {
	path := pdftest.WriteFile(t, "paper.pdf", "Folding is slow [1]. It is studied.", "No markers here.")
	jsonOut := filepath.Join(t.TempDir(), "report.json")

	var out strings.Builder
	if err := runReport(context.Background(), testCLIConfig(), path, jsonOut, &out, discard()); err != nil {
		t.Fatalf("runReport: %v", err)
	}
	text := out.String()
	for _, want := range []string{"--- Statistics ---", "Page 1: [1]", "Page 2: (none)", "--- Sentences ---"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in output:\n%s", want, text)
		}
	}
	if _, err := os.Stat(jsonOut); err != nil {
		t.Errorf("expected JSON export: %v", err)
	}
}

func TestRunReport_Errors(t *testing.T) {
	var out strings.Builder
	err := runReport(context.Background(), testCLIConfig(), filepath.Join(t.TempDir(), "none.pdf"), "", &out, discard())
	if !errors.Is(err, document.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	cfg := testCLIConfig()
	cfg.PunktModel = filepath.Join(t.TempDir(), "missing-model.json")
	path := pdftest.WriteFile(t, "paper.pdf", "Text.")
	err = runReport(context.Background(), cfg, path, "", &out, discard())
	if !errors.Is(err, segment.ErrModelLoad) {
		t.Errorf("expected ErrModelLoad, got %v", err)
	}
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	pdf := pdftest.WriteFile(t, "one.pdf", "Cited (Dobson, 2003).")
	manifestPath := filepath.Join(dir, "batch.yaml")
	content := "documents:\n" +
		"  - path: " + pdf + "\n    source_id: SRC_001\n    source_label: Source One\n" +
		"  - path: missing.pdf\n    source_id: SRC_002\n    source_label: Source Two\n"
	if err := os.WriteFile(manifestPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.json")

	var stdout strings.Builder
	if err := runBatch(context.Background(), testCLIConfig(), manifestPath, out, &stdout, discard()); err != nil {
		t.Fatalf("runBatch: %v", err)
	}
	if !strings.Contains(stdout.String(), "2 documents, 1 succeeded, 1 failed") {
		t.Errorf("unexpected summary:\n%s", stdout.String())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		Successful    int               `json:"successful_extractions"`
		Failed        int               `json:"failed_extractions"`
		SourceMapping map[string]string `json:"source_mapping"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Successful != 1 || got.Failed != 1 || got.SourceMapping["SRC_002"] != "Source Two" {
		t.Errorf("unexpected export %+v", got)
	}
}

func TestProcessorConfig_LogsMarkerSettings(t *testing.T) {
	var buf strings.Builder
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cfg := testCLIConfig()
	cfg.CitationPattern = `SRC_\d{3}`
	cfg.MarkerPolicy = "keep"

	procCfg, err := processorConfig(cfg, log)
	if err != nil {
		t.Fatalf("processorConfig: %v", err)
	}
	if procCfg.Extractor.Policy() != extract.PolicyKeep {
		t.Errorf("expected keep policy, got %q", procCfg.Extractor.Policy())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(buf.String()), &entry); err != nil {
		t.Fatalf("decode log line: %v (%q)", err, buf.String())
	}
	if entry["citation_pattern"] != `SRC_\d{3}` {
		t.Errorf("unexpected citation_pattern %v", entry["citation_pattern"])
	}
	if entry["marker_policy"] != "keep" {
		t.Errorf("unexpected marker_policy %v", entry["marker_policy"])
	}

	cfg.CitationPattern = `x*`
	if _, err := processorConfig(cfg, discard()); err == nil {
		t.Error("expected error for a pattern matching the empty string")
	}
}

func TestNewLogger(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "citescan.log")
	log, closeLog, err := newLogger("info", logFile, false)
	if err != nil {
		t.Fatal(err)
	}
	log.Info("hello", "page", 1)
	closeLog()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "msg=hello") {
		t.Errorf("expected record in log file, got %q", data)
	}

	if _, _, err := newLogger("loud", "", false); err == nil {
		t.Error("expected error for unknown level")
	}
}

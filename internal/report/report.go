// Package report renders analysis results as a human-readable summary or
// as JSON exports.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dgallion1/citescan/internal/document"
)

// PreviewLimit caps how many pages of sources and how many sentences the
// text report prints.
const PreviewLimit = 5

// Document is the analysis result for one input file.
type Document struct {
	SourceID    string           `json:"source_id,omitempty"`
	SourceLabel string           `json:"source_label,omitempty"`
	Path        string           `json:"file_path"`
	Title       string           `json:"title,omitempty"`
	Format      string           `json:"format,omitempty"`
	Pages       int              `json:"pages"`
	TextLength  int              `json:"text_length"`
	CleanedText string           `json:"cleaned_text,omitempty"`
	Sources     map[int][]string `json:"sources,omitempty"`
	Sentences   []string         `json:"sentences,omitempty"`
	Stats       *document.Stats  `json:"stats,omitempty"`
	ProcessedAt time.Time        `json:"processing_timestamp"`
	Error       string           `json:"error,omitempty"`
}

// Failed reports whether the document could not be processed.
func (d *Document) Failed() bool { return d.Error != "" }

// Batch is the result of processing a manifest of documents.
type Batch struct {
	ProcessedAt     time.Time         `json:"processed_at"`
	TotalDocuments  int               `json:"total_documents"`
	Successful      int               `json:"successful_extractions"`
	Failed          int               `json:"failed_extractions"`
	TotalTextLength int               `json:"total_text_length"`
	SourceMapping   map[string]string `json:"source_mapping"`
	Documents       []*Document       `json:"documents"`
}

// NewBatch returns an empty batch stamped with now.
func NewBatch(now time.Time) *Batch {
	return &Batch{
		ProcessedAt:   now,
		SourceMapping: map[string]string{},
		Documents:     []*Document{},
	}
}

// Add appends d and updates the counters.
func (b *Batch) Add(d *Document) {
	b.Documents = append(b.Documents, d)
	b.TotalDocuments++
	if d.SourceID != "" {
		b.SourceMapping[d.SourceID] = d.SourceLabel
	}
	if d.Failed() {
		b.Failed++
		return
	}
	b.Successful++
	b.TotalTextLength += d.TextLength
}

// WriteText prints the stats section, the sources of the first pages and
// the first sentences of d.
func WriteText(w io.Writer, d *Document) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "=== %s ===\n", displayName(d))
	if d.SourceID != "" {
		fmt.Fprintf(&sb, "Source: %s (%s)\n", d.SourceID, d.SourceLabel)
	}
	if d.Failed() {
		fmt.Fprintf(&sb, "Error: %s\n", d.Error)
		_, err := io.WriteString(w, sb.String())
		return err
	}
	fmt.Fprintf(&sb, "Pages: %d\n\n", d.Pages)

	sb.WriteString("--- Statistics ---\n")
	if d.Stats != nil {
		fmt.Fprintf(&sb, "Total words:  %d\n", d.Stats.TotalWords)
		fmt.Fprintf(&sb, "Unique words: %d\n", d.Stats.UniqueWords)
		sb.WriteString("Most common:\n")
		for _, wc := range d.Stats.MostCommon {
			fmt.Fprintf(&sb, "  %-20s %d\n", wc.Word, wc.Count)
		}
	}

	sb.WriteString("\n--- Sources ---\n")
	pages := make([]int, 0, len(d.Sources))
	for n := range d.Sources {
		pages = append(pages, n)
	}
	sort.Ints(pages)
	if len(pages) > PreviewLimit {
		pages = pages[:PreviewLimit]
	}
	for _, n := range pages {
		srcs := d.Sources[n]
		if len(srcs) == 0 {
			fmt.Fprintf(&sb, "Page %d: (none)\n", n)
			continue
		}
		fmt.Fprintf(&sb, "Page %d: %s\n", n, strings.Join(srcs, ", "))
	}

	sb.WriteString("\n--- Sentences ---\n")
	sents := d.Sentences
	if len(sents) > PreviewLimit {
		sents = sents[:PreviewLimit]
	}
	for i, s := range sents {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, s)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteBatchText prints a short summary line per document followed by the
// batch counters.
func WriteBatchText(w io.Writer, b *Batch) error {
	var sb strings.Builder
	for _, d := range b.Documents {
		status := fmt.Sprintf("%d pages, %d chars", d.Pages, d.TextLength)
		if d.Failed() {
			status = "FAILED: " + d.Error
		}
		fmt.Fprintf(&sb, "%-12s %s: %s\n", d.SourceID, displayName(d), status)
	}
	fmt.Fprintf(&sb, "\n%d documents, %d succeeded, %d failed, %d chars total\n",
		b.TotalDocuments, b.Successful, b.Failed, b.TotalTextLength)
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteJSON writes v to path as indented JSON.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// DefaultExportName is the JSON export file name used when none is given.
func DefaultExportName(t time.Time) string {
	return "processed_documents_" + t.Format("20060102_150405") + ".json"
}

func displayName(d *Document) string {
	if d.Title != "" {
		return d.Title
	}
	return d.Path
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/dgallion1/citescan/internal/document"
	"github.com/dgallion1/citescan/internal/extract"
	"github.com/dgallion1/citescan/internal/parser"
	"github.com/dgallion1/citescan/internal/report"
	"github.com/dgallion1/citescan/internal/segment"
	"github.com/dgallion1/citescan/internal/textclean"
	"github.com/dgallion1/citescan/internal/wordstats"
)

// ErrNotExtracted is returned when results are requested before a document
// has been extracted or loaded.
var ErrNotExtracted = errors.New("document not yet extracted")

// ProcessorConfig holds the collaborators shared by every Processor. The
// Extractor and Segmenter are safe to share between goroutines.
type ProcessorConfig struct {
	Extractor *extract.Extractor
	Segmenter *segment.Segmenter
	Parser    parser.Options
	TopN      int
}

// Processor runs extract, clean, segment and analyze over one document.
// Extract or Load must succeed before any result accessor is called.
// A Processor is not safe for concurrent use.
type Processor struct {
	cfg ProcessorConfig
	log *slog.Logger

	doc         *document.Document
	fullText    string
	extractedAt time.Time
}

// NewProcessor returns a Processor. A nil Extractor means extract.Default().
func NewProcessor(cfg ProcessorConfig, log *slog.Logger) *Processor {
	if cfg.Extractor == nil {
		cfg.Extractor = extract.Default()
	}
	if cfg.TopN <= 0 {
		cfg.TopN = wordstats.DefaultTopN
	}
	return &Processor{cfg: cfg, log: log}
}

// Extract loads the document at path and records its pages and markers.
// Loader errors (document.ErrNotFound, document.ErrMalformed,
// document.ErrUnsupported) are returned as is and leave the Processor
// unextracted, even if an earlier call succeeded.
func (p *Processor) Extract(ctx context.Context, path string) error {
	p.doc, p.fullText, p.extractedAt = nil, "", time.Time{}
	if err := ctx.Err(); err != nil {
		return err
	}
	doc, err := parser.ParseFile(path, p.cfg.Parser)
	if err != nil {
		return err
	}
	p.Load(doc)
	return nil
}

// Load takes an already parsed document, for callers that hold the bytes
// rather than a path. It sets Sources on every page of doc.
func (p *Processor) Load(doc *document.Document) {
	p.fullText = p.cfg.Extractor.Document(doc)
	p.doc = doc
	p.extractedAt = time.Now()

	sources := 0
	for _, pg := range doc.Pages {
		p.log.Debug("page extracted", "path", doc.Path, "page", pg.Number, "chars", len(pg.Text), "sources", len(pg.Sources))
		sources += len(pg.Sources)
	}
	p.log.Info("document extracted",
		"path", doc.Path,
		"pages", doc.NumPages(),
		"sources", sources,
		"chars", len(p.fullText),
	)
}

// Document returns the extracted document.
func (p *Processor) Document() (*document.Document, error) {
	if p.doc == nil {
		return nil, ErrNotExtracted
	}
	return p.doc, nil
}

// FullText returns the page contributions joined by newlines, before
// cleaning.
func (p *Processor) FullText() (string, error) {
	if p.doc == nil {
		return "", ErrNotExtracted
	}
	return p.fullText, nil
}

// CleanText returns the full text after textclean.Clean.
func (p *Processor) CleanText() (string, error) {
	if p.doc == nil {
		return "", ErrNotExtracted
	}
	return textclean.Clean(p.fullText), nil
}

// Sources returns the page number to markers mapping. Every page has a key.
func (p *Processor) Sources() (map[int][]string, error) {
	if p.doc == nil {
		return nil, ErrNotExtracted
	}
	return p.doc.SourcesByPage(), nil
}

// Sentences segments the cleaned text. Sentences carry no page number.
func (p *Processor) Sentences() ([]string, error) {
	if p.doc == nil {
		return nil, ErrNotExtracted
	}
	if p.cfg.Segmenter == nil {
		return nil, fmt.Errorf("%w: no segmenter configured", segment.ErrModelLoad)
	}
	return p.cfg.Segmenter.Segment(textclean.Clean(p.fullText)), nil
}

// Stats computes word statistics over the cleaned text.
func (p *Processor) Stats() (document.Stats, error) {
	if p.doc == nil {
		return document.Stats{}, ErrNotExtracted
	}
	return wordstats.Analyze(textclean.Clean(p.fullText), p.cfg.TopN), nil
}

// Report assembles every result into a report.Document.
func (p *Processor) Report() (*report.Document, error) {
	if p.doc == nil {
		return nil, ErrNotExtracted
	}
	sentences, err := p.Sentences()
	if err != nil {
		return nil, err
	}
	cleaned := textclean.Clean(p.fullText)
	stats := wordstats.Analyze(cleaned, p.cfg.TopN)

	return &report.Document{
		Path:        p.doc.Path,
		Title:       p.doc.Title,
		Format:      p.doc.Format,
		Pages:       p.doc.NumPages(),
		TextLength:  utf8.RuneCountInString(cleaned),
		CleanedText: cleaned,
		Sources:     p.doc.SourcesByPage(),
		Sentences:   sentences,
		Stats:       &stats,
		ProcessedAt: p.extractedAt,
	}, nil
}

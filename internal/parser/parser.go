package parser

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/citescan/internal/document"
)

// Parser converts raw document bytes into a paged Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*document.Document, error)
}

// Options tunes parser selection.
type Options struct {
	// FallbackPdftotext lets the PDF parser shell out to pdftotext when
	// both Go decoders fail.
	FallbackPdftotext bool
}

// SupportedExtensions lists file extensions this tool can load.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", document.ErrUnsupported, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// ParseFile opens path and parses it with the parser matching its extension.
// The file handle is released before returning.
func ParseFile(path string, opts Options) (*document.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", path, document.ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", path, document.ErrMalformed)
	}

	p, err := ForFile(path, opts)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(f, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	doc.Path = path
	return doc, nil
}

// newDocument builds a Document from per-page text, numbering pages from 1.
func newDocument(filename, format string, pages []string) *document.Document {
	doc := &document.Document{
		Path:   filename,
		Title:  strings.TrimSuffix(filename, filepath.Ext(filename)),
		Format: format,
		Pages:  make([]document.Page, len(pages)),
	}
	for i, text := range pages {
		doc.Pages[i] = document.Page{Number: i + 1, Text: text}
	}
	return doc
}

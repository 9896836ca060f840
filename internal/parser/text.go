package parser

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/citescan/internal/document"
)

// TextParser handles plain text files. Form feeds separate pages, the way
// pdftotext output does; a file without them is a single page.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%s is not valid UTF-8: %w", filename, document.ErrMalformed)
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return newDocument(filename, "txt", nil), nil
	}
	return newDocument(filename, "txt", splitPages(text)), nil
}

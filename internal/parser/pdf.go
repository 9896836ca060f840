package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/dgallion1/citescan/internal/document"
	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFParser handles PDF files. It tries ledongthuc/pdf first, then pdfcpu,
// then pdftotext if enabled. Pages that decode to nothing are kept empty so
// page numbers stay aligned with the source file.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	if !IsPDF(data) {
		return nil, fmt.Errorf("%s: missing %%PDF- header: %w", filename, document.ErrMalformed)
	}

	pages, title, err := extractPDFPages(data)
	if err != nil {
		var cpuErr error
		pages, cpuErr = extractPDFCPUPages(data)
		if cpuErr != nil {
			err = fmt.Errorf("%w; pdfcpu: %w", err, cpuErr)
		} else {
			err = nil
		}
	}
	if err != nil && p.FallbackPdftotext {
		var ptErr error
		pages, ptErr = extractPdftotext(data)
		if ptErr == nil {
			err = nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text from %s: %w: %w", filename, document.ErrMalformed, err)
	}

	doc := newDocument(filename, "pdf", pages)
	if title != "" {
		doc.Title = title
	}
	return doc, nil
}

// IsPDF reports whether data starts with the PDF magic bytes.
func IsPDF(data []byte) bool {
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}

func extractPDFPages(data []byte) (pages []string, title string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pages, title, err = nil, "", fmt.Errorf("pdf decoder: %v", rec)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, "", err
	}
	title = strings.TrimSpace(reader.Trailer().Key("Info").Key("Title").Text())

	numPages := reader.NumPage()
	pages = make([]string, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages[i-1] = text
	}
	return pages, title, nil
}

func extractPDFCPUPages(data []byte) (pages []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pages, err = nil, fmt.Errorf("pdfcpu: %v", rec)
		}
	}()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	pages = make([]string, ctx.PageCount)
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil || r == nil {
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil {
			continue
		}
		pages[pageNr-1] = contentStreamText(content)
	}
	return pages, nil
}

func extractPdftotext(data []byte) ([]string, error) {
	// pdftotext needs a file on disk.
	tmp, err := os.CreateTemp("", "citescan-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	cmd := exec.Command("pdftotext", "-layout", tmpPath, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return splitPages(string(out)), nil
}

// splitPages splits on form feeds. A trailing empty page after the last
// form feed (pdftotext always emits one) is dropped.
func splitPages(text string) []string {
	pages := strings.Split(text, "\f")
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages
}

package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/citescan/internal/document"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Word documents carry no fixed pagination,
// so all paragraphs become page 1; the first Title or Heading1 paragraph
// becomes the document title.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w: %w", document.ErrMalformed, err)
	}

	var title string
	var paragraphs []string
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		if title == "" && isTitleStyle(para) {
			title = text
		}
		paragraphs = append(paragraphs, text)
	}

	var out *document.Document
	if len(paragraphs) == 0 {
		out = newDocument(filename, "docx", nil)
	} else {
		out = newDocument(filename, "docx", []string{strings.Join(paragraphs, "\n\n")})
	}
	if title != "" {
		out.Title = title
	}
	return out, nil
}

func isTitleStyle(para *docx.Paragraph) bool {
	if para.Properties == nil || para.Properties.Style == nil {
		return false
	}
	style := para.Properties.Style.Val
	return strings.EqualFold(style, "Title") ||
		strings.EqualFold(style, "Heading1") ||
		strings.EqualFold(style, "heading 1")
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dgallion1/citescan/internal/document"
)

// DefaultPattern matches numeric bracket citations ("[12]", "[3, 4]",
// "[1-3]", "[2–5]") and parenthetical author-year citations ("(Smith, 2003)",
// "(Smith et al., 1997)", "(Smith and Jones, 2005a)").
const DefaultPattern = `\[\d+(?:\s*[,\-–]\s*\d+)*\]` +
	`|\([A-Z][\p{L}'’\-]+(?:\s+et\s+al\.|\s+(?:and|&)\s+[A-Z][\p{L}'’\-]+)?,\s*\d{4}[a-z]?\)`

// Policy decides what happens to matched markers in the full text.
type Policy string

const (
	// PolicyStrip removes markers (and the spaces before them) from the text
	// that feeds cleaning, segmentation and statistics.
	PolicyStrip Policy = "strip"
	// PolicyKeep leaves the text untouched.
	PolicyKeep Policy = "keep"
)

// ParsePolicy validates a policy name. Empty means PolicyStrip.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyStrip:
		return PolicyStrip, nil
	case PolicyKeep:
		return PolicyKeep, nil
	}
	return "", fmt.Errorf("unknown marker policy %q (want strip or keep)", s)
}

// Extractor finds source markers in page text.
type Extractor struct {
	pattern *regexp.Regexp
	strip   *regexp.Regexp
	policy  Policy
}

// New compiles pattern. An empty pattern means DefaultPattern. Patterns
// that match the empty string are rejected.
func New(pattern string, policy Policy) (*Extractor, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile citation pattern: %w", err)
	}
	if re.MatchString("") {
		return nil, fmt.Errorf("citation pattern %q matches the empty string", pattern)
	}
	if policy == "" {
		policy = PolicyStrip
	}
	return &Extractor{
		pattern: re,
		strip:   regexp.MustCompile(`[ \t]*(?:` + re.String() + `)`),
		policy:  policy,
	}, nil
}

// Default returns an Extractor with DefaultPattern and PolicyStrip.
func Default() *Extractor {
	e, err := New(DefaultPattern, PolicyStrip)
	if err != nil {
		panic(err)
	}
	return e
}

// Pattern returns the source of the compiled pattern.
func (e *Extractor) Pattern() string { return e.pattern.String() }

// Policy returns the marker policy.
func (e *Extractor) Policy() Policy { return e.policy }

// Page returns the markers found in text, in order, and the text's
// contribution to the full-text buffer. Sources is never nil.
func (e *Extractor) Page(text string) (sources []string, contribution string) {
	sources = e.pattern.FindAllString(text, -1)
	if sources == nil {
		sources = []string{}
	}
	if e.policy == PolicyKeep || len(sources) == 0 {
		return sources, text
	}
	return sources, e.strip.ReplaceAllString(text, "")
}

// Document sets Sources on every page of doc and returns the full text:
// page contributions joined by newlines, in page order.
func (e *Extractor) Document(doc *document.Document) string {
	var buf strings.Builder
	for i := range doc.Pages {
		sources, contribution := e.Page(doc.Pages[i].Text)
		doc.Pages[i].Sources = sources
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(contribution)
	}
	return buf.String()
}

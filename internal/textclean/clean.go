// Package textclean normalises whitespace and line-break artifacts left by
// PDF text extraction. Every function here is pure and idempotent.
package textclean

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

type repair struct {
	re   *regexp.Regexp
	repl string
}

// Line breaks that split a number from its unit or range partner. Each
// pattern requires a newline, so text that has already been cleaned is
// never touched again.
var numericRepairs = []repair{
	// "97.2\n%" -> "97.2%", "37\n°C" -> "37°C"
	{regexp.MustCompile(`(\d)[ \t]*\n\s*([%‰°])`), "$1$2"},
	// "1.5 × 10\n-6" -> "1.5 × 10^-6"
	{regexp.MustCompile(`(\d\s*[×x]\s*10)[ \t]*\n\s*([-+−]?\d+)`), "$1^$2"},
	// "90\n-\n95" -> "90-95"
	{regexp.MustCompile(`(\d)\s*\n\s*[-–]\s*\n\s*(\d)`), "$1-$2"},
	// "95.2\n±\n0.5" -> "95.2±0.5"
	{regexp.MustCompile(`(\d)\s*\n\s*±\s*\n\s*(\d)`), "$1±$2"},
	// "5\nmg" -> "5mg", "40\nkDa" -> "40kDa"
	{regexp.MustCompile(`(\d)[ \t]*\n[ \t]*((?:[μnmk]?[gLM]|kDa|[mkM]?[VW])\b)`), "$1$2"},
}

// A comma, semicolon or colon set off by spaces on both sides.
var spacedPunct = regexp.MustCompile(`\s+([,;:])\s+`)

// Whole lines that are running headers or footers.
var noiseLine = regexp.MustCompile(`(?im)^[ \t]*(?:page[ \t]+\d+(?:[ \t]+of[ \t]+\d+)?|\d{1,4})[ \t]*$`)

// Clean folds compatibility characters (ligatures, non-breaking spaces),
// rejoins numbers split from their units, drops page-number lines,
// collapses every whitespace run into a single space and trims, then pulls
// spaced-out commas, semicolons and colons back onto the preceding word.
//
// Clean(Clean(s)) == Clean(s) for every s.
func Clean(s string) string {
	s = norm.NFKC.String(s)
	if strings.ContainsAny(s, "\r\n") {
		s = strings.ReplaceAll(s, "\r\n", "\n")
		s = strings.ReplaceAll(s, "\r", "\n")
		s = RepairNumericBreaks(s)
		s = noiseLine.ReplaceAllString(s, "")
	}
	return TightenPunctuation(CollapseWhitespace(s))
}

// RepairNumericBreaks rejoins numbers that a line break split from their
// unit, exponent, range or error term.
func RepairNumericBreaks(s string) string {
	for _, r := range numericRepairs {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return s
}

// CollapseWhitespace replaces each run of Unicode whitespace, line breaks
// included, with one space and trims both ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TightenPunctuation rewrites "word , word" as "word, word" (likewise for
// ";" and ":"), repeating until nothing changes so runs like "a , , b" settle.
func TightenPunctuation(s string) string {
	for {
		next := spacedPunct.ReplaceAllString(s, "$1 ")
		if next == s {
			return s
		}
		s = next
	}
}

// Package wordstats computes word frequency statistics over cleaned text.
package wordstats

import (
	"regexp"
	"sort"
	"strings"

	"github.com/dgallion1/citescan/internal/document"
)

// DefaultTopN is the number of most common words reported when the caller
// does not ask for a specific count.
const DefaultTopN = 10

// wordRe matches runs of letters and digits, allowing single inner
// apostrophes or hyphens ("don't", "state-of-the-art").
var wordRe = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’\-][\p{L}\p{N}]+)*`)

// Words returns the lowercased words of text in order of appearance.
func Words(text string) []string {
	raw := wordRe.FindAllString(text, -1)
	out := make([]string, len(raw))
	for i, w := range raw {
		out[i] = strings.ToLower(w)
	}
	return out
}

// Analyze counts words in text. MostCommon holds at most topN entries
// sorted by count, with ties broken by first appearance. topN <= 0 means
// DefaultTopN.
func Analyze(text string, topN int) document.Stats {
	if topN <= 0 {
		topN = DefaultTopN
	}

	words := Words(text)
	counts := make(map[string]int, len(words)/2)
	var order []string
	for _, w := range words {
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	ranked := make([]document.WordCount, len(order))
	for i, w := range order {
		ranked[i] = document.WordCount{Word: w, Count: counts[w]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	return document.Stats{
		TotalWords:  len(words),
		UniqueWords: len(counts),
		MostCommon:  ranked,
	}
}

package document

// Document is a loaded source file, pages in reading order.
type Document struct {
	Path   string // Path the document was loaded from (or upload filename)
	Title  string // Title from metadata, falling back to the filename
	Format string // Lower-case extension without the dot, e.g. "pdf"
	Pages  []Page
}

// Page is one page of a document.
type Page struct {
	Number  int      // 1-based
	Text    string   // Raw decoded text, before marker removal and cleaning
	Sources []string // Source markers found on this page, in order of discovery
}

// WordCount is one entry of a frequency ranking.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Stats is the aggregate word-frequency summary of a document's cleaned text.
type Stats struct {
	TotalWords  int         `json:"total_words"`
	UniqueWords int         `json:"unique_words"`
	MostCommon  []WordCount `json:"most_common_words"`
}

// NumPages returns the page count.
func (d *Document) NumPages() int {
	if d == nil {
		return 0
	}
	return len(d.Pages)
}

// SourcesByPage returns the page -> markers mapping. Every page has a key,
// pages without markers map to an empty, non-nil slice.
func (d *Document) SourcesByPage() map[int][]string {
	out := make(map[int][]string, len(d.Pages))
	for _, p := range d.Pages {
		srcs := make([]string, len(p.Sources))
		copy(srcs, p.Sources)
		out[p.Number] = srcs
	}
	return out
}

package extract

import (
	"reflect"
	"testing"

	"github.com/dgallion1/citescan/internal/document"
)

func TestDefaultPattern_Matches(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"single numeric", "Folding is slow [1].", []string{"[1]"}},
		{"list", "as shown [3, 4] and [12]", []string{"[3, 4]", "[12]"}},
		{"range", "prior work [1-3] and [2–5]", []string{"[1-3]", "[2–5]"}},
		{"author year", "as reported (Dobson, 2003).", []string{"(Dobson, 2003)"}},
		{"et al", "kinases (Manning et al., 2002b) regulate", []string{"(Manning et al., 2002b)"}},
		{"two authors", "(Mark and Atlas, 1997)", []string{"(Mark and Atlas, 1997)"}},
		{"ampersand", "(Mark & Atlas, 1997)", []string{"(Mark & Atlas, 1997)"}},
		{"plain brackets ignored", "see [Figure 2] and (p < 0.05)", []string{}},
		{"lowercase paren ignored", "(see below, 2003)", []string{}},
	}
	e := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := e.Page(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPage_NoMatchesIsEmptyNotNil(t *testing.T) {
	got, contribution := Default().Page("No citations on this page.")
	if got == nil {
		t.Fatal("expected empty non-nil slice")
	}
	if len(got) != 0 {
		t.Errorf("expected no sources, got %v", got)
	}
	if contribution != "No citations on this page." {
		t.Errorf("expected untouched text, got %q", contribution)
	}
}

func TestPage_StripPolicy(t *testing.T) {
	_, got := Default().Page("Folding is slow [1]. Kinases (Mark, 1997) act.")
	want := "Folding is slow. Kinases act."
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPage_KeepPolicy(t *testing.T) {
	e, err := New("", PolicyKeep)
	if err != nil {
		t.Fatal(err)
	}
	text := "Folding is slow [1]."
	sources, got := e.Page(text)
	if got != text {
		t.Errorf("expected %q, got %q", text, got)
	}
	if len(sources) != 1 {
		t.Errorf("expected 1 source, got %v", sources)
	}
}

func TestNew_CustomPattern(t *testing.T) {
	e, err := New(`SRC_\d{3}`, PolicyStrip)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := e.Page("from SRC_001 and SRC_002, not SRC_1")
	want := []string{"SRC_001", "SRC_002"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if e.Pattern() != `SRC_\d{3}` {
		t.Errorf("unexpected pattern %q", e.Pattern())
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	if _, err := New(`[unclosed`, PolicyStrip); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestNew_RejectsEmptyMatch(t *testing.T) {
	for _, pattern := range []string{`x*`, `(?:\[\d+\])?`, `^`} {
		if _, err := New(pattern, PolicyStrip); err == nil {
			t.Errorf("New(%q): expected error for pattern matching the empty string", pattern)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyStrip, false},
		{"strip", PolicyStrip, false},
		{"KEEP", PolicyKeep, false},
		{"drop", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePolicy(%q): unexpected error state %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParsePolicy(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestDocument_PerPageSourcesAndFullText(t *testing.T) {
	doc := &document.Document{
		Pages: []document.Page{
			{Number: 1, Text: "Page one cites [1] and [2]."},
			{Number: 2, Text: "Page two cites nothing."},
			{Number: 3, Text: "Page three cites (Atlas, 2005)."},
		},
	}
	full := Default().Document(doc)

	if want := "Page one cites and.\nPage two cites nothing.\nPage three cites."; full != want {
		t.Errorf("expected full text %q, got %q", want, full)
	}
	if !reflect.DeepEqual(doc.Pages[0].Sources, []string{"[1]", "[2]"}) {
		t.Errorf("page 1: unexpected sources %v", doc.Pages[0].Sources)
	}
	if doc.Pages[1].Sources == nil || len(doc.Pages[1].Sources) != 0 {
		t.Errorf("page 2: expected empty non-nil sources, got %#v", doc.Pages[1].Sources)
	}
	if !reflect.DeepEqual(doc.Pages[2].Sources, []string{"(Atlas, 2005)"}) {
		t.Errorf("page 3: unexpected sources %v", doc.Pages[2].Sources)
	}
}

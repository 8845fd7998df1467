package newsfeed

import (
	"strings"
	"testing"
)

func TestCleanTextEmpty(t *testing.T) {
	if got := CleanText(""); got != "No content" {
		t.Errorf("CleanText(\"\") = %q, want \"No content\"", got)
	}
}

func TestCleanTextStripsHTML(t *testing.T) {
	in := `<a href="https://example.com">Apple &amp; Microsoft</a> rally`
	if got := CleanText(in); got != "Apple & Microsoft rally" {
		t.Errorf("CleanText = %q", got)
	}
}

func TestCleanTextCollapsesWhitespace(t *testing.T) {
	in := "Breaking:\n\n  markets \t rally"
	if got := CleanText(in); got != "Breaking: markets rally" {
		t.Errorf("CleanText = %q", got)
	}
}

func TestCleanTextRemovesNoise(t *testing.T) {
	if got := CleanText("• Headline here..."); got != "Headline here" {
		t.Errorf("CleanText = %q", got)
	}
	if got := CleanText("- > * Another headline"); got != "Another headline" {
		t.Errorf("CleanText = %q", got)
	}
}

func TestCleanTextTruncates(t *testing.T) {
	in := strings.Repeat("a", 500)
	got := CleanText(in)
	if len(got) != summaryLimit {
		t.Errorf("Expected truncation to %d chars, got %d", summaryLimit, len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("Expected ellipsis suffix after truncation")
	}
}

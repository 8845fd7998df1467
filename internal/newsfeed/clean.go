package newsfeed

import (
	"html"
	"regexp"
	"strings"
)

const summaryLimit = 200

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	trailingEllipsis  = regexp.MustCompile(`\.\.\.$`)
	leadingBullets    = regexp.MustCompile(`^[•\-\*\>\s]*`)
)

// CleanText strips HTML tags and entities, collapses whitespace and removes
// feed noise like trailing ellipses and leading bullets. Long text is
// truncated to keep stored summaries bounded.
func CleanText(text string) string {
	if text == "" {
		return "No content"
	}

	text = tagPattern.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	text = strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
	text = trailingEllipsis.ReplaceAllString(text, "")
	text = leadingBullets.ReplaceAllString(text, "")

	if len(text) > summaryLimit {
		text = text[:summaryLimit-3] + "..."
	}
	return text
}

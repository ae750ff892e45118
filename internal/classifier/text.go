package classifier

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"siteprompt-go-crawler/internal/models"
)

// Normalize folds width and case so that "ＡＩ", "Ai" and "ai" compare equal.
func Normalize(s string) string {
	return cases.Fold().String(norm.NFKC.String(s))
}

// CountOccurrences counts non-overlapping occurrences of keyword in text.
// Both arguments must already be normalized. Matching is plain substring
// matching, not word-boundary matching, so unsegmented Japanese text counts.
func CountOccurrences(text, keyword string) int {
	if keyword == "" || text == "" {
		return 0
	}
	return strings.Count(text, keyword)
}

// AggregateText joins title, description and body text of every page.
func AggregateText(pages []models.PageRecord) string {
	var b strings.Builder
	for _, p := range pages {
		for _, part := range []string{p.Title, p.Description, p.BodyText} {
			if part == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(part)
		}
	}
	return b.String()
}

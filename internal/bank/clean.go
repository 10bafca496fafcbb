package bank

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CleanText strips HTML markup from pasted input (job descriptions and
// resume summaries are often copied from job boards) and collapses
// whitespace. Plain text passes through unchanged apart from whitespace
// normalization.
func CleanText(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}

	if strings.ContainsAny(input, "<>") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
		if err == nil {
			doc.Find("script, style, noscript").Remove()
			input = doc.Text()
		}
	}

	return strings.Join(strings.Fields(input), " ")
}

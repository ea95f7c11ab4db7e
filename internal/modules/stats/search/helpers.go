package search

import (
	"strings"

	"golang.org/x/net/html"
)

const snippetRadius = 80

// stripTags flattens an HTML fragment to its text content.
func stripTags(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return fragment
	}
	var b strings.Builder
	tz := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch tz.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(tz.Text())
		}
	}
}

// makeSnippet extracts a short window of plain text around the first match
// of query, or the head of the text when the query only matched elsewhere
// (title, markup).
func makeSnippet(content, query string) string {
	text := strings.Join(strings.Fields(stripTags(content)), " ")
	if text == "" {
		return ""
	}

	idx := strings.Index(strings.ToLower(text), strings.ToLower(query))
	start := 0
	if idx > snippetRadius {
		start = idx - snippetRadius
	}
	end := len(text)
	if idx >= 0 && idx+len(query)+snippetRadius < end {
		end = idx + len(query) + snippetRadius
	} else if idx < 0 && 2*snippetRadius < end {
		end = 2 * snippetRadius
	}

	snippet := text[start:end]
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(text) {
		snippet += "..."
	}
	return snippet
}

package domain

import "strings"

// SearchQuery identifies one page of search results.
type SearchQuery struct {
	Text string // The trimmed search term
	Page int    // 1-based page number
}

// NewSearchQuery creates a SearchQuery from user input.
func NewSearchQuery(input string, page int) SearchQuery {
	return SearchQuery{
		Text: NormalizeQuery(input),
		Page: page,
	}
}

// IsValid returns true if the query has text and a positive page.
func (q SearchQuery) IsValid() bool {
	return q.Text != "" && q.Page >= 1
}

// NormalizeQuery trims surrounding whitespace from user input.
func NormalizeQuery(input string) string {
	return strings.TrimSpace(input)
}

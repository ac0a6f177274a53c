package app

import (
	"regexp"
	"strings"
)

const maxTracedQueryLength = 512

var (
	queryWhitespaceRegex = regexp.MustCompile(`\s+`)
	// Player and fixture id filters expand to long IN lists.
	placeholderRunRegex = regexp.MustCompile(`\$(\d+)(?:, \$\d+){3,}, \$(\d+)`)
)

func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespaceRegex.ReplaceAllString(query, " ")
	normalized = placeholderRunRegex.ReplaceAllString(normalized, "$$$1, ..., $$$2")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}

	return normalized[:maxTracedQueryLength] + "..."
}

// Package service holds the business logic between HTTP handlers and repositories.
package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// sanitizeText strips every HTML tag from user supplied text. Entities are
// unescaped afterwards because clients render the stored value as text.
func sanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

func sanitizeAll(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = sanitizeText(item)
	}
	return out
}

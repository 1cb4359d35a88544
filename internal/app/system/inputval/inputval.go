// Package inputval is the request validation boundary for the members API.
//
// It turns raw query strings and JSON bodies into typed values and reports
// every failing field at once, keyed by parameter name. Anything past this
// package may assume its inputs are well-typed and in range.
package inputval

import (
	"fmt"
	"html"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Errors maps a parameter name to its failure messages.
type Errors map[string][]string

// Add records a failure for field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Any reports whether at least one failure was recorded.
func (e Errors) Any() bool { return len(e) > 0 }

// Fields returns the failing parameter names, sorted.
func (e Errors) Fields() []string {
	return slices.Sorted(maps.Keys(e))
}

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, f := range e.Fields() {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e[f], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var strict = bluemonday.StrictPolicy()

// MarkupReason is the rejection message for values that carry markup.
const MarkupReason = "must not contain markup"

// PlainText trims s and reports whether it is free of markup. A value the
// strict policy would alter (tags, a stray "<" that opens one) is rejected
// rather than returned truncated.
func PlainText(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	return s, html.UnescapeString(strict.Sanitize(s)) == s
}

var (
	fieldPathRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*(\.[A-Za-z][A-Za-z0-9_]*)*$`)
	metaKeyRe   = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// IsFieldPath reports whether s is a plain dot-qualified document path.
// Operators ($...) and empty segments are rejected.
func IsFieldPath(s string) bool {
	return fieldPathRe.MatchString(s)
}

// IsMetaKey reports whether s may be used as a metadata key.
func IsMetaKey(s string) bool {
	return metaKeyRe.MatchString(s)
}

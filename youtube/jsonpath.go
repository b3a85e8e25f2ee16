// Package youtube provides YouTube watch-page parsing, video metadata
// assembly, and comment extraction models.
//
// The Innertube responses this package consumes are deeply nested and
// loosely typed, so traversal works over plain decoded JSON values
// (map[string]any / []any) addressed by symbolic paths rather than over a
// struct mirror of the whole response shape.
package youtube

import (
	"strconv"
	"strings"
)

// FromPath resolves a symbolic path against a decoded JSON document.
//
// Each segment is an object-key lookup, or an array-index lookup when the
// current node is an array and the segment parses as a non-negative integer.
// Traversal fails at the first missing key, out-of-range index, or type
// mismatch; there is no partial result.
func FromPath(doc any, path ...string) (any, bool) {
	cur := doc
	for _, seg := range path {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// TextFromPath resolves a symbolic path and coerces the terminal node into a
// display string:
//
//   - a string is returned verbatim
//   - a boolean becomes "true"/"false"
//   - an object with a "simpleText" field returns that text
//   - an object with a "runs" list concatenates all run texts in order
//     (YouTube splits rendered text into styled spans; plain text is the
//     concatenation). An empty concatenation counts as absent.
//
// Absence at any step yields ("", false); callers supply their own default.
func TextFromPath(doc any, path ...string) (string, bool) {
	node, ok := FromPath(doc, path...)
	if !ok {
		return "", false
	}

	switch v := node.(type) {
	case string:
		return v, true
	case bool:
		if v {
			return "true", true
		}
		return "false", true
	case map[string]any:
		if s, ok := v["simpleText"].(string); ok {
			return s, true
		}
		if runs, ok := v["runs"].([]any); ok {
			var b strings.Builder
			for _, run := range runs {
				if m, ok := run.(map[string]any); ok {
					if text, ok := m["text"].(string); ok {
						b.WriteString(text)
					}
				}
			}
			if b.Len() > 0 {
				return b.String(), true
			}
		}
	}

	return "", false
}

// TextOr resolves a path to text, falling back to a default (typically one
// of the MISSING_ sentinels).
func TextOr(doc any, fallback string, path ...string) string {
	if s, ok := TextFromPath(doc, path...); ok {
		return s
	}
	return fallback
}

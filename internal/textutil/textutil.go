// Package textutil holds the markup-stripping helpers shared by the HTML
// source adapters. These are best-effort string scans, not a parser: the
// sources they run against change markup constantly and a broken page must
// degrade to skipped records, never to a failed run.
package textutil

import (
	"strings"
	"unicode/utf8"
)

// StripTags removes markup tags from html by tracking an inside-tag state
// across the scan. Content outside tags survives verbatim, including across
// malformed or unclosed tags. Total function, no failure mode.
func StripTags(html string) string {
	var b strings.Builder
	b.Grow(len(html))
	inTag := false
	for i := 0; i < len(html); i++ {
		switch html[i] {
		case '<':
			inTag = true
		case '>':
			inTag = false
		default:
			if !inTag {
				b.WriteByte(html[i])
			}
		}
	}
	return strings.TrimSpace(b.String())
}

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

// UnescapeEntities decodes the five standard HTML entities. Unknown entities
// pass through unchanged.
func UnescapeEntities(s string) string {
	return entityReplacer.Replace(s)
}

// Truncate bounds s to at most n bytes without splitting a UTF-8 rune,
// trimming trailing whitespace.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return strings.TrimSpace(s[:n])
}

// CollapseWhitespace folds runs of whitespace into single spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

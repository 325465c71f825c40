// Package sanitizer cleans untrusted input and the HTML built from it.
//
// Line and Text normalize submitted values: Unicode NFC, control characters
// removed, whitespace tidied. They keep markup characters as typed, since a
// message about "<div>" is still a message. Escaping is the job of whatever
// produces HTML; HTML is the last pass over such output and keeps only the
// elements of bluemonday's user-generated-content policy.
package sanitizer

import (
	"strings"
	"sync"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

var ugcPolicy = sync.OnceValue(bluemonday.UGCPolicy)

// HTML removes scripts, event handlers, unsafe URLs and any element outside
// the UGC allowlist from rendered HTML.
func HTML(s string) string {
	return ugcPolicy().Sanitize(s)
}

// Line cleans a single-line value such as a name.
// Line breaks and tabs collapse to single spaces.
func Line(s string) string {
	s = clean(s, false)
	return strings.Join(strings.Fields(s), " ")
}

// Text cleans a multi-line value such as a message body.
// Line breaks are kept and normalized to "\n".
func Text(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(clean(s, true))
}

func clean(s string, keepNewlines bool) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' && keepNewlines, r == '\t':
			return r
		case r == '\n', r == '\r':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
	return norm.NFC.String(s)
}

// Package normalize canonicalizes marketplace text: localized digits become
// ASCII, invisible formatting characters are dropped and whitespace is collapsed.
package normalize

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const (
	persianZero     = '۰'
	persianNine     = '۹'
	arabicIndicZero = '٠'
	arabicIndicNine = '٩'
)

var (
	dropInvisible = runes.Remove(runes.Predicate(isInvisible))
	asciiDigits   = runes.Map(canonicalDigit)
)

func isInvisible(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\ufeff', '\u200e', '\u200f', '\u061c', '\u2066', '\u2067', '\u2068', '\u2069':
		return true
	}
	return false
}

func canonicalDigit(r rune) rune {
	switch {
	case r >= persianZero && r <= persianNine:
		return '0' + (r - persianZero)
	case r >= arabicIndicZero && r <= arabicIndicNine:
		return '0' + (r - arabicIndicZero)
	}
	return r
}

// Canonicalize maps digits and drops invisible characters but keeps line
// structure. CRLF becomes LF.
func Canonicalize(text string) string {
	if text == "" {
		return ""
	}

	out, _, err := transform.String(dropInvisible, text)
	if err != nil {
		out = text
	}
	if mapped, _, mapErr := transform.String(asciiDigits, out); mapErr == nil {
		out = mapped
	}

	return strings.ReplaceAll(out, "\r\n", "\n")
}

// Normalize canonicalizes text and collapses every whitespace run, including
// newlines, to one space. It is idempotent.
func Normalize(text string) string {
	return strings.Join(strings.Fields(Canonicalize(text)), " ")
}

// Lines canonicalizes text and returns its trimmed, non-empty lines with inner
// whitespace collapsed.
func Lines(text string) []string {
	raw := strings.Split(Canonicalize(text), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// ParsePrice strips separators (, / ٫ ٬ .) and any other non-digit and returns
// the remaining digits as an integer, or 0.
func ParsePrice(s string) int64 {
	digits := Digits(s)
	if digits == "" {
		return 0
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// Digits returns only the ASCII digits of s after canonicalization.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		r = canonicalDigit(r)
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

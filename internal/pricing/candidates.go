package pricing

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Hosseinjeff/Wholesale-project/internal/lexicon"
	"github.com/Hosseinjeff/Wholesale-project/internal/normalize"
)

const (
	minPriceDigits = 4
	maxPriceDigits = 8
	minPairValue   = 10000
)

var numeral = regexp.MustCompile(`\d(?:[\d,/.٫٬]*\d)?`)

func isGroupSeparator(r rune) bool {
	switch r {
	case ',', '/', '.', '٫', '٬':
		return true
	}
	return false
}

// ParseCandidate reads a numeral such as "1,250,000" or "75/000" and reports
// whether it is a plausible price. Groups after a separator must have exactly
// three digits, which rules out dates and decimals. Only 4 to 8 digits pass:
// shorter runs are quantities, longer ones phone numbers.
func ParseCandidate(s string) (int64, bool) {
	s = normalize.Canonicalize(strings.TrimSpace(s))
	s = strings.TrimRightFunc(s, isGroupSeparator)
	if s == "" {
		return 0, false
	}

	groups := strings.FieldsFunc(s, isGroupSeparator)
	if len(groups) == 0 {
		return 0, false
	}
	for i, g := range groups {
		for _, r := range g {
			if r < '0' || r > '9' {
				return 0, false
			}
		}
		if i > 0 && len(g) != 3 {
			return 0, false
		}
		if len(groups) > 1 && i == 0 && len(g) > 3 {
			return 0, false
		}
	}

	digits := strings.Join(groups, "")
	if len(digits) < minPriceDigits || len(digits) > maxPriceDigits {
		return 0, false
	}
	return normalize.ParsePrice(digits), true
}

// Candidates returns the plausible prices on one line, in order of
// appearance. A numeral glued to a preceding Latin letter, as in a model
// code, is not a price. "75000/120000" yields both values.
func Candidates(line string) []int64 {
	line = normalize.Canonicalize(line)

	var out []int64
	for _, loc := range numeral.FindAllStringIndex(line, -1) {
		if gluedToCode(line, loc[0]) {
			continue
		}
		out = append(out, parseNumeral(line[loc[0]:loc[1]])...)
	}
	return out
}

func parseNumeral(s string) []int64 {
	if v, ok := ParseCandidate(s); ok {
		return []int64{v}
	}
	return slashPair(s)
}

// slashPair reads two prices joined by a slash. Both halves must be valid
// candidates of at least minPairValue, which keeps dates and ratios out.
func slashPair(s string) []int64 {
	left, right, ok := strings.Cut(s, "/")
	if !ok || strings.Contains(right, "/") {
		return nil
	}
	a, okA := ParseCandidate(left)
	b, okB := ParseCandidate(right)
	if !okA || !okB || a < minPairValue || b < minPairValue {
		return nil
	}
	return []int64{a, b}
}

func gluedToCode(line string, start int) bool {
	prev, _ := utf8.DecodeLastRuneInString(line[:start])
	return unicode.Is(unicode.Latin, prev)
}

// IsPriceLine reports a line that quotes a price: a plausible numeral that is
// not on a contact line, or a price keyword next to a digit.
func IsPriceLine(line string) bool {
	if lexicon.IsContactLine(line) {
		return false
	}
	if len(Candidates(line)) > 0 {
		return true
	}
	return lexicon.PricingWords.Contains(line) && strings.ContainsFunc(normalize.Canonicalize(line), unicode.IsDigit)
}

// FirstCandidateIndex returns the byte offset in line of the first plausible
// price, or -1. line must already be canonicalized.
func FirstCandidateIndex(line string) int {
	for _, loc := range numeral.FindAllStringIndex(line, -1) {
		if gluedToCode(line, loc[0]) {
			continue
		}
		if len(parseNumeral(line[loc[0]:loc[1]])) > 0 {
			return loc[0]
		}
	}
	return -1
}

package fields

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Hosseinjeff/Wholesale-project/internal/lexicon"
	"github.com/Hosseinjeff/Wholesale-project/internal/pricing"
)

const minNameRunes = 2

var trailingPriceWord = regexp.MustCompile(`(?i)\s*(?:قیمت|فی|price)\s*$`)

// nameLine is where the product name was found.
type nameLine struct {
	name      string
	variation string
	index     int
	// remainder is the price part of a "name : price" line.
	remainder string
	composite bool
}

// State carries what earlier segments of the same message established.
type State struct {
	base string
}

// NewState starts a message.
func NewState() *State {
	return &State{}
}

// BaseName is the last plain product name seen in the message.
func (s *State) BaseName() string {
	return s.base
}

// findName picks the first line that can name a product. It reports false
// when the segment has no usable name or when its first candidate line is
// contact or address information.
func findName(lines []string, st *State) (nameLine, bool) {
	var pendingVariation string

	for i, raw := range lines {
		line := lexicon.StripDecorations(raw)
		if line == "" {
			continue
		}
		if lexicon.IsContactLine(raw) {
			return nameLine{}, false
		}

		if lexicon.IsVariationLabel(line) {
			label, rest := line, ""
			if left, right := splitNamePrice(line); left != "" {
				label, rest = left, right
			}
			label = labelText(label)
			if st.base != "" {
				return nameLine{
					name:      st.base + " " + label,
					variation: label,
					index:     i,
					remainder: rest,
					composite: true,
				}, true
			}
			if pendingVariation == "" {
				pendingVariation = label
			}
			continue
		}

		if pricing.IsPriceLine(line) {
			if left, rest := splitNamePrice(line); left != "" && validName(left) {
				return nameLine{name: left, variation: pendingVariation, index: i, remainder: rest}, true
			}
			continue
		}
		if lexicon.IsDetailLine(line) || lexicon.IsBareLabel(line) || lexicon.IsStockOnly(line) ||
			lexicon.IsStockNarrative(line) {
			continue
		}

		if lexicon.IsSizeQualifier(line) && st.base != "" {
			return nameLine{name: st.base + " " + line, variation: line, index: i, composite: true}, true
		}
		if !validName(line) {
			return nameLine{}, false
		}
		return nameLine{name: line, variation: pendingVariation, index: i}, true
	}
	return nameLine{}, false
}

// splitNamePrice splits "name : price" or "name 75,000" into its parts. The
// left side is empty when the line starts with the price.
func splitNamePrice(line string) (string, string) {
	idx := pricing.FirstCandidateIndex(line)
	if idx < 0 {
		return "", ""
	}
	left := strings.TrimRight(line[:idx], " :：-–—=")
	left = trailingPriceWord.ReplaceAllString(left, "")
	return strings.TrimSpace(left), strings.TrimSpace(line[idx:])
}

func validName(name string) bool {
	name = strings.TrimSpace(name)
	switch {
	case utf8.RuneCountInString(name) < minNameRunes:
		return false
	case lexicon.IsNumericOrPunct(name):
		return false
	case lexicon.IsContactLine(name):
		return false
	case lexicon.IsBareLabel(name):
		return false
	}
	return true
}

func labelText(s string) string {
	s = strings.NewReplacer(":", " ", "：", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

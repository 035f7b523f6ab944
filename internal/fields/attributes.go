package fields

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Hosseinjeff/Wholesale-project/internal/profile"
)

var (
	genericPackaging = regexp.MustCompile(`(\d+)\s*(?:عددی|تایی|باکس|کارتن)`)

	volumePattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(` +
		`گرمی|گرم|کیلوگرمی|کیلوگرم|کیلویی|کیلو|میلی\s*لیتری|میلی\s*لیتر|میلی|سی\s*سی|لیتری|لیتر|` +
		`kg|gr|ml|cc|g|l)`)

	variationPattern = regexp.MustCompile(
		`(?i)(طعم|مدل|رنگ|سایز|رایحه|flavou?r|model|colou?r|size)\s*[:：]\s*([^:：\n]+)`)

	leadingInt = regexp.MustCompile(`\d+`)
)

// orderedLines puts the name line first so its attributes take precedence.
func orderedLines(lines []string, nameIdx int) []string {
	if nameIdx < 0 || nameIdx >= len(lines) {
		return lines
	}
	out := make([]string, 0, len(lines))
	out = append(out, lines[nameIdx])
	out = append(out, lines[:nameIdx]...)
	return append(out, lines[nameIdx+1:]...)
}

// packaging returns the per-package quantity label and its integer value.
func packaging(lines []string, patterns []profile.PackagingPattern) (string, int) {
	for _, line := range lines {
		for _, p := range patterns {
			m := p.Pattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if p.Suffix != "" {
				return withQuantity(m[1] + " " + p.Suffix)
			}
			return withQuantity(m[0])
		}
		if m := genericPackaging.FindString(line); m != "" {
			return withQuantity(m)
		}
	}
	return "", 0
}

func withQuantity(label string) (string, int) {
	label = strings.Join(strings.Fields(label), " ")
	qty, err := strconv.Atoi(leadingInt.FindString(label))
	if err != nil {
		return label, 0
	}
	return label, qty
}

func volume(lines []string) string {
	for _, line := range lines {
		for _, m := range volumePattern.FindAllStringSubmatchIndex(line, -1) {
			// "128 GB" is not 128 grams.
			if next, _ := utf8.DecodeRuneInString(line[m[1]:]); isLatinLetter(next) {
				continue
			}
			return line[m[2]:m[3]] + " " + strings.Join(strings.Fields(line[m[4]:m[5]]), " ")
		}
	}
	return ""
}

func isLatinLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func variation(lines []string) string {
	for _, line := range lines {
		if m := variationPattern.FindStringSubmatch(line); m != nil {
			return labelText(m[1] + " " + strings.TrimSpace(m[2]))
		}
	}
	return ""
}

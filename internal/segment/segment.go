// Package segment splits a message into candidate product blocks.
package segment

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Hosseinjeff/Wholesale-project/internal/domain"
	"github.com/Hosseinjeff/Wholesale-project/internal/fields"
	"github.com/Hosseinjeff/Wholesale-project/internal/lexicon"
	"github.com/Hosseinjeff/Wholesale-project/internal/normalize"
	"github.com/Hosseinjeff/Wholesale-project/internal/pricing"
	"github.com/Hosseinjeff/Wholesale-project/internal/profile"
)

const (
	// MinSegmentRunes drops blocks that are effectively empty.
	MinSegmentRunes = 5
	// MaxBlockLines is the size above which a structured block is re-split
	// on decoration anchors.
	MaxBlockLines   = 8
	minOpenerRunes  = 4
)

var blankLine = regexp.MustCompile(`\n[ \t]*\n`)

// Split returns the product segments of text for profile p.
func Split(text string, p profile.Profile) []domain.ProductSegment {
	var blocks [][]string
	if p.Structured() {
		blocks = splitStructured(normalize.Canonicalize(text))
	} else {
		blocks = walkLines(normalize.Lines(text))
	}

	out := make([]domain.ProductSegment, 0, len(blocks))
	for _, b := range blocks {
		seg := domain.ProductSegment{Lines: b, Text: strings.Join(b, "\n")}
		if utf8.RuneCountInString(strings.TrimSpace(seg.Text)) < MinSegmentRunes {
			continue
		}
		out = append(out, seg)
	}
	return out
}

func splitStructured(text string) [][]string {
	var blocks [][]string
	for _, chunk := range blankLine.Split(text, -1) {
		if lines := normalize.Lines(chunk); len(lines) > 0 {
			blocks = append(blocks, lines)
		}
	}

	if len(blocks) == 1 {
		return splitOnAnchors(blocks[0])
	}

	out := make([][]string, 0, len(blocks))
	for _, b := range blocks {
		if len(b) > MaxBlockLines {
			out = append(out, splitOnAnchors(b)...)
			continue
		}
		out = append(out, b)
	}
	return out
}

// splitOnAnchors starts a new block at each line led by a decoration glyph
// whose remaining text names a product. Price, detail and status lines never
// start a block even when decorated.
func splitOnAnchors(lines []string) [][]string {
	var (
		out [][]string
		cur []string
	)
	for _, line := range lines {
		if len(cur) > 0 && isAnchor(line) {
			out = append(out, cur)
			cur = nil
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func isAnchor(line string) bool {
	if !lexicon.StartsWithDecoration(line) || lexicon.IsContactLine(line) {
		return false
	}
	rest := lexicon.StripDecorations(line)
	if utf8.RuneCountInString(rest) < 3 || lexicon.IsNumericOrPunct(rest) {
		return false
	}
	if lexicon.IsVariationLabel(rest) {
		return true
	}
	return !pricing.IsPriceLine(rest) &&
		!lexicon.IsDetailLine(rest) &&
		!lexicon.IsBareLabel(rest) &&
		!lexicon.IsStockOnly(rest)
}

// walkLines segments a message with no channel structure. A line opens a new
// product when it is not a price, detail or contact line, is long enough, and
// the open product already has a price or is marked out of stock. Contact
// lines close the open product and are dropped, as are lines that only say an
// earlier batch ran out.
func walkLines(lines []string) [][]string {
	var (
		out      [][]string
		cur      []string
		resolved bool
	)
	for _, line := range lines {
		if lexicon.IsContactLine(line) {
			if cur != nil {
				out = append(out, cur)
				cur, resolved = nil, false
			}
			continue
		}
		if lexicon.IsStockNarrative(line) {
			continue
		}
		priceLine := pricing.IsPriceLine(line)
		opener := !priceLine &&
			utf8.RuneCountInString(line) >= minOpenerRunes &&
			!lexicon.IsDetailLine(line) &&
			(cur == nil || resolved)

		switch {
		case opener:
			if cur != nil {
				out = append(out, cur)
			}
			cur = []string{line}
			resolved = fields.StockStatus(line) == domain.StockOutOfStock
		case cur != nil:
			cur = append(cur, line)
			if len(pricing.Candidates(line)) > 0 || fields.StockStatus(line) == domain.StockOutOfStock {
				resolved = true
			}
		}
	}
	if cur != nil {
		out = append(out, cur)
	}
	return out
}

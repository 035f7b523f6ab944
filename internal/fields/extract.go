// Package fields extracts product attributes from one segment: name,
// variation, packaging, volume, stock status and category.
package fields

import (
	"strings"

	"github.com/Hosseinjeff/Wholesale-project/internal/domain"
	"github.com/Hosseinjeff/Wholesale-project/internal/lexicon"
	"github.com/Hosseinjeff/Wholesale-project/internal/profile"
)

// Draft is a segment's attributes before price resolution.
type Draft struct {
	Name         string
	Variation    string
	Composite    bool
	Packaging    string
	PackQuantity int
	Volume       string
	StockStatus  domain.StockStatus
	Category     string
	Description  string
	// PriceLines are the segment lines the price analyzer should read. The
	// name line is excluded except for the price half of "name : price".
	PriceLines []string
}

// Extract reads one segment. It reports false when no acceptable name
// exists, in which case the segment is skipped.
func Extract(seg domain.ProductSegment, p profile.Profile, st *State) (Draft, bool) {
	found, ok := findName(seg.Lines, st)
	if !ok {
		return Draft{}, false
	}
	if !found.composite {
		st.base = found.name
	}

	lines := orderedLines(seg.Lines, found.index)
	d := Draft{
		Name:        found.name,
		Variation:   found.variation,
		Composite:   found.composite,
		Volume:      volume(lines),
		StockStatus: StockStatus(stockText(seg.Lines)),
		Category:    Category(seg.Text, p.CategoryHints),
		Description: strings.Join(seg.Lines, "\n"),
	}
	d.Packaging, d.PackQuantity = packaging(lines, p.Packaging)
	if d.Variation == "" {
		d.Variation = variation(seg.Lines)
	}

	d.PriceLines = make([]string, 0, len(seg.Lines))
	for i, l := range seg.Lines {
		if i == found.index {
			if found.remainder != "" {
				d.PriceLines = append(d.PriceLines, found.remainder)
			}
			continue
		}
		d.PriceLines = append(d.PriceLines, l)
	}
	return d, true
}

// stockText is the segment text without lines about an earlier batch.
func stockText(lines []string) string {
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if !lexicon.IsStockNarrative(l) {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}

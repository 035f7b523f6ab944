// Package pricing decides which numbers in a product segment are the sale
// price and the consumer price.
package pricing

import (
	"slices"
	"strings"

	"github.com/Hosseinjeff/Wholesale-project/internal/domain"
	"github.com/Hosseinjeff/Wholesale-project/internal/lexicon"
	"github.com/Hosseinjeff/Wholesale-project/internal/normalize"
	"github.com/Hosseinjeff/Wholesale-project/internal/profile"
)

// Confidence levels assigned by the disambiguation rules.
const (
	ConfidenceSinglePrice    = 0.90
	ConfidenceMinMax         = 0.92
	ConfidenceLabeledPair    = 0.95
	ConfidenceLabeled        = 0.90
	ConfidenceConsumerOnly   = 0.85
	ConfidenceConsumerAsSale = 0.80
)

// Analysis is the price reading of one segment. Zero means absent.
type Analysis struct {
	Sale       int64
	Consumer   int64
	Box        int64
	Unit       int64
	PriceType  domain.PriceType
	Confidence float64
	// Labeled is set when any sale, consumer, box or unit label matched.
	Labeled bool
	// Swapped is set when the ordering post-condition exchanged the prices.
	Swapped bool
	// Candidates are the distinct plausible numerals, in order of appearance.
	Candidates []int64
}

// HasPrice reports whether a sale price was resolved.
func (a Analysis) HasPrice() bool {
	return a.Sale > 0
}

// Analyzer applies a profile's label patterns before the keyword and
// ordering rules.
type Analyzer struct {
	labels []profile.PriceLabel
}

// NewAnalyzer returns an analyzer for the given label patterns.
func NewAnalyzer(labels []profile.PriceLabel) *Analyzer {
	return &Analyzer{labels: labels}
}

// Analyze reads the segment lines. packQty is the number of units per
// package, or zero when unknown.
func (a *Analyzer) Analyze(lines []string, packQty int) Analysis {
	var (
		res       Analysis
		sale      int64
		unlabeled []int64
		packaging bool
	)

	for _, raw := range lines {
		line := strings.Join(strings.Fields(normalize.Canonicalize(raw)), " ")
		if line == "" || lexicon.IsContactLine(line) {
			continue
		}
		if lexicon.PackagingWords.Contains(line) {
			packaging = true
		}

		cands := Candidates(line)
		for _, c := range cands {
			if !slices.Contains(res.Candidates, c) {
				res.Candidates = append(res.Candidates, c)
			}
		}
		if len(cands) == 0 {
			continue
		}

		used := a.applyLabels(line, &res, &sale)
		leftover := make([]int64, 0, len(cands))
		for _, c := range cands {
			if !used[c] {
				leftover = append(leftover, c)
			}
		}
		if len(used) > 0 {
			unlabeled = append(unlabeled, leftover...)
			continue
		}
		unlabeled = append(unlabeled, applyKeywords(line, leftover, &res, &sale)...)
	}

	res.resolve(sale, distinct(unlabeled, res))
	res.PriceType = priceType(res, packaging)
	res.enforceOrdering(packQty)
	return res
}

// Analyze runs a one-off analyzer with the given labels.
func Analyze(lines []string, labels []profile.PriceLabel, packQty int) Analysis {
	return NewAnalyzer(labels).Analyze(lines, packQty)
}

// applyLabels assigns values captured by role-bearing labels and returns the
// values it consumed. Generic labels consume nothing.
func (a *Analyzer) applyLabels(line string, res *Analysis, sale *int64) map[int64]bool {
	used := make(map[int64]bool)
	for _, l := range a.labels {
		if l.Role == profile.RoleGeneric {
			continue
		}
		for _, m := range l.Pattern.FindAllStringSubmatch(line, -1) {
			v, ok := ParseCandidate(m[1])
			if !ok || used[v] {
				continue
			}
			var slot *int64
			switch l.Role {
			case profile.RoleBox:
				slot = &res.Box
			case profile.RoleUnit:
				slot = &res.Unit
			case profile.RoleConsumer:
				slot = &res.Consumer
			case profile.RoleSale:
				slot = sale
			}
			if slot == nil {
				continue
			}
			if *slot == 0 {
				*slot = v
			}
			used[v] = true
			res.Labeled = true
		}
	}
	return used
}

// applyKeywords handles lines no label pattern claimed. It returns the values
// that stay unlabeled.
func applyKeywords(line string, values []int64, res *Analysis, sale *int64) []int64 {
	if len(values) == 0 {
		return nil
	}
	consumer, seller := lexicon.HasConsumerMarker(line), lexicon.HasSaleMarker(line)

	switch {
	case len(values) >= 2 && (consumer || seller):
		lo, hi := slices.Min(values), slices.Max(values)
		if lo == hi {
			return values
		}
		setIfZero(sale, lo)
		setIfZero(&res.Consumer, hi)
	case consumer && !seller:
		setIfZero(&res.Consumer, values[0])
	case seller && !consumer:
		setIfZero(sale, values[0])
	default:
		return values
	}
	res.Labeled = true
	return nil
}

func setIfZero(slot *int64, v int64) {
	if *slot == 0 {
		*slot = v
	}
}

// distinct drops duplicates and values already assigned to a role.
func distinct(values []int64, res Analysis) []int64 {
	out := make([]int64, 0, len(values))
	for _, v := range values {
		if v == res.Box || v == res.Unit || v == res.Consumer || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func (a *Analysis) resolve(sale int64, unlabeled []int64) {
	if !a.Labeled {
		switch len(unlabeled) {
		case 0:
		case 1:
			a.Sale = unlabeled[0]
			a.Confidence = ConfidenceSinglePrice
		default:
			a.Sale, a.Consumer = slices.Min(unlabeled), slices.Max(unlabeled)
			a.Confidence = ConfidenceMinMax
		}
		return
	}

	a.Sale = sale
	if a.Sale == 0 {
		a.Sale = a.Box
	}
	if a.Sale == 0 {
		a.Sale = a.Unit
	}

	switch {
	case a.Sale > 0 && a.Consumer > 0:
		a.Confidence = ConfidenceLabeledPair
	case a.Sale > 0:
		a.Confidence = ConfidenceLabeled
	case a.Consumer > 0 && len(unlabeled) > 0:
		a.Sale = slices.Min(unlabeled)
		a.Confidence = ConfidenceConsumerOnly
	case a.Consumer > 0:
		a.Sale = a.Consumer
		a.Confidence = ConfidenceConsumerAsSale
	}
}

func priceType(a Analysis, packaging bool) domain.PriceType {
	switch {
	case a.Box > 0 && a.Unit > 0:
		return domain.PriceBoth
	case a.Box > 0:
		return domain.PricePackOnly
	case a.Unit > 0 && !packaging:
		return domain.PriceSingleOnly
	case packaging:
		return domain.PricePack
	default:
		return domain.PriceSingle
	}
}

// enforceOrdering keeps sale ≤ consumer. A sale price quoted per box is
// compared on a per-unit basis, since consumer prices are quoted per unit;
// without a unit basis the two are not comparable and are left alone.
func (a *Analysis) enforceOrdering(packQty int) {
	if a.Sale == 0 || a.Consumer == 0 {
		return
	}

	basis := a.Sale
	if a.Box > 0 && a.Sale == a.Box {
		switch {
		case a.Unit > 0:
			basis = a.Unit
		case packQty > 1:
			basis = a.Sale / int64(packQty)
		default:
			return
		}
	}

	if basis > a.Consumer {
		a.Sale, a.Consumer = a.Consumer, a.Sale
		a.Swapped = true
	}
}

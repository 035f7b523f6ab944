// Package quality scores extracted records for manual review and watches
// the extraction outcome stream for systemic degradation.
package quality

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Hosseinjeff/Wholesale-project/internal/domain"
)

const (
	// Default review thresholds
	defaultMaxDiscount    = 0.80
	defaultMinDiscount    = 0.05
	defaultMinConfidence  = 0.85
	defaultMaxDeviation   = 0.50
	defaultMinHistorySize = 3

	percent = 100
)

// Config holds the review thresholds.
type Config struct {
	MaxDiscount    float64      `env:"QUALITY_MAX_DISCOUNT"     yaml:"max_discount"`
	MinDiscount    float64      `env:"QUALITY_MIN_DISCOUNT"     yaml:"min_discount"`
	MinConfidence  float64      `env:"QUALITY_MIN_CONFIDENCE"   yaml:"min_confidence"`
	MaxDeviation   float64      `env:"QUALITY_MAX_DEVIATION"    yaml:"max_deviation"`
	MinHistorySize int          `env:"QUALITY_MIN_HISTORY_SIZE" yaml:"min_history_size"`
	Window         WindowConfig `yaml:"window"`
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.MaxDiscount == 0 {
		c.MaxDiscount = defaultMaxDiscount
	}
	if c.MinDiscount == 0 {
		c.MinDiscount = defaultMinDiscount
	}
	if c.MinConfidence == 0 {
		c.MinConfidence = defaultMinConfidence
	}
	if c.MaxDeviation == 0 {
		c.MaxDeviation = defaultMaxDeviation
	}
	if c.MinHistorySize == 0 {
		c.MinHistorySize = defaultMinHistorySize
	}
	c.Window.SetDefaults()
}

// Verdict is the review decision for one record.
type Verdict struct {
	RequiresReview bool     `json:"requires_review"`
	Reasons        []string `json:"reasons,omitempty"`
}

// Reason joins all reasons with "; ".
func (v Verdict) Reason() string {
	return strings.Join(v.Reasons, "; ")
}

// Checker flags records whose prices or confidence look wrong.
type Checker struct {
	cfg Config
}

// NewChecker creates a checker; zero thresholds take their defaults.
func NewChecker(cfg Config) *Checker {
	cfg.SetDefaults()
	return &Checker{cfg: cfg}
}

// Check evaluates rec against its own prices and against stats, the
// historical sale prices of products with the same name. Reasons accumulate.
func (c *Checker) Check(rec domain.ProductRecord, stats domain.PriceStats) Verdict {
	var v Verdict
	flag := func(format string, args ...any) {
		v.RequiresReview = true
		v.Reasons = append(v.Reasons, fmt.Sprintf(format, args...))
	}

	if d, ok := discount(rec); ok {
		switch {
		case d > c.cfg.MaxDiscount:
			flag("implausible discount %.0f%% above %.0f%%", d*percent, c.cfg.MaxDiscount*percent)
		case d < c.cfg.MinDiscount:
			flag("implausible discount %.0f%% below %.0f%%", d*percent, c.cfg.MinDiscount*percent)
		}
	}

	if rec.ExtractionConfidence < c.cfg.MinConfidence {
		flag("low extraction confidence %.2f", rec.ExtractionConfidence)
	}

	if stats.SampleCount >= c.cfg.MinHistorySize && stats.Mean > 0 && rec.SalePrice > 0 {
		dev := math.Abs(float64(rec.SalePrice)-stats.Mean) / stats.Mean
		if dev > c.cfg.MaxDeviation {
			flag("sale price %d deviates %.0f%% from mean %.0f over %d samples",
				rec.SalePrice, dev*percent, stats.Mean, stats.SampleCount)
		}
	}

	return v
}

// discount is 1 - sale/consumer on a per-unit basis. Equal prices claim no
// promotion and are not checked; a box price with no unit basis is not
// comparable.
func discount(rec domain.ProductRecord) (float64, bool) {
	if rec.SalePrice <= 0 || rec.ConsumerPrice == nil || *rec.ConsumerPrice <= 0 {
		return 0, false
	}
	consumer := *rec.ConsumerPrice
	if consumer == rec.SalePrice {
		return 0, false
	}

	sale := rec.SalePrice
	if rec.BoxPrice != nil && *rec.BoxPrice == rec.SalePrice {
		switch qty := packQuantity(rec.Packaging); {
		case rec.UnitPrice != nil && *rec.UnitPrice > 0:
			sale = *rec.UnitPrice
		case qty > 1:
			sale = rec.SalePrice / int64(qty)
		default:
			return 0, false
		}
	}
	return 1 - float64(sale)/float64(consumer), true
}

func packQuantity(packaging string) int {
	end := strings.IndexFunc(packaging, func(r rune) bool { return r < '0' || r > '9' })
	if end < 0 {
		end = len(packaging)
	}
	n, err := strconv.Atoi(packaging[:end])
	if err != nil {
		return 0
	}
	return n
}

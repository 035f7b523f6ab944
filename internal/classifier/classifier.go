// Package classifier labels a message as a product listing, an out-of-stock
// notice or chatter before any extraction runs.
package classifier

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Hosseinjeff/Wholesale-project/internal/domain"
	"github.com/Hosseinjeff/Wholesale-project/internal/lexicon"
	"github.com/Hosseinjeff/Wholesale-project/internal/normalize"
)

const (
	// Classification confidences
	outOfStockConfidence   = 0.9
	structuredConfidence   = 0.95
	unstructuredConfidence = 0.7
	nonProductConfidence   = 0.8
)

// priceSeparator matches "1,250,000", "75/000" and ": 65" style price marks.
var priceSeparator = regexp.MustCompile(`\d[,/٫٬.]\d{3}|[:：]\s*\d`)

// ChannelSource tells structured channels apart.
type ChannelSource interface {
	IsStructured(channel string) bool
}

// Classifier gates extraction
type Classifier struct {
	channels ChannelSource
}

// New creates a classifier. A nil source treats every channel as unstructured.
func New(channels ChannelSource) *Classifier {
	return &Classifier{channels: channels}
}

// Classify applies the rules in order: out-of-stock without any price
// signal, then price signal with a digit, then non-product.
func (c *Classifier) Classify(text, channel string) domain.Classification {
	norm := normalize.Normalize(text)
	pricing := HasPricingSignal(norm)

	if lexicon.OutOfStockWords.Contains(norm) && !pricing {
		return domain.Classification{Type: domain.OutOfStock, Confidence: outOfStockConfidence}
	}

	if pricing && strings.ContainsFunc(norm, unicode.IsDigit) {
		confidence := unstructuredConfidence
		if c.channels != nil && c.channels.IsStructured(channel) {
			confidence = structuredConfidence
		}
		return domain.Classification{Type: domain.ProductListing, Confidence: confidence}
	}

	return domain.Classification{Type: domain.NonProduct, Confidence: nonProductConfidence}
}

// HasPricingSignal reports a pricing keyword or a price-shaped separator in
// normalized text.
func HasPricingSignal(norm string) bool {
	return lexicon.PricingWords.Contains(norm) || priceSeparator.MatchString(norm)
}

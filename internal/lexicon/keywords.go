// Package lexicon holds the Persian/English vocabulary the extractor reasons
// with: keyword sets matched with Aho-Corasick, and line predicates built on them.
package lexicon

import (
	"strings"
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// KeywordSet matches any of a fixed list of keywords in one pass over the text.
// Matching is case-insensitive for Latin script.
type KeywordSet struct {
	mu       sync.Mutex
	keywords []string
	matcher  *ahocorasick.Matcher
}

// NewKeywordSet builds the automaton. Blank keywords are ignored.
func NewKeywordSet(keywords ...string) *KeywordSet {
	s := &KeywordSet{keywords: make([]string, 0, len(keywords))}
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			s.keywords = append(s.keywords, kw)
		}
	}
	if len(s.keywords) > 0 {
		s.matcher = ahocorasick.NewStringMatcher(s.keywords)
	}
	return s
}

// Match returns the keywords found in text, in dictionary order.
func (s *KeywordSet) Match(text string) []string {
	if s.matcher == nil || text == "" {
		return nil
	}

	// Matcher.Match mutates internal counters.
	s.mu.Lock()
	hits := s.matcher.Match([]byte(strings.ToLower(text)))
	s.mu.Unlock()

	found := make([]string, 0, len(hits))
	for _, idx := range hits {
		if idx < len(s.keywords) {
			found = append(found, s.keywords[idx])
		}
	}
	return found
}

// Contains reports whether any keyword occurs in text.
func (s *KeywordSet) Contains(text string) bool {
	return len(s.Match(text)) > 0
}

// Keywords returns a copy of the dictionary.
func (s *KeywordSet) Keywords() []string {
	return append([]string(nil), s.keywords...)
}

// Stock keyword sets, in the order they are checked.
var (
	OutOfStockWords = NewKeywordSet(
		"ناموجود", "تمام شد", "تمام شده", "اتمام موجودی", "موجود نیست", "تموم شد", "❌",
		"sold out", "out of stock", "unavailable", "discontinued",
	)
	LimitedWords = NewKeywordSet(
		"موجودی محدود", "تعداد محدود", "محدود", "آخرین موجودی",
		"limited", "few left", "last pieces", "running low",
	)
	PreOrderWords = NewKeywordSet(
		"پیش فروش", "پیش خرید", "به زودی", "بزودی",
		"pre-order", "preorder", "coming soon", "available soon",
	)
	AvailableWords = NewKeywordSet(
		"موجود", "available", "in stock", "ready to ship",
	)
)

// BatchWords refer to an earlier shipment rather than a product.
var BatchWords = NewKeywordSet(
	"بار قبلی", "بار قبل", "سری قبلی", "سری قبل", "محموله قبلی", "موجودی قبلی", "بار قدیم",
	"previous batch", "old batch", "last batch", "old stock", "previous stock",
)

// PricingWords signal that a message quotes prices.
var PricingWords = NewKeywordSet(
	"قیمت", "تومان", "تومن", "ریال", "فی:", "فی :", "مصرف", "فروش", "خرید", "همکار", "عمده", "دونه ای",
	"price", "toman", "rial", "usd", "$",
)

// ConsumerWords label a consumer/reference price.
var ConsumerWords = NewKeywordSet(
	"مصرف", "روی جلد", "consumer", "retail", "msrp",
)

// SaleWords label the seller's own price. The bare pronoun "ما" is matched
// separately because it occurs inside unrelated words.
var SaleWords = NewKeywordSet(
	"فروش", "خرید", "همکار", "عمده", "wholesale", "our price", "sale price",
)

// PackagingWords mean the price is quoted per box, carton or pack.
var PackagingWords = NewKeywordSet(
	"باکس", "کارتن", "بسته", "جعبه", "شیرینک", "box", "carton", "pack", "sheet",
)

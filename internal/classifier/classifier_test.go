package classifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Hosseinjeff/Wholesale-project/internal/classifier"
	"github.com/Hosseinjeff/Wholesale-project/internal/domain"
	"github.com/Hosseinjeff/Wholesale-project/internal/profile"
)

func TestClassify(t *testing.T) {
	c := classifier.New(profile.Default())

	tests := []struct {
		name       string
		text       string
		channel    string
		want       domain.ClassificationType
		confidence float64
	}{
		{
			name:       "structured listing",
			text:       "انرژی زا هایپ اصلی\n✅قیمت هر باکس: ۱,۲۰۰,۰۰۰ تومان",
			channel:    "@top_shop_rahimi",
			want:       domain.ProductListing,
			confidence: 0.95,
		},
		{
			name:       "unknown channel listing",
			text:       "Wireless earbuds 1,450,000",
			channel:    "@random_shop",
			want:       domain.ProductListing,
			confidence: 0.7,
		},
		{
			name:       "list channel with slash separators",
			text:       "کاپوچینو گوددی ۳۰ تایی\n: ۷۵/۰۰۰",
			channel:    "@nobelshop118",
			want:       domain.ProductListing,
			confidence: 0.95,
		},
		{
			name:       "pure out of stock",
			text:       "همه محصولات ناموجود شد ❌",
			channel:    "@bonakdarjavan",
			want:       domain.OutOfStock,
			confidence: 0.9,
		},
		{
			name:       "chatter",
			text:       "سلام دوستان، عید همگی مبارک",
			channel:    "@bonakdarjavan",
			want:       domain.NonProduct,
			confidence: 0.8,
		},
		{
			name:       "price keyword without digits",
			text:       "برای استعلام قیمت پیام دهید",
			channel:    "@random_shop",
			want:       domain.NonProduct,
			confidence: 0.8,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.text, tt.channel)
			assert.Equal(t, tt.want, got.Type)
			assert.InDelta(t, tt.confidence, got.Confidence, 1e-9)
		})
	}
}

func TestClassify_PricingOutranksOutOfStock(t *testing.T) {
	c := classifier.New(nil)

	got := c.Classify("Sold out of the old batch, new stock priced at 85,000 toman", "@any")
	assert.Equal(t, domain.ProductListing, got.Type)

	got = c.Classify("ناموجود شد. محموله جدید قیمت: ۹۰,۰۰۰ تومان", "@any")
	assert.Equal(t, domain.ProductListing, got.Type)
}

func TestClassify_NonProductGatesExtraction(t *testing.T) {
	got := classifier.New(nil).Classify("", "")
	assert.Equal(t, domain.NonProduct, got.Type)
	assert.False(t, got.ProductBearing())
}

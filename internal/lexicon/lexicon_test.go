package lexicon_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hosseinjeff/Wholesale-project/internal/lexicon"
)

func TestKeywordSet_Match(t *testing.T) {
	set := lexicon.NewKeywordSet("Sold Out", "ناموجود", " ")

	assert.Equal(t, []string{"sold out", "ناموجود"}, set.Keywords())
	assert.True(t, set.Contains("Everything SOLD OUT today"))
	assert.True(t, set.Contains("این کالا ناموجود است"))
	assert.False(t, set.Contains("موجود"))
	assert.Empty(t, set.Match(""))
}

func TestKeywordSet_EmptyDictionary(t *testing.T) {
	set := lexicon.NewKeywordSet()
	assert.False(t, set.Contains("anything"))
}

func TestKeywordSet_ConcurrentMatch(t *testing.T) {
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				assert.True(t, lexicon.PricingWords.Contains("قیمت: 50,000 تومان"))
			}
		}()
	}
	wg.Wait()
}

func TestStripDecorations(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"✅ انرژی زا هایپ", "انرژی زا هایپ"},
		{"⭕️🔥 شامپو   گلرنگ ❌", "شامپو گلرنگ"},
		{"نام محصول: کنسرو لوبیا", "کنسرو لوبیا"},
		{"محصول کنسرو لوبیا", "کنسرو لوبیا"},
		{"- Product: Coffee", "Coffee"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, lexicon.StripDecorations(tt.in))
		})
	}
}

func TestStartsWithDecoration(t *testing.T) {
	assert.True(t, lexicon.StartsWithDecoration("✅در باکس 24عددی"))
	assert.True(t, lexicon.StartsWithDecoration("  🛑 کالا"))
	assert.True(t, lexicon.StartsWithDecoration("📍 میدان"))
	assert.False(t, lexicon.StartsWithDecoration("انرژی زا ✅"))
	assert.False(t, lexicon.StartsWithDecoration(""))
}

func TestLinePredicates(t *testing.T) {
	assert.True(t, lexicon.IsContactLine("📍 میدان محمدیه پلاک 10"))
	assert.True(t, lexicon.IsContactLine("تماس: 09121234567"))
	assert.True(t, lexicon.IsContactLine("0912 123 4567"))
	assert.True(t, lexicon.IsContactLine("https://t.me/shop"))
	assert.False(t, lexicon.IsContactLine("قیمت هر باکس: 1,250,000 تومان"))

	assert.True(t, lexicon.IsDetailLine("تعداد در باکس: 24 عددی"))
	assert.True(t, lexicon.IsDetailLine("✅در باکس 24عددی"))
	assert.False(t, lexicon.IsDetailLine("کنسرو ماهی"))

	assert.True(t, lexicon.IsBareLabel("قیمت مصرف:"))
	assert.True(t, lexicon.IsBareLabel("✅ قیمت هر باکس"))
	assert.True(t, lexicon.IsBareLabel("Price"))
	assert.False(t, lexicon.IsBareLabel("قیمت مناسب شامپو"))

	assert.True(t, lexicon.IsNumericOrPunct(": 75/000"))
	assert.False(t, lexicon.IsNumericOrPunct("x 75"))

	assert.True(t, lexicon.IsVariationLabel("✅ طعم: لیمو"))
	assert.True(t, lexicon.IsVariationLabel("Flavor: mint"))
	assert.False(t, lexicon.IsVariationLabel("طعمدار"))

	assert.True(t, lexicon.IsSizeQualifier("500 گرمی"))
	assert.True(t, lexicon.IsSizeQualifier("1.5 لیتری"))
	assert.False(t, lexicon.IsSizeQualifier("رب گوجه 800 گرمی"))

	assert.True(t, lexicon.IsStockOnly("موجود ✅"))
	assert.True(t, lexicon.IsStockOnly("❌ ناموجود"))
	assert.False(t, lexicon.IsStockOnly("قهوه موجود"))
}

func TestIsContactLine_ProductNamesWithContactWords(t *testing.T) {
	products := []string{
		"تلفن بی سیم پاناسونیک",
		"شارژر همراه شیائومی",
		"دفترچه شماره دار",
		"کیف لپ تاپ بازار",
		"Contact lens solution",
		"پنیر ایتالیایی",
		"975000 1200000 تومان",
		"75000 120000 تومان",
	}
	for _, line := range products {
		assert.False(t, lexicon.IsContactLine(line), line)
	}

	contacts := []string{
		"تلفن: 021 88776655",
		"شماره تماس: 09121234567",
		"همراه: 09351234567",
		"آدرس بازار تهران",
		"لینک: t.me/shop",
		"جهت سفارش با ما تماس بگیرید",
		"+98 912 123 4567",
		"+989121234567",
		"9121234567",
	}
	for _, line := range contacts {
		assert.True(t, lexicon.IsContactLine(line), line)
	}
}

func TestIsStockNarrative(t *testing.T) {
	assert.True(t, lexicon.IsStockNarrative("بار قبلی تمام شد"))
	assert.True(t, lexicon.IsStockNarrative("❌ متاسفانه سری قبل تمام شده"))
	assert.True(t, lexicon.IsStockNarrative("Previous batch sold out"))
	assert.False(t, lexicon.IsStockNarrative("تمام شد"))
	assert.False(t, lexicon.IsStockNarrative("روغن لادن تمام شد"))
	assert.False(t, lexicon.IsStockNarrative("بار جدید رسید"))
}

func TestSaleAndConsumerMarkers(t *testing.T) {
	require.True(t, lexicon.HasSaleMarker("قیمت همکار: 50,000"))
	require.True(t, lexicon.HasSaleMarker("قیمت ما: 50,000"))
	require.False(t, lexicon.HasSaleMarker("ماست 50,000"))
	require.True(t, lexicon.HasConsumerMarker("قیمت روی جلد 80,000"))
	require.False(t, lexicon.HasConsumerMarker("قیمت 80,000"))
}

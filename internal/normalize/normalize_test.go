package normalize_test

import (
	"strings"
	"testing"

	"github.com/Hosseinjeff/Wholesale-project/internal/normalize"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"persian digits", "قیمت ۱,۲۵۰,۰۰۰ تومان", "قیمت 1,250,000 تومان"},
		{"arabic-indic digits", "٧٥/٠٠٠", "75/000"},
		{"zero width removed", "کنسرو\u200cماهی\u200b\ufeff", "کنسروماهی"},
		{"whitespace collapsed", "  a \t\n\n b  ", "a b"},
		{"ascii untouched", "Hype 24x250ml", "Hype 24x250ml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, normalize.Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"کنسرو ماهی ۱۸۰ گرمی تاپ\n✅\nقیمت هر باکس: ۱,۲۵۰,۰۰۰ تومان",
		"\u200b\u200c  ۰۱۲۳۴۵۶۷۸۹ \r\n ٠١٢٣٤٥٦٧٨٩\t",
		"📍 میدان محمدیه پلاک ۱۰",
	}
	for _, in := range inputs {
		once := normalize.Normalize(in)
		assert.Equal(t, once, normalize.Normalize(once), "input %q", in)
	}
}

func TestNormalize_DigitRoundTrip(t *testing.T) {
	t.Parallel()

	const persian = "۰۱۲۳۴۵۶۷۸۹"
	const arabic = "٠١٢٣٤٥٦٧٨٩"

	in := persian[:len("۱۲")] + "-" + arabic + "/" + persian
	got := normalize.Normalize(in)

	assert.Equal(t, "01-0123456789/0123456789", got)
	assert.Equal(t, strings.Count(in, "-"), strings.Count(got, "-"))
	assert.Equal(t, strings.Count(in, "/"), strings.Count(got, "/"))
}

func TestCanonicalize_KeepsLines(t *testing.T) {
	t.Parallel()

	got := normalize.Canonicalize("کاپوچینو ۳۰ تایی\r\n: ۷۵/۰۰۰\n\nهات چاکلت")
	assert.Equal(t, "کاپوچینو 30 تایی\n: 75/000\n\nهات چاکلت", got)
}

func TestLines(t *testing.T) {
	t.Parallel()

	got := normalize.Lines("  a  b \n\n\t\n ۱۲ \n")
	assert.Equal(t, []string{"a b", "12"}, got)
}

func TestParsePrice(t *testing.T) {
	t.Parallel()

	tests := map[string]int64{
		"":              0,
		"تومان":         0,
		"1,250,000":     1250000,
		"۱,۲۵۰,۰۰۰":     1250000,
		"75/000":        75000,
		"۷۵/۰۰۰":        75000,
		"1.200.000":     1200000,
		"۶۵٫۰۰۰":        65000,
		"65٬000 تومان":  65000,
		"99999999999999999999": 0,
	}
	for in, want := range tests {
		assert.Equal(t, want, normalize.ParsePrice(in), "input %q", in)
	}
}

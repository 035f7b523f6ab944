package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Hosseinjeff/Wholesale-project/internal/pricing"
)

func TestParseCandidate(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"1,250,000", 1250000, true},
		{"75/000", 75000, true},
		{"۶۵٬۰۰۰", 65000, true},
		{"12000", 12000, true},
		{"12345678", 12345678, true},
		{"120", 0, false},
		{"123456789", 0, false},
		{"09121234567", 0, false},
		{"1403/05/12", 0, false},
		{"1.5", 0, false},
		{"1234,56", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := pricing.ParseCandidate(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCandidates(t *testing.T) {
	assert.Equal(t, []int64{1250000}, pricing.Candidates("قیمت هر باکس: ۱,۲۵۰,۰۰۰ تومان"))
	assert.Equal(t, []int64{75000, 120000}, pricing.Candidates("75,000 - 120,000"))
	assert.Empty(t, pricing.Candidates("در باکس ۲۴عددی"))
	assert.Empty(t, pricing.Candidates("Galaxy A5000"))
	assert.Empty(t, pricing.Candidates("09121234567"))
	assert.Equal(t, []int64{975000, 1200000}, pricing.Candidates("975000 1200000 تومان"))
}

func TestCandidates_GluedToPersianWord(t *testing.T) {
	assert.Equal(t, []int64{75000}, pricing.Candidates("قیمت۷۵۰۰۰ تومان"))
	assert.True(t, pricing.IsPriceLine("قیمت۷۵۰۰۰ تومان"))
	assert.Empty(t, pricing.Candidates("Redmi A3000"))
}

func TestCandidates_SlashJoinedPair(t *testing.T) {
	assert.Equal(t, []int64{75000, 120000}, pricing.Candidates("75000/120000"))
	assert.Equal(t, []int64{1250000, 65000}, pricing.Candidates("۱,۲۵۰,۰۰۰/۶۵,۰۰۰ تومان"))
	assert.Equal(t, []int64{75000}, pricing.Candidates("75/000"))
	assert.Empty(t, pricing.Candidates("1403/05/12"))
	assert.Empty(t, pricing.Candidates("1402/5000"))

	line := "کیک 75000/120000"
	assert.Equal(t, "75000/120000", line[pricing.FirstCandidateIndex(line):])
}

func TestCandidates_DigitLengthFilter(t *testing.T) {
	lines := []string{
		"12 345 1234 12345678 123456789 1,000 99,999,999",
	}
	for _, l := range lines {
		for _, v := range pricing.Candidates(l) {
			assert.GreaterOrEqual(t, v, int64(1000))
			assert.LessOrEqual(t, v, int64(99999999))
		}
	}
}

func TestIsPriceLine(t *testing.T) {
	assert.True(t, pricing.IsPriceLine("قیمت مصرف: 65,000 تومان"))
	assert.True(t, pricing.IsPriceLine(": 75/000"))
	assert.True(t, pricing.IsPriceLine("قیمت: 500"))
	assert.False(t, pricing.IsPriceLine("کنسرو ماهی 180 گرمی تاپ"))
	assert.False(t, pricing.IsPriceLine("تماس: 09121234567"))
	assert.False(t, pricing.IsPriceLine("انرژی زا هایپ اصلی"))
}

func TestFirstCandidateIndex(t *testing.T) {
	line := "هدفون 120,000"
	idx := pricing.FirstCandidateIndex(line)
	assert.Equal(t, "120,000", line[idx:])
	assert.Equal(t, -1, pricing.FirstCandidateIndex("کاپوچینو 30 تایی"))
}

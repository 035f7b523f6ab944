package fields

import (
	"strings"

	"github.com/Hosseinjeff/Wholesale-project/internal/lexicon"
	"github.com/Hosseinjeff/Wholesale-project/internal/profile"
)

// DefaultCategory is used when nothing matches.
const DefaultCategory = "General"

type categoryWords struct {
	name  string
	words *lexicon.KeywordSet
}

// Beverages precede Food so "هات چاکلت" is not read as confectionery.
var persianCategories = []categoryWords{
	{"Beverages", lexicon.NewKeywordSet(
		"نوشیدنی", "نوشابه", "آبمیوه", "انرژی زا", "انرژی", "قهوه", "کاپوچینو", "هات چاکلت",
		"نسکافه", "چای", "دوغ", "آب معدنی", "ماءالشعیر", "شربت")},
	{"Food", lexicon.NewKeywordSet(
		"کنسرو", "تن ماهی", "ماکارونی", "برنج", "روغن", "رب گوجه", "حبوبات", "شکلات", "بیسکویت",
		"کیک", "چیپس", "پفک", "آجیل", "خرما", "زعفران", "عسل", "پنیر", "ماست", "ادویه", "خوراکی")},
	{"Electronics", lexicon.NewKeywordSet(
		"گوشی", "موبایل", "هدفون", "هندزفری", "شارژر", "کابل", "لپ تاپ", "تبلت", "اسپیکر",
		"پاور بانک", "پاوربانک", "ساعت هوشمند", "مانیتور", "فلش")},
	{"Clothing", lexicon.NewKeywordSet(
		"لباس", "پیراهن", "شلوار", "کفش", "مانتو", "تیشرت", "جوراب", "کاپشن", "کیف", "روسری")},
	{"Home", lexicon.NewKeywordSet(
		"ظروف", "قابلمه", "ماهیتابه", "لیوان", "فرش", "پتو", "ملحفه", "شوینده", "مایع ظرفشویی",
		"پودر لباسشویی", "دستمال")},
	{"Beauty", lexicon.NewKeywordSet(
		"شامپو", "کرم", "عطر", "ادکلن", "رژ لب", "ریمل", "لوسیون", "صابون", "آرایشی", "بهداشتی",
		"مسواک", "خمیر دندان")},
}

var englishCategories = []categoryWords{
	{"Beverages", lexicon.NewKeywordSet(
		"beverage", "drink", "juice", "soda", "energy drink", "coffee", "green tea", "black tea", "cappuccino", "mineral water")},
	{"Food", lexicon.NewKeywordSet(
		"food", "canned", "tuna", "pasta", "rice", "cooking oil", "chocolate", "biscuit", "snack", "chips", "honey")},
	{"Electronics", lexicon.NewKeywordSet(
		"phone", "mobile", "laptop", "tablet", "headphone", "earbuds", "charger", "cable", "speaker",
		"power bank", "smartwatch", "monitor", "electronics")},
	{"Clothing", lexicon.NewKeywordSet(
		"shirt", "t-shirt", "pants", "jeans", "dress", "shoes", "sneakers", "jacket", "socks", "clothing")},
	{"Home", lexicon.NewKeywordSet(
		"kitchen", "cookware", "furniture", "blanket", "carpet", "detergent", "tissue", "home")},
	{"Beauty", lexicon.NewKeywordSet(
		"shampoo", "cream", "perfume", "lotion", "soap", "makeup", "cosmetic", "lipstick", "toothpaste")},
}

// Category resolves the product category: channel hints, then Persian
// keywords, then English keywords.
func Category(text string, hints []profile.CategoryHint) string {
	lower := strings.ToLower(text)
	for _, h := range hints {
		for _, kw := range h.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return h.Category
			}
		}
	}
	for _, table := range [][]categoryWords{persianCategories, englishCategories} {
		for _, c := range table {
			if c.words.Contains(text) {
				return c.name
			}
		}
	}
	return DefaultCategory
}

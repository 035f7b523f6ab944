package profile

import "regexp"

// priceNumber captures a numeral with grouping separators.
const priceNumber = `(\d[\d,/٫٬.]*)`

// DefaultPriceLabels are the label conventions shared by Persian wholesale
// channels. Patterns run on digit-canonicalized lines.
func DefaultPriceLabels() []PriceLabel {
	return []PriceLabel{
		{Role: RoleBox, Pattern: regexp.MustCompile(
			`قیمت\s+(?:هر\s+)?(?:یک\s+)?(?:باکس|کارتن|بسته|شل)\s*[:：]?\s*` + priceNumber)},
		{Role: RoleUnit, Pattern: regexp.MustCompile(
			`(?:دونه\s*ای|تکی|قیمت\s+(?:هر\s+)?(?:عدد|دونه|تک))\s*[:：]?\s*` + priceNumber)},
		{Role: RoleConsumer, Pattern: regexp.MustCompile(
			`(?:قیمت\s+)?(?:مصرف(?:\s*کننده)?|روی\s+جلد)\s*[:：]?\s*` + priceNumber)},
		{Role: RoleSale, Pattern: regexp.MustCompile(
			`قیمت\s+(?:فروش(?:\s+ما)?|خرید|همکار|عمده)\s*[:：]?\s*` + priceNumber)},
		{Role: RoleGeneric, Pattern: regexp.MustCompile(`(?:قیمت|فی)\s*[:：]\s*` + priceNumber)},
		{Role: RoleGeneric, Pattern: regexp.MustCompile(priceNumber + `\s*(?:تومان|تومن|ریال)`)},
	}
}

// DefaultPackaging matches "تعداد در باکس: 24 عددی" and "در باکس 24عددی".
func DefaultPackaging() []PackagingPattern {
	return []PackagingPattern{
		{Pattern: regexp.MustCompile(`(?:تعداد\s+در\s+باکس|باکس)\s*[:\s]*(\d+)\s*عددی`), Suffix: "عددی"},
	}
}

// Generic is the fallback profile for channels with no registered entry.
func Generic() Profile {
	return Profile{
		Name:           "generic",
		Kind:           KindGeneric,
		PriceLabels:    DefaultPriceLabels(),
		BaseConfidence: 0.8,
	}
}

// Builtin returns the known channel profiles.
func Builtin() []Profile {
	return []Profile{
		{
			Name:           "bonakdarjavan",
			Identifiers:    []string{"bonakdarjavan"},
			Kind:           KindStructuredBlock,
			PriceLabels:    DefaultPriceLabels(),
			Packaging:      DefaultPackaging(),
			CategoryHints:  []CategoryHint{{Category: "Food", Keywords: []string{"food", "canned", "کنسرو"}}},
			BaseConfidence: 0.7,
		},
		{
			Name:        "top_shop_rahimi",
			Identifiers: []string{"top_shop_rahimi"},
			Kind:        KindStructuredBlock,
			PriceLabels: DefaultPriceLabels(),
			Packaging:   DefaultPackaging(),
			CategoryHints: []CategoryHint{
				{Category: "Beverages", Keywords: []string{"beverage", "energy", "نوشیدنی", "انرژی"}},
			},
			BaseConfidence: 0.7,
		},
		{
			Name:        "nobelshop118",
			Identifiers: []string{"nobelshop118"},
			Kind:        KindStructuredList,
			PriceLabels: DefaultPriceLabels(),
			CategoryHints: []CategoryHint{
				{Category: "Beverages", Keywords: []string{"beverage", "coffee", "قهوه", "کاپوچینو", "چاکلت"}},
			},
			MirrorConsumerPrice: true,
			BaseConfidence:      0.9,
		},
	}
}

// Default returns a registry of the built-in profiles over the generic fallback.
func Default() *Registry {
	r, err := NewRegistry(Generic(), Builtin()...)
	if err != nil {
		panic(err)
	}
	return r
}

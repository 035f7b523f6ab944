package lexicon

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	detailPrefix = regexp.MustCompile(
		`^(?:تعداد|باکس|کارتن|لینک|آدرس|شعبه|در\s+باکس|در\s+کارتن|ارسال|تماس|حداقل\s+سفارش)`)

	// contactMarker is unambiguous on its own: a pictograph, link, handle or
	// messenger name.
	contactMarker = regexp.MustCompile(`(?i)(?:` +
		`واتس\s*اپ|واتساپ|اینستاگرام|تلگرام|(?:^|\s)(?:ایتا|پیج|ادمین)(?:\s|[:：]|$)|تماس\s+(?:بگیرید|حاصل)|` +
		`📍|📞|📱|☎|https?://|t\.me/|www\.|@[a-z0-9_]{3,}|` +
		`contact(?:\s+us|\s*[:：])|call\s*[:：]|whatsapp|telegram|instagram|address\s*[:：]|location\s*[:：]|dm\s*[:：])`)

	// contactLabel words are common in product names ("تلفن بی سیم",
	// "شارژر همراه") and only mark contact details when used as a label.
	contactLabel = regexp.MustCompile(
		`(?:آدرس|نشانی|شعبه|خیابان|میدان|پلاک|کوچه|بلوار|بازار|تماس|تلفن|شماره(?:\s+تماس)?|همراه|لینک)\s*[:：]|پلاک\s*\d`)

	contactLead = regexp.MustCompile(`^(?:آدرس|نشانی|جهت\s+(?:تماس|سفارش|خرید)|تماس\s+با)(?:\s|$)`)

	// phonePattern needs a 0, +98 or 0098 prefix or a bare ten-digit mobile
	// number, so two unformatted prices side by side never match.
	phonePattern = regexp.MustCompile(
		`(?:(?:\+98|\b0098)[\s-]?|\b0)9\d{2}[\s-]?\d{3}[\s-]?\d{4}\b|\b9\d{9}\b|\b0\d{2,3}[\s-]?\d{7,8}\b`)

	bareLabel = regexp.MustCompile(`(?i)^(?:` +
		`قیمت(?:\s+(?:هر\s+)?(?:یک\s+)?(?:باکس|کارتن|بسته|عدد|دونه|تک|مصرف(?:\s*کننده)?|فروش(?:\s+ما)?|خرید|همکار|عمده))?|` +
		`دونه\s*ای|تکی|فی|مصرف(?:\s*کننده)?|روی\s+جلد|` +
		`price|consumer\s+price|our\s+price|wholesale)$`)

	namePrefix = regexp.MustCompile(`(?i)^(?:(?:نام\s*)?محصول\s*[:：]?|(?:name|product)\s*[:：])\s*`)

	variationLabel = regexp.MustCompile(`(?i)^(?:طعم|مدل|رنگ|سایز|رایحه|flavor|flavour|model|color|colour|size)(?:\s|[:：]|$)`)

	sizeQualifier = regexp.MustCompile(
		`^\d+(?:\.\d+)?\s*(?:گرمی|گرم|کیلویی|کیلوگرم|کیلو|میلی\s*لیتری|میلی\s*لیتر|میلی|سی\s*سی|لیتری|لیتر|عددی|تایی|kg|gr|g|ml|cc|l)$`)

	saleMarker = regexp.MustCompile(`(?:^|\s)ما(?:\s|[:：]|$)`)
)

// decorations are stripped from names and mark segment anchors when they lead a line.
var decorations = []string{
	"✅", "❌", "🛑", "⭕️", "⭕", "✔️", "✔", "☑️", "☑", "🔸", "🔹", "🔶", "🔷",
	"▪️", "▪", "▫️", "▫", "•", "●", "◾", "◽", "➖", "➕", "👈", "👉", "🔴", "🟢", "🟡",
	"⚫", "⚪", "💥", "🔥", "⭐", "🌟", "✨", "🎁", "💯", "️",
}

var decorationReplacer = func() *strings.Replacer {
	pairs := make([]string, 0, len(decorations)*2)
	for _, d := range decorations {
		pairs = append(pairs, d, "")
	}
	return strings.NewReplacer(pairs...)
}()

// StartsWithDecoration reports whether the first visible rune of line is a
// bullet glyph or pictograph.
func StartsWithDecoration(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	for _, d := range decorations {
		if strings.HasPrefix(line, d) {
			return true
		}
	}
	r, _ := utf8.DecodeRuneInString(line)
	return isPictograph(r) || r == '*' || r == '-'
}

func isPictograph(r rune) bool {
	return (r >= 0x1F300 && r <= 0x1FAFF) || (r >= 0x2600 && r <= 0x27BF) || (r >= 0x2B00 && r <= 0x2BFF)
}

// StripDecorations removes glyphs and pictographs anywhere in line, leading
// bullets, and "نام محصول:"-style label prefixes.
func StripDecorations(line string) string {
	s := decorationReplacer.Replace(line)
	s = strings.Map(func(r rune) rune {
		if isPictograph(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimLeft(strings.TrimSpace(s), "*-–—•:： ")
	s = namePrefix.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// IsDetailLine reports operational detail lines: quantity, box, link, address.
func IsDetailLine(line string) bool {
	return detailPrefix.MatchString(StripDecorations(line))
}

// IsContactLine reports lines carrying contact, address or link information.
// They are never product names and never price sources.
func IsContactLine(line string) bool {
	if contactMarker.MatchString(line) || contactLabel.MatchString(line) || phonePattern.MatchString(line) {
		return true
	}
	return contactLead.MatchString(StripDecorations(line))
}

// IsBareLabel reports a price-label phrase with nothing else on the line.
func IsBareLabel(s string) bool {
	s = strings.TrimSpace(strings.TrimRight(StripDecorations(s), ":： "))
	return bareLabel.MatchString(s)
}

// IsNumericOrPunct reports text without a single letter.
func IsNumericOrPunct(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// IsVariationLabel reports a "flavor: X"/"مدل X" line.
func IsVariationLabel(s string) bool {
	return variationLabel.MatchString(StripDecorations(s))
}

// IsSizeQualifier reports a line that is only a weight or size, like "500 گرمی".
func IsSizeQualifier(s string) bool {
	return sizeQualifier.MatchString(strings.ToLower(StripDecorations(s)))
}

// IsStockOnly reports a line that states availability and nothing else.
func IsStockOnly(s string) bool {
	rest := strings.ToLower(StripDecorations(s))
	for _, set := range []*KeywordSet{OutOfStockWords, LimitedWords, PreOrderWords, AvailableWords} {
		for _, kw := range set.Keywords() {
			rest = strings.ReplaceAll(rest, kw, "")
		}
	}
	return IsNumericOrPunct(rest)
}

// IsStockNarrative reports a line that only says an earlier batch ran out,
// like "بار قبلی تمام شد". It names no product.
func IsStockNarrative(s string) bool {
	rest := strings.ToLower(StripDecorations(s))
	if !OutOfStockWords.Contains(rest) || !BatchWords.Contains(rest) {
		return false
	}
	kws := append(OutOfStockWords.Keywords(), BatchWords.Keywords()...)
	slices.SortFunc(kws, func(a, b string) int { return len(b) - len(a) })
	for _, kw := range kws {
		rest = strings.ReplaceAll(rest, kw, " ")
	}
	for _, w := range strings.Fields(rest) {
		w = strings.TrimFunc(w, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
		if w != "" && !narrativeFiller[w] {
			return false
		}
	}
	return true
}

var narrativeFiller = map[string]bool{
	"از": true, "هم": true, "و": true, "این": true, "کالا": true, "اجناس": true, "همه": true,
	"متاسفانه": true, "متأسفانه": true, "است": true, "شده": true, "شد": true, "بود": true,
	"the": true, "of": true, "is": true, "was": true, "has": true, "been": true, "our": true, "all": true,
}

// HasSaleMarker reports sale-price wording, including the standalone "ما".
func HasSaleMarker(line string) bool {
	return SaleWords.Contains(line) || saleMarker.MatchString(line)
}

// HasConsumerMarker reports consumer/reference-price wording.
func HasConsumerMarker(line string) bool {
	return ConsumerWords.Contains(line)
}

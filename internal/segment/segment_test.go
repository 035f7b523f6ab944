package segment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hosseinjeff/Wholesale-project/internal/profile"
	"github.com/Hosseinjeff/Wholesale-project/internal/segment"
)

var registry = profile.Default()

func TestSplit_StructuredBlankLines(t *testing.T) {
	text := "کنسرو تن ماهی ۱۸۰ گرمی شیلتون\nقیمت: ۱,۱۰۰,۰۰۰ تومان\n\n" +
		"کنسرو تن ماهی ۱۸۰ گرمی طبیعت\nقیمت: ۱,۲۰۰,۰۰۰ تومان"

	segs := segment.Split(text, registry.Get("@bonakdarjavan"))
	require.Len(t, segs, 2)
	assert.Equal(t, "کنسرو تن ماهی 180 گرمی شیلتون", segs[0].Lines[0])
	assert.Equal(t, "قیمت: 1,200,000 تومان", segs[1].Lines[1])
}

func TestSplit_StructuredListWithAddressBlock(t *testing.T) {
	text := "کاپوچینو گوددی ۳۰ تایی\n: ۷۵/۰۰۰\n\nهات چاکلت ۲۰ تایی\n: ۶۵/۰۰۰\n\n📍 میدان محمدیه پلاک ۱۰"

	segs := segment.Split(text, registry.Get("@nobelshop118"))
	require.Len(t, segs, 3)
	assert.Equal(t, []string{"📍 میدان محمدیه پلاک 10"}, segs[2].Lines)
}

func TestSplit_DecoratedDetailsStayTogether(t *testing.T) {
	text := "انرژی زا هایپ اصلی\n✅در باکس ۲۴عددی\n✅قیمت هر باکس: ۱,۲۰۰,۰۰۰ تومان\n✅قیمت مصرف: ۶۵,۰۰۰ تومان"

	segs := segment.Split(text, registry.Get("@top_shop_rahimi"))
	require.Len(t, segs, 1)
	assert.Len(t, segs[0].Lines, 4)
}

func TestSplit_ReSplitsOnDecorationAnchors(t *testing.T) {
	text := "🔸 شامپو گلرنگ ۴۰۰ میل\nقیمت هر باکس: ۹۰۰,۰۰۰\n" +
		"🔸 صابون گلنار\nقیمت هر باکس: ۴۵۰,۰۰۰\n" +
		"🔸 خمیر دندان پونه\nقیمت هر باکس: ۶۰۰,۰۰۰\n✅ موجود"

	segs := segment.Split(text, registry.Get("@bonakdarjavan"))
	require.Len(t, segs, 3)
	assert.Equal(t, "🔸 صابون گلنار", segs[1].Lines[0])
	assert.Equal(t, "✅ موجود", segs[2].Lines[2])
}

func TestSplit_GenericLineWalker(t *testing.T) {
	text := "Wireless Earbuds Pro\nPrice: 1,450,000\nتعداد: 10 عدد\n" +
		"Smart Watch W8\n1,900,000 تومان\n" +
		"📞 0912 345 6789"

	segs := segment.Split(text, profile.Generic())
	require.Len(t, segs, 2)
	assert.Equal(t, []string{"Wireless Earbuds Pro", "Price: 1,450,000", "تعداد: 10 عدد"}, segs[0].Lines)
	assert.Equal(t, []string{"Smart Watch W8", "1,900,000 تومان"}, segs[1].Lines)
}

func TestSplit_GenericOpenProductWaitsForPrice(t *testing.T) {
	text := "Leather Wallet\nGenuine leather, brown\n350,000"

	segs := segment.Split(text, profile.Generic())
	require.Len(t, segs, 1)
	assert.Len(t, segs[0].Lines, 3)
}

func TestSplit_GenericOutOfStockClosesProduct(t *testing.T) {
	text := "Desk Lamp LED ❌ sold out\nOffice Chair Ergo\n2,300,000"

	segs := segment.Split(text, profile.Generic())
	require.Len(t, segs, 2)
}

func TestSplit_GenericProductNamedWithContactWord(t *testing.T) {
	text := "شامپو سیوه\nقیمت: 85,000 تومان\nتلفن بی سیم پاناسونیک\nقیمت: 2,300,000 تومان"

	segs := segment.Split(text, profile.Generic())
	require.Len(t, segs, 2)
	assert.Equal(t, []string{"تلفن بی سیم پاناسونیک", "قیمت: 2,300,000 تومان"}, segs[1].Lines)
}

func TestSplit_GenericContactLineClosesProduct(t *testing.T) {
	text := "Leather Wallet\n📞 0912 345 6789\nOffice Chair Ergo\n2,300,000"

	segs := segment.Split(text, profile.Generic())
	require.Len(t, segs, 2)
	assert.Equal(t, []string{"Leather Wallet"}, segs[0].Lines)
	assert.Equal(t, []string{"Office Chair Ergo", "2,300,000"}, segs[1].Lines)
}

func TestSplit_GenericSkipsEarlierBatchNote(t *testing.T) {
	segs := segment.Split("بار قبلی تمام شد\nروغن لادن\nقیمت: 95,000 تومان", profile.Generic())
	require.Len(t, segs, 1)
	assert.Equal(t, []string{"روغن لادن", "قیمت: 95,000 تومان"}, segs[0].Lines)
}

func TestSplit_DropsTinySegments(t *testing.T) {
	segs := segment.Split("ab\n\n✅\n\n", registry.Get("@bonakdarjavan"))
	assert.Empty(t, segs)
	assert.Empty(t, segment.Split("", profile.Generic()))
}

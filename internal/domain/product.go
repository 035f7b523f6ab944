package domain

import "time"

// PriceType says what unit the sale price refers to.
type PriceType string

const (
	PriceSingle     PriceType = "single"
	PricePack       PriceType = "pack"
	PricePackOnly   PriceType = "pack_only"
	PriceSingleOnly PriceType = "single_only"
	PriceBoth       PriceType = "both"
)

// IsPack reports whether the sale price is quoted per box or carton.
func (p PriceType) IsPack() bool {
	return p == PricePack || p == PricePackOnly || p == PriceBoth
}

// StockStatus values, checked in this order by the stock extractor.
type StockStatus string

const (
	StockOutOfStock StockStatus = "Out of Stock"
	StockLimited    StockStatus = "Limited"
	StockPreOrder   StockStatus = "Pre-order"
	StockAvailable  StockStatus = "Available"
)

// RecordStatus is the store-facing lifecycle state of a product row.
type RecordStatus string

const (
	StatusImported    RecordStatus = "imported"
	StatusUpdated     RecordStatus = "updated"
	StatusNeedsReview RecordStatus = "needs_review"
)

// CurrencyIRT is the Iranian toman, the only currency the Persian channels quote.
const CurrencyIRT = "IRT"

// ProductRecord is the unit handed to the store. Records are built fresh per
// (message, segment); an update to a stored product replaces the row.
type ProductRecord struct {
	ID                   string       `db:"id"                    json:"id"`
	Name                 string       `db:"name"                  json:"name"`
	SalePrice            int64        `db:"sale_price"            json:"sale_price"`
	ConsumerPrice        *int64       `db:"consumer_price"        json:"consumer_price"`
	BoxPrice             *int64       `db:"box_price"             json:"box_price,omitempty"`
	UnitPrice            *int64       `db:"unit_price"            json:"unit_price,omitempty"`
	PriceType            PriceType    `db:"price_type"            json:"price_type"`
	Currency             string       `db:"currency"              json:"currency"`
	Packaging            string       `db:"packaging"             json:"packaging"`
	Volume               string       `db:"volume"                json:"volume"`
	Variation            string       `db:"variation"             json:"variation"`
	StockStatus          StockStatus  `db:"stock_status"          json:"stock_status"`
	Category             string       `db:"category"              json:"category"`
	Channel              string       `db:"channel"               json:"channel"`
	Description          string       `db:"description"           json:"description"`
	Location             string       `db:"location"              json:"location"`
	ContactInfo          string       `db:"contact_info"          json:"contact_info"`
	ExtractionConfidence float64      `db:"extraction_confidence" json:"extraction_confidence"`
	Status               RecordStatus `db:"status"                json:"status"`
	ReviewReason         string       `db:"review_reason"         json:"review_reason,omitempty"`
	MessageID            string       `db:"message_id"            json:"message_id"`
	CreatedAt            time.Time    `db:"created_at"            json:"created_at"`
	UpdatedAt            time.Time    `db:"updated_at"            json:"updated_at"`
}

// Price returns a pointer to v, or nil for zero.
func Price(v int64) *int64 {
	if v <= 0 {
		return nil
	}
	return &v
}

// PriceStats summarises stored sale prices for one product name.
type PriceStats struct {
	Mean        float64 `db:"mean"`
	SampleCount int     `db:"sample_count"`
}

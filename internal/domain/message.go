// Package domain holds the types shared by the extraction pipeline, the store
// and the HTTP surface.
package domain

import (
	"strings"
	"time"
)

// RawMessage is one inbound marketplace post. It is never modified after it is
// received; replays copy it under a new ID.
type RawMessage struct {
	ID              string     `db:"id"               json:"id"`
	Channel         string     `db:"channel"          json:"channel"`
	ChannelUsername string     `db:"channel_username" json:"channel_username"`
	Author          string     `db:"author"           json:"author"`
	Text            string     `db:"content"          json:"content"`
	ReceivedAt      time.Time  `db:"received_at"      json:"timestamp"`
	URL             string     `db:"url"              json:"url"`
	ForwardedBy     string     `db:"forwarded_by"     json:"forwarded_by"`
	ForwardedAt     *time.Time `db:"forwarded_at"     json:"forwarded_at,omitempty"`
	HasMedia        bool       `db:"has_media"        json:"has_media"`
	MediaType       string     `db:"media_type"       json:"media_type"`
	Status          string     `db:"status"           json:"status,omitempty"`
	ImportedAt      time.Time  `db:"imported_at"      json:"imported_at,omitempty"`
}

// ChannelIdentifier is the key used for profile lookup and dedup: the username
// when present, else the display channel.
func (m RawMessage) ChannelIdentifier() string {
	if u := strings.TrimSpace(m.ChannelUsername); u != "" {
		return u
	}
	return strings.TrimSpace(m.Channel)
}

// Message statuses stored alongside RawMessage.
const (
	MessageStatusImported    = "imported"
	MessageStatusNoProducts  = "no_products"
	MessageStatusNonProduct  = "non_product"
	MessageStatusReprocessed = "reprocessed"
)

// ClassificationType labels a message before extraction.
type ClassificationType string

const (
	ProductListing ClassificationType = "product_listing"
	OutOfStock     ClassificationType = "out_of_stock"
	NonProduct     ClassificationType = "non_product"
)

// Classification is derived from the message text and consumed once.
type Classification struct {
	Type       ClassificationType `json:"type"`
	Confidence float64            `json:"confidence"`
}

// ProductBearing reports whether extraction should run.
func (c Classification) ProductBearing() bool {
	return c.Type != NonProduct
}

// ProductSegment is the span of a message believed to describe one product.
type ProductSegment struct {
	Lines []string
	Text  string
}

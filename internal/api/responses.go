package api

import (
	"github.com/Hosseinjeff/Wholesale-project/internal/domain"
	"github.com/Hosseinjeff/Wholesale-project/internal/profile"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// WebhookResponse is the body of an accepted webhook call.
type WebhookResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	ProductsFound int    `json:"products_found"`
	Channel       string `json:"channel"`
	ID            string `json:"id"`
	Inserted      int    `json:"inserted"`
	Updated       int    `json:"updated"`
	NeedsReview   int    `json:"needs_review"`
}

// ExtractRequest is a dry-run extraction.
type ExtractRequest struct {
	Content         string `json:"content"          binding:"required"`
	Channel         string `json:"channel"`
	ChannelUsername string `json:"channel_username"`
}

// LogsResponse lists operational log rows, newest first.
type LogsResponse struct {
	Logs  []domain.LogEvent `json:"logs"`
	Count int               `json:"count"`
	Limit int               `json:"limit"`
}

// ProductsResponse lists products, most recently updated first.
type ProductsResponse struct {
	Products []domain.ProductRecord `json:"products"`
	Count    int                    `json:"count"`
}

// ProfileResponse summarises one channel profile.
type ProfileResponse struct {
	Name                string   `json:"name"`
	Identifiers         []string `json:"identifiers"`
	Kind                string   `json:"kind"`
	Structured          bool     `json:"structured"`
	PriceLabels         int      `json:"price_labels"`
	MirrorConsumerPrice bool     `json:"mirror_consumer_price"`
	BaseConfidence      float64  `json:"base_confidence"`
	Fallback            bool     `json:"fallback"`
}

func profileResponse(p profile.Profile, fallback bool) ProfileResponse {
	return ProfileResponse{
		Name:                p.Name,
		Identifiers:         p.Identifiers,
		Kind:                string(p.Kind),
		Structured:          p.Structured(),
		PriceLabels:         len(p.PriceLabels),
		MirrorConsumerPrice: p.MirrorConsumerPrice,
		BaseConfidence:      p.BaseConfidence,
		Fallback:            fallback,
	}
}

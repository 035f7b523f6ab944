package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Hosseinjeff/Wholesale-project/internal/domain"
)

// Validation failures. A rejected payload carries every one that applies.
var (
	ErrMissingID      = errors.New("missing message ID")
	ErrMissingContent = errors.New("missing content and no media")
	ErrMissingChannel = errors.New("missing channel information")
)

// ValidationError lists why a payload was rejected.
type ValidationError struct {
	Errs []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return "validation failed: " + strings.Join(msgs, ", ")
}

// Unwrap exposes the individual failures to errors.Is.
func (e *ValidationError) Unwrap() []error {
	return e.Errs
}

// Timestamp accepts Unix seconds, a numeric string, RFC 3339, or null.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	if data[0] != '"' {
		secs, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("parse unix timestamp %s: %w", data, err)
		}
		t.Time = time.Unix(secs, 0).UTC()
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parse timestamp: %w", err)
	}
	return t.parseString(strings.TrimSpace(s))
}

func (t *Timestamp) parseString(s string) error {
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		t.Time = time.Unix(secs, 0).UTC()
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	t.Time = parsed.UTC()
	return nil
}

// MarshalJSON writes RFC 3339, or null for the zero time.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

// Payload is the webhook body posted by the forwarding bot.
type Payload struct {
	ID              string    `json:"id"`
	Content         string    `json:"content"`
	Channel         string    `json:"channel"`
	ChannelUsername string    `json:"channel_username"`
	Author          string    `json:"author"`
	Timestamp       Timestamp `json:"timestamp"`
	URL             string    `json:"url"`
	ForwardedBy     string    `json:"forwarded_by"`
	ForwardedAt     Timestamp `json:"forwarded_at"`
	HasMedia        bool      `json:"has_media"`
	MediaType       string    `json:"media_type"`
}

// Validate reports every missing required field.
func (p Payload) Validate() error {
	var errs []error
	if strings.TrimSpace(p.ID) == "" {
		errs = append(errs, ErrMissingID)
	}
	if strings.TrimSpace(p.Content) == "" && !p.HasMedia {
		errs = append(errs, ErrMissingContent)
	}
	if strings.TrimSpace(p.ChannelUsername) == "" && strings.TrimSpace(p.Channel) == "" {
		errs = append(errs, ErrMissingChannel)
	}
	if len(errs) > 0 {
		return &ValidationError{Errs: errs}
	}
	return nil
}

// Message converts the payload. A missing timestamp becomes now.
func (p Payload) Message(now time.Time) domain.RawMessage {
	msg := domain.RawMessage{
		ID:              strings.TrimSpace(p.ID),
		Channel:         strings.TrimSpace(p.Channel),
		ChannelUsername: strings.TrimSpace(p.ChannelUsername),
		Author:          p.Author,
		Text:            p.Content,
		ReceivedAt:      p.Timestamp.Time,
		URL:             p.URL,
		ForwardedBy:     p.ForwardedBy,
		HasMedia:        p.HasMedia,
		MediaType:       p.MediaType,
		ImportedAt:      now,
	}
	if msg.ReceivedAt.IsZero() {
		msg.ReceivedAt = now
	}
	if !p.ForwardedAt.IsZero() {
		at := p.ForwardedAt.Time
		msg.ForwardedAt = &at
	}
	return msg
}

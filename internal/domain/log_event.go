package domain

import "time"

// LogLevel of an operational log row.
type LogLevel string

const (
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
)

// Degraded reports whether the level counts against the error window.
func (l LogLevel) Degraded() bool {
	return l == LevelWarn || l == LevelError
}

// Operational log functions.
const (
	FnExtract       = "extract"
	FnQualityCheck  = "quality_check"
	FnNoProducts    = "NO_PRODUCTS"
	FnIngest        = "ingest"
	FnReplay        = "replay"
	FnSystemicAlert = "systemic_alert"
)

// LogEvent is one row of the operational log. The pipeline returns them and the
// ingest service persists them; persistence failures are logged and dropped.
type LogEvent struct {
	ID            int64     `db:"id"             json:"id"`
	CreatedAt     time.Time `db:"created_at"     json:"timestamp"`
	Function      string    `db:"function"       json:"function"`
	Level         LogLevel  `db:"level"          json:"level"`
	MessageID     string    `db:"message_id"     json:"message_id"`
	Channel       string    `db:"channel"        json:"channel"`
	ContentLength int       `db:"content_length" json:"content_length"`
	Message       string    `db:"message"        json:"message"`
	ProductsFound int       `db:"products_found" json:"products_found"`
	Details       string    `db:"details"        json:"details"`
}

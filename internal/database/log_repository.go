package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Hosseinjeff/Wholesale-project/internal/domain"
	"github.com/jmoiron/sqlx"
)

// Log listing bounds.
const (
	DefaultLogLimit = 20
	MaxLogLimit     = 200
)

// LogRepository stores operational log rows.
type LogRepository struct {
	db sqlx.ExtContext
}

// NewLogRepository creates a log repository over a DB or Tx.
func NewLogRepository(db sqlx.ExtContext) *LogRepository {
	return &LogRepository{db: db}
}

// Insert appends one row. A zero CreatedAt is stamped with the current time.
func (r *LogRepository) Insert(ctx context.Context, ev *domain.LogEvent) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO extraction_logs (
			created_at, function, level, message_id, channel,
			content_length, message, products_found, details
		)
		VALUES (:created_at, :function, :level, :message_id, :channel,
			:content_length, :message, :products_found, :details)
	`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, ev); err != nil {
		return fmt.Errorf("insert log %s: %w", ev.Function, err)
	}
	return nil
}

// Recent returns the newest rows first. limit is clamped to
// [1, MaxLogLimit]; zero or less uses DefaultLogLimit.
func (r *LogRepository) Recent(ctx context.Context, limit int) ([]domain.LogEvent, error) {
	limit = ClampLogLimit(limit)
	query := r.db.Rebind(`
		SELECT id, created_at, function, level, message_id, channel,
		       content_length, message, products_found, details
		FROM extraction_logs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`)

	var events []domain.LogEvent
	if err := sqlx.SelectContext(ctx, r.db, &events, query, limit); err != nil {
		return nil, fmt.Errorf("recent logs: %w", err)
	}
	return events, nil
}

// DeleteBefore removes rows older than cutoff and returns how many went.
func (r *LogRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := r.db.Rebind(`DELETE FROM extraction_logs WHERE created_at < ?`)
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge logs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge logs rows affected: %w", err)
	}
	return n, nil
}

// ClampLogLimit applies the listing bounds.
func ClampLogLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLogLimit
	case limit > MaxLogLimit:
		return MaxLogLimit
	default:
		return limit
	}
}

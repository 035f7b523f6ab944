package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Hosseinjeff/Wholesale-project/internal/domain"
	"github.com/jmoiron/sqlx"
)

const messageColumns = `id, channel, channel_username, author, content, received_at, url,
	forwarded_by, forwarded_at, has_media, media_type, status, imported_at`

// MessageFilter selects stored messages for replay and export.
type MessageFilter struct {
	Channel string
	Limit   int
}

// MessageRepository stores raw messages.
type MessageRepository struct {
	db sqlx.ExtContext
}

// NewMessageRepository creates a message repository over a DB or Tx.
func NewMessageRepository(db sqlx.ExtContext) *MessageRepository {
	return &MessageRepository{db: db}
}

// Get returns the message with id, or ErrNotFound.
func (r *MessageRepository) Get(ctx context.Context, id string) (*domain.RawMessage, error) {
	var msg domain.RawMessage
	query := r.db.Rebind(`SELECT ` + messageColumns + ` FROM messages WHERE id = ?`)

	if err := sqlx.GetContext(ctx, r.db, &msg, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("message %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get message %s: %w", id, err)
	}
	return &msg, nil
}

// Insert stores a new message.
func (r *MessageRepository) Insert(ctx context.Context, msg *domain.RawMessage) error {
	query := `
		INSERT INTO messages (` + messageColumns + `)
		VALUES (:id, :channel, :channel_username, :author, :content, :received_at, :url,
			:forwarded_by, :forwarded_at, :has_media, :media_type, :status, :imported_at)
	`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, msg); err != nil {
		return fmt.Errorf("insert message %s: %w", msg.ID, err)
	}
	return nil
}

// UpdateContent replaces the text of an edited message.
func (r *MessageRepository) UpdateContent(ctx context.Context, msg *domain.RawMessage) error {
	query := `
		UPDATE messages
		SET content = :content, has_media = :has_media, media_type = :media_type,
		    status = :status, imported_at = :imported_at
		WHERE id = :id
	`
	res, err := sqlx.NamedExecContext(ctx, r.db, query, msg)
	if err != nil {
		return fmt.Errorf("update message %s: %w", msg.ID, err)
	}
	return requireRow(res, "message "+msg.ID)
}

// SetStatus records the extraction outcome.
func (r *MessageRepository) SetStatus(ctx context.Context, id, status string) error {
	query := r.db.Rebind(`UPDATE messages SET status = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, status, id); err != nil {
		return fmt.Errorf("set message %s status: %w", id, err)
	}
	return nil
}

// List returns messages oldest first.
func (r *MessageRepository) List(ctx context.Context, filter MessageFilter) ([]domain.RawMessage, error) {
	query := `SELECT ` + messageColumns + ` FROM messages`
	var args []any
	if filter.Channel != "" {
		query += ` WHERE channel = ? OR channel_username = ?`
		args = append(args, filter.Channel, filter.Channel)
	}
	query += ` ORDER BY received_at ASC, id ASC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	var msgs []domain.RawMessage
	if err := sqlx.SelectContext(ctx, r.db, &msgs, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// Count returns the number of stored messages.
func (r *MessageRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM messages`); err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for %s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

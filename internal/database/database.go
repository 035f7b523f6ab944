// Package database provides the message, product and operational log store.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Hosseinjeff/Wholesale-project/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DefaultPingTimeout bounds the connection check.
const DefaultPingTimeout = 5 * time.Second

// ErrNotFound is returned by lookups that require a row.
var ErrNotFound = errors.New("not found")

// Connect opens the configured store and verifies the connection.
func Connect(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	if cfg.Driver == config.DriverSQLite {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxConnections)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultPingTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", cfg.Driver, pingErr)
	}

	return db, nil
}

// Store groups the repositories over one connection.
type Store struct {
	db       *sqlx.DB
	Messages *MessageRepository
	Products *ProductRepository
	Logs     *LogRepository
}

// NewStore creates repositories over db.
func NewStore(db *sqlx.DB) *Store {
	return &Store{
		db:       db,
		Messages: NewMessageRepository(db),
		Products: NewProductRepository(db),
		Logs:     NewLogRepository(db),
	}
}

// DB returns the underlying connection.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx is the set of repositories bound to one transaction.
type Tx struct {
	Messages *MessageRepository
	Products *ProductRepository
	Logs     *LogRepository
}

// InTx runs fn in a transaction, committing when fn returns nil.
func (s *Store) InTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	tx := &Tx{
		Messages: NewMessageRepository(sqlTx),
		Products: NewProductRepository(sqlTx),
		Logs:     NewLogRepository(sqlTx),
	}

	if fnErr := fn(tx); fnErr != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %w)", fnErr, rbErr)
		}
		return fnErr
	}

	if commitErr := sqlTx.Commit(); commitErr != nil {
		return fmt.Errorf("commit transaction: %w", commitErr)
	}
	return nil
}

// Close closes the connection.
func (s *Store) Close() error {
	return s.db.Close()
}

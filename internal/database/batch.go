package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Hosseinjeff/Wholesale-project/internal/dedup"
	"github.com/Hosseinjeff/Wholesale-project/internal/domain"
)

// Batch is everything one ingested message writes.
type Batch struct {
	Message domain.RawMessage
	// ReplaceMessage updates an existing message row instead of inserting.
	ReplaceMessage bool
	Products       []dedup.Decision
	Logs           []domain.LogEvent
}

// Apply writes b in one transaction.
func (s *Store) Apply(ctx context.Context, b Batch) error {
	return s.InTx(ctx, func(tx *Tx) error {
		msg := b.Message
		if b.ReplaceMessage {
			if err := tx.Messages.UpdateContent(ctx, &msg); err != nil {
				return err
			}
		} else if err := tx.Messages.Insert(ctx, &msg); err != nil {
			return err
		}

		for i := range b.Products {
			d := &b.Products[i]
			var err error
			switch d.Action {
			case dedup.ActionUpdate:
				err = tx.Products.Update(ctx, &d.Target)
			case dedup.ActionInsert:
				err = tx.Products.Insert(ctx, &d.Target)
			default:
				err = fmt.Errorf("unknown product action %q", d.Action)
			}
			if err != nil {
				return err
			}
		}

		for i := range b.Logs {
			if err := tx.Logs.Insert(ctx, &b.Logs[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetMessage returns a stored message or ErrNotFound.
func (s *Store) GetMessage(ctx context.Context, id string) (*domain.RawMessage, error) {
	return s.Messages.Get(ctx, id)
}

// ListMessages returns stored messages oldest first.
func (s *Store) ListMessages(ctx context.Context, filter MessageFilter) ([]domain.RawMessage, error) {
	return s.Messages.List(ctx, filter)
}

// FindByNameAndChannel implements dedup.Finder.
func (s *Store) FindByNameAndChannel(ctx context.Context, name, channel string) (*domain.ProductRecord, error) {
	return s.Products.FindByNameAndChannel(ctx, name, channel)
}

// MeanSalePrice implements the pipeline price history.
func (s *Store) MeanSalePrice(ctx context.Context, name string) (domain.PriceStats, error) {
	return s.Products.MeanSalePrice(ctx, name)
}

// InsertLog writes one operational log row outside any batch.
func (s *Store) InsertLog(ctx context.Context, ev *domain.LogEvent) error {
	return s.Logs.Insert(ctx, ev)
}

// ListProducts returns the most recently updated products.
func (s *Store) ListProducts(ctx context.Context, limit int) ([]domain.ProductRecord, error) {
	return s.Products.List(ctx, limit)
}

// AllProducts returns every stored product.
func (s *Store) AllProducts(ctx context.Context) ([]domain.ProductRecord, error) {
	return s.Products.All(ctx)
}

// RecentLogs returns the newest operational log rows.
func (s *Store) RecentLogs(ctx context.Context, limit int) ([]domain.LogEvent, error) {
	return s.Logs.Recent(ctx, limit)
}

// DeleteLogsBefore prunes the operational log.
func (s *Store) DeleteLogsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.Logs.DeleteBefore(ctx, cutoff)
}

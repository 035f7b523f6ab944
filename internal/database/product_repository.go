package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Hosseinjeff/Wholesale-project/internal/domain"
	"github.com/jmoiron/sqlx"
)

const productColumns = `id, name, sale_price, consumer_price, box_price, unit_price, price_type,
	currency, packaging, volume, variation, stock_status, category, channel, description,
	location, contact_info, extraction_confidence, status, review_reason, message_id,
	created_at, updated_at`

// DefaultProductLimit is used when List is called without a limit.
const DefaultProductLimit = 100

// ProductRepository stores extracted products. Names are matched
// case-insensitively; channels exactly.
type ProductRepository struct {
	db sqlx.ExtContext
}

// NewProductRepository creates a product repository over a DB or Tx.
func NewProductRepository(db sqlx.ExtContext) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindByNameAndChannel returns the stored product, or nil when none exists.
func (r *ProductRepository) FindByNameAndChannel(ctx context.Context, name, channel string) (*domain.ProductRecord, error) {
	var rec domain.ProductRecord
	query := r.db.Rebind(`
		SELECT ` + productColumns + `
		FROM products
		WHERE LOWER(name) = LOWER(?) AND channel = ?
		ORDER BY updated_at DESC
		LIMIT 1
	`)

	if err := sqlx.GetContext(ctx, r.db, &rec, query, name, channel); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find product %q in %s: %w", name, channel, err)
	}
	return &rec, nil
}

// MeanSalePrice averages the positive sale prices stored under name across
// all channels.
func (r *ProductRepository) MeanSalePrice(ctx context.Context, name string) (domain.PriceStats, error) {
	var stats domain.PriceStats
	query := r.db.Rebind(`
		SELECT COALESCE(AVG(sale_price), 0) AS mean, COUNT(*) AS sample_count
		FROM products
		WHERE LOWER(name) = LOWER(?) AND sale_price > 0
	`)

	if err := sqlx.GetContext(ctx, r.db, &stats, query, name); err != nil {
		return domain.PriceStats{}, fmt.Errorf("mean sale price for %q: %w", name, err)
	}
	return stats, nil
}

// Insert stores a new product.
func (r *ProductRepository) Insert(ctx context.Context, rec *domain.ProductRecord) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES (:id, :name, :sale_price, :consumer_price, :box_price, :unit_price, :price_type,
			:currency, :packaging, :volume, :variation, :stock_status, :category, :channel, :description,
			:location, :contact_info, :extraction_confidence, :status, :review_reason, :message_id,
			:created_at, :updated_at)
	`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, rec); err != nil {
		return fmt.Errorf("insert product %q: %w", rec.Name, err)
	}
	return nil
}

// Update replaces the stored row with the same ID.
func (r *ProductRepository) Update(ctx context.Context, rec *domain.ProductRecord) error {
	query := `
		UPDATE products
		SET sale_price = :sale_price, consumer_price = :consumer_price, box_price = :box_price,
		    unit_price = :unit_price, price_type = :price_type, currency = :currency,
		    packaging = :packaging, volume = :volume, variation = :variation,
		    stock_status = :stock_status, category = :category, description = :description,
		    location = :location, contact_info = :contact_info,
		    extraction_confidence = :extraction_confidence, status = :status,
		    review_reason = :review_reason, message_id = :message_id, updated_at = :updated_at
		WHERE id = :id
	`
	res, err := sqlx.NamedExecContext(ctx, r.db, query, rec)
	if err != nil {
		return fmt.Errorf("update product %q: %w", rec.Name, err)
	}
	return requireRow(res, "product "+rec.ID)
}

// List returns the most recently updated products. limit <= 0 uses
// DefaultProductLimit.
func (r *ProductRepository) List(ctx context.Context, limit int) ([]domain.ProductRecord, error) {
	if limit <= 0 {
		limit = DefaultProductLimit
	}
	query := r.db.Rebind(`SELECT ` + productColumns + ` FROM products ORDER BY updated_at DESC LIMIT ?`)

	var recs []domain.ProductRecord
	if err := sqlx.SelectContext(ctx, r.db, &recs, query, limit); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return recs, nil
}

// All returns every product in creation order.
func (r *ProductRepository) All(ctx context.Context) ([]domain.ProductRecord, error) {
	var recs []domain.ProductRecord
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at ASC, id ASC`
	if err := sqlx.SelectContext(ctx, r.db, &recs, query); err != nil {
		return nil, fmt.Errorf("list all products: %w", err)
	}
	return recs, nil
}

// Count returns the number of stored products.
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM products`); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

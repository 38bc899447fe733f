package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"

	"github.com/bargainmart/backend/internal/model/catalog"
)

// CatalogStore implements catalog.Store on Postgres.
type CatalogStore struct {
	db  *pgxpool.Pool
	sfg singleflight.Group // collapses concurrent full-list reads
}

// NewCatalogStore wraps a pool into a catalog store.
func NewCatalogStore(db *pgxpool.Pool) *CatalogStore {
	return &CatalogStore{db: db}
}

const productColumns = `id, name, description, price, original_price, image, category, stock, featured, created_at`

// List returns all products, newest first.
func (s *CatalogStore) List(ctx context.Context) ([]catalog.Product, error) {
	v, err, _ := s.sfg.Do("list", func() (interface{}, error) {
		rows, err := s.db.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC, id`)
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
		defer rows.Close()
		return scanProducts(rows)
	})
	if err != nil {
		return nil, err
	}
	return v.([]catalog.Product), nil
}

// FindByID looks up a single product.
func (s *CatalogStore) FindByID(ctx context.Context, id string) (catalog.Product, error) {
	row := s.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Product{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Product{}, fmt.Errorf("find product %s: %w", id, err)
	}
	return p, nil
}

// Search filters by case-insensitive substring on name/description and an
// exact category match when category is non-empty.
func (s *CatalogStore) Search(ctx context.Context, query, category string) ([]catalog.Product, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE ($1 = '' OR name ILIKE '%'||$1||'%' OR description ILIKE '%'||$1||'%')
		  AND ($2 = '' OR category = $2)
		ORDER BY created_at DESC, id`, query, category)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows)
}

// Create inserts a product.
func (s *CatalogStore) Create(ctx context.Context, p catalog.Product) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.Name, p.Description, p.Price, nullablePrice(p.OriginalPrice),
		p.Image, p.Category, p.Stock, p.Featured, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// Update replaces the mutable columns of a product.
func (s *CatalogStore) Update(ctx context.Context, p catalog.Product) error {
	ct, err := s.db.Exec(ctx, `
		UPDATE products SET name=$2, description=$3, price=$4, original_price=$5,
		       image=$6, category=$7, stock=$8, featured=$9
		WHERE id=$1`,
		p.ID, p.Name, p.Description, p.Price, nullablePrice(p.OriginalPrice),
		p.Image, p.Category, p.Stock, p.Featured)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// Delete removes a product.
func (s *CatalogStore) Delete(ctx context.Context, id string) error {
	ct, err := s.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func scanProducts(rows pgx.Rows) ([]catalog.Product, error) {
	var out []catalog.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProduct(row pgx.Row) (catalog.Product, error) {
	var p catalog.Product
	var original *float64
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &original,
		&p.Image, &p.Category, &p.Stock, &p.Featured, &p.CreatedAt)
	if err != nil {
		return catalog.Product{}, err
	}
	if original != nil {
		p.OriginalPrice = *original
	}
	return p, nil
}

func nullablePrice(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}

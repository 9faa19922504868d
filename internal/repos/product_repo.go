package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, category_id, name, description, image_url, featured`

// List returns all products, optionally restricted to one category.
func (r *ProductRepo) List(ctx context.Context, categoryID string) ([]domain.Product, error) {
	q := `SELECT ` + productCols + ` FROM products`
	args := []any{}
	if categoryID != "" {
		q += ` WHERE category_id = ?`
		args = append(args, categoryID)
	}
	q += ` ORDER BY name`

	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, q, args...)
	return out, err
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	return p, err
}

// Upsert writes product reference data; used by seeding and tests.
func (r *ProductRepo) Upsert(ctx context.Context, p domain.Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products(id, category_id, name, description, image_url, featured, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  category_id = excluded.category_id,
		  name = excluded.name,
		  description = excluded.description,
		  image_url = excluded.image_url,
		  featured = excluded.featured,
		  updated_at = excluded.created_at
	`, p.ID, p.CategoryID, p.Name, p.Description, p.ImageURL, p.Featured, now())
	return err
}

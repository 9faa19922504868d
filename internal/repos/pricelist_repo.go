package repos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type PricelistRepo struct{ db *sqlx.DB }

func NewPricelistRepo(db *sqlx.DB) *PricelistRepo { return &PricelistRepo{db: db} }

const priceCols = `id, product_id, price, currency, is_active, effective_at`

// ActivePrice returns the active price row for a product. When several rows are flagged
// active, the one with the latest effective_at wins, then the highest id.
func (r *PricelistRepo) ActivePrice(ctx context.Context, productID string) (domain.PriceItem, error) {
	var p domain.PriceItem
	err := r.db.GetContext(ctx, &p, `
		SELECT `+priceCols+`
		FROM pricelist
		WHERE product_id = ? AND is_active = 1
		ORDER BY effective_at DESC, id DESC
		LIMIT 1
	`, productID)
	return p, err
}

// ActivePrices returns every active price row, oldest first, so that a caller folding the
// rows into a map keeps the same winner as ActivePrice. A nil ids slice means no restriction.
func (r *PricelistRepo) ActivePrices(ctx context.Context, ids []string) ([]domain.PriceItem, error) {
	out := []domain.PriceItem{}
	if ids != nil && len(ids) == 0 {
		return out, nil
	}

	q := `SELECT ` + priceCols + ` FROM pricelist WHERE is_active = 1`
	args := []any{}
	if ids != nil {
		var err error
		q, args, err = sqlx.In(q+` AND product_id IN (?)`, ids)
		if err != nil {
			return nil, err
		}
	}
	q += ` ORDER BY effective_at ASC, id ASC`

	err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...)
	return out, err
}

// Insert adds a price row. An empty ID or EffectiveAt is filled in.
func (r *PricelistRepo) Insert(ctx context.Context, p domain.PriceItem) (domain.PriceItem, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.EffectiveAt == "" {
		p.EffectiveAt = now()
	}
	if p.Currency == "" {
		p.Currency = domain.Currency
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pricelist(`+priceCols+`) VALUES(?, ?, ?, ?, ?, ?)
	`, p.ID, p.ProductID, p.Price, p.Currency, p.IsActive, p.EffectiveAt)
	return p, err
}

package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

// CartRepo stores carts (header + item rows) and the per-user current-cart pointer.
// A repo returned by WithTx runs every statement on that transaction.
type CartRepo struct {
	db *sqlx.DB
	tx *sqlx.Tx
}

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

func (r *CartRepo) WithTx(tx *sqlx.Tx) *CartRepo { return &CartRepo{db: r.db, tx: tx} }

func (r *CartRepo) ext() sqlx.ExtContext {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// atomic runs fn on the bound transaction, or opens one.
func (r *CartRepo) atomic(ctx context.Context, fn func(x sqlx.ExtContext) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	return InTx(ctx, r.db, func(tx *sqlx.Tx) error { return fn(tx) })
}

// CurrentCartID resolves the user's pointer. sql.ErrNoRows when the user has none.
func (r *CartRepo) CurrentCartID(ctx context.Context, userID string) (string, error) {
	var id string
	err := sqlx.GetContext(ctx, r.ext(), &id, `SELECT current_cart_id FROM user_state WHERE user_id = ?`, userID)
	return id, err
}

func (r *CartRepo) SetCurrentCart(ctx context.Context, userID, cartID string) error {
	_, err := r.ext().ExecContext(ctx, `
		INSERT INTO user_state(user_id, current_cart_id, updated_at)
		VALUES(?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
		  current_cart_id = excluded.current_cart_id,
		  updated_at = excluded.updated_at
	`, userID, cartID, now())
	return err
}

// Insert writes a new cart header and its items.
func (r *CartRepo) Insert(ctx context.Context, c *domain.Cart) error {
	ts := now()
	if c.CreatedAt == "" {
		c.CreatedAt = ts
	}
	if c.UpdatedAt == "" {
		c.UpdatedAt = ts
	}
	return r.atomic(ctx, func(x sqlx.ExtContext) error {
		if _, err := x.ExecContext(ctx, `
			INSERT INTO carts(id, user_id, subtotal, discount, total, status, linked_order_id, version, created_at, updated_at)
			VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, c.ID, c.UserID, c.Subtotal, c.Discount, c.Total, string(c.Status), c.LinkedOrderID, c.Version, c.CreatedAt, c.UpdatedAt); err != nil {
			return err
		}
		return insertItems(ctx, x, c.ID, c.Items)
	})
}

// InsertCurrent writes a new cart and repoints the user's current-cart pointer at it,
// both or neither.
func (r *CartRepo) InsertCurrent(ctx context.Context, c *domain.Cart) error {
	return r.atomic(ctx, func(x sqlx.ExtContext) error {
		bound := r
		if tx, ok := x.(*sqlx.Tx); ok {
			bound = r.WithTx(tx)
		}
		if err := bound.Insert(ctx, c); err != nil {
			return err
		}
		return bound.SetCurrentCart(ctx, c.UserID, c.ID)
	})
}

// Get loads a cart with its items in insertion order. sql.ErrNoRows when absent.
func (r *CartRepo) Get(ctx context.Context, cartID string) (domain.Cart, error) {
	var c domain.Cart
	if err := sqlx.GetContext(ctx, r.ext(), &c, `
		SELECT id, user_id, subtotal, discount, total, status, linked_order_id, version, created_at, updated_at
		FROM carts WHERE id = ?
	`, cartID); err != nil {
		return domain.Cart{}, err
	}
	c.Items = []domain.CartItem{}
	if err := sqlx.SelectContext(ctx, r.ext(), &c.Items, `
		SELECT product_id, name, price, quantity, item_total
		FROM cart_items WHERE cart_id = ?
		ORDER BY position
	`, cartID); err != nil {
		return domain.Cart{}, err
	}
	return c, nil
}

// Save replaces the whole cart document. The write only applies if the stored version still
// matches c.Version and the cart is active; otherwise ErrStaleWrite. On success c.Version
// is advanced.
func (r *CartRepo) Save(ctx context.Context, c *domain.Cart) error {
	c.UpdatedAt = now()
	err := r.atomic(ctx, func(x sqlx.ExtContext) error {
		res, err := x.ExecContext(ctx, `
			UPDATE carts
			SET subtotal = ?, discount = ?, total = ?, updated_at = ?, version = version + 1
			WHERE id = ? AND version = ? AND status = 'active'
		`, c.Subtotal, c.Discount, c.Total, c.UpdatedAt, c.ID, c.Version)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrStaleWrite
		}
		if _, err := x.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = ?`, c.ID); err != nil {
			return err
		}
		return insertItems(ctx, x, c.ID, c.Items)
	})
	if err != nil {
		return err
	}
	c.Version++
	return nil
}

// MarkCheckedOut freezes an active cart and links it to the order it produced.
func (r *CartRepo) MarkCheckedOut(ctx context.Context, cartID string, version int, orderID string) error {
	res, err := r.ext().ExecContext(ctx, `
		UPDATE carts
		SET status = 'checked_out', linked_order_id = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ? AND status = 'active'
	`, orderID, now(), cartID, version)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStaleWrite
	}
	return nil
}

func insertItems(ctx context.Context, x sqlx.ExtContext, cartID string, items []domain.CartItem) error {
	for i, it := range items {
		if _, err := x.ExecContext(ctx, `
			INSERT INTO cart_items(cart_id, position, product_id, name, price, quantity, item_total)
			VALUES(?, ?, ?, ?, ?, ?, ?)
		`, cartID, i, it.ProductID, it.Name, it.Price, it.Quantity, it.ItemTotal); err != nil {
			return err
		}
	}
	return nil
}

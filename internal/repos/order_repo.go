package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

type OrderRepo struct {
	db *sqlx.DB
	tx *sqlx.Tx
}

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

func (r *OrderRepo) WithTx(tx *sqlx.Tx) *OrderRepo { return &OrderRepo{db: r.db, tx: tx} }

func (r *OrderRepo) ext() sqlx.ExtContext {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

const orderCols = `id, user_id, cart_id, subtotal, discount, total, payment_method, is_paid, card_last4, status, created_at`

// Insert writes the order header and its line snapshot. Callers needing atomicity with
// other writes bind the repo to a transaction first.
func (r *OrderRepo) Insert(ctx context.Context, o *domain.Order) error {
	if o.CreatedAt == "" {
		o.CreatedAt = now()
	}
	x := r.ext()
	if _, err := x.ExecContext(ctx, `
		INSERT INTO orders(`+orderCols+`)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ID, o.UserID, o.CartID, o.Subtotal, o.Discount, o.Total, string(o.PaymentMethod), o.IsPaid, o.CardLast4, string(o.Status), o.CreatedAt); err != nil {
		return err
	}
	for i, it := range o.Items {
		if _, err := x.ExecContext(ctx, `
			INSERT INTO order_items(order_id, position, product_id, name, price, quantity)
			VALUES(?, ?, ?, ?, ?, ?)
		`, o.ID, i, it.ProductID, it.Name, it.Price, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// Get loads one order with its items. sql.ErrNoRows when absent.
func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	var o domain.Order
	if err := sqlx.GetContext(ctx, r.ext(), &o, `SELECT `+orderCols+` FROM orders WHERE id = ?`, id); err != nil {
		return domain.Order{}, err
	}
	o.Items = []domain.OrderItem{}
	err := sqlx.SelectContext(ctx, r.ext(), &o.Items, `
		SELECT product_id, name, price, quantity
		FROM order_items WHERE order_id = ?
		ORDER BY position
	`, id)
	return o, err
}

// ListByUser returns the user's orders, newest first, with items.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	orders := []domain.Order{}
	if err := sqlx.SelectContext(ctx, r.ext(), &orders, `
		SELECT `+orderCols+`
		FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, userID); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, len(orders))
	byID := make(map[string]*domain.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		orders[i].Items = []domain.OrderItem{}
		byID[orders[i].ID] = &orders[i]
	}

	type line struct {
		OrderID string `db:"order_id"`
		domain.OrderItem
	}
	q, args, err := sqlx.In(`
		SELECT order_id, product_id, name, price, quantity
		FROM order_items
		WHERE order_id IN (?)
		ORDER BY order_id, position
	`, ids)
	if err != nil {
		return nil, err
	}
	var lines []line
	if err := sqlx.SelectContext(ctx, r.ext(), &lines, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	for _, l := range lines {
		if o := byID[l.OrderID]; o != nil {
			o.Items = append(o.Items, l.OrderItem)
		}
	}
	return orders, nil
}

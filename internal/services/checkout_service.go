package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/metrics"
	"storefront/internal/repos"
)

// IdempotencyStore remembers checkout results per user and Idempotency-Key.
type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Release(ctx context.Context, scope, key string) error
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, msg events.OrderPlaced) error
}

type CheckoutRequest struct {
	PaymentMethod  domain.PaymentMethod
	CardNumber     string
	IdempotencyKey string
}

type CheckoutResult struct {
	OrderID   string             `json:"orderId"`
	NewCartID string             `json:"newCartId"`
	Status    domain.OrderStatus `json:"status"`
}

type CheckoutService struct {
	DB       *sqlx.DB
	Carts    *CartService
	Orders   *repos.OrderRepo
	Payments PaymentAuthorizer

	// Idem is optional; without it Idempotency-Key headers are ignored.
	Idem   IdempotencyStore
	Events OrderPublisher
}

func NewCheckoutService(db *sqlx.DB, carts *CartService, orders *repos.OrderRepo, payments PaymentAuthorizer) *CheckoutService {
	return &CheckoutService{DB: db, Carts: carts, Orders: orders, Payments: payments, Events: events.NopPublisher{}}
}

// Checkout turns the user's current cart into an order.
//
// Payment is authorized before anything is written. The order insert, the retirement of the
// source cart and the provisioning of the next cart commit together or not at all.
func (s *CheckoutService) Checkout(ctx context.Context, userID string, req CheckoutRequest) (CheckoutResult, error) {
	if req.IdempotencyKey == "" || s.Idem == nil {
		return s.checkout(ctx, userID, req)
	}

	if raw, ok, err := s.Idem.Recall(ctx, userID, req.IdempotencyKey); err == nil && ok {
		var prev CheckoutResult
		if json.Unmarshal([]byte(raw), &prev) == nil {
			return prev, nil
		}
	}
	locked, err := s.Idem.TryLock(ctx, userID, req.IdempotencyKey)
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("idempotency lock: %w", err)
	}
	if !locked {
		return CheckoutResult{}, ErrDuplicateRequest
	}

	res, err := s.checkout(ctx, userID, req)
	if err != nil {
		_ = s.Idem.Release(ctx, userID, req.IdempotencyKey)
		return CheckoutResult{}, err
	}
	if raw, err := json.Marshal(res); err == nil {
		if err := s.Idem.Remember(ctx, userID, req.IdempotencyKey, string(raw)); err != nil {
			slog.WarnContext(ctx, "idempotency remember failed", "order_id", res.OrderID, "err", err)
		}
	}
	return res, nil
}

func (s *CheckoutService) checkout(ctx context.Context, userID string, req CheckoutRequest) (CheckoutResult, error) {
	method := string(req.PaymentMethod)
	if req.PaymentMethod != domain.PaymentCard && req.PaymentMethod != domain.PaymentCash {
		return CheckoutResult{}, ErrInvalidPayment
	}

	cart, err := s.Carts.GetCart(ctx, userID)
	if err != nil {
		return CheckoutResult{}, err
	}
	if len(cart.Items) == 0 {
		metrics.Checkout(method, "empty_cart")
		return CheckoutResult{}, ErrEmptyCart
	}

	order := domain.Order{
		ID:            uuid.NewString(),
		UserID:        userID,
		CartID:        cart.ID,
		Items:         make([]domain.OrderItem, 0, len(cart.Items)),
		Subtotal:      cart.Subtotal,
		Discount:      cart.Discount,
		Total:         cart.Total,
		PaymentMethod: req.PaymentMethod,
		Status:        domain.OrderSuccess,
	}
	for _, it := range cart.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}

	if req.PaymentMethod == domain.PaymentCard {
		card := StripSpaces(req.CardNumber)
		if card == "" {
			return CheckoutResult{}, ErrMissingCardNumber
		}
		pay, err := s.Payments.ProcessPayment(ctx, cart.Total, card)
		if err != nil {
			return CheckoutResult{}, fmt.Errorf("authorize payment: %w", err)
		}
		if !pay.Success {
			metrics.Checkout(method, pay.ErrorCode)
			return CheckoutResult{}, &PaymentDeclinedError{Code: pay.ErrorCode}
		}
		order.IsPaid = true
		if len(card) >= 4 {
			order.CardLast4 = card[len(card)-4:]
		}
	}

	next := newEmptyCart(userID)
	err = repos.InTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		if err := s.Orders.WithTx(tx).Insert(ctx, &order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		carts := s.Carts.Carts.WithTx(tx)
		if err := carts.MarkCheckedOut(ctx, cart.ID, cart.Version, order.ID); err != nil {
			if errors.Is(err, repos.ErrStaleWrite) {
				return ErrCartConflict
			}
			return fmt.Errorf("retire cart %s: %w", cart.ID, err)
		}
		if err := carts.InsertCurrent(ctx, &next); err != nil {
			return fmt.Errorf("provision cart: %w", err)
		}
		return nil
	})
	if err != nil {
		metrics.Checkout(method, "failed")
		return CheckoutResult{}, err
	}
	metrics.Checkout(method, "success")

	if s.Events != nil {
		if err := s.Events.PublishOrderPlaced(ctx, events.OrderPlaced{
			OrderID:       order.ID,
			UserID:        userID,
			CartID:        cart.ID,
			Total:         order.Total,
			Currency:      domain.Currency,
			PaymentMethod: method,
			IsPaid:        order.IsPaid,
			CreatedAt:     order.CreatedAt,
		}); err != nil {
			slog.WarnContext(ctx, "order.placed publish failed", "order_id", order.ID, "err", err)
		}
	}

	return CheckoutResult{OrderID: order.ID, NewCartID: next.ID, Status: domain.OrderSuccess}, nil
}

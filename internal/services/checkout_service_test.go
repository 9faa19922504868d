package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/services"
)

func TestCheckout_CardSuccess(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.cart.AddItem(ctx, "u1", "speaker-01", 1)
	require.NoError(t, err)
	before, err := e.cart.GetCart(ctx, "u1")
	require.NoError(t, err)

	res, err := e.checkout.Checkout(ctx, "u1", services.CheckoutRequest{
		PaymentMethod: domain.PaymentCard,
		CardNumber:    "9999 9999 9999 9999",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderSuccess, res.Status)
	assert.NotEmpty(t, res.OrderID)
	assert.NotEqual(t, before.ID, res.NewCartID)

	order, err := e.orders.GetOrder(ctx, res.OrderID)
	require.NoError(t, err)
	assert.True(t, order.IsPaid)
	assert.Equal(t, "9999", order.CardLast4)
	assert.Equal(t, before.ID, order.CartID)
	assert.Equal(t, domain.Money(12950), order.Subtotal)
	assert.Equal(t, domain.Money(1295), order.Discount)
	assert.Equal(t, domain.Money(11655), order.Total)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "speaker-01", order.Items[0].ProductID)

	old, err := e.cart.GetCartByID(ctx, before.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CartCheckedOut, old.Status)
	assert.Equal(t, res.OrderID, old.LinkedOrderID)
	assert.Len(t, old.Items, 1)

	current, err := e.cart.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, res.NewCartID, current.ID)
	assert.Empty(t, current.Items)

	require.Len(t, e.events.msgs, 1)
	assert.Equal(t, res.OrderID, e.events.msgs[0].OrderID)
}

func TestCheckout_Declined(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.cart.AddItem(ctx, "u1", "mouse-01", 2)
	require.NoError(t, err)
	before, err := e.cart.GetCart(ctx, "u1")
	require.NoError(t, err)

	_, err = e.checkout.Checkout(ctx, "u1", services.CheckoutRequest{
		PaymentMethod: domain.PaymentCard,
		CardNumber:    "1111111111111111",
	})
	var declined *services.PaymentDeclinedError
	require.True(t, errors.As(err, &declined))
	assert.Equal(t, services.PaymentInsufficientFunds, declined.Code)

	after, err := e.cart.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, domain.CartActive, after.Status)
	assert.Equal(t, before.Items, after.Items)

	orders, err := e.orders.GetUserOrders(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, e.events.msgs)
}

func TestCheckout_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.checkout.Checkout(ctx, "u1", services.CheckoutRequest{PaymentMethod: domain.PaymentCash})
	assert.ErrorIs(t, err, services.ErrEmptyCart)

	_, err = e.cart.AddItem(ctx, "u1", "mouse-01", 1)
	require.NoError(t, err)

	_, err = e.checkout.Checkout(ctx, "u1", services.CheckoutRequest{PaymentMethod: domain.PaymentCard, CardNumber: "   "})
	assert.ErrorIs(t, err, services.ErrMissingCardNumber)

	_, err = e.checkout.Checkout(ctx, "u1", services.CheckoutRequest{PaymentMethod: "barter"})
	assert.ErrorIs(t, err, services.ErrInvalidPayment)
}

func TestCheckout_CashAndHistory(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.cart.AddItem(ctx, "u1", "cable-01", 1)
	require.NoError(t, err)
	first, err := e.checkout.Checkout(ctx, "u1", services.CheckoutRequest{PaymentMethod: domain.PaymentCash})
	require.NoError(t, err)

	_, err = e.cart.AddItem(ctx, "u1", "mouse-01", 1)
	require.NoError(t, err)
	second, err := e.checkout.Checkout(ctx, "u1", services.CheckoutRequest{PaymentMethod: domain.PaymentCash})
	require.NoError(t, err)

	orders, err := e.orders.GetUserOrders(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.OrderID, orders[0].ID)
	assert.Equal(t, first.OrderID, orders[1].ID)
	assert.False(t, orders[0].IsPaid)
	assert.Empty(t, orders[0].CardLast4)
	assert.Equal(t, domain.PaymentCash, orders[0].PaymentMethod)
	require.Len(t, orders[1].Items, 1)
	assert.Equal(t, "cable-01", orders[1].Items[0].ProductID)

	others, err := e.orders.GetUserOrders(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestCheckout_IdempotentReplay(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.checkout.Idem = newMemIdem()

	_, err := e.cart.AddItem(ctx, "u1", "mouse-01", 1)
	require.NoError(t, err)

	req := services.CheckoutRequest{PaymentMethod: domain.PaymentCash, IdempotencyKey: "k-1"}
	first, err := e.checkout.Checkout(ctx, "u1", req)
	require.NoError(t, err)
	again, err := e.checkout.Checkout(ctx, "u1", req)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	orders, err := e.orders.GetUserOrders(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	// a failed attempt releases the key so it can be retried
	_, err = e.checkout.Checkout(ctx, "u1", services.CheckoutRequest{PaymentMethod: domain.PaymentCash, IdempotencyKey: "k-2"})
	assert.ErrorIs(t, err, services.ErrEmptyCart)
	_, err = e.cart.AddItem(ctx, "u1", "mouse-01", 1)
	require.NoError(t, err)
	_, err = e.checkout.Checkout(ctx, "u1", services.CheckoutRequest{PaymentMethod: domain.PaymentCash, IdempotencyKey: "k-2"})
	assert.NoError(t, err)
}

func TestCheckout_DuplicateInFlight(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	idem := newMemIdem()
	e.checkout.Idem = idem

	locked, err := idem.TryLock(ctx, "u1", "busy")
	require.NoError(t, err)
	require.True(t, locked)

	_, err = e.checkout.Checkout(ctx, "u1", services.CheckoutRequest{PaymentMethod: domain.PaymentCash, IdempotencyKey: "busy"})
	assert.ErrorIs(t, err, services.ErrDuplicateRequest)
}

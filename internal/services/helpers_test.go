package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"storefront/internal/events"
	"storefront/internal/repos"
	"storefront/internal/services"
)

type env struct {
	db       *sqlx.DB
	carts    *repos.CartRepo
	prices   *repos.PricelistRepo
	prods    *repos.ProductRepo
	cart     *services.CartService
	catalog  *services.CatalogService
	checkout *services.CheckoutService
	orders   *services.OrderService
	events   *recordingPublisher
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	e := &env{
		db:     db,
		carts:  repos.NewCartRepo(db),
		prices: repos.NewPricelistRepo(db),
		prods:  repos.NewProductRepo(db),
		events: &recordingPublisher{},
	}
	priceSvc := services.NewPricelistService(e.prices)
	e.catalog = services.NewCatalogService(repos.NewCategoryRepo(db), e.prods, priceSvc, "/api/images/products")
	e.cart = services.NewCartService(e.carts, e.prods, priceSvc)
	orderRepo := repos.NewOrderRepo(db)
	e.checkout = services.NewCheckoutService(db, e.cart, orderRepo, services.NewPaymentService())
	e.checkout.Events = e.events
	e.orders = services.NewOrderService(orderRepo)
	return e
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []events.OrderPlaced
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, msg events.OrderPlaced) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return nil
}

// memIdem is an in-process IdempotencyStore with the same semantics as the Redis one.
type memIdem struct {
	mu     sync.Mutex
	locks  map[string]bool
	values map[string]string
}

func newMemIdem() *memIdem {
	return &memIdem{locks: map[string]bool{}, values: map[string]string{}}
}

func (m *memIdem) TryLock(_ context.Context, scope, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := scope + ":" + key
	if m.locks[k] {
		return false, nil
	}
	m.locks[k] = true
	return true, nil
}

func (m *memIdem) Release(_ context.Context, scope, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, scope+":"+key)
	return nil
}

func (m *memIdem) Remember(_ context.Context, scope, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[scope+":"+key] = value
	return nil
}

func (m *memIdem) Recall(_ context.Context, scope, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[scope+":"+key]
	return v, ok, nil
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

// CartService owns each user's current cart.
//
// The user_state row is a soft pointer to the current cart. Reads reconcile it: a missing
// pointer, a pointer to a cart row that no longer exists, or a pointer to a cart that is no
// longer active all result in a fresh empty cart becoming current. GetCart therefore never
// reports not-found.
type CartService struct {
	Carts  *repos.CartRepo
	Prods  *repos.ProductRepo
	Prices *PricelistService
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo, prices *PricelistService) *CartService {
	return &CartService{Carts: carts, Prods: prods, Prices: prices}
}

func newEmptyCart(userID string) domain.Cart {
	return domain.Cart{
		ID:     uuid.NewString(),
		UserID: userID,
		Items:  []domain.CartItem{},
		Status: domain.CartActive,
	}
}

// CreateCart inserts an empty active cart and makes it the user's current cart.
func (s *CartService) CreateCart(ctx context.Context, userID string) (domain.Cart, error) {
	c := newEmptyCart(userID)
	if err := s.Carts.InsertCurrent(ctx, &c); err != nil {
		return domain.Cart{}, fmt.Errorf("create cart: %w", err)
	}
	return c, nil
}

func (s *CartService) GetCart(ctx context.Context, userID string) (domain.Cart, error) {
	cartID, err := s.Carts.CurrentCartID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return s.CreateCart(ctx, userID)
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("resolve current cart: %w", err)
	}

	c, err := s.Carts.Get(ctx, cartID)
	if errors.Is(err, sql.ErrNoRows) {
		return s.CreateCart(ctx, userID)
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart %s: %w", cartID, err)
	}
	if c.Status != domain.CartActive {
		return s.CreateCart(ctx, userID)
	}
	return c, nil
}

// GetCartByID loads any cart, including retired ones.
func (s *CartService) GetCartByID(ctx context.Context, cartID string) (domain.Cart, error) {
	return s.Carts.Get(ctx, cartID)
}

// AddItem increments an existing line by quantity (which may be negative), or appends a new
// line priced at the product's active price when quantity > 0. Lines that end at or below
// zero are dropped.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart) error {
		if i := indexOf(c.Items, productID); i >= 0 {
			it := &c.Items[i]
			it.Quantity += quantity
			it.ItemTotal = it.Price * int64(it.Quantity)
		} else if quantity > 0 {
			p, err := s.Prods.Get(ctx, productID)
			if errors.Is(err, sql.ErrNoRows) {
				return ErrProductNotFound
			}
			if err != nil {
				return fmt.Errorf("load product %s: %w", productID, err)
			}
			price, ok, err := s.Prices.GetActivePrice(ctx, productID)
			if err != nil {
				return fmt.Errorf("load price %s: %w", productID, err)
			}
			if !ok {
				return ErrPriceUnavailable
			}
			c.Items = append(c.Items, domain.CartItem{
				ProductID: productID,
				Name:      p.Name,
				Price:     price,
				Quantity:  quantity,
				ItemTotal: price * int64(quantity),
			})
		}
		c.Items = positiveOnly(c.Items)
		return nil
	})
}

// UpdateItemQuantity overwrites a line's quantity; zero or less removes the line.
// An unknown line leaves the items unchanged.
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, productID string, quantity int) (domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart) error {
		i := indexOf(c.Items, productID)
		if i < 0 {
			return nil
		}
		if quantity <= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
		c.Items[i].Quantity = quantity
		c.Items[i].ItemTotal = c.Items[i].Price * int64(quantity)
		return nil
	})
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart) error {
		if i := indexOf(c.Items, productID); i >= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		}
		return nil
	})
}

func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	_, err := s.mutate(ctx, userID, func(c *domain.Cart) error {
		c.Items = []domain.CartItem{}
		return nil
	})
	return err
}

func (s *CartService) mutate(ctx context.Context, userID string, fn func(c *domain.Cart) error) (domain.Cart, error) {
	c, err := s.GetCart(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	if err := fn(&c); err != nil {
		return domain.Cart{}, err
	}
	Recalculate(&c)
	if err := s.Carts.Save(ctx, &c); err != nil {
		if errors.Is(err, repos.ErrStaleWrite) {
			return domain.Cart{}, ErrCartConflict
		}
		return domain.Cart{}, fmt.Errorf("save cart %s: %w", c.ID, err)
	}
	return c, nil
}

// Recalculate derives subtotal, discount and total from the line totals.
func Recalculate(c *domain.Cart) {
	var subtotal domain.Money
	for _, it := range c.Items {
		subtotal += it.ItemTotal
	}
	c.Subtotal = subtotal
	c.Discount = CalculateDiscount(subtotal)
	c.Total = subtotal - c.Discount
}

func indexOf(items []domain.CartItem, productID string) int {
	for i, it := range items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

func positiveOnly(items []domain.CartItem) []domain.CartItem {
	out := items[:0]
	for _, it := range items {
		if it.Quantity > 0 {
			out = append(out, it)
		}
	}
	return out
}

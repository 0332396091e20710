package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ndquoc/flashmart/internal/core/domain"
	"github.com/ndquoc/flashmart/internal/port"
)

var ErrCartItemNotFound = errors.New("cart item not found")

// CartService owns the buyer-facing cart and the pre-checkout validation
// fast path. Validation takes shared locks so concurrent validators do not
// serialize against each other, while still waiting behind in-flight checkout
// transactions on the same products. Its result is advisory only: checkout
// re-validates inside its own transaction.
type CartService struct {
	store   port.Store
	carts   port.CartRepository
	catalog port.CatalogRepository
	now     func() time.Time
}

func NewCartService(store port.Store, carts port.CartRepository, catalog port.CatalogRepository) *CartService {
	return &CartService{
		store:   store,
		carts:   carts,
		catalog: catalog,
		now:     time.Now,
	}
}

// ValidateCart runs the same checks as checkout (existence, flash-sale
// window, stock) under shared locks and mutates nothing. The transaction is
// always rolled back.
func (s *CartService) ValidateCart(ctx context.Context, items []domain.LineItem) error {
	if len(items) == 0 {
		return domain.ErrEmptyCart()
	}
	for _, it := range items {
		if it.Quantity < 1 {
			return fmt.Errorf("invalid quantity %d for product %d", it.Quantity, it.ProductID)
		}
	}

	ordered := domain.CanonicalOrder(items)

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, _, err = lockAndValidate(ctx, tx, ordered, port.LockShared, s.now())
	return err
}

func (s *CartService) GetCart(ctx context.Context, buyerID int64) (*domain.Cart, error) {
	lines, err := s.carts.CartLines(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return domain.BuildCart(lines), nil
}

// AddItem checks the product against current stock before inserting. The
// check is advisory — stock may change before checkout — but gives the buyer
// immediate feedback.
func (s *CartService) AddItem(ctx context.Context, buyerID, productID int64, qty int) error {
	if qty < 1 {
		return fmt.Errorf("invalid quantity %d for product %d", qty, productID)
	}
	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("load product: %w", err)
	}
	if p == nil {
		return domain.ErrProductNotFound(productID)
	}
	if p.Stock < qty {
		return domain.ErrInsufficientStock(productID, p.Name, qty, p.Stock)
	}
	return s.carts.AddCartItem(ctx, buyerID, productID, qty)
}

func (s *CartService) UpdateItemQuantity(ctx context.Context, buyerID, productID int64, qty int) error {
	if qty < 1 {
		return fmt.Errorf("invalid quantity %d for product %d", qty, productID)
	}
	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("load product: %w", err)
	}
	if p == nil {
		return domain.ErrProductNotFound(productID)
	}
	if p.Stock < qty {
		return domain.ErrInsufficientStock(productID, p.Name, qty, p.Stock)
	}

	found, err := s.carts.SetCartItemQuantity(ctx, buyerID, productID, qty)
	if err != nil {
		return err
	}
	if !found {
		return ErrCartItemNotFound
	}
	return nil
}

func (s *CartService) RemoveItem(ctx context.Context, buyerID, productID int64) error {
	found, err := s.carts.RemoveCartItem(ctx, buyerID, productID)
	if err != nil {
		return err
	}
	if !found {
		return ErrCartItemNotFound
	}
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, buyerID int64) error {
	return s.carts.ClearCart(ctx, buyerID)
}

package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ndquoc/flashmart/internal/core/domain"
	"github.com/ndquoc/flashmart/internal/port"
)

const idempotencyKeyPrefix = "checkout:req:"

// CheckoutService runs the lock/validate/reserve/commit protocol. It is the
// sole writer of stock decrements and order rows; all mutual exclusion is
// delegated to the store's row locks, acquired in canonical ascending-id
// order. It never retries internally — retryable failures are surfaced to the
// caller so load is not compounded during contention spikes.
type CheckoutService struct {
	store  port.Store
	cache  port.CacheRepository
	events port.EventPublisher
	now    func() time.Time
}

func NewCheckoutService(store port.Store, cache port.CacheRepository, events port.EventPublisher) *CheckoutService {
	return &CheckoutService{
		store:  store,
		cache:  cache,
		events: events,
		now:    time.Now,
	}
}

// PlaceOrder validates and reserves every line item inside one transaction
// and creates the order. Either everything commits or the store is left
// untouched. requestID is an optional client token used to suppress
// double-submits; the transaction itself is the correctness mechanism.
func (s *CheckoutService) PlaceOrder(ctx context.Context, buyerID int64, requestID string, items []domain.LineItem) (*domain.OrderConfirmation, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart()
	}
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, fmt.Errorf("invalid quantity %d for product %d", it.Quantity, it.ProductID)
		}
	}

	var idemKey string
	if requestID != "" && s.cache != nil {
		idemKey = idempotencyKeyPrefix + requestID
		ok, err := s.cache.SetIdempotency(ctx, idemKey)
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return nil, domain.ErrDuplicateRequest(requestID)
		}
	}

	conf, err := s.placeOrder(ctx, buyerID, items)
	if err != nil && idemKey != "" {
		// Nothing committed, so the request id must stay usable: a retryable
		// failure invites the client to resubmit with the same id. Best
		// effort — a leaked key only blocks that one id until its TTL expires.
		if derr := s.cache.DeleteIdempotency(ctx, idemKey); derr != nil {
			log.Printf("failed to release idempotency key %s: %v", idemKey, derr)
		}
	}
	return conf, err
}

func (s *CheckoutService) placeOrder(ctx context.Context, buyerID int64, items []domain.LineItem) (*domain.OrderConfirmation, error) {
	ordered := domain.CanonicalOrder(items)
	now := s.now()

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	validated, total, err := lockAndValidate(ctx, tx, ordered, port.LockExclusive, now)
	if err != nil {
		return nil, err
	}

	orderID, err := tx.InsertOrder(ctx, buyerID, now)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for _, v := range validated {
		if err := tx.InsertOrderItem(ctx, orderID, v.view.ID, v.quantity); err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}

		// Conditional decrement as a second line of defense behind the
		// exclusive lock. Zero affected rows means the locking invariant was
		// violated somewhere; abort rather than retry.
		n, err := tx.DecrementStock(ctx, v.view.ID, v.quantity)
		if err != nil {
			return nil, fmt.Errorf("decrement stock: %w", err)
		}
		if n == 0 {
			log.Printf("INVARIANT: conditional decrement affected no rows: product=%d qty=%d order=%d", v.view.ID, v.quantity, orderID)
			return nil, domain.ErrRaceCondition(v.view.ID)
		}
	}

	if err := tx.DeleteCartItems(ctx, buyerID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.OrderPlaced(ctx, domain.OrderPlacedEvent{
			OrderID:    orderID,
			BuyerID:    buyerID,
			Items:      ordered,
			TotalCents: total,
			PlacedAt:   now,
		})
	}

	return &domain.OrderConfirmation{OrderID: orderID, TotalCents: total}, nil
}

type validatedItem struct {
	view     *domain.ProductView
	quantity int
}

// lockAndValidate acquires a row lock per product in the (already canonical)
// order given, then validates each item in that same order, failing fast on
// the first violation. Returns the locked views and the accumulated total.
func lockAndValidate(ctx context.Context, tx port.Tx, ordered []domain.LineItem, mode port.LockMode, now time.Time) ([]validatedItem, int64, error) {
	views := make([]*domain.ProductView, 0, len(ordered))
	for _, it := range ordered {
		pv, err := tx.LockProduct(ctx, it.ProductID, mode)
		if err != nil {
			return nil, 0, err
		}
		if pv == nil {
			return nil, 0, domain.ErrProductNotFound(it.ProductID)
		}
		views = append(views, pv)
	}

	validated := make([]validatedItem, 0, len(ordered))
	var total int64
	for i, it := range ordered {
		pv := views[i]
		// Re-checked at transaction time: a sale can expire between the
		// buyer's page load and their checkout click.
		if pv.FlashSaleEnd != nil && !pv.FlashSaleEnd.After(now) {
			return nil, 0, domain.ErrFlashSaleEnded(pv.ID, pv.Name)
		}
		if pv.Stock < it.Quantity {
			return nil, 0, domain.ErrInsufficientStock(pv.ID, pv.Name, it.Quantity, pv.Stock)
		}
		total += pv.PriceCents * int64(it.Quantity)
		validated = append(validated, validatedItem{view: pv, quantity: it.Quantity})
	}
	return validated, total, nil
}

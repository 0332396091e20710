package service

import (
	"context"
	"sync"
	"time"

	"github.com/ndquoc/flashmart/internal/core/domain"
	"github.com/ndquoc/flashmart/internal/port"
)

// memStore is an in-memory stand-in for the MySQL store. A transaction holds
// the store mutex from Begin until Commit or Rollback, which models the
// serialization the row locks provide, and keeps an undo log so a rollback
// leaves no trace.
type memStore struct {
	mu          sync.Mutex
	products    map[int64]*memProduct
	carts       map[int64]map[int64]int
	orders      map[int64]int64 // order id -> buyer id
	orderItems  map[int64][]domain.OrderItem
	nextOrderID int64

	failDecrement bool // force the conditional decrement to report zero rows
}

type memProduct struct {
	name       string
	priceCents int64
	stock      int
	flashEnd   *time.Time
}

func newMemStore() *memStore {
	return &memStore{
		products:   make(map[int64]*memProduct),
		carts:      make(map[int64]map[int64]int),
		orders:     make(map[int64]int64),
		orderItems: make(map[int64][]domain.OrderItem),
	}
}

func (s *memStore) addProduct(id int64, name string, price int64, stock int, flashEnd *time.Time) {
	s.products[id] = &memProduct{name: name, priceCents: price, stock: stock, flashEnd: flashEnd}
}

func (s *memStore) seedCart(buyerID int64, items map[int64]int) {
	cart := make(map[int64]int, len(items))
	for k, v := range items {
		cart[k] = v
	}
	s.carts[buyerID] = cart
}

func (s *memStore) stockOf(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].stock
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *memStore) cartSize(buyerID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts[buyerID])
}

func (s *memStore) Begin(ctx context.Context) (port.Tx, error) {
	s.mu.Lock()
	return &memTx{s: s}, nil
}

type memTx struct {
	s    *memStore
	done bool
	undo []func()
}

func (t *memTx) LockProduct(ctx context.Context, productID int64, mode port.LockMode) (*domain.ProductView, error) {
	p, ok := t.s.products[productID]
	if !ok {
		return nil, nil
	}
	pv := &domain.ProductView{
		ID:         productID,
		Name:       p.name,
		PriceCents: p.priceCents,
		Stock:      p.stock,
	}
	if p.flashEnd != nil {
		end := *p.flashEnd
		pv.FlashSaleEnd = &end
	}
	return pv, nil
}

func (t *memTx) DecrementStock(ctx context.Context, productID int64, qty int) (int64, error) {
	if t.s.failDecrement {
		return 0, nil
	}
	p, ok := t.s.products[productID]
	if !ok || p.stock < qty {
		return 0, nil
	}
	p.stock -= qty
	t.undo = append(t.undo, func() { p.stock += qty })
	return 1, nil
}

func (t *memTx) InsertOrder(ctx context.Context, buyerID int64, at time.Time) (int64, error) {
	t.s.nextOrderID++
	id := t.s.nextOrderID
	t.s.orders[id] = buyerID
	t.undo = append(t.undo, func() {
		delete(t.s.orders, id)
		delete(t.s.orderItems, id)
	})
	return id, nil
}

func (t *memTx) InsertOrderItem(ctx context.Context, orderID, productID int64, qty int) error {
	t.s.orderItems[orderID] = append(t.s.orderItems[orderID], domain.OrderItem{
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  qty,
	})
	return nil
}

func (t *memTx) DeleteCartItems(ctx context.Context, buyerID int64) error {
	if cart, ok := t.s.carts[buyerID]; ok {
		t.s.carts[buyerID] = map[int64]int{}
		t.undo = append(t.undo, func() { t.s.carts[buyerID] = cart })
	}
	return nil
}

func (t *memTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	t.undo = nil
	t.s.mu.Unlock()
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.s.mu.Unlock()
	return nil
}

// mockCache is the teacher-style idempotency map.
type mockCache struct {
	mu   sync.Mutex
	seen map[string]bool
	data map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{seen: make(map[string]bool), data: make(map[string][]byte)}
}

func (m *mockCache) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen[key] {
		return false, nil
	}
	m.seen[key] = true
	return true, nil
}

func (m *mockCache) DeleteIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, key)
	return nil
}

func (m *mockCache) GetCached(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *mockCache) SetCached(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

type mockPublisher struct {
	mu     sync.Mutex
	events []domain.OrderPlacedEvent
}

func (m *mockPublisher) OrderPlaced(ctx context.Context, ev domain.OrderPlacedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

func (m *mockPublisher) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

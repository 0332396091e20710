package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndquoc/flashmart/internal/core/domain"
)

type mockCartRepo struct {
	items map[int64]map[int64]int // buyer -> product -> qty
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{items: make(map[int64]map[int64]int)}
}

func (m *mockCartRepo) CartLines(ctx context.Context, buyerID int64) ([]domain.CartLine, error) {
	var out []domain.CartLine
	for pid, qty := range m.items[buyerID] {
		out = append(out, domain.CartLine{ProductID: pid, Quantity: qty, PriceCents: 1000})
	}
	return out, nil
}

func (m *mockCartRepo) AddCartItem(ctx context.Context, buyerID, productID int64, qty int) error {
	if m.items[buyerID] == nil {
		m.items[buyerID] = make(map[int64]int)
	}
	m.items[buyerID][productID] += qty
	return nil
}

func (m *mockCartRepo) SetCartItemQuantity(ctx context.Context, buyerID, productID int64, qty int) (bool, error) {
	if _, ok := m.items[buyerID][productID]; !ok {
		return false, nil
	}
	m.items[buyerID][productID] = qty
	return true, nil
}

func (m *mockCartRepo) RemoveCartItem(ctx context.Context, buyerID, productID int64) (bool, error) {
	if _, ok := m.items[buyerID][productID]; !ok {
		return false, nil
	}
	delete(m.items[buyerID], productID)
	return true, nil
}

func (m *mockCartRepo) ClearCart(ctx context.Context, buyerID int64) error {
	delete(m.items, buyerID)
	return nil
}

type mockCatalogRepo struct {
	products map[int64]domain.Product
	sales    []domain.FlashSale
	calls    int
}

func (m *mockCatalogRepo) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	m.calls++
	var out []domain.Product
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockCatalogRepo) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	if p, ok := m.products[productID]; ok {
		return &p, nil
	}
	return nil, nil
}

func (m *mockCatalogRepo) ListActiveFlashSales(ctx context.Context, at time.Time) ([]domain.FlashSale, error) {
	m.calls++
	return m.sales, nil
}

func (m *mockCatalogRepo) GetFlashSale(ctx context.Context, saleID int64) (*domain.FlashSale, error) {
	for _, fs := range m.sales {
		if fs.ID == saleID {
			return &fs, nil
		}
	}
	return nil, nil
}

func (m *mockCatalogRepo) ListOrdersByBuyer(ctx context.Context, buyerID int64) ([]domain.OrderSummary, error) {
	return nil, nil
}

func TestValidateCart_OK(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "a", 100, 5, nil)
	store.addProduct(2, "b", 200, 5, nil)
	svc := NewCartService(store, newMockCartRepo(), &mockCatalogRepo{})

	err := svc.ValidateCart(context.Background(), []domain.LineItem{
		{ProductID: 2, Quantity: 3},
		{ProductID: 1, Quantity: 1},
	})
	assert.NoError(t, err)
}

func TestValidateCart_ReportsInsufficientStock(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "scarce", 100, 1, nil)
	svc := NewCartService(store, newMockCartRepo(), &mockCatalogRepo{})

	err := svc.ValidateCart(context.Background(), []domain.LineItem{{ProductID: 1, Quantity: 2}})

	var ce *domain.CheckoutError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, domain.ErrKindInsufficientStock, ce.Kind)
	assert.Equal(t, 1, ce.Available)
}

func TestValidateCart_FlashSaleEnded(t *testing.T) {
	store := newMemStore()
	ended := time.Now().Add(-time.Hour)
	store.addProduct(1, "old sale", 100, 5, &ended)
	svc := NewCartService(store, newMockCartRepo(), &mockCatalogRepo{})

	err := svc.ValidateCart(context.Background(), []domain.LineItem{{ProductID: 1, Quantity: 1}})
	var ce *domain.CheckoutError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, domain.ErrKindFlashSaleEnded, ce.Kind)
}

func TestValidateCart_EmptyAndNotFound(t *testing.T) {
	store := newMemStore()
	svc := NewCartService(store, newMockCartRepo(), &mockCatalogRepo{})

	err := svc.ValidateCart(context.Background(), nil)
	var ce *domain.CheckoutError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, domain.ErrKindEmptyCart, ce.Kind)

	err = svc.ValidateCart(context.Background(), []domain.LineItem{{ProductID: 404, Quantity: 1}})
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, domain.ErrKindProductNotFound, ce.Kind)
}

// Validation never mutates, so repeating it against unchanged stock returns
// the same answer every time.
func TestValidateCart_Idempotent(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "a", 100, 3, nil)
	svc := NewCartService(store, newMockCartRepo(), &mockCatalogRepo{})

	for i := 0; i < 5; i++ {
		err := svc.ValidateCart(context.Background(), []domain.LineItem{{ProductID: 1, Quantity: 2}})
		assert.NoError(t, err, "attempt %d", i)
		assert.Equal(t, 3, store.stockOf(1), "validation must not touch stock")
	}

	for i := 0; i < 5; i++ {
		err := svc.ValidateCart(context.Background(), []domain.LineItem{{ProductID: 1, Quantity: 9}})
		var ce *domain.CheckoutError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, domain.ErrKindInsufficientStock, ce.Kind)
	}
}

func TestAddItem_ChecksProductAndStock(t *testing.T) {
	carts := newMockCartRepo()
	catalog := &mockCatalogRepo{products: map[int64]domain.Product{
		1: {ID: 1, Name: "widget", PriceCents: 1000, Stock: 2},
	}}
	svc := NewCartService(newMemStore(), carts, catalog)

	require.NoError(t, svc.AddItem(context.Background(), 7, 1, 2))
	assert.Equal(t, 2, carts.items[7][1])

	err := svc.AddItem(context.Background(), 7, 99, 1)
	var ce *domain.CheckoutError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, domain.ErrKindProductNotFound, ce.Kind)

	err = svc.AddItem(context.Background(), 7, 1, 5)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, domain.ErrKindInsufficientStock, ce.Kind)
	assert.Equal(t, 2, ce.Available)
}

func TestUpdateRemoveClear(t *testing.T) {
	carts := newMockCartRepo()
	catalog := &mockCatalogRepo{products: map[int64]domain.Product{
		1: {ID: 1, Name: "widget", PriceCents: 1000, Stock: 10},
	}}
	svc := NewCartService(newMemStore(), carts, catalog)
	ctx := context.Background()

	require.NoError(t, svc.AddItem(ctx, 7, 1, 1))

	require.NoError(t, svc.UpdateItemQuantity(ctx, 7, 1, 4))
	assert.Equal(t, 4, carts.items[7][1])

	assert.ErrorIs(t, svc.UpdateItemQuantity(ctx, 8, 1, 2), ErrCartItemNotFound)
	assert.ErrorIs(t, svc.RemoveItem(ctx, 7, 2), ErrCartItemNotFound)

	require.NoError(t, svc.RemoveItem(ctx, 7, 1))
	assert.Empty(t, carts.items[7])

	require.NoError(t, svc.AddItem(ctx, 7, 1, 1))
	require.NoError(t, svc.ClearCart(ctx, 7))
	assert.Empty(t, carts.items[7])
}

func TestGetCart_Totals(t *testing.T) {
	carts := newMockCartRepo()
	carts.items[5] = map[int64]int{1: 2, 2: 1}
	svc := NewCartService(newMemStore(), carts, &mockCatalogRepo{})

	cart, err := svc.GetCart(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.ItemCount)
	assert.Equal(t, int64(3000), cart.TotalCents)
}

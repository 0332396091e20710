package port

import (
	"context"
	"time"

	"github.com/ndquoc/flashmart/internal/core/domain"
)

type LockMode int

const (
	// LockExclusive blocks other readers and writers of the row (FOR UPDATE).
	LockExclusive LockMode = iota
	// LockShared allows concurrent shared readers but serializes against
	// exclusive holders (FOR SHARE).
	LockShared
)

// Tx is one transaction against the inventory store. Locks taken through it
// are held until Commit or Rollback, never across requests.
type Tx interface {
	// LockProduct acquires a row lock in the given mode and reads the
	// product's stock, price and flash-sale linkage in the same locked read.
	// Returns (nil, nil) when the product does not exist.
	LockProduct(ctx context.Context, productID int64, mode LockMode) (*domain.ProductView, error)

	// DecrementStock subtracts qty only where stock >= qty and reports the
	// number of affected rows.
	DecrementStock(ctx context.Context, productID int64, qty int) (int64, error)

	InsertOrder(ctx context.Context, buyerID int64, at time.Time) (int64, error)
	InsertOrderItem(ctx context.Context, orderID, productID int64, qty int) error
	DeleteCartItems(ctx context.Context, buyerID int64) error

	Commit() error
	Rollback() error
}

type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// CartRepository covers the per-buyer cart rows. They have no cross-buyer
// contention and need no locking discipline beyond ordinary row semantics.
type CartRepository interface {
	CartLines(ctx context.Context, buyerID int64) ([]domain.CartLine, error)
	AddCartItem(ctx context.Context, buyerID, productID int64, qty int) error
	SetCartItemQuantity(ctx context.Context, buyerID, productID int64, qty int) (bool, error)
	RemoveCartItem(ctx context.Context, buyerID, productID int64) (bool, error)
	ClearCart(ctx context.Context, buyerID int64) error
}

type CatalogRepository interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, productID int64) (*domain.Product, error)
	ListActiveFlashSales(ctx context.Context, at time.Time) ([]domain.FlashSale, error)
	GetFlashSale(ctx context.Context, saleID int64) (*domain.FlashSale, error)
	ListOrdersByBuyer(ctx context.Context, buyerID int64) ([]domain.OrderSummary, error)
}

package domain

import "time"

// Order is immutable once created: checkout inserts it together with its
// items in one transaction and nothing in this service updates it afterwards.
type Order struct {
	ID        int64
	BuyerID   int64
	CreatedAt time.Time
}

type OrderItem struct {
	OrderID   int64
	ProductID int64
	Quantity  int
}

// OrderConfirmation is what a successful checkout returns to the caller.
type OrderConfirmation struct {
	OrderID    int64
	TotalCents int64
}

// OrderSummary is one row of a buyer's order history.
type OrderSummary struct {
	OrderID    int64
	CreatedAt  time.Time
	ItemCount  int
	TotalCents int64
}

package domain

import "time"

// CartItem rows are advisory: checkout re-validates against live stock and is
// the only code path that may clear them on the buyer's behalf.
type CartItem struct {
	BuyerID   int64
	ProductID int64
	Quantity  int
	AddedAt   time.Time
}

// CartLine is a cart item joined with its product for display.
type CartLine struct {
	ProductID  int64     `json:"product_id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	Quantity   int       `json:"quantity"`
	Stock      int       `json:"stock"`
	AddedAt    time.Time `json:"added_at"`
}

type Cart struct {
	Items      []CartLine `json:"items"`
	TotalCents int64      `json:"total_cents"`
	ItemCount  int        `json:"item_count"`
}

// BuildCart computes the display totals for a set of cart lines.
func BuildCart(lines []CartLine) *Cart {
	c := &Cart{Items: lines}
	for _, l := range lines {
		c.TotalCents += l.PriceCents * int64(l.Quantity)
		c.ItemCount += l.Quantity
	}
	return c
}

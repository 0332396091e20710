package domain

import "time"

type Product struct {
	ID                 int64
	SellerID           int64
	Name               string
	Category           string
	Description        string
	PriceCents         int64
	OriginalPriceCents int64
	DiscountRate       int
	Stock              int
	FlashSaleID        *int64
	Sold               int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type FlashSale struct {
	ID        int64
	Name      string
	StartTime time.Time
	EndTime   time.Time
	Products  []Product
}

// Active reports whether the sale is running at t.
func (fs FlashSale) Active(t time.Time) bool {
	return !fs.StartTime.After(t) && fs.EndTime.After(t)
}

// LineItem is one (product, quantity) pair of a checkout or validation request.
type LineItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// ProductView is the snapshot read under a row lock during checkout and cart
// validation. FlashSaleEnd is nil when the product is not linked to a sale.
type ProductView struct {
	ID           int64
	Name         string
	PriceCents   int64
	Stock        int
	FlashSaleID  *int64
	FlashSaleEnd *time.Time
}

type ProductFilter struct {
	Category      string
	Search        string
	FlashSaleOnly bool
}

func (f ProductFilter) IsZero() bool {
	return f.Category == "" && f.Search == "" && !f.FlashSaleOnly
}

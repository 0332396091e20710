package handler

import (
	"time"

	"github.com/ndquoc/flashmart/internal/core/domain"
)

type productJSON struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Category           string `json:"category"`
	Description        string `json:"description,omitempty"`
	PriceCents         int64  `json:"price_cents"`
	OriginalPriceCents int64  `json:"original_price_cents"`
	DiscountRate       int    `json:"discount_rate"`
	Stock              int    `json:"stock"`
	Sold               int64  `json:"sold"`
	FlashSaleID        *int64 `json:"flash_sale_id,omitempty"`
	IsFlashSale        bool   `json:"is_flash_sale"`
}

func toProductJSON(p domain.Product) productJSON {
	return productJSON{
		ID:                 p.ID,
		Name:               p.Name,
		Category:           p.Category,
		Description:        p.Description,
		PriceCents:         p.PriceCents,
		OriginalPriceCents: p.OriginalPriceCents,
		DiscountRate:       p.DiscountRate,
		Stock:              p.Stock,
		Sold:               p.Sold,
		FlashSaleID:        p.FlashSaleID,
		IsFlashSale:        p.FlashSaleID != nil,
	}
}

type flashSaleJSON struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Products  []productJSON `json:"products"`
}

func toFlashSaleJSON(fs domain.FlashSale) flashSaleJSON {
	products := make([]productJSON, 0, len(fs.Products))
	for _, p := range fs.Products {
		products = append(products, toProductJSON(p))
	}
	return flashSaleJSON{
		ID:        fs.ID,
		Name:      fs.Name,
		StartTime: fs.StartTime,
		EndTime:   fs.EndTime,
		Products:  products,
	}
}

type orderSummaryJSON struct {
	OrderID    int64     `json:"order_id"`
	CreatedAt  time.Time `json:"created_at"`
	ItemCount  int       `json:"item_count"`
	TotalCents int64     `json:"total_cents"`
}

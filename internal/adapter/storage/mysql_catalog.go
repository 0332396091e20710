package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ndquoc/flashmart/internal/core/domain"
)

const productColumns = `
	p.product_id, p.seller_id, p.product_name, p.category, p.product_desc,
	p.price_cents, p.original_price_cents, p.discount_rate, p.quantity_stock,
	p.flash_sale_id, p.created_at, p.updated_at`

func (s *MySQLStore) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	q := `
		SELECT` + productColumns + `, COALESCE(SUM(oi.quantity_sold), 0) AS sold
		FROM products p
		LEFT JOIN order_items oi ON oi.product_id = p.product_id
		WHERE 1=1`
	var args []any

	if filter.Category != "" {
		q += ` AND p.category = ?`
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		q += ` AND p.product_name LIKE ?`
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.FlashSaleOnly {
		q += ` AND p.flash_sale_id IS NOT NULL`
	}
	q += ` GROUP BY p.product_id ORDER BY p.product_id`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mapStoreError(fmt.Errorf("query products: %w", err))
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *MySQLStore) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT`+productColumns+`,
			COALESCE((SELECT SUM(quantity_sold) FROM order_items WHERE product_id = p.product_id), 0) AS sold
		FROM products p
		WHERE p.product_id = ?`, productID)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapStoreError(fmt.Errorf("query product %d: %w", productID, err))
	}
	return &p, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(r rowScanner) (domain.Product, error) {
	var (
		p      domain.Product
		saleID sql.NullInt64
	)
	err := r.Scan(
		&p.ID, &p.SellerID, &p.Name, &p.Category, &p.Description,
		&p.PriceCents, &p.OriginalPriceCents, &p.DiscountRate, &p.Stock,
		&saleID, &p.CreatedAt, &p.UpdatedAt, &p.Sold,
	)
	if err != nil {
		return domain.Product{}, err
	}
	if saleID.Valid {
		p.FlashSaleID = &saleID.Int64
	}
	return p, nil
}

func (s *MySQLStore) ListActiveFlashSales(ctx context.Context, at time.Time) ([]domain.FlashSale, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT flash_sale_id, name, start_time, end_time
		FROM flash_sales
		WHERE start_time <= ? AND end_time > ?
		ORDER BY end_time`, at, at)
	if err != nil {
		return nil, mapStoreError(fmt.Errorf("query flash sales: %w", err))
	}
	defer rows.Close()

	var sales []domain.FlashSale
	for rows.Next() {
		var fs domain.FlashSale
		if err := rows.Scan(&fs.ID, &fs.Name, &fs.StartTime, &fs.EndTime); err != nil {
			return nil, err
		}
		sales = append(sales, fs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sales {
		products, err := s.saleProducts(ctx, sales[i].ID)
		if err != nil {
			return nil, err
		}
		sales[i].Products = products
	}
	return sales, nil
}

func (s *MySQLStore) GetFlashSale(ctx context.Context, saleID int64) (*domain.FlashSale, error) {
	var fs domain.FlashSale
	err := s.db.QueryRowContext(ctx, `
		SELECT flash_sale_id, name, start_time, end_time
		FROM flash_sales WHERE flash_sale_id = ?`, saleID).
		Scan(&fs.ID, &fs.Name, &fs.StartTime, &fs.EndTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapStoreError(fmt.Errorf("query flash sale %d: %w", saleID, err))
	}

	fs.Products, err = s.saleProducts(ctx, saleID)
	if err != nil {
		return nil, err
	}
	return &fs, nil
}

func (s *MySQLStore) saleProducts(ctx context.Context, saleID int64) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT`+productColumns+`, COALESCE(SUM(oi.quantity_sold), 0) AS sold
		FROM products p
		LEFT JOIN order_items oi ON oi.product_id = p.product_id
		WHERE p.flash_sale_id = ?
		GROUP BY p.product_id
		ORDER BY p.product_id`, saleID)
	if err != nil {
		return nil, mapStoreError(fmt.Errorf("query sale products: %w", err))
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *MySQLStore) ListOrdersByBuyer(ctx context.Context, buyerID int64) ([]domain.OrderSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.order_id, o.created_at,
			COUNT(oi.order_item_id) AS item_count,
			COALESCE(SUM(p.price_cents * oi.quantity_sold), 0) AS total_cents
		FROM orders o
		LEFT JOIN order_items oi ON oi.order_id = o.order_id
		LEFT JOIN products p ON p.product_id = oi.product_id
		WHERE o.buyer_id = ?
		GROUP BY o.order_id, o.created_at
		ORDER BY o.created_at DESC`, buyerID)
	if err != nil {
		return nil, mapStoreError(fmt.Errorf("query orders: %w", err))
	}
	defer rows.Close()

	var out []domain.OrderSummary
	for rows.Next() {
		var o domain.OrderSummary
		if err := rows.Scan(&o.OrderID, &o.CreatedAt, &o.ItemCount, &o.TotalCents); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

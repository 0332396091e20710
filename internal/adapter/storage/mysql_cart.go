package storage

import (
	"context"
	"fmt"

	"github.com/ndquoc/flashmart/internal/core/domain"
)

func (s *MySQLStore) CartLines(ctx context.Context, buyerID int64) ([]domain.CartLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.product_id, p.product_name, p.price_cents, c.quantity, p.quantity_stock, c.added_at
		FROM cart_items c
		JOIN products p ON p.product_id = c.product_id
		WHERE c.buyer_id = ?
		ORDER BY c.added_at, c.product_id`, buyerID)
	if err != nil {
		return nil, mapStoreError(fmt.Errorf("query cart: %w", err))
	}
	defer rows.Close()

	var out []domain.CartLine
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(&l.ProductID, &l.Name, &l.PriceCents, &l.Quantity, &l.Stock, &l.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *MySQLStore) AddCartItem(ctx context.Context, buyerID, productID int64, qty int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cart_items (buyer_id, product_id, quantity, added_at)
		VALUES (?, ?, ?, NOW())
		ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)`,
		buyerID, productID, qty,
	)
	if err != nil {
		return mapStoreError(fmt.Errorf("add cart item: %w", err))
	}
	return nil
}

// SetCartItemQuantity reports found=false when the buyer has no row for the
// product. Requires the pool's ClientFoundRows option: without it MySQL
// reports zero affected rows for an update that leaves the value unchanged.
func (s *MySQLStore) SetCartItemQuantity(ctx context.Context, buyerID, productID int64, qty int) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = ? WHERE buyer_id = ? AND product_id = ?`,
		qty, buyerID, productID,
	)
	if err != nil {
		return false, mapStoreError(fmt.Errorf("update cart item: %w", err))
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *MySQLStore) RemoveCartItem(ctx context.Context, buyerID, productID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE buyer_id = ? AND product_id = ?`,
		buyerID, productID,
	)
	if err != nil {
		return false, mapStoreError(fmt.Errorf("remove cart item: %w", err))
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *MySQLStore) ClearCart(ctx context.Context, buyerID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE buyer_id = ?`, buyerID)
	if err != nil {
		return mapStoreError(fmt.Errorf("clear cart: %w", err))
	}
	return nil
}

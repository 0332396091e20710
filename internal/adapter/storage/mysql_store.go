package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/ndquoc/flashmart/internal/core/domain"
	"github.com/ndquoc/flashmart/internal/port"
)

// Connect opens a MySQL pool with a bounded per-session lock wait. The
// timeout is set as a session variable on every pooled connection, so the
// bound holds without SUPER privileges on the server. ClientFoundRows makes
// UPDATE report matched rows instead of changed rows, which the cart update
// path relies on to distinguish "not found" from "unchanged".
func Connect(dsn string, lockWaitSeconds int) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	if lockWaitSeconds > 0 {
		if cfg.Params == nil {
			cfg.Params = map[string]string{}
		}
		cfg.Params["innodb_lock_wait_timeout"] = strconv.Itoa(lockWaitSeconds)
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

func (s *MySQLStore) Begin(ctx context.Context) (port.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return &mysqlTx{tx: tx}, nil
}

type mysqlTx struct {
	tx *sql.Tx
}

const lockProductQuery = `
	SELECT p.product_id, p.product_name, p.price_cents, p.quantity_stock, p.flash_sale_id, fs.end_time
	FROM products p
	LEFT JOIN flash_sales fs ON fs.flash_sale_id = p.flash_sale_id
	WHERE p.product_id = ?`

func (t *mysqlTx) LockProduct(ctx context.Context, productID int64, mode port.LockMode) (*domain.ProductView, error) {
	q := lockProductQuery
	switch mode {
	case port.LockShared:
		q += " FOR SHARE"
	default:
		q += " FOR UPDATE"
	}

	var (
		pv      domain.ProductView
		saleID  sql.NullInt64
		saleEnd sql.NullTime
	)
	err := t.tx.QueryRowContext(ctx, q, productID).
		Scan(&pv.ID, &pv.Name, &pv.PriceCents, &pv.Stock, &saleID, &saleEnd)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapStoreError(fmt.Errorf("lock product %d: %w", productID, err))
	}
	if saleID.Valid {
		pv.FlashSaleID = &saleID.Int64
	}
	if saleEnd.Valid {
		pv.FlashSaleEnd = &saleEnd.Time
	}
	return &pv, nil
}

func (t *mysqlTx) DecrementStock(ctx context.Context, productID int64, qty int) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE products
		SET quantity_stock = quantity_stock - ?
		WHERE product_id = ? AND quantity_stock >= ?`,
		qty, productID, qty,
	)
	if err != nil {
		return 0, mapStoreError(fmt.Errorf("decrement stock: %w", err))
	}
	return res.RowsAffected()
}

func (t *mysqlTx) InsertOrder(ctx context.Context, buyerID int64, at time.Time) (int64, error) {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO orders (buyer_id, created_at) VALUES (?, ?)`,
		buyerID, at,
	)
	if err != nil {
		return 0, mapStoreError(fmt.Errorf("insert order: %w", err))
	}
	return res.LastInsertId()
}

func (t *mysqlTx) InsertOrderItem(ctx context.Context, orderID, productID int64, qty int) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO order_items (order_id, product_id, quantity_sold) VALUES (?, ?, ?)`,
		orderID, productID, qty,
	)
	if err != nil {
		return mapStoreError(fmt.Errorf("insert order item: %w", err))
	}
	return nil
}

func (t *mysqlTx) DeleteCartItems(ctx context.Context, buyerID int64) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM cart_items WHERE buyer_id = ?`, buyerID)
	if err != nil {
		return mapStoreError(fmt.Errorf("delete cart items: %w", err))
	}
	return nil
}

func (t *mysqlTx) Commit() error {
	return mapStoreError(t.tx.Commit())
}

func (t *mysqlTx) Rollback() error {
	return t.tx.Rollback()
}

// MySQL server error numbers surfaced by contention.
const (
	erLockWaitTimeout = 1205
	erLockDeadlock    = 1213
)

// mapStoreError converts driver-level failures into the retryable checkout
// error kinds. A deadlock report is also logged as an invariant alarm: it
// cannot happen while every transaction locks products in ascending id order.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}

	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case erLockWaitTimeout:
			return domain.ErrLockTimeout(err)
		case erLockDeadlock:
			log.Printf("INVARIANT: store reported deadlock: %v", err)
			return domain.ErrLockTimeout(err)
		}
		return err
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) || errors.Is(err, sql.ErrConnDone) {
		return domain.ErrStoreUnavailable(err)
	}

	// Dial and read/write failures reach us as net errors rather than driver
	// sentinels; so does a deadline expiring while a connection is established.
	var ne net.Error
	if errors.As(err, &ne) || errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrStoreUnavailable(err)
	}
	return err
}

package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ndquoc/flashmart/internal/adapter/storage"
	"github.com/ndquoc/flashmart/internal/config"
	"github.com/ndquoc/flashmart/internal/core/domain"
	"github.com/ndquoc/flashmart/internal/core/service"
)

const (
	initialStock  = 20
	totalRequests = 50
)

// Hammers the checkout path with concurrent buyers competing for one scarce
// product and asserts exact sell-out: no oversell, no lost update.
func main() {
	ctx := context.Background()
	cfg := config.Load()

	db, err := storage.Connect(cfg.MySQLDSN, cfg.LockWaitSeconds)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	// Seed one product with known stock.
	res, err := db.ExecContext(ctx, `
		INSERT INTO products (seller_id, product_name, category, product_desc, price_cents, original_price_cents, discount_rate, quantity_stock)
		VALUES (1, ?, 'stress', '', 9900, 9900, 0, ?)`,
		"stress-item-"+uuid.NewString()[:8], initialStock,
	)
	if err != nil {
		log.Fatalf("failed to seed product: %v", err)
	}
	productID, _ := res.LastInsertId()

	store := storage.NewMySQLStore(db)
	cache := storage.NewRedisAdapter(rdb)
	svc := service.NewCheckoutService(store, cache, nil)

	var successCount, failCount atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(buyerID int64) {
			defer wg.Done()

			_, err := svc.PlaceOrder(ctx, buyerID, uuid.NewString(), []domain.LineItem{
				{ProductID: productID, Quantity: 1},
			})
			if err == nil {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}(int64(i + 1))
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	fail := failCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", initialStock)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if success == initialStock && fail == totalRequests-initialStock {
		fmt.Printf("PASS: exactly %d orders succeeded, %d failed\n", initialStock, totalRequests-initialStock)
	} else {
		fmt.Printf("FAIL: expected %d success/%d fail, got %d/%d\n",
			initialStock, totalRequests-initialStock, success, fail)
	}

	var finalStock int
	_ = db.QueryRowContext(ctx, `SELECT quantity_stock FROM products WHERE product_id = ?`, productID).Scan(&finalStock)
	fmt.Printf("Final Stock: %d\n", finalStock)

	if finalStock == 0 {
		fmt.Println("PASS: stock depleted to 0")
	} else {
		fmt.Printf("FAIL: expected stock 0, got %d\n", finalStock)
	}
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/ndquoc/flashmart/internal/adapter/events"
	"github.com/ndquoc/flashmart/internal/adapter/handler"
	"github.com/ndquoc/flashmart/internal/adapter/storage"
	"github.com/ndquoc/flashmart/internal/config"
	"github.com/ndquoc/flashmart/internal/core/service"
	"github.com/ndquoc/flashmart/internal/port"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MySQL
	db, err := storage.Connect(cfg.MySQLDSN, cfg.LockWaitSeconds)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}
	log.Println("connected to mysql")

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	log.Println("connected to redis")

	// Initialize adapters
	store := storage.NewMySQLStore(db)
	cache := storage.NewRedisAdapter(rdb)

	// Order events (optional)
	var publisher port.EventPublisher
	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers, cfg.ServiceName, 1024)
		producer.Start(ctx)
		publisher = producer
		log.Printf("publishing order events to %v", cfg.KafkaBrokers)
	}

	// Initialize services
	checkoutSvc := service.NewCheckoutService(store, cache, publisher)
	cartSvc := service.NewCartService(store, store, store)
	catalogSvc := service.NewCatalogService(store, cache)

	// HTTP server
	router := handler.NewRouter()
	h := handler.NewHTTPHandler(checkoutSvc, cartSvc, catalogSvc)
	h.Register(router)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
	log.Println("HTTP server stopped")

	if producer != nil {
		producer.Close()
		producer.WaitClosed()
		log.Println("event producer drained")
	}

	rdb.Close()
	db.Close()
	log.Println("connections closed")
}

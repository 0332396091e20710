package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ndquoc/flashmart/internal/core/domain"
	"github.com/ndquoc/flashmart/internal/port"
)

const (
	cacheKeyProducts   = "cache:products"
	cacheKeyFlashSales = "cache:flash-sales"

	listingCacheTTL = time.Minute
)

// CatalogService serves the read-only browse paths. Listings are cached in
// Redis for a short TTL; the cache is best-effort and never consulted by
// checkout, which reads under row locks.
type CatalogService struct {
	repo  port.CatalogRepository
	cache port.CacheRepository
	now   func() time.Time
}

func NewCatalogService(repo port.CatalogRepository, cache port.CacheRepository) *CatalogService {
	return &CatalogService{repo: repo, cache: cache, now: time.Now}
}

// ListProducts returns the catalog, optionally filtered. Only the unfiltered
// listing is cached; filtered queries go straight to the store.
func (s *CatalogService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	if !filter.IsZero() || s.cache == nil {
		return s.repo.ListProducts(ctx, filter)
	}

	if b, err := s.cache.GetCached(ctx, cacheKeyProducts); err == nil && b != nil {
		var products []domain.Product
		if json.Unmarshal(b, &products) == nil {
			return products, nil
		}
	}

	products, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(products); err == nil {
		_ = s.cache.SetCached(ctx, cacheKeyProducts, b, listingCacheTTL)
	}
	return products, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	p, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	return p, nil
}

func (s *CatalogService) ListFlashSales(ctx context.Context) ([]domain.FlashSale, error) {
	if s.cache != nil {
		if b, err := s.cache.GetCached(ctx, cacheKeyFlashSales); err == nil && b != nil {
			var sales []domain.FlashSale
			if json.Unmarshal(b, &sales) == nil {
				return sales, nil
			}
		}
	}

	sales, err := s.repo.ListActiveFlashSales(ctx, s.now())
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if b, err := json.Marshal(sales); err == nil {
			_ = s.cache.SetCached(ctx, cacheKeyFlashSales, b, listingCacheTTL)
		}
	}
	return sales, nil
}

func (s *CatalogService) GetFlashSale(ctx context.Context, saleID int64) (*domain.FlashSale, error) {
	fs, err := s.repo.GetFlashSale(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("load flash sale: %w", err)
	}
	return fs, nil
}

func (s *CatalogService) OrdersForBuyer(ctx context.Context, buyerID int64) ([]domain.OrderSummary, error) {
	return s.repo.ListOrdersByBuyer(ctx, buyerID)
}

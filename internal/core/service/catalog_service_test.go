package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndquoc/flashmart/internal/core/domain"
)

func TestListProducts_CachesUnfilteredListing(t *testing.T) {
	repo := &mockCatalogRepo{products: map[int64]domain.Product{
		1: {ID: 1, Name: "phone", PriceCents: 49900, Stock: 10},
	}}
	svc := NewCatalogService(repo, newMockCache())
	ctx := context.Background()

	first, err := svc.ListProducts(ctx, domain.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, repo.calls)

	// Second unfiltered listing is served from the cache.
	second, err := svc.ListProducts(ctx, domain.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.calls, "cached listing must not hit the store")
}

func TestListProducts_FilteredBypassesCache(t *testing.T) {
	repo := &mockCatalogRepo{products: map[int64]domain.Product{
		1: {ID: 1, Name: "phone", Category: "electronics", PriceCents: 49900, Stock: 10},
	}}
	svc := NewCatalogService(repo, newMockCache())
	ctx := context.Background()

	_, err := svc.ListProducts(ctx, domain.ProductFilter{Category: "electronics"})
	require.NoError(t, err)
	_, err = svc.ListProducts(ctx, domain.ProductFilter{Category: "electronics"})
	require.NoError(t, err)

	assert.Equal(t, 2, repo.calls, "filtered queries always go to the store")
}

func TestListProducts_NilCache(t *testing.T) {
	repo := &mockCatalogRepo{products: map[int64]domain.Product{
		1: {ID: 1, Name: "phone", PriceCents: 49900, Stock: 10},
	}}
	svc := NewCatalogService(repo, nil)

	out, err := svc.ListProducts(context.Background(), domain.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestListFlashSales_Cached(t *testing.T) {
	end := time.Now().Add(time.Hour)
	repo := &mockCatalogRepo{sales: []domain.FlashSale{
		{ID: 1, Name: "midnight madness", EndTime: end},
	}}
	svc := NewCatalogService(repo, newMockCache())
	ctx := context.Background()

	first, err := svc.ListFlashSales(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, repo.calls)

	second, err := svc.ListFlashSales(ctx)
	require.NoError(t, err)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, 1, repo.calls)
}

func TestGetProductAndFlashSale(t *testing.T) {
	end := time.Now().Add(time.Hour)
	repo := &mockCatalogRepo{
		products: map[int64]domain.Product{7: {ID: 7, Name: "widget"}},
		sales:    []domain.FlashSale{{ID: 3, Name: "spring", EndTime: end}},
	}
	svc := NewCatalogService(repo, nil)
	ctx := context.Background()

	p, err := svc.GetProduct(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "widget", p.Name)

	missing, err := svc.GetProduct(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)

	fs, err := svc.GetFlashSale(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, fs)
	assert.Equal(t, "spring", fs.Name)
}

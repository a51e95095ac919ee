package services

import (
	"context"
	"storefront/models"
	"storefront/repositories"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCachedCatalog(t *testing.T, products ...models.Product) (*CatalogService, *repositories.MemoryStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := repositories.NewMemoryStore(products...)
	return NewCatalogService(store.Products(), client), store, mr
}

func names(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func TestCatalogService_ListIsCachedUntilInvalidated(t *testing.T) {
	svc, store, mr := newCachedCatalog(t, product(1, "Beans", "10.00", 5))
	ctx := context.Background()

	products, err := svc.List(ctx, models.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Beans"}, names(products))
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("10")))

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "products_list_all_"))

	store.PutProduct(product(2, "Milk", "3.00", 5))
	products, err = svc.List(ctx, models.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Beans"}, names(products))

	svc.InvalidateProducts(ctx)
	assert.Empty(t, mr.Keys())

	products, err = svc.List(ctx, models.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Milk", "Beans"}, names(products))
}

func TestCatalogService_PromotionsAndCategories(t *testing.T) {
	promo := product(1, "Beans", "10.00", 5)
	promo.Category = "Coffee"
	promo.PromoPrice = decimal.NewNullDecimal(decimal.RequireFromString("8.00"))
	plain := product(2, "Milk", "3.00", 5)
	plain.Category = "Dairy"
	svc, _, mr := newCachedCatalog(t, promo, plain)
	ctx := context.Background()

	products, err := svc.Promotions(ctx, models.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Beans"}, names(products))

	categories, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Coffee", "Dairy"}, categories)
	assert.True(t, mr.Exists("products_list_categories"))
}

func TestCatalogService_UnpublishedProductIsNotFound(t *testing.T) {
	hidden := product(1, "Hidden", "10.00", 5)
	hidden.Published = false
	svc := NewCatalogService(repositories.NewMemoryStore(hidden).Products(), nil)

	_, err := svc.Product(context.Background(), 1)
	assert.ErrorIs(t, err, ErrProductNotFound)

	products, err := svc.List(context.Background(), models.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, products)
}

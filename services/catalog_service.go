package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"storefront/models"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	productCachePrefix = "products_list_"
	productCacheTTL    = 5 * time.Minute
)

type CatalogRepository interface {
	GetByID(ctx context.Context, id int) (*models.Product, error)
	ListPublished(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

// CatalogService serves the storefront listings. Results are cached in Redis
// when a client is given; a nil client disables caching.
type CatalogService struct {
	products CatalogRepository
	redis    *redis.Client
	loads    singleflight.Group
}

func NewCatalogService(products CatalogRepository, client *redis.Client) *CatalogService {
	return &CatalogService{products: products, redis: client}
}

func productCacheKey(kind string, filter models.ProductFilter) string {
	q := url.Values{}
	q.Set("search", strings.ToLower(strings.TrimSpace(filter.Search)))
	q.Set("category", strings.TrimSpace(filter.Category))
	return productCachePrefix + kind + "_" + q.Encode()
}

func (s *CatalogService) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	kind := "all"
	if filter.PromoOnly {
		kind = "promo"
	}
	var products []models.Product
	err := s.cached(ctx, productCacheKey(kind, filter), &products, func() (any, error) {
		return s.products.ListPublished(ctx, filter)
	})
	return products, err
}

func (s *CatalogService) Promotions(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	filter.PromoOnly = true
	return s.List(ctx, filter)
}

func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := s.cached(ctx, productCachePrefix+"categories", &categories, func() (any, error) {
		return s.products.Categories(ctx)
	})
	return categories, err
}

// Product returns a published product; unpublished ones read as not found.
func (s *CatalogService) Product(ctx context.Context, id int) (*models.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Published {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// InvalidateProducts drops every cached listing.
func (s *CatalogService) InvalidateProducts(ctx context.Context) {
	if s.redis == nil {
		return
	}
	iter := s.redis.Scan(ctx, 0, productCachePrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.redis.Del(ctx, iter.Val()).Err(); err != nil {
			log.Warn().Err(err).Str("key", iter.Val()).Msg("failed to invalidate product cache")
		}
	}
	if err := iter.Err(); err != nil {
		log.Warn().Err(err).Msg("failed to scan product cache")
	}
}

// cached decodes key into dst, or calls load and stores its result.
// Concurrent misses on the same key share one load. Redis failures fall
// through to load.
func (s *CatalogService) cached(ctx context.Context, key string, dst any, load func() (any, error)) error {
	if s.redis != nil {
		data, err := s.redis.Get(ctx, key).Bytes()
		if err == nil && json.Unmarshal(data, dst) == nil {
			return nil
		}
		if err != nil && !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("product cache read failed")
		}
	}

	v, err, _ := s.loads.Do(key, func() (any, error) {
		value, err := load()
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode listing: %w", err)
		}
		if s.redis != nil {
			if err := s.redis.Set(ctx, key, data, productCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("product cache write failed")
			}
		}
		return data, nil
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(v.([]byte), dst); err != nil {
		return fmt.Errorf("decode listing: %w", err)
	}
	return nil
}

package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"storefront/models"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const cartKeyPrefix = "cart:"

// RedisCartStore keeps one JSON document per session under cart:<session>.
// Every save pushes the expiry forward.
type RedisCartStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartStore(client *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{client: client, ttl: ttl}
}

func cartKey(session string) string {
	return cartKeyPrefix + session
}

// Get returns an empty cart for unknown or expired sessions.
func (s *RedisCartStore) Get(ctx context.Context, session string) (*models.Cart, error) {
	data, err := s.client.Get(ctx, cartKey(session)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.NewCart(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	cart := models.NewCart()
	if err := json.Unmarshal(data, cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if cart.Lines == nil {
		cart.Lines = []models.CartLine{}
	}
	return cart, nil
}

func (s *RedisCartStore) Save(ctx context.Context, session string, cart *models.Cart) error {
	if cart.IsEmpty() {
		return s.Clear(ctx, session)
	}
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(session), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

func (s *RedisCartStore) Clear(ctx context.Context, session string) error {
	if err := s.client.Del(ctx, cartKey(session)).Err(); err != nil {
		return fmt.Errorf("redis delete cart: %w", err)
	}
	return nil
}

type memoryCart struct {
	cart      *models.Cart
	expiresAt time.Time
}

// MemoryCartStore is used when Redis is not configured.
type MemoryCartStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	carts map[string]memoryCart
}

func NewMemoryCartStore(ttl time.Duration) *MemoryCartStore {
	return &MemoryCartStore{
		ttl:   ttl,
		now:   time.Now,
		carts: make(map[string]memoryCart),
	}
}

func (s *MemoryCartStore) Get(_ context.Context, session string) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.carts[session]
	if !ok {
		return models.NewCart(), nil
	}
	if s.ttl > 0 && s.now().After(entry.expiresAt) {
		delete(s.carts, session)
		return models.NewCart(), nil
	}
	return entry.cart.Clone(), nil
}

func (s *MemoryCartStore) Save(_ context.Context, session string, cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cart.IsEmpty() {
		delete(s.carts, session)
		return nil
	}
	s.carts[session] = memoryCart{cart: cart.Clone(), expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryCartStore) Clear(_ context.Context, session string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, session)
	return nil
}

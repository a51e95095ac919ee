package services

import (
	"context"
	"storefront/models"
	"storefront/repositories"
	"storefront/utils"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func product(id int, name, price string, stock int) models.Product {
	return models.Product{
		ID:        id,
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		Published: true,
	}
}

func cartWith(lines ...models.CartLine) *models.Cart {
	cart := models.NewCart()
	for _, l := range lines {
		cart.Put(l)
	}
	return cart
}

func validRequest() models.CheckoutRequest {
	return models.CheckoutRequest{
		ContactForm: models.ContactForm{
			FullName:   "Jan Kowalski",
			Email:      "jan@example.com",
			Phone:      "600-100-200",
			Street:     "Dluga 1",
			PostalCode: "30001",
			City:       "Krakow",
		},
		AcceptTerms: true,
	}
}

// staticLookup serves a fixed catalog snapshot, standing in for a read
// taken before a concurrent stock change.
type staticLookup map[int]models.Product

func (s staticLookup) GetByID(_ context.Context, id int) (*models.Product, error) {
	p, ok := s[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

func (s staticLookup) GetByIDs(_ context.Context, ids []int) (map[int]models.Product, error) {
	out := map[int]models.Product{}
	for _, id := range ids {
		if p, ok := s[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type wrappedRunner struct {
	inner TxRunner
	wrap  func(repositories.Tx) repositories.Tx
}

func (w wrappedRunner) WithinTx(ctx context.Context, fn func(tx repositories.Tx) error) error {
	return w.inner.WithinTx(ctx, func(tx repositories.Tx) error {
		return fn(w.wrap(tx))
	})
}

// barrierTx holds every transaction after its product read until all of
// them have read, so they race on the stock decrement.
type barrierTx struct {
	repositories.Tx
	wg *sync.WaitGroup
}

func (b barrierTx) ProductsByIDs(ctx context.Context, ids []int) (map[int]models.Product, error) {
	products, err := b.Tx.ProductsByIDs(ctx, ids)
	b.wg.Done()
	b.wg.Wait()
	return products, err
}

// collidingTx reports every public id as free but rejects the first
// collisions inserts, like a race lost to another checkout.
type collidingTx struct {
	repositories.Tx
	mu         *sync.Mutex
	collisions *int
}

func (c collidingTx) PublicIDExists(context.Context, string) (bool, error) {
	return false, nil
}

func (c collidingTx) CreateOrder(ctx context.Context, order *models.Order) error {
	c.mu.Lock()
	if *c.collisions > 0 {
		*c.collisions--
		c.mu.Unlock()
		return repositories.ErrDuplicatePublicID
	}
	c.mu.Unlock()
	return c.Tx.CreateOrder(ctx, order)
}

func sequence(ids ...uuid.UUID) func() uuid.UUID {
	var mu sync.Mutex
	i := 0
	return func() uuid.UUID {
		mu.Lock()
		defer mu.Unlock()
		id := ids[i%len(ids)]
		i++
		return id
	}
}

type fixture struct {
	store    *repositories.MemoryStore
	accounts *AccountService
	checkout *CheckoutService
}

func newFixture(t *testing.T, products ...models.Product) *fixture {
	t.Helper()
	store := repositories.NewMemoryStore(products...)
	accounts := NewAccountService(store.Users(), utils.NewTokenManager("test-secret", time.Hour))
	return &fixture{
		store:    store,
		accounts: accounts,
		checkout: NewCheckoutService(store, store.Products(), accounts),
	}
}

func (f *fixture) stock(t *testing.T, id int) int {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func (f *fixture) orderCount(t *testing.T) int {
	t.Helper()
	_, total, err := f.store.Orders().Search(context.Background(), models.OrderSearch{})
	require.NoError(t, err)
	return total
}

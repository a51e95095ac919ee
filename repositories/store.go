package repositories

import (
	"context"
	"fmt"
	"storefront/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Tx is the set of writes a checkout performs atomically.
type Tx interface {
	ProductsByIDs(ctx context.Context, ids []int) (map[int]models.Product, error)
	DecrementStock(ctx context.Context, productID, quantity int) error
	PublicIDExists(ctx context.Context, publicID string) (bool, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateAccount(ctx context.Context, account *models.Account) error
}

type Store struct {
	pool     *pgxpool.Pool
	products *ProductRepository
	orders   *OrderRepository
	users    *UserRepository
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:     pool,
		products: NewProductRepository(pool),
		orders:   NewOrderRepository(pool),
		users:    NewUserRepository(pool),
	}
}

func (s *Store) Products() *ProductRepository { return s.products }
func (s *Store) Orders() *OrderRepository     { return s.orders }
func (s *Store) Users() *UserRepository       { return s.users }

// WithinTx runs fn in a READ COMMITTED transaction. Stock is protected by the
// conditional decrement rather than row locks taken up front. The transaction
// commits only when fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{
		products: NewProductRepository(tx),
		orders:   NewOrderRepository(tx),
		users:    NewUserRepository(tx),
	}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type pgTx struct {
	products *ProductRepository
	orders   *OrderRepository
	users    *UserRepository
}

func (t *pgTx) ProductsByIDs(ctx context.Context, ids []int) (map[int]models.Product, error) {
	return t.products.GetByIDs(ctx, ids)
}

func (t *pgTx) DecrementStock(ctx context.Context, productID, quantity int) error {
	return t.products.DecrementStock(ctx, productID, quantity)
}

func (t *pgTx) PublicIDExists(ctx context.Context, publicID string) (bool, error) {
	return t.orders.PublicIDExists(ctx, publicID)
}

func (t *pgTx) CreateOrder(ctx context.Context, order *models.Order) error {
	return t.orders.Create(ctx, order)
}

func (t *pgTx) CreateAccount(ctx context.Context, account *models.Account) error {
	return t.users.Create(ctx, account)
}

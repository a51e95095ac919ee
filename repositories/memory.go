package repositories

import (
	"context"
	"sort"
	"storefront/models"
	"strings"
	"sync"
	"time"
)

// MemoryStore mirrors Store without a database, for local runs with
// STORE_DRIVER=memory and for tests. Writes made inside WithinTx are applied
// immediately and undone if the callback fails; concurrent transactions see
// each other's uncommitted stock decrements.
type MemoryStore struct {
	mu            sync.Mutex
	products      map[int]models.Product
	orders        []models.Order
	accounts      map[int]models.Account
	nextProductID int
	nextOrderID   int
	nextAccountID int
}

func NewMemoryStore(products ...models.Product) *MemoryStore {
	s := &MemoryStore{
		products: make(map[int]models.Product),
		accounts: make(map[int]models.Account),
	}
	for _, p := range products {
		s.PutProduct(p)
	}
	return s
}

// PutProduct inserts or replaces a product; a zero ID gets the next free one.
func (s *MemoryStore) PutProduct(p models.Product) models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == 0 {
		p.ID = s.nextProductID + 1
	}
	if p.ID > s.nextProductID {
		s.nextProductID = p.ID
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().Add(time.Duration(p.ID) * time.Millisecond)
	}
	s.products[p.ID] = p
	return p
}

func (s *MemoryStore) Products() *MemoryProducts { return &MemoryProducts{s: s} }
func (s *MemoryStore) Orders() *MemoryOrders     { return &MemoryOrders{s: s} }
func (s *MemoryStore) Users() *MemoryUsers       { return &MemoryUsers{s: s} }

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	tx := &memoryTx{s: s}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	if err := ctx.Err(); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

type memoryTx struct {
	s    *MemoryStore
	undo []func()
}

func (t *memoryTx) rollback() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *memoryTx) ProductsByIDs(ctx context.Context, ids []int) (map[int]models.Product, error) {
	return t.s.Products().GetByIDs(ctx, ids)
}

func (t *memoryTx) DecrementStock(_ context.Context, productID, quantity int) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	p, ok := t.s.products[productID]
	if !ok || p.Stock < quantity {
		return ErrStockConflict
	}
	p.Stock -= quantity
	t.s.products[productID] = p
	t.undo = append(t.undo, func() {
		restored := t.s.products[productID]
		restored.Stock += quantity
		t.s.products[productID] = restored
	})
	return nil
}

func (t *memoryTx) PublicIDExists(ctx context.Context, publicID string) (bool, error) {
	return t.s.Orders().PublicIDExists(ctx, publicID)
}

func (t *memoryTx) CreateOrder(ctx context.Context, order *models.Order) error {
	if err := t.s.Orders().Create(ctx, order); err != nil {
		return err
	}
	id := order.ID
	t.undo = append(t.undo, func() {
		for i := range t.s.orders {
			if t.s.orders[i].ID == id {
				t.s.orders = append(t.s.orders[:i], t.s.orders[i+1:]...)
				return
			}
		}
	})
	return nil
}

func (t *memoryTx) CreateAccount(ctx context.Context, account *models.Account) error {
	if err := t.s.Users().Create(ctx, account); err != nil {
		return err
	}
	id := account.ID
	t.undo = append(t.undo, func() {
		delete(t.s.accounts, id)
	})
	return nil
}

type MemoryProducts struct{ s *MemoryStore }

func (r *MemoryProducts) GetByID(_ context.Context, id int) (*models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

func (r *MemoryProducts) GetByIDs(_ context.Context, ids []int) (map[int]models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	products := make(map[int]models.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			products[id] = p
		}
	}
	return products, nil
}

func (r *MemoryProducts) ListPublished(_ context.Context, filter models.ProductFilter) ([]models.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	category := strings.TrimSpace(filter.Category)

	products := []models.Product{}
	for _, p := range r.s.products {
		if !p.Published {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Category), search) {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		if filter.PromoOnly && !p.PromoPrice.Valid {
			continue
		}
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		if !products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		}
		return products[i].ID > products[j].ID
	})
	return products, nil
}

func (r *MemoryProducts) Categories(_ context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	seen := map[string]bool{}
	categories := []string{}
	for _, p := range r.s.products {
		if !p.Published || p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		categories = append(categories, p.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

type MemoryOrders struct{ s *MemoryStore }

func copyOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderLine{}, o.Items...)
	return o
}

func (r *MemoryOrders) PublicIDExists(_ context.Context, publicID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, o := range r.s.orders {
		if o.PublicID == publicID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryOrders) Create(_ context.Context, order *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, o := range r.s.orders {
		if o.PublicID == order.PublicID {
			return ErrDuplicatePublicID
		}
	}

	r.s.nextOrderID++
	order.ID = r.s.nextOrderID
	order.CreatedAt = time.Now()
	for i := range order.Items {
		order.Items[i].ID = order.ID*1000 + i + 1
		order.Items[i].OrderID = order.ID
	}
	r.s.orders = append(r.s.orders, copyOrder(*order))
	return nil
}

func (r *MemoryOrders) FindByPublicID(_ context.Context, publicID string) (*models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, o := range r.s.orders {
		if o.PublicID == publicID {
			found := copyOrder(o)
			return &found, nil
		}
	}
	return nil, ErrOrderNotFound
}

// newestFirst walks the orders backwards, which is creation order reversed.
func (r *MemoryOrders) newestFirst(match func(models.Order) bool) []models.Order {
	orders := []models.Order{}
	for i := len(r.s.orders) - 1; i >= 0; i-- {
		if match(r.s.orders[i]) {
			orders = append(orders, copyOrder(r.s.orders[i]))
		}
	}
	return orders
}

func (r *MemoryOrders) ListByAccount(_ context.Context, accountID int) ([]models.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.newestFirst(func(o models.Order) bool {
		return o.AccountID != nil && *o.AccountID == accountID
	}), nil
}

func (r *MemoryOrders) Search(_ context.Context, search models.OrderSearch) ([]models.Order, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	term := strings.ToLower(strings.TrimSpace(search.Term))
	matched := r.newestFirst(func(o models.Order) bool {
		return term == "" ||
			strings.Contains(strings.ToLower(o.Email), term) ||
			strings.Contains(strings.ToLower(o.PublicID), term)
	})

	total := len(matched)
	start := min(search.Offset, total)
	end := total
	if search.Limit > 0 {
		end = min(start+search.Limit, total)
	}
	return matched[start:end], total, nil
}

type MemoryUsers struct{ s *MemoryStore }

func (r *MemoryUsers) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email = strings.TrimSpace(email)
	for _, a := range r.s.accounts {
		if strings.EqualFold(a.Email, email) {
			return &a, nil
		}
	}
	return nil, ErrAccountNotFound
}

func (r *MemoryUsers) FindByID(_ context.Context, id int) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &a, nil
}

func (r *MemoryUsers) Create(_ context.Context, account *models.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, a := range r.s.accounts {
		if strings.EqualFold(a.Email, account.Email) {
			return ErrDuplicateEmail
		}
	}
	r.s.nextAccountID++
	now := time.Now()
	account.ID = r.s.nextAccountID
	account.CreatedAt = now
	account.UpdatedAt = now
	r.s.accounts[account.ID] = *account
	return nil
}

func (r *MemoryUsers) UpdateProfile(_ context.Context, account *models.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.accounts[account.ID]
	if !ok {
		return ErrAccountNotFound
	}
	stored.ApplyProfile(account.Profile())
	stored.UpdatedAt = time.Now()
	account.UpdatedAt = stored.UpdatedAt
	r.s.accounts[account.ID] = stored
	return nil
}

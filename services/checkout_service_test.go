package services

import (
	"context"
	"errors"
	"regexp"
	"storefront/models"
	"storefront/repositories"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var publicIDPattern = regexp.MustCompile(`^ORD-[0-9A-F]{10}$`)

func TestCheckout_PlacesOrderAndDecrementsStock(t *testing.T) {
	f := newFixture(t, product(7, "Pour Over Kit", "199.00", 5))
	ctx := context.Background()
	cart := cartWith(models.NewLine(product(7, "Pour Over Kit", "199.00", 5), 3))

	result, err := f.checkout.Checkout(ctx, cart, nil, validRequest())
	require.NoError(t, err)

	order := result.Order
	assert.Regexp(t, publicIDPattern, order.PublicID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 7, order.Items[0].ProductID)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.Equal(t, "597", order.Total.String())
	assert.True(t, order.Total.Equal(order.ItemsTotal()))
	assert.Nil(t, order.AccountID)
	assert.Equal(t, "600100200", order.Phone)
	assert.Equal(t, "30-001", order.PostalCode)

	assert.Equal(t, 2, f.stock(t, 7))
	assert.True(t, cart.IsEmpty())

	stored, err := f.store.Orders().FindByPublicID(ctx, order.PublicID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, stored.ID)
}

func TestCheckout_OrderLinesSnapshotCurrentCatalog(t *testing.T) {
	f := newFixture(t, product(1, "Mug", "35.00", 10))
	ctx := context.Background()
	cart := cartWith(models.NewLine(product(1, "Mug", "35.00", 10), 2))

	result, err := f.checkout.Checkout(ctx, cart, nil, validRequest())
	require.NoError(t, err)

	renamed := product(1, "Mug v2", "99.00", 8)
	f.store.PutProduct(renamed)

	stored, err := f.store.Orders().FindByPublicID(ctx, result.Order.PublicID)
	require.NoError(t, err)
	assert.Equal(t, "Mug", stored.Items[0].ProductName)
	assert.Equal(t, "35", stored.Items[0].UnitPrice.String())
	assert.Equal(t, "70", stored.Total.String())
}

func TestCheckout_StockDroppedAfterReconciliation(t *testing.T) {
	f := newFixture(t, product(7, "Pour Over Kit", "199.00", 2))
	snapshot := staticLookup{7: product(7, "Pour Over Kit", "199.00", 5)}
	svc := NewCheckoutService(f.store, snapshot, f.accounts)
	cart := cartWith(models.NewLine(snapshot[7], 5))

	_, err := svc.Checkout(context.Background(), cart, nil, validRequest())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "product:7", verr.Fields[0].Field)
	assert.Contains(t, verr.Fields[0].Message, "only 2 units")

	assert.Equal(t, 2, f.stock(t, 7))
	assert.Equal(t, 0, f.orderCount(t))
	assert.Equal(t, 5, cart.Lines[0].Quantity)
}

func TestCheckout_StaleCartIsCorrectedAndBlocked(t *testing.T) {
	f := newFixture(t,
		product(1, "Beans", "89.00", 2),
		product(2, "Mug", "35.00", 0),
	)
	cart := cartWith(
		models.NewLine(product(1, "Beans", "89.00", 5), 4),
		models.NewLine(product(2, "Mug", "35.00", 3), 1),
	)

	_, err := f.checkout.Checkout(context.Background(), cart, nil, validRequest())

	var stale *StaleCartError
	require.ErrorAs(t, err, &stale)
	require.Len(t, stale.Warnings, 2)
	assert.Contains(t, stale.Warnings[0], "reduced to 2")
	assert.Contains(t, stale.Warnings[1], "Mug is no longer available")

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 1, cart.Lines[0].ProductID)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.Equal(t, 2, f.stock(t, 1))
	assert.Equal(t, 0, f.orderCount(t))

	// the buyer resubmits the corrected cart
	result, err := f.checkout.Checkout(context.Background(), cart, nil, validRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Order.Items[0].Quantity)
	assert.Equal(t, 0, f.stock(t, 1))
}

func TestCheckout_StaleCartEmptiedSaysSo(t *testing.T) {
	f := newFixture(t)
	cart := cartWith(models.NewLine(product(9, "Gone", "5.00", 1), 1))

	_, err := f.checkout.Checkout(context.Background(), cart, nil, validRequest())

	var stale *StaleCartError
	require.ErrorAs(t, err, &stale)
	assert.True(t, cart.IsEmpty())
	assert.Equal(t, cartNowEmptyWarning, stale.Warnings[len(stale.Warnings)-1])
}

func TestCheckout_DuplicateEmailRejected(t *testing.T) {
	f := newFixture(t, product(1, "Beans", "89.00", 5))
	ctx := context.Background()
	_, err := f.accounts.Create(ctx, models.Profile{Email: "jan@example.com"}, "Secret1")
	require.NoError(t, err)

	req := validRequest()
	req.CreateAccount = true
	req.Password = "Secret1"
	req.ConfirmPassword = "Secret1"
	cart := cartWith(models.NewLine(product(1, "Beans", "89.00", 5), 1))

	_, err = f.checkout.Checkout(ctx, cart, nil, req)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	last := verr.Fields[len(verr.Fields)-1]
	assert.Equal(t, "email", last.Field)
	assert.Contains(t, last.Message, "already exists")

	assert.Equal(t, 0, f.orderCount(t))
	assert.Equal(t, 5, f.stock(t, 1))
	assert.Len(t, cart.Lines, 1)
}

func TestCheckout_ConcurrentLastUnit(t *testing.T) {
	f := newFixture(t, product(3, "Last One", "10.00", 1))
	var wg sync.WaitGroup
	wg.Add(2)
	runner := wrappedRunner{inner: f.store, wrap: func(tx repositories.Tx) repositories.Tx {
		return barrierTx{Tx: tx, wg: &wg}
	}}
	svc := NewCheckoutService(runner, f.store.Products(), f.accounts)

	errs := make([]error, 2)
	var done sync.WaitGroup
	for i := 0; i < 2; i++ {
		done.Add(1)
		go func(i int) {
			defer done.Done()
			cart := cartWith(models.NewLine(product(3, "Last One", "10.00", 1), 1))
			_, errs[i] = svc.Checkout(context.Background(), cart, nil, validRequest())
		}(i)
	}
	done.Wait()

	succeeded, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrStockConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicts)
	assert.Equal(t, 0, f.stock(t, 3))
	assert.Equal(t, 1, f.orderCount(t))
}

func TestCheckout_StockConflictRollsBackEarlierDecrements(t *testing.T) {
	f := newFixture(t, product(1, "A", "1.00", 5), product(2, "B", "1.00", 1))
	runner := wrappedRunner{inner: f.store, wrap: func(tx repositories.Tx) repositories.Tx {
		return drainingTx{Tx: tx, store: f.store, productID: 2}
	}}
	svc := NewCheckoutService(runner, f.store.Products(), f.accounts)
	cart := cartWith(
		models.NewLine(product(1, "A", "1.00", 5), 2),
		models.NewLine(product(2, "B", "1.00", 1), 1),
	)

	_, err := svc.Checkout(context.Background(), cart, nil, validRequest())
	require.ErrorIs(t, err, ErrStockConflict)

	assert.Equal(t, 5, f.stock(t, 1))
	assert.Equal(t, 0, f.orderCount(t))
	assert.Len(t, cart.Lines, 2)
}

func TestCheckout_StockConflictDoesNotKeepNewAccount(t *testing.T) {
	f := newFixture(t, product(1, "A", "1.00", 5), product(2, "B", "1.00", 1))
	runner := wrappedRunner{inner: f.store, wrap: func(tx repositories.Tx) repositories.Tx {
		return drainingTx{Tx: tx, store: f.store, productID: 2}
	}}
	svc := NewCheckoutService(runner, f.store.Products(), f.accounts)
	req := validRequest()
	req.CreateAccount = true
	req.Password = "Secret1"
	req.ConfirmPassword = "Secret1"
	cart := cartWith(
		models.NewLine(product(1, "A", "1.00", 5), 2),
		models.NewLine(product(2, "B", "1.00", 1), 1),
	)

	_, err := svc.Checkout(context.Background(), cart, nil, req)
	require.ErrorIs(t, err, ErrStockConflict)

	account, err := f.accounts.FindByEmail(context.Background(), "jan@example.com")
	require.NoError(t, err)
	assert.Nil(t, account)

	// the same buyer can retry once stock is back
	f.store.PutProduct(product(2, "B", "1.00", 1))
	result, err := f.checkout.Checkout(context.Background(), cart, nil, req)
	require.NoError(t, err)
	require.NotNil(t, result.Account)
	assert.NotEmpty(t, result.Token)
}

// drainingTx sells out productID right after the in-transaction read.
type drainingTx struct {
	repositories.Tx
	store     *repositories.MemoryStore
	productID int
}

func (d drainingTx) ProductsByIDs(ctx context.Context, ids []int) (map[int]models.Product, error) {
	products, err := d.Tx.ProductsByIDs(ctx, ids)
	p := products[d.productID]
	p.Stock = 0
	d.store.PutProduct(p)
	return products, err
}

func TestCheckout_DirectoryFailureCreatesNothing(t *testing.T) {
	f := newFixture(t, product(1, "Beans", "89.00", 5))
	req := validRequest()
	req.CreateAccount = true
	req.Password = "weak"
	req.ConfirmPassword = "weak"
	cart := cartWith(models.NewLine(product(1, "Beans", "89.00", 5), 2))

	_, err := f.checkout.Checkout(context.Background(), cart, nil, req)

	var derr *DirectoryError
	require.ErrorAs(t, err, &derr)
	assert.NotEmpty(t, derr.Reasons)

	account, err := f.accounts.FindByEmail(context.Background(), "jan@example.com")
	require.NoError(t, err)
	assert.Nil(t, account)
	assert.Equal(t, 5, f.stock(t, 1))
	assert.Equal(t, 0, f.orderCount(t))
	assert.Len(t, cart.Lines, 1)
}

func TestCheckout_CreatesAndSignsInAccount(t *testing.T) {
	f := newFixture(t, product(1, "Beans", "89.00", 5))
	req := validRequest()
	req.CreateAccount = true
	req.Password = "Secret1"
	req.ConfirmPassword = "Secret1"
	cart := cartWith(models.NewLine(product(1, "Beans", "89.00", 5), 1))

	result, err := f.checkout.Checkout(context.Background(), cart, nil, req)
	require.NoError(t, err)

	require.NotNil(t, result.Account)
	assert.NotEmpty(t, result.Token)
	require.NotNil(t, result.Order.AccountID)
	assert.Equal(t, result.Account.ID, *result.Order.AccountID)

	stored, err := f.accounts.FindByEmail(context.Background(), "jan@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Krakow", stored.City)
	assert.Equal(t, "30-001", stored.PostalCode)
}

func TestCheckout_SyncsProfileOfSignedInBuyer(t *testing.T) {
	f := newFixture(t, product(1, "Beans", "89.00", 5))
	ctx := context.Background()
	account, err := f.accounts.Create(ctx, models.Profile{
		Email: "anna@example.com", FullName: "Anna Nowak", City: "Gdansk",
	}, "Secret1")
	require.NoError(t, err)

	req := validRequest()
	req.Email = "someone-else@example.com"
	req.FullName = "Anna Nowak"
	cart := cartWith(models.NewLine(product(1, "Beans", "89.00", 5), 1))

	result, err := f.checkout.Checkout(ctx, cart, account, req)
	require.NoError(t, err)

	assert.Equal(t, "anna@example.com", result.Order.Email)
	assert.Empty(t, result.Token)
	require.NotNil(t, result.Order.AccountID)
	assert.Equal(t, account.ID, *result.Order.AccountID)

	stored, err := f.store.Users().FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "Krakow", stored.City)
	assert.Equal(t, "600100200", stored.Phone)
	assert.Equal(t, "anna@example.com", stored.Email)
}

func TestCheckout_EmptyCartAndInvalidFields(t *testing.T) {
	f := newFixture(t)
	req := models.CheckoutRequest{ContactForm: models.ContactForm{Email: "nope", Phone: "12"}}

	_, err := f.checkout.Checkout(context.Background(), models.NewCart(), nil, req)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	fields := []string{}
	for _, fe := range verr.Fields {
		fields = append(fields, fe.Field)
	}
	assert.Equal(t, []string{"full_name", "email", "phone", "street", "postal_code", "city", "accept_terms", ""}, fields)
	assert.Contains(t, verr.Fields[len(verr.Fields)-1].Message, "cart is empty")
}

func TestCheckout_RegeneratesCollidingPublicID(t *testing.T) {
	taken := uuid.MustParse("aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa")
	free := uuid.MustParse("bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb")

	f := newFixture(t, product(1, "Beans", "89.00", 5))
	ctx := context.Background()
	require.NoError(t, f.store.Orders().Create(ctx, &models.Order{PublicID: "ORD-AAAAAAAAAA"}))

	svc := NewCheckoutService(f.store, f.store.Products(), f.accounts,
		WithPublicIDGenerator(&PublicIDGenerator{random: sequence(taken, free)}))
	cart := cartWith(models.NewLine(product(1, "Beans", "89.00", 5), 1))

	result, err := svc.Checkout(ctx, cart, nil, validRequest())
	require.NoError(t, err)
	assert.Equal(t, "ORD-BBBBBBBBBB", result.Order.PublicID)
}

func TestCheckout_RetriesInsertOnDuplicatePublicID(t *testing.T) {
	f := newFixture(t, product(1, "Beans", "89.00", 5))
	var mu sync.Mutex
	collisions := 2
	runner := wrappedRunner{inner: f.store, wrap: func(tx repositories.Tx) repositories.Tx {
		return collidingTx{Tx: tx, mu: &mu, collisions: &collisions}
	}}
	svc := NewCheckoutService(runner, f.store.Products(), f.accounts)
	cart := cartWith(models.NewLine(product(1, "Beans", "89.00", 5), 1))

	result, err := svc.Checkout(context.Background(), cart, nil, validRequest())
	require.NoError(t, err)
	assert.Equal(t, 0, collisions)
	assert.Regexp(t, publicIDPattern, result.Order.PublicID)
	assert.Equal(t, 1, f.orderCount(t))
	assert.Equal(t, 4, f.stock(t, 1))
}

type recordingNotifier struct {
	sent chan string
}

func (n *recordingNotifier) SendOrderConfirmation(order *models.Order) error {
	n.sent <- order.PublicID
	return nil
}

type recordingCache struct {
	calls int
}

func (c *recordingCache) InvalidateProducts(context.Context) { c.calls++ }

func TestCheckout_NotifiesAndInvalidatesCache(t *testing.T) {
	f := newFixture(t, product(1, "Beans", "89.00", 5))
	notifier := &recordingNotifier{sent: make(chan string, 1)}
	cache := &recordingCache{}
	svc := NewCheckoutService(f.store, f.store.Products(), f.accounts,
		WithNotifier(notifier), WithProductCache(cache))
	cart := cartWith(models.NewLine(product(1, "Beans", "89.00", 5), 1))

	result, err := svc.Checkout(context.Background(), cart, nil, validRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.calls)

	select {
	case id := <-notifier.sent:
		assert.Equal(t, result.Order.PublicID, id)
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation was not sent")
	}
}

func TestCheckout_FailureSkipsSideEffects(t *testing.T) {
	f := newFixture(t)
	cache := &recordingCache{}
	svc := NewCheckoutService(f.store, f.store.Products(), f.accounts, WithProductCache(cache))

	_, err := svc.Checkout(context.Background(), models.NewCart(), nil, validRequest())
	require.Error(t, err)
	assert.Equal(t, 0, cache.calls)
}

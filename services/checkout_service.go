package services

import (
	"context"
	"errors"
	"fmt"
	"storefront/models"
	"storefront/repositories"

	"github.com/rs/zerolog/log"
)

type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx repositories.Tx) error) error
}

type OrderNotifier interface {
	SendOrderConfirmation(order *models.Order) error
}

type ProductCacheInvalidator interface {
	InvalidateProducts(ctx context.Context)
}

type CheckoutResult struct {
	Order   *models.Order
	Account *models.Account
	// Token is set when the checkout created and signed in a new account.
	Token string
}

type CheckoutService struct {
	store    TxRunner
	catalog  ProductLookup
	accounts AccountDirectory
	ids      *PublicIDGenerator
	notifier OrderNotifier
	cache    ProductCacheInvalidator
}

type CheckoutOption func(*CheckoutService)

func WithNotifier(n OrderNotifier) CheckoutOption {
	return func(s *CheckoutService) { s.notifier = n }
}

func WithProductCache(c ProductCacheInvalidator) CheckoutOption {
	return func(s *CheckoutService) { s.cache = c }
}

func WithPublicIDGenerator(g *PublicIDGenerator) CheckoutOption {
	return func(s *CheckoutService) { s.ids = g }
}

// NewCheckoutService wires checkout. catalog serves the reconciliation read
// outside the transaction; store provides the transactional view.
func NewCheckoutService(store TxRunner, catalog ProductLookup, accounts AccountDirectory, opts ...CheckoutOption) *CheckoutService {
	s := &CheckoutService{
		store:    store,
		catalog:  catalog,
		accounts: accounts,
		ids:      NewPublicIDGenerator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Checkout turns cart into an order. account is the signed-in buyer or nil.
//
// cart is corrected in place when reconciliation changes it (the error is then
// a *StaleCartError) and emptied after the order commits; the caller persists
// it in both cases. Any other failure leaves cart, stock, orders and
// accounts as they were.
func (s *CheckoutService) Checkout(ctx context.Context, cart *models.Cart, account *models.Account, req models.CheckoutRequest) (*CheckoutResult, error) {
	if account != nil {
		req.Email = account.Email
	}
	NormalizeCheckout(&req)
	creatingAccount := req.CreateAccount && account == nil

	fieldErrs := ValidateCheckout(req, creatingAccount)
	if creatingAccount && req.Email != "" {
		existing, err := s.accounts.FindByEmail(ctx, req.Email)
		if err != nil {
			return nil, fmt.Errorf("look up account: %w", err)
		}
		if existing != nil {
			fieldErrs = append(fieldErrs, models.FieldError{
				Field:   "email",
				Message: "An account with this email already exists. Sign in instead.",
			})
		}
	}
	if cart.IsEmpty() {
		fieldErrs = append(fieldErrs, models.FieldError{
			Message: "Your cart is empty. Add products before placing an order.",
		})
	}

	snapshot, err := s.catalog.GetByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return nil, fmt.Errorf("load cart products: %w", err)
	}
	corrected, warnings, changed := Reconcile(cart, snapshot)
	if changed {
		cart.Lines = corrected.Lines
		return nil, &StaleCartError{Warnings: warnings, Cart: cart}
	}

	if len(fieldErrs) > 0 {
		return nil, &ValidationError{Fields: fieldErrs}
	}

	buyer := account
	var order *models.Order
	err = s.store.WithinTx(ctx, func(tx repositories.Tx) error {
		products, err := tx.ProductsByIDs(ctx, cart.ProductIDs())
		if err != nil {
			return err
		}
		if errs := checkLines(cart, products); len(errs) > 0 {
			return &ValidationError{Fields: errs}
		}

		if creatingAccount {
			created, err := s.accounts.NewAccount(ctx, req.Profile(), req.Password)
			if err != nil {
				return err
			}
			if err := tx.CreateAccount(ctx, created); err != nil {
				if errors.Is(err, ErrDuplicateAccount) {
					return EmailTakenError(created.Email)
				}
				return err
			}
			buyer = created
		}

		for _, line := range cart.Lines {
			if err := tx.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}

		order = buildOrder(cart, products, buyer, req)
		return s.insertOrder(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	result := &CheckoutResult{Order: order, Account: buyer}
	if creatingAccount {
		token, err := s.accounts.SignIn(buyer)
		if err != nil {
			log.Error().Err(err).Int("account_id", buyer.ID).Msg("failed to sign in new account")
		}
		result.Token = token
	}

	if buyer != nil && buyer.ApplyProfile(req.Profile()) {
		if err := s.accounts.Update(ctx, buyer); err != nil {
			log.Warn().Err(err).Int("account_id", buyer.ID).Msg("failed to sync profile after checkout")
		}
	}

	cart.Clear()
	s.afterCommit(ctx, order)
	return result, nil
}

// checkLines validates every line against products loaded in the
// transaction and reports all offenders at once.
func checkLines(cart *models.Cart, products map[int]models.Product) []models.FieldError {
	errs := []models.FieldError{}
	for _, line := range cart.Lines {
		field := fmt.Sprintf("product:%d", line.ProductID)
		product, ok := products[line.ProductID]
		if !ok {
			errs = append(errs, models.FieldError{Field: field, Message: fmt.Sprintf("%s is no longer available.", line.Name)})
			continue
		}
		if !product.Published {
			errs = append(errs, models.FieldError{Field: field, Message: fmt.Sprintf("%s is no longer published.", product.Name)})
		}
		if product.Stock < line.Quantity {
			errs = append(errs, models.FieldError{Field: field, Message: fmt.Sprintf("%s has only %d units.", product.Name, product.Stock)})
		}
	}
	return errs
}

func buildOrder(cart *models.Cart, products map[int]models.Product, buyer *models.Account, req models.CheckoutRequest) *models.Order {
	order := &models.Order{
		Email:      req.Email,
		FullName:   req.FullName,
		Phone:      req.Phone,
		Street:     req.Street,
		PostalCode: req.PostalCode,
		City:       req.City,
		Items:      make([]models.OrderLine, 0, len(cart.Lines)),
	}
	if buyer != nil {
		id := buyer.ID
		order.AccountID = &id
	}
	for _, line := range cart.Lines {
		order.Items = append(order.Items, models.NewOrderLine(products[line.ProductID], line.Quantity))
	}
	order.Total = order.ItemsTotal()
	return order
}

// insertOrder retries with a fresh public id when the insert loses a race
// for the one it checked.
func (s *CheckoutService) insertOrder(ctx context.Context, tx repositories.Tx, order *models.Order) error {
	for {
		publicID, err := s.ids.Generate(ctx, tx.PublicIDExists)
		if err != nil {
			return err
		}
		order.PublicID = publicID

		err = tx.CreateOrder(ctx, order)
		if errors.Is(err, repositories.ErrDuplicatePublicID) {
			log.Debug().Str("public_id", publicID).Msg("public id collision, regenerating")
			continue
		}
		return err
	}
}

func (s *CheckoutService) afterCommit(ctx context.Context, order *models.Order) {
	if s.cache != nil {
		s.cache.InvalidateProducts(ctx)
	}
	if s.notifier != nil {
		go func(o models.Order) {
			if err := s.notifier.SendOrderConfirmation(&o); err != nil {
				log.Warn().Err(err).Str("public_id", o.PublicID).Msg("failed to send order confirmation")
			}
		}(*order)
	}
	log.Info().Str("public_id", order.PublicID).Str("total", order.Total.StringFixed(2)).Msg("order placed")
}

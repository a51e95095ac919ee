package services

import (
	"context"
	"fmt"
	"storefront/models"
)

// CartStore persists one cart per session token.
type CartStore interface {
	Get(ctx context.Context, session string) (*models.Cart, error)
	Save(ctx context.Context, session string, cart *models.Cart) error
	Clear(ctx context.Context, session string) error
}

type ProductLookup interface {
	GetByID(ctx context.Context, id int) (*models.Product, error)
	GetByIDs(ctx context.Context, ids []int) (map[int]models.Product, error)
}

type CartService struct {
	carts    CartStore
	products ProductLookup
}

func NewCartService(carts CartStore, products ProductLookup) *CartService {
	return &CartService{carts: carts, products: products}
}

func (s *CartService) Get(ctx context.Context, session string) (*models.Cart, error) {
	return s.carts.Get(ctx, session)
}

func (s *CartService) Save(ctx context.Context, session string, cart *models.Cart) error {
	return s.carts.Save(ctx, session, cart)
}

// View loads the session cart with fresh stock figures for display.
func (s *CartService) View(ctx context.Context, session string) (*models.Cart, error) {
	cart, err := s.carts.Get(ctx, session)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return cart, nil
	}
	if err := s.Refresh(ctx, cart); err != nil {
		return nil, err
	}
	return cart, s.carts.Save(ctx, session, cart)
}

// Refresh updates the stock snapshot of every line; products that vanished
// read as zero.
func (s *CartService) Refresh(ctx context.Context, cart *models.Cart) error {
	products, err := s.products.GetByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return err
	}
	for i := range cart.Lines {
		cart.Lines[i].AvailableStock = products[cart.Lines[i].ProductID].Stock
	}
	return nil
}

func (s *CartService) Add(ctx context.Context, session string, productID, quantity int) (*models.Cart, []string, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	return s.mutate(ctx, session, func(cart *models.Cart) []string {
		return AddLine(cart, *product, quantity)
	})
}

func (s *CartService) Update(ctx context.Context, session string, productID, quantity int) (*models.Cart, []string, error) {
	cart, err := s.carts.Get(ctx, session)
	if err != nil {
		return nil, nil, err
	}
	if _, ok := cart.Line(productID); !ok {
		return cart, nil, nil
	}

	products, err := s.products.GetByIDs(ctx, []int{productID})
	if err != nil {
		return nil, nil, err
	}
	var product *models.Product
	if p, ok := products[productID]; ok {
		product = &p
	}

	warnings := UpdateLine(cart, productID, product, quantity)
	if err := s.carts.Save(ctx, session, cart); err != nil {
		return nil, nil, err
	}
	return cart, warnings, nil
}

func (s *CartService) Remove(ctx context.Context, session string, productID int) (*models.Cart, error) {
	cart, _, err := s.mutate(ctx, session, func(cart *models.Cart) []string {
		cart.Remove(productID)
		return nil
	})
	return cart, err
}

func (s *CartService) mutate(ctx context.Context, session string, fn func(cart *models.Cart) []string) (*models.Cart, []string, error) {
	cart, err := s.carts.Get(ctx, session)
	if err != nil {
		return nil, nil, err
	}
	warnings := fn(cart)
	if err := s.carts.Save(ctx, session, cart); err != nil {
		return nil, nil, err
	}
	return cart, warnings, nil
}

// AddLine puts quantity more units of product into cart, never more than the
// product's stock. A quantity below one counts as one.
func AddLine(cart *models.Cart, product models.Product, quantity int) []string {
	if quantity < 1 {
		quantity = 1
	}
	if !product.Available() {
		return []string{fmt.Sprintf("%s is not available.", product.Name)}
	}

	current := 0
	if line, ok := cart.Line(product.ID); ok {
		current = line.Quantity
	}

	if current >= product.Stock {
		cart.Put(models.NewLine(product, product.Stock))
		return []string{fmt.Sprintf("You already have the maximum available quantity of %s in your cart.", product.Name)}
	}

	target := current + quantity
	var warnings []string
	if target > product.Stock {
		target = product.Stock
		warnings = append(warnings, fmt.Sprintf("Only %d units of %s are available. The quantity in your cart was set to the maximum.", product.Stock, product.Name))
	}
	cart.Put(models.NewLine(product, target))
	return warnings
}

// UpdateLine sets the quantity of an existing line. product is nil when the
// catalog no longer has it.
func UpdateLine(cart *models.Cart, productID int, product *models.Product, quantity int) []string {
	line, ok := cart.Line(productID)
	if !ok {
		return nil
	}
	if product == nil || !product.Available() {
		name := line.Name
		cart.Remove(productID)
		return []string{fmt.Sprintf("%s is no longer available and was removed from your cart.", name)}
	}
	if quantity <= 0 {
		cart.Remove(productID)
		return nil
	}

	var warnings []string
	if quantity > product.Stock {
		quantity = product.Stock
		warnings = append(warnings, fmt.Sprintf("Quantity of %s was reduced to %d (all we have in stock).", product.Name, quantity))
	}
	line.Quantity = quantity
	line.AvailableStock = product.Stock
	return warnings
}

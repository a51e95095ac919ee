package services

import (
	"context"
	"storefront/models"
	"strings"
)

type OrderRepository interface {
	FindByPublicID(ctx context.Context, publicID string) (*models.Order, error)
	ListByAccount(ctx context.Context, accountID int) ([]models.Order, error)
	Search(ctx context.Context, search models.OrderSearch) ([]models.Order, int, error)
}

type OrderService struct {
	orders OrderRepository
}

func NewOrderService(orders OrderRepository) *OrderService {
	return &OrderService{orders: orders}
}

func (s *OrderService) Received(ctx context.Context, publicID string) (*models.Order, error) {
	return s.orders.FindByPublicID(ctx, strings.ToUpper(strings.TrimSpace(publicID)))
}

func (s *OrderService) History(ctx context.Context, accountID int) ([]models.Order, error) {
	return s.orders.ListByAccount(ctx, accountID)
}

// Search pages through all orders, newest first. page starts at 1.
func (s *OrderService) Search(ctx context.Context, term string, page, limit int) ([]models.Order, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return s.orders.Search(ctx, models.OrderSearch{
		Term:   term,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
}

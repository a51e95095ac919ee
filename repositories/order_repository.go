package repositories

import (
	"context"
	"errors"
	"fmt"
	"storefront/models"
	"strings"

	"github.com/jackc/pgx/v5"
)

const orderColumns = `id, user_id, public_id, email, full_name, phone, street, postal_code, city, total, created_at`

type OrderRepository struct {
	db DBTX
}

func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

func scanOrder(row pgx.Row) (models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID, &o.AccountID, &o.PublicID, &o.Email, &o.FullName, &o.Phone,
		&o.Street, &o.PostalCode, &o.City, &o.Total, &o.CreatedAt,
	)
	return o, err
}

func (r *OrderRepository) PublicIDExists(ctx context.Context, publicID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE public_id = $1)`, publicID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check public id: %w", err)
	}
	return exists, nil
}

// Create inserts the order and its lines under a savepoint, so a public id
// collision leaves the surrounding transaction usable for another attempt.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	sp, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin savepoint: %w", err)
	}
	defer sp.Rollback(ctx)

	query := `
		INSERT INTO orders (user_id, public_id, email, full_name, phone, street, postal_code, city, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	err = sp.QueryRow(ctx, query,
		order.AccountID, order.PublicID, order.Email, order.FullName, order.Phone,
		order.Street, order.PostalCode, order.City, order.Total,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		if code, constraint := pgErrorCode(err); code == pgUniqueViolation && constraint == "orders_public_id_key" {
			return ErrDuplicatePublicID
		}
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, product_name, unit_price, promo_price, quantity, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		err := sp.QueryRow(ctx, itemQuery,
			item.OrderID, item.ProductID, item.ProductName, item.UnitPrice,
			item.PromoPrice, item.Quantity, item.LineTotal,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}

func (r *OrderRepository) FindByPublicID(ctx context.Context, publicID string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE public_id = $1`

	o, err := scanOrder(r.db.QueryRow(ctx, query, publicID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order %s: %w", publicID, err)
	}

	if err := r.loadItems(ctx, []*models.Order{&o}); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) ListByAccount(ctx context.Context, accountID int) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, accountID)
}

// Search matches the term against the buyer e-mail and the public id.
// An empty term lists every order.
func (r *OrderRepository) Search(ctx context.Context, search models.OrderSearch) ([]models.Order, int, error) {
	where := ""
	args := []any{}
	if term := strings.TrimSpace(search.Term); term != "" {
		args = append(args, "%"+term+"%")
		where = ` WHERE email ILIKE $1 OR public_id ILIKE $1`
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	args = append(args, search.Limit, search.Offset)
	query := `SELECT ` + orderColumns + ` FROM orders` + where +
		fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	orders, err := r.list(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	refs := make([]*models.Order, len(orders))
	for i := range orders {
		refs[i] = &orders[i]
	}
	if err := r.loadItems(ctx, refs); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[int]*models.Order, len(orders))
	ids := make([]int, 0, len(orders))
	for _, o := range orders {
		o.Items = []models.OrderLine{}
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	query := `
		SELECT id, order_id, product_id, product_name, unit_price, promo_price, quantity, line_total
		FROM order_items WHERE order_id = ANY($1) ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderLine
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.UnitPrice, &item.PromoPrice, &item.Quantity, &item.LineTotal,
		); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID         int             `json:"id"`
	AccountID  *int            `json:"account_id,omitempty"`
	Email      string          `json:"email"`
	FullName   string          `json:"full_name"`
	Phone      string          `json:"phone"`
	Street     string          `json:"street"`
	PostalCode string          `json:"postal_code"`
	City       string          `json:"city"`
	PublicID   string          `json:"public_id"`
	Total      decimal.Decimal `json:"total"`
	CreatedAt  time.Time       `json:"created_at"`
	Items      []OrderLine     `json:"items"`
}

type OrderLine struct {
	ID          int                 `json:"id"`
	OrderID     int                 `json:"order_id"`
	ProductID   int                 `json:"product_id"`
	ProductName string              `json:"product_name"`
	UnitPrice   decimal.Decimal     `json:"unit_price"`
	PromoPrice  decimal.NullDecimal `json:"promo_price"`
	Quantity    int                 `json:"quantity"`
	LineTotal   decimal.Decimal     `json:"line_total"`
}

// NewOrderLine freezes the current catalog values of p for quantity units.
func NewOrderLine(p Product, quantity int) OrderLine {
	return OrderLine{
		ProductID:   p.ID,
		ProductName: p.Name,
		UnitPrice:   p.Price,
		PromoPrice:  p.PromoPrice,
		Quantity:    quantity,
		LineTotal:   p.EffectivePrice().Mul(decimal.NewFromInt(int64(quantity))),
	}
}

func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal)
	}
	return total
}

type OrderSearch struct {
	Term   string
	Limit  int
	Offset int
}

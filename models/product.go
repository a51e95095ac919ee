package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int                 `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Category    string              `json:"category,omitempty"`
	Price       decimal.Decimal     `json:"price"`
	PromoPrice  decimal.NullDecimal `json:"promo_price"`
	Stock       int                 `json:"stock"`
	Published   bool                `json:"published"`
	CreatedAt   time.Time           `json:"created_at"`
}

// Available reports whether the product can be put into a cart at all.
func (p Product) Available() bool {
	return p.Published && p.Stock > 0
}

func (p Product) EffectivePrice() decimal.Decimal {
	return effectivePrice(p.Price, p.PromoPrice)
}

type ProductFilter struct {
	Search    string
	Category  string
	PromoOnly bool
}

// effectivePrice picks the promotional price only when it actually undercuts
// the regular one.
func effectivePrice(price decimal.Decimal, promo decimal.NullDecimal) decimal.Decimal {
	if promo.Valid && promo.Decimal.LessThan(price) {
		return promo.Decimal
	}
	return price
}

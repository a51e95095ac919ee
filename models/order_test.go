package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewOrderLine_FreezesCatalogValues(t *testing.T) {
	product := Product{
		ID:         7,
		Name:       "Pour Over Kit",
		Price:      dec("199.00"),
		PromoPrice: decimal.NewNullDecimal(dec("169.00")),
	}

	line := NewOrderLine(product, 3)

	product.Name = "Renamed"
	product.Price = dec("1.00")
	product.PromoPrice = decimal.NullDecimal{}

	assert.Equal(t, "Pour Over Kit", line.ProductName)
	assert.True(t, dec("199.00").Equal(line.UnitPrice))
	assert.True(t, dec("169.00").Equal(line.PromoPrice.Decimal))
	assert.True(t, dec("507.00").Equal(line.LineTotal))
}

func TestOrder_ItemsTotal(t *testing.T) {
	o := Order{Items: []OrderLine{
		{LineTotal: dec("10.50")},
		{LineTotal: dec("4.25")},
	}}
	assert.True(t, dec("14.75").Equal(o.ItemsTotal()))
}

func TestAccount_ApplyProfileKeepsEmail(t *testing.T) {
	a := &Account{Email: "jan@example.com", FullName: "Jan", City: "Krakow"}

	changed := a.ApplyProfile(Profile{Email: "other@example.com", FullName: "Jan", City: "Krakow"})
	assert.False(t, changed)

	changed = a.ApplyProfile(Profile{FullName: "Jan Kowalski", City: "Krakow", Phone: "600100200"})
	assert.True(t, changed)
	assert.Equal(t, "jan@example.com", a.Email)
	assert.Equal(t, "Jan Kowalski", a.FullName)
	assert.Equal(t, "600100200", a.Phone)
}

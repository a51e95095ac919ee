package models

import (
	"github.com/shopspring/decimal"
)

type CartLine struct {
	ProductID      int                 `json:"product_id"`
	Name           string              `json:"name"`
	Price          decimal.Decimal     `json:"price"`
	PromoPrice     decimal.NullDecimal `json:"promo_price"`
	Quantity       int                 `json:"quantity"`
	AvailableStock int                 `json:"available_stock"`
}

func (l CartLine) EffectivePrice() decimal.Decimal {
	return effectivePrice(l.Price, l.PromoPrice)
}

func (l CartLine) Total() decimal.Decimal {
	return l.EffectivePrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart keeps its lines in insertion order, at most one line per product.
// A line never holds a quantity below one.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

func NewCart() *Cart {
	return &Cart{Lines: []CartLine{}}
}

// NewLine snapshots the catalog values of p into a cart line.
func NewLine(p Product, quantity int) CartLine {
	return CartLine{
		ProductID:      p.ID,
		Name:           p.Name,
		Price:          p.Price,
		PromoPrice:     p.PromoPrice,
		Quantity:       quantity,
		AvailableStock: p.Stock,
	}
}

func (c *Cart) Line(productID int) (*CartLine, bool) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i], true
		}
	}
	return nil, false
}

// Put stores line, replacing an existing line for the same product in place.
// A quantity of zero or less removes the line instead.
func (c *Cart) Put(line CartLine) {
	if line.Quantity <= 0 {
		c.Remove(line.ProductID)
		return
	}
	if existing, ok := c.Line(line.ProductID); ok {
		*existing = line
		return
	}
	c.Lines = append(c.Lines, line)
}

func (c *Cart) Remove(productID int) bool {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Cart) Clear() {
	c.Lines = []CartLine{}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c *Cart) ProductIDs() []int {
	ids := make([]int, 0, len(c.Lines))
	for _, l := range c.Lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Total())
	}
	return total
}

func (c *Cart) Clone() *Cart {
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return &Cart{Lines: lines}
}

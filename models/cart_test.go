package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCartLine_EffectivePrice(t *testing.T) {
	tests := []struct {
		name  string
		price string
		promo decimal.NullDecimal
		want  string
	}{
		{"no promo", "10.00", decimal.NullDecimal{}, "10.00"},
		{"lower promo", "10.00", decimal.NewNullDecimal(dec("7.50")), "7.50"},
		{"promo not lower", "10.00", decimal.NewNullDecimal(dec("12.00")), "10.00"},
		{"promo equal", "10.00", decimal.NewNullDecimal(dec("10.00")), "10.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := CartLine{Price: dec(tt.price), PromoPrice: tt.promo, Quantity: 3}
			assert.True(t, dec(tt.want).Equal(line.EffectivePrice()))
			assert.True(t, dec(tt.want).Mul(decimal.NewFromInt(3)).Equal(line.Total()))
		})
	}
}

func TestCart_PutReplacesInPlace(t *testing.T) {
	cart := NewCart()
	cart.Put(CartLine{ProductID: 1, Quantity: 1, Price: dec("1")})
	cart.Put(CartLine{ProductID: 2, Quantity: 1, Price: dec("1")})
	cart.Put(CartLine{ProductID: 1, Quantity: 5, Price: dec("1")})

	require.Len(t, cart.Lines, 2)
	assert.Equal(t, []int{1, 2}, cart.ProductIDs())
	assert.Equal(t, 5, cart.Lines[0].Quantity)
}

func TestCart_PutNonPositiveRemoves(t *testing.T) {
	cart := NewCart()
	cart.Put(CartLine{ProductID: 1, Quantity: 2})
	cart.Put(CartLine{ProductID: 1, Quantity: 0})
	assert.True(t, cart.IsEmpty())

	cart.Put(CartLine{ProductID: 3, Quantity: -1})
	assert.True(t, cart.IsEmpty())
}

func TestCart_RemoveAbsentIsNoop(t *testing.T) {
	cart := NewCart()
	cart.Put(CartLine{ProductID: 1, Quantity: 2})
	assert.False(t, cart.Remove(99))
	assert.Len(t, cart.Lines, 1)
}

func TestCart_CloneIsIndependent(t *testing.T) {
	cart := NewCart()
	cart.Put(CartLine{ProductID: 1, Quantity: 2})
	clone := cart.Clone()
	clone.Lines[0].Quantity = 7
	assert.Equal(t, 2, cart.Lines[0].Quantity)
}

func TestCart_TotalIsSumOfLines(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cart := NewCart()
		n := rapid.IntRange(0, 20).Draw(t, "lines")
		for i := 0; i < n; i++ {
			priceCents := rapid.Int64Range(1, 100000).Draw(t, "price")
			line := CartLine{
				ProductID: rapid.IntRange(1, 10).Draw(t, "product"),
				Price:     decimal.New(priceCents, -2),
				Quantity:  rapid.IntRange(-2, 50).Draw(t, "qty"),
			}
			if rapid.Bool().Draw(t, "promo") {
				line.PromoPrice = decimal.NewNullDecimal(decimal.New(rapid.Int64Range(1, 100000).Draw(t, "promoPrice"), -2))
			}
			cart.Put(line)
		}

		want := decimal.Zero
		seen := map[int]bool{}
		for _, l := range cart.Lines {
			if l.Quantity < 1 {
				t.Fatalf("stored line with quantity %d", l.Quantity)
			}
			if seen[l.ProductID] {
				t.Fatalf("duplicate line for product %d", l.ProductID)
			}
			seen[l.ProductID] = true
			want = want.Add(l.EffectivePrice().Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
		if !want.Equal(cart.Total()) {
			t.Fatalf("total %s, want %s", cart.Total(), want)
		}
	})
}

package services

import (
	"fmt"
	"storefront/models"
)

const cartNowEmptyWarning = "Your cart is now empty."

// Reconcile corrects cart against the given catalog rows, in cart order.
// Lines whose product is gone, unpublished or sold out are dropped; lines
// asking for more than the stock are reduced to it. The input cart is not
// modified.
func Reconcile(cart *models.Cart, products map[int]models.Product) (*models.Cart, []string, bool) {
	corrected := models.NewCart()
	warnings := []string{}
	changed := false

	for _, line := range cart.Lines {
		product, ok := products[line.ProductID]
		if !ok || !product.Available() {
			warnings = append(warnings, fmt.Sprintf("%s is no longer available and was removed from your cart.", line.Name))
			changed = true
			continue
		}

		line.AvailableStock = product.Stock
		if product.Stock < line.Quantity {
			line.Quantity = product.Stock
			warnings = append(warnings, fmt.Sprintf("Quantity of %s was reduced to %d (all we have in stock).", product.Name, product.Stock))
			changed = true
		}
		corrected.Lines = append(corrected.Lines, line)
	}

	if changed && corrected.IsEmpty() {
		warnings = append(warnings, cartNowEmptyWarning)
	}
	return corrected, warnings, changed
}

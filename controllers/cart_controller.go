package controllers

import (
	"errors"
	"net/http"
	"storefront/middleware"
	"storefront/models"
	"storefront/services"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type CartController struct {
	carts    *services.CartService
	checkout *services.CheckoutService
	accounts *services.AccountService
}

func NewCartController(carts *services.CartService, checkout *services.CheckoutService, accounts *services.AccountService) *CartController {
	return &CartController{carts: carts, checkout: checkout, accounts: accounts}
}

func parseProductID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid product id"})
		return 0, false
	}
	return id, true
}

func bindQuantity(c *gin.Context) (int, bool) {
	var req models.CartItemRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBind(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
			return 0, false
		}
	}
	return req.Quantity, true
}

// optionalAccount returns the signed-in account or nil.
func (ctrl *CartController) optionalAccount(c *gin.Context) (*models.Account, error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return nil, nil
	}
	return ctrl.accounts.FindByID(c.Request.Context(), userID)
}

// GetCart godoc
// @Summary Get cart
// @Description Current session cart with fresh stock figures and a checkout form prefilled for signed-in buyers
// @Tags Cart
// @Produce json
// @Success 200 {object} models.Response
// @Router /cart [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	cart, err := ctrl.carts.View(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		respondError(c, err, nil)
		return
	}

	view := models.NewCartView(cart, nil)
	account, err := ctrl.optionalAccount(c)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	if account != nil {
		p := account.Profile()
		view.EmailReadOnly = true
		view.Checkout = &models.ContactForm{
			FullName:   p.FullName,
			Email:      p.Email,
			Phone:      p.Phone,
			Street:     p.Street,
			PostalCode: p.PostalCode,
			City:       p.City,
		}
	}

	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Cart retrieved", Data: view})
}

// AddItem godoc
// @Summary Add product to cart
// @Tags Cart
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param request body models.CartItemRequest false "Quantity, defaults to 1"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /cart/items/{id} [post]
func (ctrl *CartController) AddItem(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}
	quantity, ok := bindQuantity(c)
	if !ok {
		return
	}

	cart, warnings, err := ctrl.carts.Add(c.Request.Context(), middleware.SessionID(c), id, quantity)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Cart updated", Data: models.NewCartView(cart, warnings)})
}

// UpdateItem godoc
// @Summary Change quantity of a cart line
// @Description A quantity of zero or less removes the line
// @Tags Cart
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param request body models.CartItemRequest true "Quantity"
// @Success 200 {object} models.Response
// @Router /cart/items/{id} [patch]
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}
	quantity, ok := bindQuantity(c)
	if !ok {
		return
	}

	cart, warnings, err := ctrl.carts.Update(c.Request.Context(), middleware.SessionID(c), id, quantity)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Cart updated", Data: models.NewCartView(cart, warnings)})
}

// RemoveItem godoc
// @Summary Remove product from cart
// @Tags Cart
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Response
// @Router /cart/items/{id} [delete]
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}

	cart, err := ctrl.carts.Remove(c.Request.Context(), middleware.SessionID(c), id)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Cart updated", Data: models.NewCartView(cart, nil)})
}

// Checkout godoc
// @Summary Place order
// @Description Reconciles the cart against live stock, then places the order atomically
// @Tags Cart
// @Accept json
// @Produce json
// @Param request body models.CheckoutRequest true "Checkout form"
// @Success 201 {object} models.Response
// @Failure 409 {object} models.ValidationResponse
// @Failure 422 {object} models.ValidationResponse
// @Router /cart/checkout [post]
func (ctrl *CartController) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	session := middleware.SessionID(c)

	cart, err := ctrl.carts.Get(ctx, session)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	account, err := ctrl.optionalAccount(c)
	if err != nil {
		respondError(c, err, nil)
		return
	}

	result, err := ctrl.checkout.Checkout(ctx, cart, account, req)
	if err != nil {
		var staleErr *services.StaleCartError
		if errors.As(err, &staleErr) {
			if saveErr := ctrl.carts.Save(ctx, session, cart); saveErr != nil {
				respondError(c, saveErr, nil)
				return
			}
		}
		respondError(c, err, cart)
		return
	}

	if err := ctrl.carts.Save(ctx, session, cart); err != nil {
		log.Error().Err(err).Str("public_id", result.Order.PublicID).Msg("order placed but cart not cleared")
	}

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Order placed",
		Data: models.CheckoutResponse{
			PublicID: result.Order.PublicID,
			Total:    result.Order.Total.StringFixed(2),
			Message:  "Thank you! Your order " + result.Order.PublicID + " has been received.",
			Token:    result.Token,
		},
	})
}

package controllers

import (
	"errors"
	"net/http"
	"storefront/models"
	"storefront/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// respondError maps service errors to responses. cart, when given, is echoed
// back so the client can redisplay it next to the messages.
func respondError(c *gin.Context, err error, cart *models.Cart) {
	var data interface{}
	if cart != nil {
		data = models.NewCartView(cart, nil)
	}

	var validationErr *services.ValidationError
	var staleErr *services.StaleCartError
	var directoryErr *services.DirectoryError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, models.ValidationResponse{
			Success: false,
			Message: "Validation failed",
			Errors:  validationErr.Fields,
			Data:    data,
		})
	case errors.As(err, &staleErr):
		c.JSON(http.StatusConflict, models.ValidationResponse{
			Success: false,
			Message: "Your cart has changed. Review it and place the order again.",
			Errors:  []models.FieldError{},
			Data:    models.NewCartView(staleErr.Cart, staleErr.Warnings),
		})
	case errors.As(err, &directoryErr):
		fields := make([]models.FieldError, 0, len(directoryErr.Reasons))
		for _, reason := range directoryErr.Reasons {
			fields = append(fields, models.FieldError{Message: reason})
		}
		c.JSON(http.StatusUnprocessableEntity, models.ValidationResponse{
			Success: false,
			Message: "Account could not be created",
			Errors:  fields,
			Data:    data,
		})
	case errors.Is(err, services.ErrStockConflict):
		c.JSON(http.StatusConflict, models.ValidationResponse{
			Success: false,
			Message: "Insufficient stock. Someone else just bought the last units, please try again.",
			Errors:  []models.FieldError{},
			Data:    data,
		})
	case errors.Is(err, services.ErrProductNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: "Product not found"})
	case errors.Is(err, services.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: "Order not found"})
	case errors.Is(err, services.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: "Account not found"})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Message: "Internal server error",
		})
	}
}

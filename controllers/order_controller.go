package controllers

import (
	"net/http"
	"storefront/middleware"
	"storefront/models"
	"storefront/services"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	orders       *services.OrderService
	defaultLimit int
}

func NewOrderController(orders *services.OrderService, defaultLimit int) *OrderController {
	if defaultLimit < 1 {
		defaultLimit = 10
	}
	return &OrderController{orders: orders, defaultLimit: defaultLimit}
}

// GetReceived godoc
// @Summary Order confirmation
// @Description Look up a placed order by its public id
// @Tags Orders
// @Produce json
// @Param publicId path string true "Public order id, e.g. ORD-1A2B3C4D5E"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /orders/received/{publicId} [get]
func (ctrl *OrderController) GetReceived(c *gin.Context) {
	order, err := ctrl.orders.Received(c.Request.Context(), c.Param("publicId"))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Order retrieved", Data: order})
}

// GetHistory godoc
// @Summary Order history
// @Description Orders of the signed-in account, newest first
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /orders [get]
func (ctrl *OrderController) GetHistory(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: "Unauthorized"})
		return
	}
	orders, err := ctrl.orders.History(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Order history retrieved", Data: orders})
}

// GetAllOrders godoc
// @Summary Get all orders
// @Description Get all orders with pagination (Admin)
// @Tags Admin - Orders
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param search query string false "Search by email or public id"
// @Success 200 {object} models.HATEOASResponse
// @Router /admin/orders [get]
func (ctrl *OrderController) GetAllOrders(c *gin.Context) {
	page, limit := getPaginationParams(c, ctrl.defaultLimit)

	orders, total, err := ctrl.orders.Search(c.Request.Context(), c.Query("search"), page, limit)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, buildPagedResponse(c, "Orders retrieved", orders, page, limit, total))
}

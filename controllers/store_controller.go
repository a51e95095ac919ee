package controllers

import (
	"net/http"
	"storefront/models"
	"storefront/services"

	"github.com/gin-gonic/gin"
)

type StoreController struct {
	catalog *services.CatalogService
}

func NewStoreController(catalog *services.CatalogService) *StoreController {
	return &StoreController{catalog: catalog}
}

func productFilter(c *gin.Context) models.ProductFilter {
	return models.ProductFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
	}
}

// GetProducts godoc
// @Summary List products
// @Description Published products, newest first
// @Tags Store
// @Produce json
// @Param search query string false "Match on name or category"
// @Param category query string false "Exact category"
// @Success 200 {object} models.Response
// @Router /products [get]
func (ctrl *StoreController) GetProducts(c *gin.Context) {
	products, err := ctrl.catalog.List(c.Request.Context(), productFilter(c))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Products retrieved", Data: products})
}

// GetPromotions godoc
// @Summary List promotions
// @Description Published products that have a promotional price
// @Tags Store
// @Produce json
// @Param search query string false "Match on name or category"
// @Param category query string false "Exact category"
// @Success 200 {object} models.Response
// @Router /promotions [get]
func (ctrl *StoreController) GetPromotions(c *gin.Context) {
	products, err := ctrl.catalog.Promotions(c.Request.Context(), productFilter(c))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Promotions retrieved", Data: products})
}

// GetCategories godoc
// @Summary List categories
// @Tags Store
// @Produce json
// @Success 200 {object} models.Response
// @Router /categories [get]
func (ctrl *StoreController) GetCategories(c *gin.Context) {
	categories, err := ctrl.catalog.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Categories retrieved", Data: categories})
}

// GetProduct godoc
// @Summary Product details
// @Tags Store
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [get]
func (ctrl *StoreController) GetProduct(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}
	product, err := ctrl.catalog.Product(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Product retrieved", Data: product})
}

package routes

import (
	"net/http"
	"storefront/controllers"
	"storefront/middleware"
	"storefront/utils"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Controllers struct {
	Auth  *controllers.AuthController
	Cart  *controllers.CartController
	Store *controllers.StoreController
	Order *controllers.OrderController
}

type Options struct {
	Tokens        *utils.TokenManager
	SecureCookies bool
	CartMaxAge    int
}

func SetupRoutes(router *gin.Engine, ctrl Controllers, opts Options) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	router.POST("/auth/register", ctrl.Auth.Register)
	router.POST("/auth/login", ctrl.Auth.Login)

	router.GET("/products", ctrl.Store.GetProducts)
	router.GET("/products/:id", ctrl.Store.GetProduct)
	router.GET("/promotions", ctrl.Store.GetPromotions)
	router.GET("/categories", ctrl.Store.GetCategories)
	router.GET("/orders/received/:publicId", ctrl.Order.GetReceived)

	cart := router.Group("/cart")
	cart.Use(middleware.OptionalAuthMiddleware(opts.Tokens), middleware.CartSession(opts.SecureCookies, opts.CartMaxAge))
	{
		cart.GET("", ctrl.Cart.GetCart)
		cart.POST("/items/:id", ctrl.Cart.AddItem)
		cart.PATCH("/items/:id", ctrl.Cart.UpdateItem)
		cart.DELETE("/items/:id", ctrl.Cart.RemoveItem)
		cart.POST("/checkout", ctrl.Cart.Checkout)
	}

	auth := router.Group("/")
	auth.Use(middleware.AuthMiddleware(opts.Tokens))
	{
		auth.GET("/auth/profile", ctrl.Auth.GetProfile)
		auth.PATCH("/auth/profile", ctrl.Auth.UpdateProfile)
		auth.GET("/orders", ctrl.Order.GetHistory)
	}

	admin := router.Group("/admin")
	admin.Use(middleware.AuthMiddleware(opts.Tokens), middleware.AdminMiddleware())
	{
		admin.GET("/orders", ctrl.Order.GetAllOrders)
	}
}

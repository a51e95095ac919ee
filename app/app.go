package app

import (
	"context"
	"fmt"
	"storefront/config"
	"storefront/controllers"
	"storefront/libs"
	"storefront/middleware"
	"storefront/models"
	"storefront/repositories"
	"storefront/routes"
	"storefront/services"
	"storefront/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type productRepository interface {
	services.ProductLookup
	services.CatalogRepository
}

type backend struct {
	products productRepository
	orders   services.OrderRepository
	users    services.AccountRepository
	tx       services.TxRunner
}

// App is the assembled HTTP application together with the resources it
// has to release.
type App struct {
	Router  *gin.Engine
	closers []func()
}

func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	a := &App{}

	be, err := a.openBackend(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	redisClient := config.ConnectRedis(ctx, cfg)
	var carts services.CartStore
	if redisClient != nil {
		a.closers = append(a.closers, func() { _ = redisClient.Close() })
		carts = repositories.NewRedisCartStore(redisClient, cfg.CartTTL)
	} else {
		carts = repositories.NewMemoryCartStore(cfg.CartTTL)
	}

	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)
	accounts := services.NewAccountService(be.users, tokens)
	catalog := services.NewCatalogService(be.products, redisClient)
	cartService := services.NewCartService(carts, be.products)
	orders := services.NewOrderService(be.orders)

	opts := []services.CheckoutOption{services.WithProductCache(catalog)}
	if mailer := libs.NewMailer(libs.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.SMTPFrom,
	}); mailer != nil {
		opts = append(opts, services.WithNotifier(mailer))
	} else {
		log.Info().Msg("SMTP not configured, order confirmation e-mails disabled")
	}
	checkout := services.NewCheckoutService(be.tx, be.products, accounts, opts...)

	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORSMiddleware(cfg.OriginURL))
	routes.SetupRoutes(router, routes.Controllers{
		Auth:  controllers.NewAuthController(accounts),
		Cart:  controllers.NewCartController(cartService, checkout, accounts),
		Store: controllers.NewStoreController(catalog),
		Order: controllers.NewOrderController(orders, cfg.AdminPageSize),
	}, routes.Options{
		Tokens:        tokens,
		SecureCookies: cfg.IsProduction(),
		CartMaxAge:    int(cfg.CartTTL.Seconds()),
	})

	a.Router = router
	return a, nil
}

func (a *App) openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	if cfg.StoreDriver == "memory" {
		log.Warn().Msg("using in-memory store, data is lost on restart")
		mem := repositories.NewMemoryStore(demoProducts()...)
		return &backend{products: mem.Products(), orders: mem.Orders(), users: mem.Users(), tx: mem}, nil
	}

	dsn := cfg.DSN()
	if err := config.RunMigrations(dsn, cfg.MigrationsPath); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	pool, err := config.ConnectDB(ctx, dsn)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, pool.Close)

	store := repositories.NewStore(pool)
	return &backend{products: store.Products(), orders: store.Orders(), users: store.Users(), tx: store}, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func demoProducts() []models.Product {
	promo := func(v string) decimal.NullDecimal {
		return decimal.NewNullDecimal(decimal.RequireFromString(v))
	}
	return []models.Product{
		{Name: "Espresso Beans 1kg", Category: "Coffee", Price: decimal.RequireFromString("89.00"), PromoPrice: promo("79.00"), Stock: 25, Published: true},
		{Name: "Filter Coffee 500g", Category: "Coffee", Price: decimal.RequireFromString("54.00"), Stock: 40, Published: true},
		{Name: "Ceramic Mug", Category: "Accessories", Price: decimal.RequireFromString("35.00"), Stock: 12, Published: true},
		{Name: "Pour Over Kit", Category: "Accessories", Price: decimal.RequireFromString("199.00"), PromoPrice: promo("169.00"), Stock: 5, Published: true},
		{Name: "Matcha Tin 100g", Category: "Tea", Price: decimal.RequireFromString("120.00"), Stock: 0, Published: true},
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/clothify/shop-api/internal/config"
	"github.com/clothify/shop-api/internal/handler"
	"github.com/clothify/shop-api/internal/repository"
	"github.com/clothify/shop-api/internal/service"
	"github.com/clothify/shop-api/internal/validator"
	"github.com/clothify/shop-api/pkg/database"
)

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize zerolog based on configuration
	initLogger(cfg)

	// Create context for startup
	ctx := context.Background()

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Initialize Fiber with production-ready configuration
	app := fiber.New(fiber.Config{
		AppName:      "Clothify Shop API",
		ReadTimeout:  30 * time.Second,  // Max time to read request
		WriteTimeout: 30 * time.Second,  // Max time to write response
		IdleTimeout:  120 * time.Second, // Max time for keep-alive connections
		BodyLimit:    1 * 1024 * 1024,   // 1MB body limit (explicit, prevents large payloads)
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New()) // Adds X-Request-ID header to all requests
	app.Use(logger.New())

	// Initialize validator with custom rules
	validate := validator.New()

	// Pricing policy shared by cart summaries and checkout
	policy := cfg.Pricing.Policy()

	// Repositories
	productRepo := repository.NewProductRepository(pool)
	cartRepo := repository.NewCartRepository(pool)
	couponRepo := repository.NewCouponRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)

	// Services (layered architecture)
	catalogService := service.NewCatalogService(productRepo)
	cartService := service.NewCartService(cartRepo, productRepo, policy)
	couponService := service.NewCouponService(couponRepo)
	orderService := service.NewOrderService(pool, orderRepo, cartRepo, couponRepo, productRepo, policy)

	// Handlers
	catalogHandler := handler.NewCatalogHandler(catalogService, validate)
	cartHandler := handler.NewCartHandler(cartService, validate)
	couponHandler := handler.NewCouponHandler(couponService, validate)
	orderHandler := handler.NewOrderHandler(orderService, validate)

	// Health handler
	healthHandler := handler.NewHealthHandler(pool)
	app.Get("/health", healthHandler.Check)

	// Catalog routes
	app.Get("/api/products", catalogHandler.ListProducts)
	app.Post("/api/products", catalogHandler.CreateProduct)
	app.Get("/api/products/:id", catalogHandler.GetProduct)
	app.Put("/api/products/:id", catalogHandler.UpdateProduct)
	app.Delete("/api/products/:id", catalogHandler.DeleteProduct)
	app.Post("/api/products/:id/variants", catalogHandler.CreateVariant)
	app.Put("/api/variants/:variantId/inventory", catalogHandler.SetInventory)
	app.Get("/api/categories", catalogHandler.ListCategories)
	app.Post("/api/categories", catalogHandler.CreateCategory)
	app.Put("/api/categories/:id", catalogHandler.UpdateCategory)
	app.Delete("/api/categories/:id", catalogHandler.DeleteCategory)
	app.Get("/api/colors", catalogHandler.ListColors)
	app.Post("/api/colors", catalogHandler.CreateColor)
	app.Get("/api/sizes", catalogHandler.ListSizes)
	app.Post("/api/sizes", catalogHandler.CreateSize)

	// Cart routes
	app.Get("/api/carts/:userId", cartHandler.GetCart)
	app.Get("/api/carts/:userId/summary", cartHandler.GetSummary)
	app.Post("/api/carts/:userId/items", cartHandler.AddItem)
	app.Put("/api/carts/:userId/items/:itemId", cartHandler.UpdateItem)
	app.Delete("/api/carts/:userId/items/:itemId", cartHandler.RemoveItem)
	app.Delete("/api/carts/:userId", cartHandler.ClearCart)

	// Coupon routes
	app.Get("/api/coupons", couponHandler.ListCoupons)
	app.Get("/api/coupons/available", couponHandler.AvailableCoupons)
	app.Post("/api/coupons", couponHandler.CreateCoupon)
	app.Get("/api/coupons/:id", couponHandler.GetCoupon)
	app.Put("/api/coupons/:id", couponHandler.UpdateCoupon)
	app.Delete("/api/coupons/:id", couponHandler.DeleteCoupon)

	// Order routes
	app.Post("/api/orders/:userId", orderHandler.Checkout)
	app.Get("/api/orders/user/:userId", orderHandler.ListOrders)
	app.Get("/api/orders/:userId/:orderId", orderHandler.GetOrder)
	app.Patch("/api/orders/:userId/:orderId/cancel", orderHandler.CancelOrder)
	app.Patch("/api/orders/:orderId/status", orderHandler.UpdateOrderStatus)

	// Start server with graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Shutdown server (waits for in-flight requests)
	log.Info().Msg("waiting for in-flight requests to complete...")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Close database pool AFTER server shutdown (even if shutdown timed out)
	log.Info().Msg("closing database connections...")
	pool.Close()
	log.Info().Msg("database connections closed")
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		// JSON output for production
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}

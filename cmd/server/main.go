package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	analyticsapp "github.com/m-r-khan/furnicraft5-sub000/internal/application/analytics"
	orderapp "github.com/m-r-khan/furnicraft5-sub000/internal/application/order"
	promoapp "github.com/m-r-khan/furnicraft5-sub000/internal/application/promo"
	returnsapp "github.com/m-r-khan/furnicraft5-sub000/internal/application/returns"
	stockapp "github.com/m-r-khan/furnicraft5-sub000/internal/application/stock"
	"github.com/m-r-khan/furnicraft5-sub000/internal/domain/analytics"
	domaincatalog "github.com/m-r-khan/furnicraft5-sub000/internal/domain/catalog"
	"github.com/m-r-khan/furnicraft5-sub000/internal/infrastructure/catalog"
	"github.com/m-r-khan/furnicraft5-sub000/internal/infrastructure/config"
	"github.com/m-r-khan/furnicraft5-sub000/internal/infrastructure/event"
	"github.com/m-r-khan/furnicraft5-sub000/internal/infrastructure/kv"
	"github.com/m-r-khan/furnicraft5-sub000/internal/infrastructure/logger"
	"github.com/m-r-khan/furnicraft5-sub000/internal/infrastructure/persistence"
	"github.com/m-r-khan/furnicraft5-sub000/internal/interfaces/http/handler"
	"github.com/m-r-khan/furnicraft5-sub000/internal/interfaces/http/middleware"
	"github.com/m-r-khan/furnicraft5-sub000/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Furnicraft core",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("store", cfg.Store.Driver),
		zap.String("port", cfg.App.Port),
	)

	store, viewCounter, err := buildStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing store", zap.Error(err))
		}
	}()

	orderRepo := persistence.NewOrderRepository(store)
	stockRepo := persistence.NewStockRepository(store)
	returnRepo := persistence.NewReturnRepository(store)
	couponRepo := persistence.NewCouponRepository(store)

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(event.NewAuditLogHandler(log))
	bus.Subscribe(event.NewLowStockAlertHandler(log))

	// The product catalog is owned by the storefront; this core only needs
	// the resolved product facts. Until the storefront feed is wired in,
	// non-production environments run against a fixture catalog.
	catalogProvider := catalog.NewInMemoryProvider()
	if cfg.App.Env != "production" {
		seedDevCatalog(catalogProvider, log)
	}
	if viewCounter == nil {
		viewCounter = catalogProvider
	}

	orderService := orderapp.NewService(orderRepo, stockRepo, couponRepo, catalogProvider, bus, log,
		orderapp.CheckoutPolicy{
			TaxRate:               decimal.NewFromFloat(cfg.Checkout.TaxRate),
			ShippingFee:           decimal.NewFromFloat(cfg.Checkout.ShippingFee),
			FreeShippingThreshold: decimal.NewFromFloat(cfg.Checkout.FreeShippingThreshold),
			LowStockThreshold:     cfg.Checkout.LowStockThreshold,
		})
	returnService := returnsapp.NewService(returnRepo, orderRepo, stockRepo, bus, log)
	stockService := stockapp.NewService(stockRepo, bus, log)
	promoService := promoapp.NewService(couponRepo, log)
	analyticsService := analyticsapp.NewService(orderRepo, returnRepo, stockRepo, viewCounter,
		analytics.Options{
			TaxRate:     decimal.NewFromFloat(cfg.Analytics.TaxRate),
			TrendMonths: cfg.Analytics.TrendMonths,
			TopN:        cfg.Analytics.TopN,
		}, log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORSWithConfig(corsConfig),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	r := router.NewRouter(engine)
	r.Register(handler.NewOrderHandler(orderService)).
		Register(handler.NewReturnHandler(returnService)).
		Register(handler.NewStockHandler(stockService)).
		Register(handler.NewPromoHandler(promoService)).
		Register(handler.NewAnalyticsHandler(analyticsService)).
		Register(handler.NewSystemHandler(cfg.App.Name, version))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// seedDevCatalog loads a small fixture catalog so checkout works out of the
// box in development
func seedDevCatalog(provider *catalog.InMemoryProvider, log *zap.Logger) {
	fixtures := []domaincatalog.Product{
		{
			ID:       uuid.MustParse("4f0e3f1c-9c1a-4a5e-8d87-1a2b3c4d5e6f"),
			Name:     "Walnut Dining Chair",
			Category: "seating",
			Price:    decimal.NewFromInt(2500),
			UnitCost: decimal.NewFromInt(1400),
		},
		{
			ID:       uuid.MustParse("7a8b9c0d-1e2f-4a3b-9c4d-5e6f7a8b9c0d"),
			Name:     "Oak Dining Table",
			Category: "tables",
			Price:    decimal.NewFromInt(12000),
			UnitCost: decimal.NewFromInt(7000),
		},
		{
			ID:       uuid.MustParse("2c3d4e5f-6a7b-4c8d-9e0f-1a2b3c4d5e6f"),
			Name:     "Brass Floor Lamp",
			Category: "lighting",
			Price:    decimal.NewFromInt(1800),
			UnitCost: decimal.NewFromInt(900),
		},
		{
			ID:       uuid.MustParse("9e8d7c6b-5a4f-4e3d-8c2b-1a0f9e8d7c6b"),
			Name:     "Pine Bookshelf",
			Category: "storage",
			Price:    decimal.NewFromInt(3200),
			UnitCost: decimal.NewFromInt(1700),
		},
	}
	for _, p := range fixtures {
		provider.Add(p)
	}
	log.Info("Development catalog seeded", zap.Int("products", len(fixtures)))
}

// buildStore creates the durable key-value backend selected by config.
// The Redis driver also supplies a Redis-backed product view counter; all
// other drivers fall back to the in-process counter.
func buildStore(cfg *config.Config, log *zap.Logger) (kv.Store, domaincatalog.ViewCounter, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		store, err := kv.NewSQLiteStore(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info("SQLite store ready", zap.String("path", cfg.Store.SQLitePath))
		return store, nil, nil

	case "postgres":
		store, err := kv.NewPostgresStore(cfg.Database.DSN())
		if err != nil {
			return nil, nil, err
		}
		log.Info("PostgreSQL store ready", zap.String("host", cfg.Database.Host))
		return store, nil, nil

	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		store, err := kv.NewRedisStore(ctx, kv.RedisOptions{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Info("Redis store ready", zap.String("addr", cfg.Redis.Addr()))
		return store, catalog.NewRedisViewCounter(store.Client(), "furnicraft:views"), nil

	default:
		log.Warn("Using in-memory store; data will not survive restarts")
		return kv.NewMemoryStore(), nil, nil
	}
}

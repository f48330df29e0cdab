package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sanjaypunani/order-managment-sub001/config"
	httpHandler "github.com/sanjaypunani/order-managment-sub001/internal/adapter/http/handler"
	pgStorage "github.com/sanjaypunani/order-managment-sub001/internal/adapter/storage/postgres"
	redisStorage "github.com/sanjaypunani/order-managment-sub001/internal/adapter/storage/redis"
	"github.com/sanjaypunani/order-managment-sub001/internal/core/ports"
	"github.com/sanjaypunani/order-managment-sub001/internal/service"
	"github.com/sanjaypunani/order-managment-sub001/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Shree Hari Mart back office")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	customerRepo := pgStorage.NewCustomerRepo(pool)
	productRepo := pgStorage.NewProductRepo(pool)
	orderRepo := pgStorage.NewOrderRepo(pool)
	walletTxnRepo := pgStorage.NewWalletTransactionRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	statsCache := redisStorage.NewStatsCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize business services
	walletSvc := service.NewWalletService(customerRepo, walletTxnRepo, transactor, log)
	customerSvc := service.NewCustomerService(customerRepo, log)
	productSvc := service.NewProductService(productRepo, log)
	orderSvc := service.NewOrderService(orderRepo, customerRepo, walletSvc, log)
	dashboardSvc := service.NewDashboardService(orderRepo, walletTxnRepo, customerRepo, statsCache, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		CustomerSvc:    customerSvc,
		ProductSvc:     productSvc,
		OrderSvc:       orderSvc,
		WalletSvc:      walletSvc,
		DashboardSvc:   dashboardSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

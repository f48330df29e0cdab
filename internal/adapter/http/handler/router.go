package handler

import (
	"github.com/sanjaypunani/order-managment-sub001/internal/adapter/http/middleware"
	redisStore "github.com/sanjaypunani/order-managment-sub001/internal/adapter/storage/redis"
	"github.com/sanjaypunani/order-managment-sub001/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	CustomerSvc    ports.CustomerService
	ProductSvc     ports.ProductService
	OrderSvc       ports.OrderService
	WalletSvc      ports.WalletService
	DashboardSvc   ports.DashboardService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	customerHandler := NewCustomerHandler(deps.CustomerSvc)
	customers := v1.Group("/customers")
	{
		customers.POST("", rl("customers"), customerHandler.Create)
		customers.GET("", rl("customers"), customerHandler.List)
		customers.GET("/mobile/:mobile", rl("customers"), customerHandler.GetByMobile)
		customers.GET("/:id", rl("customers"), customerHandler.GetByID)
		customers.PUT("/:id", rl("customers"), customerHandler.Update)
		customers.DELETE("/:id", rl("customers"), customerHandler.Delete)
	}

	productHandler := NewProductHandler(deps.ProductSvc)
	products := v1.Group("/products")
	{
		products.POST("", rl("catalog"), productHandler.Create)
		products.GET("", rl("catalog"), productHandler.List)
		products.POST("/bulk-update", rl("catalog"), productHandler.BulkUpdate)
		products.POST("/categories/:category/toggle", rl("catalog"), productHandler.ToggleCategory)
		products.GET("/:id", rl("catalog"), productHandler.GetByID)
		products.PUT("/:id", rl("catalog"), productHandler.Update)
		products.DELETE("/:id", rl("catalog"), productHandler.Delete)
	}

	orderHandler := NewOrderHandler(deps.OrderSvc)
	orders := v1.Group("/orders")
	{
		orders.POST("", rl("orders"), orderHandler.Create)
		orders.GET("", rl("orders"), orderHandler.List)
		orders.GET("/:id", rl("orders"), orderHandler.GetByID)
		orders.PUT("/:id", rl("orders"), orderHandler.Update)
		orders.PATCH("/:id/status", rl("orders"), orderHandler.UpdateStatus)
		orders.DELETE("/:id", rl("orders"), orderHandler.Delete)
	}

	walletHandler := NewWalletHandler(deps.WalletSvc)
	wallet := v1.Group("/wallet")
	{
		wallet.POST("/add", rl("wallet_ops"), walletHandler.AddFunds)
		wallet.POST("/deduct", rl("wallet_ops"), walletHandler.DeductFunds)
		wallet.GET("", rl("wallet_read"), walletHandler.GetWallet)
		wallet.GET("/orders/:orderId", rl("wallet_read"), walletHandler.GetOrderTransactions)
		wallet.GET("/transactions/:transactionId", rl("wallet_read"), walletHandler.GetTransaction)
		wallet.GET("/:customerId/reconcile", rl("wallet_read"), walletHandler.Reconcile)
	}

	dashboardHandler := NewDashboardHandler(deps.DashboardSvc)
	dashboard := v1.Group("/dashboard")
	{
		dashboard.GET("/stats", rl("dashboard"), dashboardHandler.GetStats)
	}

	return r
}

// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"stitchstock/internal/domain/auth"
	"stitchstock/internal/domain/catalogs/material"
	"stitchstock/internal/domain/catalogs/product"
	"stitchstock/internal/domain/orders"
	"stitchstock/internal/domain/production"
	"stitchstock/internal/domain/reports"
	"stitchstock/internal/infrastructure/http/v1/handlers"
	"stitchstock/internal/infrastructure/http/v1/middleware"
	"stitchstock/internal/infrastructure/storage/postgres"
	"stitchstock/pkg/logger"
)

// RouterConfig holds everything the router wires together.
type RouterConfig struct {
	Logger  *logger.Logger
	Pool    *postgres.Pool
	Version string

	JWTValidator middleware.JWTValidator

	AuthService       *auth.Service
	MaterialService   *material.Service
	ProductService    *product.Service
	OrderService      *orders.Service
	ProductionService *production.Recorder
	ReportsService    *reports.Service
	AuditService      *postgres.AuditService
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	base := handlers.NewBaseHandler()

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	authHandler := handlers.NewAuthHandler(base, cfg.AuthService)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/auth/login", authHandler.Login)
		v1.POST("/auth/register", authHandler.Register)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		protected.GET("/auth/me", authHandler.Me)

		materialHandler := handlers.NewMaterialHandler(base, cfg.MaterialService, cfg.AuditService)
		materials := protected.Group("/materials")
		{
			materials.POST("", materialHandler.Create)
			materials.GET("", materialHandler.List)
			materials.GET("/:id", materialHandler.Get)
			materials.PUT("/:id", materialHandler.Update)
			materials.DELETE("/:id", materialHandler.Delete)
			materials.POST("/:id/batches", materialHandler.ReceiveBatch)
		}

		productHandler := handlers.NewProductHandler(base, cfg.ProductService, cfg.AuditService)
		products := protected.Group("/products")
		{
			products.POST("", productHandler.Create)
			products.GET("", productHandler.List)
			products.GET("/:id", productHandler.Get)
			products.PUT("/:id", productHandler.Update)
			products.PATCH("/:id/wastage", productHandler.UpdateWastage)
			products.DELETE("/:id", productHandler.Delete)
		}

		orderHandler := handlers.NewOrderHandler(base, cfg.OrderService, cfg.AuditService)
		productionHandler := handlers.NewProductionHandler(base, cfg.ProductionService, cfg.AuditService)
		ordersGroup := protected.Group("/orders")
		{
			ordersGroup.POST("", orderHandler.Create)
			ordersGroup.GET("", orderHandler.List)
			ordersGroup.GET("/:id", orderHandler.Get)
			ordersGroup.PATCH("/:id/status", orderHandler.UpdateStatus)
			ordersGroup.DELETE("/:id", orderHandler.Delete)
			ordersGroup.GET("/:id/usage", orderHandler.Usage)
		}

		productionGroup := protected.Group("/production")
		{
			productionGroup.POST("", productionHandler.Record)
			productionGroup.POST("/extra-wastage", productionHandler.RecordExtraWastage)
			productionGroup.GET("", productionHandler.List)
			productionGroup.GET("/:id", productionHandler.Get)
		}

		reportsHandler := handlers.NewReportsHandler(base, cfg.ReportsService)
		reportsGroup := protected.Group("/reports")
		{
			reportsGroup.GET("/materials", reportsHandler.MaterialTotals)
			reportsGroup.GET("/stock", reportsHandler.StockSnapshot)
			reportsGroup.GET("/orders/:id/summary", reportsHandler.OrderSummary)
		}

		// Audit trail is admin-only.
		auditHandler := handlers.NewAuditHandler(base, cfg.AuditService)
		admin := protected.Group("/audit")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/:entityType/:id", auditHandler.History)
		}
	}

	return router
}

// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"quotero/internal/domain/auth"
	"quotero/internal/domain/catalogs/customer"
	"quotero/internal/domain/invoice"
	"quotero/internal/domain/quotation"
	"quotero/internal/domain/reports"
	"quotero/internal/infrastructure/http/v1/handlers"
	"quotero/internal/infrastructure/http/v1/middleware"
	"quotero/internal/infrastructure/storage/postgres"
	"quotero/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection used by health checks.
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Domain services
	AuthService      *auth.Service
	QuotationService *quotation.Service
	InvoiceService   *invoice.Service
	CustomerService  *customer.Service
	ReportsService   *reports.Service
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

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	baseHandler := handlers.NewBaseHandler()

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Auth routes: public endpoints plus JWT-protected ones
		if cfg.AuthService != nil {
			publicAuth := v1.Group("/auth")
			protectedAuth := v1.Group("/auth")
			protectedAuth.Use(middleware.Auth(cfg.JWTValidator))
			protectedAuth.Use(middleware.UserContext())

			authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)
			authHandler.RegisterRoutes(publicAuth, protectedAuth)
		}

		// Protected endpoints
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator)) // 1. Validate JWT
		protected.Use(middleware.UserContext())          // 2. Add UserID to context for domain layer

		if cfg.CustomerService != nil {
			handlers.NewCustomerHandler(baseHandler, cfg.CustomerService).RegisterRoutes(protected)
		}
		if cfg.QuotationService != nil {
			handlers.NewQuotationHandler(baseHandler, cfg.QuotationService).RegisterRoutes(protected)
		}
		if cfg.InvoiceService != nil {
			handlers.NewInvoiceHandler(baseHandler, cfg.InvoiceService).RegisterRoutes(protected)
		}
		if cfg.ReportsService != nil {
			handlers.NewReportsHandler(baseHandler, cfg.ReportsService).RegisterRoutes(protected)
		}
	}

	return router
}

package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"loyalty-platform/internal/audit"
	"loyalty-platform/internal/handler"
	mid "loyalty-platform/internal/middleware"
	"loyalty-platform/internal/notify"
	"loyalty-platform/internal/order"
	"loyalty-platform/internal/store/gorms"
	"loyalty-platform/pkg/config"
	"loyalty-platform/pkg/database"
	"loyalty-platform/pkg/jwtutil"
	"loyalty-platform/pkg/logger"
	"loyalty-platform/pkg/oauth"
	"loyalty-platform/prometheus"
)

func main() {
	// Load .env file; missing is fine, env vars may be set by the
	// deployment environment
	_ = godotenv.Load()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting loyalty-platform",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	if err := database.InitDB(appConfig); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Wire the order engine and its collaborators
	hub := notify.NewHub(log)
	auditor := audit.NewRecorder(database.GetDB(), log)
	engine := order.NewEngine(
		gorms.NewStore(database.GetDB()),
		hub,
		auditor,
		order.Config{
			EarnRatePercent:     appConfig.Loyalty.EarnRatePercent,
			KioskPerProductEarn: appConfig.Loyalty.KioskPerProductEarn,
		},
		log,
	)
	oauthClient := oauth.NewClient(&appConfig.OAuth, log)
	handler.Init(engine, hub, oauthClient, auditor, appConfig)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(prometheus.MetricsMiddleware())
	e.Use(logger.Middleware())

	// Metrics and health endpoints
	e.GET("/metrics", prometheus.HandlerFunc())
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth routes
	authAPI := e.Group("/api/auth")
	authAPI.POST("/admin/login", handler.AdminLogin)
	authAPI.POST("/business/login", handler.BusinessLogin)
	authAPI.POST("/customer/login", handler.CustomerOAuthLogin)

	// Admin routes
	adminAPI := e.Group("/api/admin", mid.AuthMiddleware, mid.RequireRole(jwtutil.RoleAdmin))
	adminAPI.GET("/businesses", handler.ListBusinesses)
	adminAPI.POST("/businesses", handler.CreateBusiness)
	adminAPI.PUT("/businesses/:id", handler.UpdateBusiness)
	adminAPI.PATCH("/businesses/:id/active", handler.SetBusinessActive)
	adminAPI.GET("/collection-sets", handler.ListCollectionSets)
	adminAPI.POST("/collection-sets", handler.CreateCollectionSet)
	adminAPI.PUT("/collection-sets/:id", handler.UpdateCollectionSet)
	adminAPI.DELETE("/collection-sets/:id", handler.DeleteCollectionSet)
	adminAPI.GET("/collections", handler.ListGlobalCollections)
	adminAPI.POST("/collections", handler.CreateGlobalCollection)
	adminAPI.PUT("/collections/:id", handler.UpdateGlobalCollection)
	adminAPI.GET("/point-products", handler.ListGlobalPointProducts)
	adminAPI.POST("/point-products", handler.CreateGlobalPointProduct)
	adminAPI.PUT("/point-products/:id", handler.UpdateGlobalPointProduct)
	adminAPI.GET("/shipments", handler.ListShipments)
	adminAPI.POST("/shipments", handler.CreateShipment)
	adminAPI.PATCH("/shipments/:id/status", handler.UpdateShipmentStatus)
	adminAPI.GET("/stats", handler.SystemStats)
	adminAPI.GET("/logs", handler.ListAuditLogs)

	// Business routes
	businessAPI := e.Group("/api/business", mid.AuthMiddleware, mid.RequireRole(jwtutil.RoleBusiness))
	businessAPI.GET("/profile", handler.GetBusinessProfile)
	businessAPI.PUT("/profile", handler.UpdateBusinessProfile)
	businessAPI.GET("/categories", handler.ListCategories)
	businessAPI.POST("/categories", handler.CreateCategory)
	businessAPI.PUT("/categories/:id", handler.UpdateCategory)
	businessAPI.DELETE("/categories/:id", handler.DeleteCategory)
	businessAPI.GET("/collections", handler.ListCollectionsForBusiness)
	businessAPI.GET("/products", handler.ListCurrencyProducts)
	businessAPI.POST("/products", handler.CreateCurrencyProduct)
	businessAPI.PUT("/products/:id", handler.UpdateCurrencyProduct)
	businessAPI.PATCH("/products/:id/stock", handler.UpdateCurrencyProductStock)
	businessAPI.DELETE("/products/:id", handler.DeleteCurrencyProduct)
	businessAPI.GET("/point-products", handler.ListPointProducts)
	businessAPI.GET("/orders", handler.ListOrders)
	businessAPI.PATCH("/orders/:kind/:id/status", handler.UpdateOrderStatus)
	businessAPI.GET("/customers", handler.ListCustomers)
	businessAPI.GET("/customers/:id", handler.GetCustomer)
	businessAPI.GET("/shipments", handler.ListBusinessShipments)
	businessAPI.POST("/shipments/:id/confirm", handler.ConfirmShipmentDelivery)
	businessAPI.POST("/restock", handler.CreateRestockRequest)
	businessAPI.GET("/analytics", handler.BusinessAnalytics)
	businessAPI.GET("/logs", handler.ListBusinessLogs)
	businessAPI.POST("/kiosk/qr", handler.GenerateKioskQR)
	businessAPI.GET("/events", handler.BusinessEvents)

	// Mobile routes
	mobileAPI := e.Group("/api/mobile", mid.AuthMiddleware, mid.RequireRole(jwtutil.RoleUser))
	mobileAPI.GET("/profile", handler.GetCustomerProfile)
	mobileAPI.PUT("/profile", handler.UpdateCustomerProfile)
	mobileAPI.GET("/businesses", handler.ListActiveBusinesses)
	mobileAPI.GET("/businesses/:id/menu", handler.GetBusinessMenu)
	mobileAPI.GET("/businesses/:id/ledger", handler.GetCustomerLedger)
	mobileAPI.POST("/orders", handler.CreateMobileOrder)
	mobileAPI.POST("/point-orders", handler.CreateMobilePointOrder)
	mobileAPI.GET("/orders/history", handler.OrderHistory)
	mobileAPI.GET("/ledgers", handler.ListCustomerLedgers)
	mobileAPI.GET("/progress", handler.ListCustomerProgress)
	mobileAPI.POST("/kiosk-sessions/:code/link", handler.LinkKioskSession)

	// Kiosk routes; the device holds no credential, the session code is its
	// capability
	kioskAPI := e.Group("/api/kiosk")
	kioskAPI.GET("/businesses", handler.ListActiveBusinesses)
	kioskAPI.GET("/businesses/:id/menu", handler.GetBusinessMenu)
	kioskAPI.GET("/sessions/:code", handler.GetKioskSession)
	kioskAPI.POST("/sessions/:code/close", handler.CloseKioskSession)
	kioskAPI.GET("/sessions/:code/events", handler.KioskSessionEvents)
	kioskAPI.POST("/orders", handler.CreateKioskOrder)
	kioskAPI.POST("/point-orders", handler.CreateKioskPointOrder)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}

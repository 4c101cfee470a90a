package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"paygate_app_echo/internal/gateway"
	"paygate_app_echo/internal/handlers"
	authMiddleware "paygate_app_echo/internal/middleware"
	"paygate_app_echo/internal/services"
	"paygate_app_echo/internal/store"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Initialize Firebase (admin API auth)
	credPath := os.Getenv("FIREBASE_CREDENTIALS_PATH")
	if credPath == "" {
		credPath = "./firebase-service-account.json"
	}

	authClient, err := services.InitFirebase(credPath)
	if err != nil {
		log.Printf("Warning: Firebase initialization failed: %v", err)
		log.Println("Admin API will not work until valid credentials are provided")
	}

	// Initialize Database
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := services.InitDB(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migration
	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Initialize Redis (notices, settings cache, reconcile locks, carts)
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	cache, err := services.NewRedisCache(redisURL)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer cache.Close()

	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		appURL = "http://localhost:8080"
	}

	// Wire the payment core
	currencies := gateway.NewCurrencyRegistry()
	idpay := gateway.NewIDPay(gateway.NewClient())
	orderStore := store.NewGormOrderStore(db, cache.Client())
	notices := services.NewRedisNoticer(cache)
	locker := services.NewRedisOrderLocker(cache)
	settings := services.NewSettingsService(db, cache)
	email := services.NewEmailService()

	paymentService := services.NewPaymentService(orderStore, idpay, currencies, notices, appURL)
	reconcileService := services.NewReconcileService(orderStore, idpay, currencies, notices, locker, appURL)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = authMiddleware.CustomErrorHandler

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authClient)
	checkoutHandler := handlers.NewCheckoutHandler(db, paymentService, settings, notices)
	returnHandler := handlers.NewReturnHandler(db, reconcileService, settings, email)
	adminHandler := handlers.NewAdminHandler(settings)

	// Checkout flow
	e.GET("/checkout/gateway", checkoutHandler.GatewayInfo)
	e.POST("/checkout", checkoutHandler.CreateOrder)
	e.GET("/orders/:uuid/pay", checkoutHandler.Pay)
	e.GET("/orders/:uuid/received", checkoutHandler.OrderStatus)

	// Gateway return callback (payer's browser posts back here)
	e.POST("/gateway/idpay/return", returnHandler.HandleReturn)

	// Admin authentication
	e.GET("/auth/config", authHandler.LoginConfig)
	e.POST("/auth/login", authHandler.HandleLogin)
	e.POST("/auth/logout", authHandler.HandleLogout)

	// Admin API
	admin := e.Group("/admin")
	admin.Use(authMiddleware.RequireAuth(authClient))
	admin.GET("/settings", adminHandler.GetSettings)
	admin.PUT("/settings", adminHandler.UpdateSettings)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	e.Logger.Fatal(e.Start(":" + port))
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"travel-affiliate/internal/auth"
	"travel-affiliate/internal/config"
	"travel-affiliate/internal/database"
	"travel-affiliate/internal/handlers"
	"travel-affiliate/internal/jobs"
	"travel-affiliate/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()

	// Initialize services
	authService := services.NewAuthService(db)
	settingsService := services.NewSettingsService(db)
	affiliateService := services.NewAffiliateService(db)
	conversionService := services.NewConversionService(db, settingsService)
	commissionService := services.NewCommissionService(db)
	payoutService := services.NewPayoutService(db, settingsService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	affiliateHandler := handlers.NewAffiliateHandler(affiliateService, commissionService)
	payoutHandler := handlers.NewPayoutHandler(payoutService, affiliateService)
	adminHandler := handlers.NewAdminHandler(commissionService, payoutService, affiliateService, settingsService)
	eventHandler := handlers.NewEventHandler(conversionService)

	// Start auto-approval job
	approverJob := jobs.NewCommissionApprover(commissionService, settingsService, cfg.Scheduler.AutoApprovalInterval)
	go approverJob.Start()
	log.Println("Commission auto-approval job started")

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Referral link click tracking (public)
	router.GET("/r/:code", affiliateHandler.TrackClick)

	// Authentication routes (public)
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	// Public referral code validation
	router.GET("/api/referral/validate/:code", affiliateHandler.ValidateCode)

	// Booking pipeline events
	router.POST("/api/events/booking-confirmed",
		auth.EventTokenMiddleware(cfg.App.EventTokenSecret), eventHandler.BookingConfirmed)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// Affiliate endpoints
		api.POST("/affiliate/register", affiliateHandler.Register)
		api.GET("/affiliate/me", affiliateHandler.GetMe)
		api.GET("/affiliate/balance", payoutHandler.GetBalance)
		api.GET("/affiliate/commissions", affiliateHandler.GetCommissions)

		// Payout endpoints
		api.POST("/payouts", payoutHandler.RequestPayout)
		api.GET("/payouts", payoutHandler.GetPayouts)
		api.POST("/payouts/:id/cancel", payoutHandler.CancelPayout)
	}

	// Admin routes (protected + admin only)
	admin := router.Group("/api/admin")
	admin.Use(auth.AuthMiddleware())
	admin.Use(auth.AdminMiddleware())
	{
		admin.POST("/commissions/:id/approve", adminHandler.ApproveCommission)
		admin.POST("/commissions/:id/reject", adminHandler.RejectCommission)
		admin.POST("/payouts/:id/approve", adminHandler.ApprovePayout)
		admin.POST("/payouts/:id/reject", adminHandler.RejectPayout)
		admin.POST("/payouts/:id/process", adminHandler.ProcessPayout)
		admin.PUT("/affiliates/:id/status", adminHandler.UpdateAffiliateStatus)
		admin.GET("/settings", adminHandler.GetSettings)
		admin.PUT("/settings", adminHandler.UpdateSettings)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	approverJob.Stop()

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

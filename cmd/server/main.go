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
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/murmurhq/murmur/internal/auth"
	"github.com/murmurhq/murmur/internal/cache"
	"github.com/murmurhq/murmur/internal/config"
	"github.com/murmurhq/murmur/internal/database"
	"github.com/murmurhq/murmur/internal/email"
	"github.com/murmurhq/murmur/internal/feed"
	"github.com/murmurhq/murmur/internal/handlers"
	"github.com/murmurhq/murmur/internal/logger"
	"github.com/murmurhq/murmur/internal/metrics"
	"github.com/murmurhq/murmur/internal/middleware"
	"github.com/murmurhq/murmur/internal/moderation"
	"github.com/murmurhq/murmur/internal/publisher"
	"github.com/murmurhq/murmur/internal/ratelimit"
	"github.com/murmurhq/murmur/internal/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	log.Println("=== Murmur server starting ===")

	// Initialize database
	if err := database.Initialize(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis is the cooldown fast path; the server runs without it, every
	// cooldown check just goes to the database.
	redisClient, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
	if err != nil {
		log.Printf("Warning: Redis unavailable: %v", err)
		log.Println("Continuing without Redis - cooldown checks will hit the database")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	// Initialize metrics
	metrics.Initialize()

	// Core services
	authService := auth.NewService([]byte(cfg.JWTSecret))

	policy := moderation.Policy{HideThreshold: cfg.HideThreshold}
	engine := moderation.NewEngine(database.DB, policy)
	feedService := feed.NewService(database.DB, policy, cfg.FeedPageSize)

	limiter := ratelimit.NewCooldownLimiter(database.DB, redisClient, cfg.PostCooldown, cfg.FeedbackCooldown)
	pub := publisher.NewPublisher(database.DB, limiter, publisher.Limits{
		MaxChars: cfg.MaxPostChars,
		MaxWords: cfg.MaxPostWords,
	})

	// Initialize WebSocket hub and handler
	wsHub := websocket.NewHub()
	wsHandler := websocket.NewHandler(wsHub, authService)
	go wsHub.Run()

	// Initialize handlers
	h := handlers.NewHandlers(cfg, authService, feedService, engine, pub, limiter)
	h.SetWebSocketHandler(wsHandler)

	// Feedback mail is optional; without SES config, feedback is stored only
	if cfg.FeedbackInbox != "" {
		emailService, err := email.NewEmailService(cfg.AWSRegion, cfg.FeedbackFrom, cfg.FeedbackInbox)
		if err != nil {
			log.Printf("Warning: SES unavailable: %v", err)
			log.Println("Continuing without feedback mail forwarding")
		} else {
			h.SetEmailService(emailService)
		}
	}

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// CORS middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // Configure properly for production
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		status := "ok"
		httpStatus := http.StatusOK
		if err := database.Health(); err != nil {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}
		c.JSON(httpStatus, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC(),
			"service":   "murmur-backend",
		})
	})

	// Prometheus metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := r.Group("/api/v1")
	{
		// Authentication routes (public)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/anonymous", middleware.RateLimitSmartWrite(), h.SignInAnonymously)
		}

		// Client configuration (public)
		api.GET("/config", h.GetConfig)

		// Feed routes
		feedGroup := api.Group("/feed")
		{
			feedGroup.Use(authService.Middleware())
			feedGroup.Use(middleware.RateLimitSmartDefault())
			feedGroup.GET("", h.GetFeed)
		}

		// Post routes
		posts := api.Group("/posts")
		{
			posts.Use(authService.Middleware())
			posts.Use(middleware.RateLimitSmartWrite())
			posts.POST("", h.CreatePost)
			posts.POST("/:id/report", h.ReportPost)
		}

		// Feedback routes
		feedback := api.Group("/feedback")
		{
			feedback.Use(authService.Middleware())
			feedback.Use(middleware.RateLimitSmartWrite())
			feedback.POST("", h.SubmitFeedback)
		}

		// WebSocket routes
		ws := api.Group("/ws")
		{
			// WebSocket connection endpoint - auth via query param ?token=... or Authorization header
			ws.GET("", wsHandler.HandleWebSocket)
			ws.GET("/metrics", authService.Middleware(), wsHandler.HandleMetrics)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("💭 Murmur backend starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown WebSocket connections gracefully
	if err := wsHandler.Shutdown(ctx); err != nil {
		log.Printf("WebSocket shutdown warning: %v", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"campus-hazard-server/config"
	"campus-hazard-server/database"
	"campus-hazard-server/middleware"
	"campus-hazard-server/routes"
	"campus-hazard-server/services"
	ws "campus-hazard-server/websocket"
)

var startedAt = time.Now()

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	config.Load()

	// Initialize database
	if err := database.Initialize(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Image storage for hazard photos
	storage, err := services.NewCloudinaryStorage()
	if err != nil {
		log.Fatal("Failed to initialize image storage:", err)
	}

	// Set Gin mode
	if config.AppConfig.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	// Security headers (must be first)
	router.Use(middleware.SecurityHeadersMiddleware())

	// Rate limiting
	router.Use(middleware.RateLimitMiddleware())

	// CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.AppConfig.CORS.FrontendOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))

	// Service banner
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"app":     "Campus Hazard Management System - Backend",
			"version": "0.1.0",
			"routes":  []string{"/api/health", "/api/auth/signup", "/api/auth/login"},
		})
	})

	// Live message feed hub
	messageHub := ws.NewHub()
	go messageHub.Run()

	api := router.Group("/api")
	{
		// Health check endpoint
		api.GET("/health", func(c *gin.Context) {
			sqlDB, err := database.DB.DB()
			if err == nil {
				err = sqlDB.Ping()
			}
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"status":  "error",
					"message": err.Error(),
					"uptime":  time.Since(startedAt).Seconds(),
					"ts":      time.Now().UTC(),
				})
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"status":   "ok",
				"uptime":   time.Since(startedAt).Seconds(),
				"ts":       time.Now().UTC(),
				"database": "connected",
			})
		})

		// Auth routes (no session required) - with strict rate limiting
		authRoutes := api.Group("/auth")
		authRoutes.Use(middleware.AuthRateLimitMiddleware())
		routes.RegisterAuthRoutes(authRoutes)

		// Live thread feed (token via query parameter)
		feed := api.Group("/ws")
		routes.RegisterMessageFeedRoute(feed, messageHub)

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			hazardRoutes := protected.Group("/hazard")
			routes.RegisterHazardRoutes(hazardRoutes, storage)

			hazardScoped := protected.Group("/hazards")
			routes.RegisterActionRoutes(hazardScoped)
			routes.RegisterFeedbackRoutes(hazardScoped)
			routes.RegisterMessageRoutes(hazardScoped, messageHub)
		}
	}

	// Uniform JSON 404 envelope
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	port := config.AppConfig.Server.Port
	log.Printf("Server starting on port %s", port)
	if err := router.Run("0.0.0.0:" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

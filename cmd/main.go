package main

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/Lamb-Project/lamb-sub000/internal/handler"
	"github.com/Lamb-Project/lamb-sub000/internal/middleware"
	"github.com/Lamb-Project/lamb-sub000/pkg/config"
	"github.com/Lamb-Project/lamb-sub000/pkg/database"
	"github.com/Lamb-Project/lamb-sub000/pkg/jwtutil"
	"github.com/Lamb-Project/lamb-sub000/pkg/logger"
	"github.com/Lamb-Project/lamb-sub000/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting organization migration service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Migration operations - admin only
	migrationHandler := handler.NewMigrationHandler(database.GetDB())

	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	migrations := api.Group("/organizations/migrate")
	migrations.Use(middleware.RequireAdmin)
	migrations.POST("/validate", migrationHandler.Validate)
	migrations.POST("", migrationHandler.Migrate)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}

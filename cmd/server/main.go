package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sunhobaek/freshmarket-backend/config"
	"github.com/sunhobaek/freshmarket-backend/internal/app/controller"
	"github.com/sunhobaek/freshmarket-backend/internal/app/repository"
	"github.com/sunhobaek/freshmarket-backend/internal/app/service"
	"github.com/sunhobaek/freshmarket-backend/internal/db"
	"github.com/sunhobaek/freshmarket-backend/internal/middleware"
	"github.com/sunhobaek/freshmarket-backend/internal/router"
	"github.com/sunhobaek/freshmarket-backend/internal/storage"
	"github.com/sunhobaek/freshmarket-backend/pkg/kakao"
	"github.com/sunhobaek/freshmarket-backend/pkg/logger"
	"github.com/sunhobaek/freshmarket-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting FRESHMARKET Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Token blacklist store (optional)
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, token revocation disabled", map[string]interface{}{
				"error": err.Error(),
			})
		}
		defer redis.Close()
	}

	// Object storage
	store := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Kakao identity provider
	kakaoClient, err := kakao.NewClient(kakao.Config{
		UserInfoURL: cfg.Kakao.UserInfoURL,
	})
	if err != nil {
		logger.Fatal("Failed to create kakao client", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	reviewRepo := repository.NewReviewRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(userRepo, kakaoClient, cfg.JWT.Secret, cfg.JWT.TokenExpiry)
	productService := service.NewProductService(productRepo, userRepo, reviewRepo, store, db.GetDB())
	orderService := service.NewOrderService(orderRepo, db.GetDB())
	reviewService := service.NewReviewService(reviewRepo, orderRepo, productRepo, store, db.GetDB())

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	productController := controller.NewProductController(productService, orderService)
	orderController := controller.NewOrderController(orderService)
	reviewController := controller.NewReviewController(reviewService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, userRepo)

	// Setup router
	r := router.NewRouter(
		authController,
		productController,
		orderController,
		reviewController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}

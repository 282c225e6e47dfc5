package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sunhobaek/freshmarket-backend/config"
	"github.com/sunhobaek/freshmarket-backend/internal/app/controller"
	"github.com/sunhobaek/freshmarket-backend/internal/middleware"
)

type Router struct {
	authController    *controller.AuthController
	productController *controller.ProductController
	orderController   *controller.OrderController
	reviewController  *controller.ReviewController
	authMiddleware    *middleware.AuthMiddleware
	config            *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	orderController *controller.OrderController,
	reviewController *controller.ReviewController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:    authController,
		productController: productController,
		orderController:   orderController,
		reviewController:  reviewController,
		authMiddleware:    authMiddleware,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "FRESHMARKET API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		users := v1.Group("/users")
		{
			users.GET("/login/kakao", r.authController.KakaoLogin)
			users.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			users.GET("/orders", r.authMiddleware.Authenticate(), r.orderController.Orders)
		}

		products := v1.Group("/products")
		{
			products.GET("/search", r.productController.Search)
			products.GET("/seller", r.productController.Sellers)
			products.GET("/seller/:user_id", r.productController.SellerProducts)
			products.GET("/product", r.productController.List)
			products.GET("/:product_id", r.productController.Detail)

			products.POST("", r.authMiddleware.Authenticate(), r.productController.Upload)
			products.POST("/:product_id/purchase", r.authMiddleware.Authenticate(), r.productController.Purchase)
			products.DELETE("/:product_id", r.authMiddleware.Authenticate(), r.productController.Delete)
		}

		reviews := v1.Group("/reviews")
		{
			reviews.GET("/recent", r.reviewController.Recent)
			reviews.GET("/:product_id/comment", r.reviewController.GetComments)
			reviews.POST("/:product_id", r.authMiddleware.Authenticate(), r.reviewController.PostReview)
			reviews.POST("/:product_id/comment", r.authMiddleware.Authenticate(), r.reviewController.PostComment)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

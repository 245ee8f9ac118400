package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/udonggeum-storefront/config"
	"github.com/ikkim/udonggeum-storefront/internal/app/controller"
	"github.com/ikkim/udonggeum-storefront/internal/app/model"
	"github.com/ikkim/udonggeum-storefront/internal/metrics"
	"github.com/ikkim/udonggeum-storefront/internal/middleware"
)

// HealthReporter reports the last upstream probe result.
type HealthReporter interface {
	Status() (string, time.Time)
}

// Controllers groups the HTTP handlers the router mounts.
type Controllers struct {
	Auth       *controller.AuthController
	Product    *controller.ProductController
	Cart       *controller.CartController
	Order      *controller.OrderController
	Favorite   *controller.FavoriteController
	Moderation *controller.ModerationController
	Chat       *controller.ChatController
	Media      *controller.MediaController
}

type Router struct {
	controllers    Controllers
	authMiddleware *middleware.AuthMiddleware
	metrics        *metrics.Registry
	health         HealthReporter
	config         *config.Config
}

func NewRouter(
	controllers Controllers,
	authMiddleware *middleware.AuthMiddleware,
	reg *metrics.Registry,
	health HealthReporter,
	cfg *config.Config,
) *Router {
	return &Router{
		controllers:    controllers,
		authMiddleware: authMiddleware,
		metrics:        reg,
		health:         health,
		config:         cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware(r.metrics))
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", r.healthCheck)
	router.GET("/metrics", gin.WrapH(r.metrics.Handler()))

	ctrl := r.controllers
	auth := r.authMiddleware

	v1 := router.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", ctrl.Auth.Login)
			authGroup.POST("/logout", auth.OptionalAuthenticate(), ctrl.Auth.Logout)
			authGroup.GET("/me", auth.Authenticate(), ctrl.Auth.GetMe)
		}

		products := v1.Group("/products")
		products.Use(auth.OptionalAuthenticate())
		{
			products.GET("", ctrl.Product.GetProducts)
			products.GET("/:id", ctrl.Product.GetProductByID)
		}
		v1.GET("/categories", auth.OptionalAuthenticate(), ctrl.Product.GetCategories)

		cart := v1.Group("/cart")
		cart.Use(auth.Authenticate())
		{
			cart.GET("", ctrl.Cart.GetCart)
			cart.DELETE("", ctrl.Cart.ClearCart)
			cart.POST("/items", ctrl.Cart.AddToCart)
			cart.PUT("/items/:id", ctrl.Cart.UpdateCartItem)
			cart.DELETE("/items/:id", ctrl.Cart.RemoveFromCart)
		}

		orders := v1.Group("/orders")
		orders.Use(auth.Authenticate())
		{
			orders.GET("", ctrl.Order.GetOrders)
			orders.GET("/export", ctrl.Order.ExportOrders)
			orders.GET("/:id", ctrl.Order.GetOrderByID)
			orders.POST("", ctrl.Order.Checkout)
		}

		favorites := v1.Group("/favorites")
		favorites.Use(auth.Authenticate())
		{
			favorites.GET("", ctrl.Favorite.GetFavorites)
			favorites.POST("", ctrl.Favorite.AddFavorite)
			favorites.DELETE("/:id", ctrl.Favorite.RemoveFavorite)
		}

		moderation := v1.Group("/moderation")
		moderation.Use(
			auth.Authenticate(),
			auth.RequireRole(model.RoleAdmin, model.RoleModerator),
		)
		{
			moderation.GET("/reports", ctrl.Moderation.GetReports)
			moderation.POST("/reports/:id/resolve", ctrl.Moderation.ResolveReport)
		}

		v1.GET("/chat/ws", auth.AuthenticateUpgrade(), ctrl.Chat.ServeWS)
		v1.POST("/media/resolve", ctrl.Media.ResolveURLs)
	}

	return router
}

func (r *Router) healthCheck(c *gin.Context) {
	upstream := "unknown"
	var checkedAt *time.Time
	if r.health != nil {
		status, at := r.health.Status()
		upstream = status
		if !at.IsZero() {
			checkedAt = &at
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"upstream":  upstream,
		"checkedAt": checkedAt,
	})
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

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

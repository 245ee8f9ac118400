package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/udonggeum-storefront/config"
	"github.com/ikkim/udonggeum-storefront/internal/app/controller"
	"github.com/ikkim/udonggeum-storefront/internal/app/service"
	"github.com/ikkim/udonggeum-storefront/internal/metrics"
	"github.com/ikkim/udonggeum-storefront/internal/middleware"
	"github.com/ikkim/udonggeum-storefront/internal/router"
	"github.com/ikkim/udonggeum-storefront/internal/scheduler"
	"github.com/ikkim/udonggeum-storefront/internal/session"
	"github.com/ikkim/udonggeum-storefront/internal/storage"
	"github.com/ikkim/udonggeum-storefront/internal/websocket"
	"github.com/ikkim/udonggeum-storefront/pkg/logger"
	"github.com/ikkim/udonggeum-storefront/pkg/redis"
	"github.com/ikkim/udonggeum-storefront/pkg/upstream"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting storefront BFF", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"api_base":    cfg.Upstream.APIBaseURL,
		"log_level":   logLevel,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()

	api, err := upstream.New(upstream.Config{
		BaseURL:  cfg.Upstream.APIBaseURL,
		Timeout:  cfg.Upstream.Timeout,
		Observer: reg.ObserveUpstream,
	})
	if err != nil {
		logger.Fatal("Failed to create storefront API client", err)
	}

	media := storage.NewMediaResolverFromConfig(ctx, cfg.Media)

	// Initialize services
	productService := service.NewProductService(api, media)
	enricher := service.NewCartEnricher(productService, reg.ObserveEnrichment)
	cartService := service.NewCartService(api, enricher)
	orderService := service.NewOrderService(api)
	favoriteService := service.NewFavoriteService(api, productService)
	moderationService := service.NewModerationService(api)
	authService := service.NewAuthService(api)

	// Session store: Redis when enabled, in-process otherwise
	var store session.Store
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, using in-memory session store", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	if client := redis.GetClient(); client != nil {
		store = session.NewRedisStore(client)
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
	} else {
		memory := session.NewMemoryStore()
		store = memory
		go purgeExpired(ctx, memory, time.Minute)
	}
	sessions := session.NewManager(store, authService.LoadUser, cfg.Session.UserCacheTTL)

	hub := websocket.NewHub()
	go hub.Run(ctx)

	health := scheduler.NewHealthScheduler(cfg.Scheduler.HealthCheckSpec, api, reg.SetUpstreamUp)
	if err := health.Start(); err != nil {
		logger.Error("Failed to start upstream health checks", err)
	}
	defer health.Stop()

	// Initialize controllers
	controllers := router.Controllers{
		Auth: controller.NewAuthController(authService, sessions, controller.CookieSettings{
			Name:   cfg.Session.CookieName,
			Domain: cfg.Session.CookieDomain,
			Secure: cfg.Session.CookieSecure,
		}),
		Product:    controller.NewProductController(productService),
		Cart:       controller.NewCartController(cartService),
		Order:      controller.NewOrderController(orderService),
		Favorite:   controller.NewFavoriteController(favoriteService),
		Moderation: controller.NewModerationController(moderationService),
		Chat:       controller.NewChatController(hub, cfg.Upstream.ChatHubURL, cfg.CORS.AllowedOrigins),
		Media:      controller.NewMediaController(media),
	}

	authMiddleware := middleware.NewAuthMiddleware(sessions, cfg.Session.CookieName)

	// Setup router
	engine := router.NewRouter(controllers, authMiddleware, reg, health, cfg).Setup()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	logger.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", err)
	}

	logger.Info("Server stopped successfully")
}

func purgeExpired(ctx context.Context, store *session.MemoryStore, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Purge(); n > 0 {
				logger.Debug("Purged expired sessions", map[string]interface{}{
					"count": n,
				})
			}
		}
	}
}

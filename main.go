package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/plantora/storefront/internal/apiclient"
	"github.com/plantora/storefront/internal/metrics"
	"github.com/plantora/storefront/internal/services"
	"github.com/plantora/storefront/internal/session"
	"github.com/plantora/storefront/internal/web"
	"github.com/plantora/storefront/pkg/config"
	"github.com/plantora/storefront/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	log := logger.ForEnv(cfg.AppEnv)
	defer log.Sync()

	// Initialize OpenTelemetry metrics
	ctx := context.Background()
	appMetrics, meterProvider, err := metrics.InitMetrics(ctx, cfg)
	if err != nil {
		log.Fatal("failed to initialize metrics", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Warn("meter provider shutdown failed", zap.Error(err))
		}
	}()

	// Session store
	store := session.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SessionTTL)
	defer store.Close()

	// Backend API gateway and services
	client := apiclient.New(cfg.APIBaseURL, cfg.APITimeout, appMetrics, log)
	authService := services.NewAuthService(client)
	productService := services.NewProductService(client)
	cartService := services.NewCartService(client)
	addressService := services.NewAddressService(client)
	orderService := services.NewOrderService(client)
	paymentService := services.NewPaymentService(client)
	adminService := services.NewAdminService(client)
	inventoryService := services.NewInventoryService(client)

	// Sessions
	sessions := session.NewManager(authService, cartService, addressService, store, appMetrics, log)
	cookies := session.NewCookieCodec(cfg.CookieName, cfg.SessionSecret, cfg.SessionTTL, cfg.CookieSecure)

	// Initialize app
	app := web.NewApp(cfg, log, appMetrics, sessions, cookies,
		productService, orderService, paymentService, adminService, inventoryService)

	// Setup router
	router := mux.NewRouter()
	app.SetupRoutes(router)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server starting",
			zap.String("port", cfg.AppPort),
			zap.String("backend", cfg.APIBaseURL),
			zap.String("otlp_endpoint", cfg.OTELExporterOTLPEndpoint),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

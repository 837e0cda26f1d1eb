package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/marketlane/pos-backend/internal/modules/auth"
	"github.com/marketlane/pos-backend/internal/modules/catalog"
	"github.com/marketlane/pos-backend/internal/modules/customer"
	"github.com/marketlane/pos-backend/internal/modules/settings"
	"github.com/marketlane/pos-backend/internal/modules/settlement"
	"github.com/marketlane/pos-backend/internal/modules/user"
	"github.com/marketlane/pos-backend/internal/notify"
	"github.com/marketlane/pos-backend/internal/platform/config"
	"github.com/marketlane/pos-backend/internal/platform/database"
	"github.com/marketlane/pos-backend/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		logger.Fatal("Failed to apply schema", zap.Error(err))
	}
	logger.Info("Connected to database")

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	mw := auth.NewMiddleware([]byte(cfg.JWTSecret))

	// ── Identity ────────────────────────────────────────────
	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo)
	if err := userService.EnsureDefaultAdmin(ctx); err != nil {
		logger.Fatal("Failed to seed default admin", zap.Error(err))
	}
	user.NewHandler(userService).RegisterRoutes(router, mw.Authenticate, mw.RequireAdmin)

	authService := auth.NewService(userRepo, []byte(cfg.JWTSecret), cfg.TokenTTL)
	auth.NewHandler(authService, mw).RegisterRoutes(router)

	// ── Catalog ─────────────────────────────────────────────
	catalogRepo := catalog.NewPostgresRepository(db)
	catalogService := catalog.NewService(catalogRepo)
	catalog.NewHandler(catalogService).RegisterRoutes(router, mw)

	// ── Loyalty & settings ──────────────────────────────────
	customerRepo := customer.NewPostgresRepository(db)
	customer.NewHandler(customerRepo).RegisterRoutes(router, mw)

	settingsRepo := settings.NewPostgresRepository(db)
	settings.NewHandler(settingsRepo).RegisterRoutes(router, mw)

	// ── Settlement engine ───────────────────────────────────
	var notifier settlement.ReceiptNotifier
	if cfg.KafkaBrokers != "" {
		publisher := notify.NewKafkaPublisher(cfg.KafkaBrokers, cfg.ReceiptTopic, logger)
		defer publisher.Close()
		notifier = publisher
	}
	ledger := settlement.NewPostgresLedger(db)
	settlementService := settlement.NewService(ledger, ledger, customerRepo, notifier, logger)
	settlement.NewHandler(settlementService).RegisterRoutes(router, mw)

	// ── Start server ────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("POS API server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited")
}

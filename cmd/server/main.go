package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/stillalive/internal/app"
	"github.com/quocanhngo/stillalive/internal/config"
	"github.com/quocanhngo/stillalive/internal/handler"
	"github.com/quocanhngo/stillalive/internal/middleware"
	"github.com/quocanhngo/stillalive/internal/service"
	"github.com/quocanhngo/stillalive/migrations"
	"github.com/quocanhngo/stillalive/pkg/auth"
	"github.com/quocanhngo/stillalive/pkg/logger"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           Still Alive? API
// @version         1.0
// @description     Daily check-ins, emergency contacts and the MIA alert sweep.

// @contact.name   API Support
// @contact.email  support@stillalive.local

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      api.localhost
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// ==================== Load Config ====================
	cfg := config.Load()

	zl, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Service: "stillalive-api"})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()
	zl.Info("starting Still Alive? API server", zap.String("env", cfg.App.Env))

	// ==================== Migrations ====================
	if err := migrations.Run(cfg.DB.URL(), zl); err != nil {
		zl.Fatal("failed to migrate database", zap.Error(err))
	}

	// ==================== Dependencies ====================
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, zl, true)
	if err != nil {
		zl.Fatal("failed to initialize", zap.Error(err))
	}
	defer a.Close()

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Expiry)
	channel := a.Engine.Channel()
	gw := a.Gateway

	// Services
	authService := service.NewAuthService(gw.Users, a.Redis)
	settingsService := service.NewSettingsService(gw.Settings)
	checkInService := service.NewCheckInService(gw.CheckIns)
	contactService := service.NewContactService(gw.Contacts, settingsService, gw.CheckIns, a.Mailer, a.SMS, channel, cfg.App.BaseURL, zl.Named("contacts"))
	lastWordsService := service.NewLastWordsService(gw.LastWords, a.Mailer, cfg.App.BaseURL)

	// Handlers
	handlers := &handler.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		CheckIns:  handler.NewCheckInHandler(checkInService),
		Settings:  handler.NewSettingsHandler(settingsService),
		Contacts:  handler.NewContactHandler(contactService),
		LastWords: handler.NewLastWordsHandler(lastWordsService),
		Mia:       handler.NewMiaHandler(a.Engine),
	}

	// ==================== MIA Scheduler ====================
	sched := a.Scheduler()
	if err := sched.Start(ctx); err != nil {
		zl.Fatal("failed to start scheduler", zap.Error(err))
	}

	// ==================== Gin Router ====================
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(zl.Named("http")))

	// Serve swagger.json at /docs/swagger.json to avoid conflict with /swagger/* wildcard
	router.StaticFile("/docs/swagger.json", "./docs/swagger.json")
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/docs/swagger.json")))

	router.Use(middleware.CORSMiddleware(cfg.CORS.Origins))
	router.GET("/health", handler.Health)

	handlers.Register(router.Group("/api/v1"),
		middleware.AuthMiddleware(jwtManager, a.Redis, zl),
		middleware.ProfileMiddleware(authService, zl),
	)

	// ==================== Start Server ====================
	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	zl.Info("API running",
		zap.String("addr", "http://0.0.0.0:"+cfg.App.Port),
		zap.String("docs", "http://0.0.0.0:"+cfg.App.Port+"/swagger/index.html"),
		zap.String("alert_channel", string(channel)),
	)

	<-ctx.Done()
	zl.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}

	// Let an in-flight sweep finish its current user
	select {
	case <-sched.Done():
	case <-shutdownCtx.Done():
		zl.Warn("scheduler did not stop before the shutdown deadline")
	}
	zl.Info("server exited gracefully")
}

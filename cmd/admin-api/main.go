package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/mbaisi200/passaporte-sistema/internal/cache"
	"github.com/mbaisi200/passaporte-sistema/internal/config"
	"github.com/mbaisi200/passaporte-sistema/internal/database"
	adminhandlers "github.com/mbaisi200/passaporte-sistema/internal/handlers/admin"
	"github.com/mbaisi200/passaporte-sistema/internal/middleware"
	"github.com/mbaisi200/passaporte-sistema/internal/models"
	"github.com/mbaisi200/passaporte-sistema/internal/repository"
	"github.com/mbaisi200/passaporte-sistema/internal/services"
)

// API administrativa: bootstrap do admin, lista de CPFs autorizados e gestão
// dos formulários.
func main() {
	port := pflag.String("port", "", "porta de escuta (sobrepõe ADMIN_API_PORT)")
	pflag.Parse()

	cfg := config.Load()
	if *port != "" {
		cfg.AdminAPI.Port = *port
	}

	logger := newLogger(cfg)
	defer logger.Sync()

	// Sem a chave de setup o bootstrap ficaria aberto; melhor nem subir.
	if cfg.Admin.SetupKey == "" {
		logger.Fatal("SETUP_KEY não definida")
	}

	gin.SetMode(cfg.Server.GinMode)

	ctx := context.Background()

	dbManager := database.GetManager(cfg)
	if err := dbManager.InitPool(ctx); err != nil {
		logger.Fatal("failed to initialize db pool", zap.Error(err))
	}
	if err := dbManager.Migrate(ctx); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	redisClient, err := cache.NewClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("failed to initialize redis client", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(dbManager.GetPool())
	allowlistRepo := repository.NewAllowlistRepository(dbManager.GetPool())
	submissionRepo := repository.NewSubmissionRepository(dbManager.GetPool())

	accounts := services.NewAccountService(userRepo, allowlistRepo, redisClient, redisClient, cfg, logger)
	submissions := services.NewSubmissionService(submissionRepo, redisClient, redisClient, logger)

	setupHandler := adminhandlers.NewSetupHandler(accounts, cfg, logger)
	allowlistHandler := adminhandlers.NewAllowlistHandler(accounts)
	submissionHandler := adminhandlers.NewSubmissionHandler(submissions, redisClient, logger)

	router := setupRouter(cfg, setupHandler, allowlistHandler, submissionHandler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.AdminAPI.Port),
		Handler: router,
	}

	go func() {
		logger.Info("starting admin api", zap.String("port", cfg.AdminAPI.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}

	dbManager.Close()
	redisClient.Close()

	logger.Info("server exited")
}

func newLogger(cfg *config.Config) *zap.Logger {
	var logger *zap.Logger
	var err error
	if cfg.App.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	return logger
}

func setupRouter(
	cfg *config.Config,
	setupHandler *adminhandlers.SetupHandler,
	allowlistHandler *adminhandlers.AllowlistHandler,
	submissionHandler *adminhandlers.SubmissionHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-Setup-Key")
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Bootstrap protegido pela chave de setup, não pelo JWT.
	router.GET("/api/init-admin", setupHandler.InitAdmin)

	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/cpfs", allowlistHandler.List)
		admin.POST("/cpfs", allowlistHandler.Add)
		admin.DELETE("/cpfs/:cpf", allowlistHandler.Delete)
		admin.PATCH("/cpfs/:cpf/blocked", allowlistHandler.SetBlocked)

		admin.GET("/formularios", submissionHandler.List)
		admin.GET("/formularios/stream", submissionHandler.Stream)
		admin.GET("/formularios/:id", submissionHandler.Get)
		admin.PATCH("/formularios/:id/status", submissionHandler.SetStatus)
		admin.GET("/formularios/:id/export", submissionHandler.Export)
	}

	return router
}

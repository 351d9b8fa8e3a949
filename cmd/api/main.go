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
	"github.com/mbaisi200/passaporte-sistema/internal/handlers"
	"github.com/mbaisi200/passaporte-sistema/internal/middleware"
	"github.com/mbaisi200/passaporte-sistema/internal/repository"
	"github.com/mbaisi200/passaporte-sistema/internal/services"
)

// API do cliente: cadastro, login e envio do formulário de passaporte.
func main() {
	port := pflag.String("port", "", "porta de escuta (sobrepõe API_PORT)")
	pflag.Parse()

	cfg := config.Load()
	if *port != "" {
		cfg.API.Port = *port
	}

	logger := newLogger(cfg)
	defer logger.Sync()

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

	authHandler := handlers.NewAuthHandler(accounts, cfg)
	submissionHandler := handlers.NewSubmissionHandler(submissions)

	router := setupRouter(cfg, accounts, authHandler, submissionHandler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.API.Port),
		Handler: router,
	}

	go func() {
		logger.Info("starting client api", zap.String("port", cfg.API.Port))
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
	accounts *services.AccountService,
	authHandler *handlers.AuthHandler,
	submissionHandler *handlers.SubmissionHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := router.Group("/api")
	{
		public.POST("/auth/register", authHandler.Register)
		public.POST("/auth/login", authHandler.Login)
		public.POST("/auth/reset-password", authHandler.ResetPassword)
	}

	// O bloqueio é checado a cada requisição: token vigente não atravessa um
	// processo já finalizado.
	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(cfg))
	protected.Use(middleware.BlockedGate(accounts))
	{
		protected.GET("/auth/me", authHandler.GetMe)
		protected.POST("/formularios", submissionHandler.Submit)
	}

	return router
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"carbon-connect/marketplace-backend/internal/certificates"
	"carbon-connect/marketplace-backend/internal/config"
	"carbon-connect/marketplace-backend/internal/credits"
	"carbon-connect/marketplace-backend/internal/database"
	"carbon-connect/marketplace-backend/internal/identity"
	"carbon-connect/marketplace-backend/internal/ledger"
	"carbon-connect/marketplace-backend/internal/orders"
	"carbon-connect/marketplace-backend/internal/settlement"
	"carbon-connect/marketplace-backend/pkg/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg.Logging.Level)
	defer logger.Sync()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	fileStore, err := storage.NewFileStore(cfg.Storage.UploadDir)
	if err != nil {
		logger.Fatal("Failed to initialize artifact store", zap.Error(err))
	}

	signingIdentity, err := certificates.LoadSigningIdentity(cfg.Signing.CertificatePath, cfg.Signing.PrivateKeyPath)
	if err != nil {
		logger.Fatal("Failed to load signing identity", zap.Error(err))
	}

	repo := ledger.NewRepository(db)

	creditsService := credits.NewService(repo, logger)
	generator := certificates.NewGenerator(repo, logger)
	signer := certificates.NewSigner(signingIdentity, logger)
	orchestrator := settlement.NewOrchestrator(repo, creditsService, generator, signer, fileStore, logger)
	ordersService := orders.NewService(repo, orchestrator, logger)

	creditsHandler := credits.NewHandler(creditsService)
	ordersHandler := orders.NewHandler(ordersService)
	certificatesHandler := certificates.NewHandler(fileStore)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	api := router.Group("/api/v1")
	api.Use(identity.Middleware(cfg.Security.JWTSecret))
	{
		creditsHandler.RegisterRoutes(api)
		ordersHandler.RegisterRoutes(api)
		certificatesHandler.RegisterRoutes(api)
	}

	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", srv.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

func newLogger(level string) *zap.Logger {
	var logger *zap.Logger
	var err error
	if level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return logger
}

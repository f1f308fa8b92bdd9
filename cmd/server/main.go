package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/AmauryLAPEYRE/Modelo/internal/api"
	"github.com/AmauryLAPEYRE/Modelo/internal/config"
	"github.com/AmauryLAPEYRE/Modelo/internal/firebase"
	"github.com/AmauryLAPEYRE/Modelo/internal/gateway"
	"github.com/AmauryLAPEYRE/Modelo/internal/middleware"
	"github.com/AmauryLAPEYRE/Modelo/internal/repository"
)

func main() {
	// .env is a developer convenience; production sets real env vars.
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil {
			log.Println("no .env file loaded:", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	var logger *zap.Logger
	if cfg.Release() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clients, err := firebase.Init(ctx, cfg)
	if err != nil {
		logger.Fatal("firebase init failed", zap.Error(err))
	}
	defer clients.Close()

	gw := gateway.NewFirestoreGateway(clients.Firestore, logger)
	blobs := gateway.NewCloudBlobStore(clients.Bucket, cfg.StorageBucket)

	repos := api.Repositories{
		Users:        repository.NewUserRepository(gw, blobs, logger),
		Services:     repository.NewServiceRepository(gw, blobs, logger),
		Applications: repository.NewApplicationRepository(gw, blobs, logger),
		Messages:     repository.NewMessageRepository(gw, blobs, logger),
		Ratings:      repository.NewRatingRepository(gw, logger),
		Categories:   repository.NewCategoryRepository(gw, logger),
		Featured:     repository.NewFeaturedRepository(gw, blobs, logger),
	}
	authenticator := firebase.NewAuthenticator(clients.Auth, logger)

	if cfg.Release() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.CORSMiddleware(cfg))

	api.SetupRoutes(router, clients.Auth, authenticator, repos, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("port", cfg.Port),
			zap.String("mode", gin.Mode()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

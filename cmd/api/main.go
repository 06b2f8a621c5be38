package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/almostcrackd/captionboard/internal/api"
	"github.com/almostcrackd/captionboard/internal/api/middleware"
	"github.com/almostcrackd/captionboard/internal/config"
	"github.com/almostcrackd/captionboard/internal/domain"
	"github.com/almostcrackd/captionboard/internal/logger"
	"github.com/almostcrackd/captionboard/internal/repository"
	"github.com/almostcrackd/captionboard/internal/service"
	"github.com/almostcrackd/captionboard/internal/storage"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger := logger.NewFromEnv(logger.LoadFromEnv())
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize repositories
	imageRepo := repository.NewImageRepository(db)
	captionRepo := repository.NewCaptionRepository(db)
	voteRepo := repository.NewVoteRepository(db)

	// Initialize storage (supports MinIO, R2, S3)
	objectStorage, err := storage.NewStorage(&storage.S3Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}

	// Ensure bucket exists
	ctx := context.Background()
	if err := objectStorage.EnsureBucket(ctx); err != nil {
		appLogger.WithError(err).Fatal("Failed to ensure storage bucket")
	}

	// Initialize services
	captionerService := service.NewCaptionerService(&service.CaptionerConfig{
		Provider:    cfg.Captioner.Provider,
		Model:       cfg.Captioner.Model,
		APIKey:      cfg.Captioner.APIKey,
		BaseURL:     cfg.Captioner.BaseURL,
		MaxCaptions: cfg.Captioner.MaxCaptions,
	})

	pipelineService := service.NewPipelineService(
		imageRepo,
		captionRepo,
		objectStorage,
		captionerService,
		appLogger,
		&service.PipelineConfig{
			PresignTTL: cfg.Storage.PresignTTL,
		},
	)

	galleryService := service.NewGalleryService(
		imageRepo,
		captionRepo,
		voteRepo,
		appLogger,
		&service.GalleryConfig{
			DefaultPageSize: cfg.Gallery.DefaultPageSize,
			MaxPageSize:     cfg.Gallery.MaxPageSize,
			DefaultSort:     domain.GallerySort(cfg.Gallery.DefaultSort),
		},
	)

	voteService := service.NewVoteService(voteRepo, captionRepo, appLogger)

	verifier := middleware.NewStaticTokenVerifier(cfg.Auth.Tokens)

	// Setup router
	router := api.SetupRouter(
		pipelineService,
		galleryService,
		voteService,
		verifier,
		appLogger,
		api.RouterConfig{
			Mode: cfg.Server.Mode,
			CORS: middleware.CORSConfig{
				AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
				AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
			},
		},
	)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}

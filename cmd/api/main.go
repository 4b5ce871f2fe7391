package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/petnologia/petface/internal/api"
	"github.com/petnologia/petface/internal/config"
	"github.com/petnologia/petface/internal/database"
	"github.com/petnologia/petface/internal/queue"
	"github.com/petnologia/petface/internal/storage"
	"github.com/petnologia/petface/internal/vision"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting PetFace API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	// Object storage
	store, err := storage.NewImageStore(cfg.MinIO)
	if err != nil {
		return fmt.Errorf("create image store: %w", err)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}

	// Queue producer
	producer, err := queue.NewProducer(cfg.NATSURL)
	if err != nil {
		return fmt.Errorf("connect to nats: %w", err)
	}
	defer producer.Close()
	if err := producer.EnsureStream(ctx); err != nil {
		return fmt.Errorf("ensure stream: %w", err)
	}

	// ONNX models
	if err := vision.InitRuntime(cfg.Vision.ORTLibraryPath); err != nil {
		return err
	}
	defer vision.ShutdownRuntime()

	detector, err := vision.NewDetector(cfg.Vision.DetectorModelPath, float32(cfg.Vision.DetectionThreshold), nil)
	if err != nil {
		return fmt.Errorf("load detector model: %w", err)
	}
	defer detector.Close()

	embedder, err := vision.NewEmbedder(cfg.Vision.EmbedderModelPath, nil)
	if err != nil {
		return fmt.Errorf("load embedder model: %w", err)
	}
	defer embedder.Close()

	// Setup router
	router := api.NewRouter(logger, &api.Dependencies{
		DB:       pool,
		Store:    store,
		Producer: producer,
		Detector: detector,
		Embedder: embedder,
		Config:   cfg,
	})
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	<-shutdownCtx.Done()
	logger.Info("server stopped")

	return nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/petnologia/petface/internal/config"
	"github.com/petnologia/petface/internal/database"
	"github.com/petnologia/petface/internal/observability"
	"github.com/petnologia/petface/internal/queue"
	"github.com/petnologia/petface/internal/repository"
	"github.com/petnologia/petface/internal/service"
	"github.com/petnologia/petface/internal/storage"
	"github.com/petnologia/petface/internal/vision"
	"github.com/petnologia/petface/internal/worker"
)

const consumerName = "template-workers"

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

	logger.Info("starting PetFace worker",
		slog.String("environment", cfg.Environment),
		slog.Int("workers", cfg.WorkerCount),
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

	// Queue
	producer, err := queue.NewProducer(cfg.NATSURL)
	if err != nil {
		return fmt.Errorf("connect to nats: %w", err)
	}
	defer producer.Close()
	if err := producer.EnsureStream(ctx); err != nil {
		return fmt.Errorf("ensure stream: %w", err)
	}

	consumer, err := queue.NewConsumer(cfg.NATSURL)
	if err != nil {
		return fmt.Errorf("connect nats consumer: %w", err)
	}
	defer consumer.Close()

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

	// Wiring
	imageRepo := repository.NewImageRepository(pool)
	detectionRepo := repository.NewDetectionRepository(pool)
	templateRepo := repository.NewTemplateRepository(pool)
	petRepo := repository.NewPetRepository(pool)
	jobRepo := repository.NewJobRepository(pool)

	builder := service.NewTemplateBuilder(
		imageRepo, detectionRepo, templateRepo, petRepo,
		store, detector, embedder, logger,
	)
	w := worker.NewWorker(jobRepo, petRepo, builder, logger)

	if err := consumer.ConsumeTemplateJobs(ctx, consumerName, w.HandleMessage, cfg.WorkerCount); err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}

	// Export queue depth while running
	go reportQueueDepth(ctx, producer)

	<-ctx.Done()
	logger.Info("shutdown signal received, stopping worker")

	return nil
}

func reportQueueDepth(ctx context.Context, producer *queue.Producer) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			depth, err := producer.QueueDepth(ctx)
			if err != nil {
				continue
			}
			observability.QueueDepth.Set(float64(depth))
		}
	}
}

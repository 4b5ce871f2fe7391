package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Object storage
	MinIO MinIOConfig

	// Queue
	NATSURL string `envconfig:"NATS_URL" default:"nats://localhost:4222"`

	// Models
	Vision VisionConfig

	// Worker
	WorkerCount int `envconfig:"WORKER_COUNT" default:"2"`

	// Base URL embedded into QR scan links
	ScanBaseURL string `envconfig:"SCAN_BASE_URL" default:"http://localhost:3000"`
}

type MinIOConfig struct {
	Endpoint  string `envconfig:"MINIO_ENDPOINT" default:"localhost:9000"`
	AccessKey string `envconfig:"MINIO_ACCESS_KEY" required:"true"`
	SecretKey string `envconfig:"MINIO_SECRET_KEY" required:"true"`
	Bucket    string `envconfig:"MINIO_BUCKET" default:"petface-images"`
	UseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
}

type VisionConfig struct {
	DetectorModelPath  string  `envconfig:"DETECTOR_MODEL_PATH" default:"models/petface_yolo.onnx"`
	EmbedderModelPath  string  `envconfig:"EMBEDDER_MODEL_PATH" default:"models/petface_clip.onnx"`
	DetectionThreshold float64 `envconfig:"DETECTION_THRESHOLD" default:"0.5"`
	ORTLibraryPath     string  `envconfig:"ORT_LIBRARY_PATH" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ImagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "petface",
		Name:      "images_processed_total",
		Help:      "Total number of uploaded images processed",
	}, []string{"source"})

	FacesDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "petface",
		Name:      "faces_detected_total",
		Help:      "Total number of pet faces detected",
	}, []string{"class"})

	InferenceDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "petface",
		Name:      "inference_duration_seconds",
		Help:      "Duration of ML inference stages",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"stage"})

	TemplateJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "petface",
		Name:      "template_jobs_total",
		Help:      "Template build jobs by outcome",
	}, []string{"outcome"})

	SearchesPerformed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "petface",
		Name:      "searches_total",
		Help:      "Face searches by result tier",
	}, []string{"type", "tier"})

	SearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "petface",
		Name:      "search_duration_seconds",
		Help:      "End to end face search duration",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	})

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "petface",
		Name:      "queue_depth",
		Help:      "Number of pending template jobs in queue",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "petface",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/petnologia/petface/internal/api/handler"
	"github.com/petnologia/petface/internal/api/middleware"
	"github.com/petnologia/petface/internal/config"
	"github.com/petnologia/petface/internal/match"
	"github.com/petnologia/petface/internal/qrimage"
	"github.com/petnologia/petface/internal/queue"
	"github.com/petnologia/petface/internal/repository"
	"github.com/petnologia/petface/internal/service"
	"github.com/petnologia/petface/internal/storage"
	"github.com/petnologia/petface/internal/vision"
)

type Dependencies struct {
	DB       *pgxpool.Pool
	Store    *storage.ImageStore
	Producer *queue.Producer
	Detector *vision.Detector
	Embedder *vision.Embedder
	Config   *config.Config
}

type Router struct {
	app    *fiber.App
	logger *slog.Logger
	deps   *Dependencies
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "PetFace API",
		BodyLimit:    64 * 1024 * 1024,
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(middleware.Metrics())
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Prometheus scrape endpoint (no auth required)
	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Health check endpoints (no auth required)
	var db handler.Pinger
	if r.deps != nil && r.deps.DB != nil {
		db = r.deps.DB
	}
	healthHandler := handler.NewHealthHandler(db)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	// Only configure the real routes if dependencies were provided
	if r.deps == nil {
		return
	}

	// Repositories
	ownerRepo := repository.NewOwnerRepository(r.deps.DB)
	petRepo := repository.NewPetRepository(r.deps.DB)
	sessionRepo := repository.NewSessionRepository(r.deps.DB)
	imageRepo := repository.NewImageRepository(r.deps.DB)
	detectionRepo := repository.NewDetectionRepository(r.deps.DB)
	templateRepo := repository.NewTemplateRepository(r.deps.DB)
	qrRepo := repository.NewQRRepository(r.deps.DB)
	qrSessionRepo := repository.NewQRSessionRepository(r.deps.DB)
	matchRepo := repository.NewMatchRepository(r.deps.DB)
	jobRepo := repository.NewJobRepository(r.deps.DB)

	// Matching pipeline shared by QR and direct searches
	pipeline := service.NewPipeline(r.deps.Detector, r.deps.Embedder, r.logger)
	engine := match.NewEngine(r.logger)

	// Services
	petService := service.NewPetService(petRepo, templateRepo, r.logger)
	registrationService := service.NewRegistrationService(
		petRepo, sessionRepo, imageRepo, detectionRepo, jobRepo, templateRepo,
		r.deps.Store, r.deps.Producer, r.deps.Detector, r.logger,
	)
	qrService := service.NewQRService(
		qrRepo, qrSessionRepo, templateRepo, matchRepo, r.deps.Store,
		pipeline, engine, qrimage.NewRenderer(), r.deps.Config.ScanBaseURL, r.logger,
	)
	searchService := service.NewSearchService(
		templateRepo, matchRepo, r.deps.Store, pipeline, engine, r.logger,
	)

	// Handlers
	petHandler := handler.NewPetHandler(petService, r.logger)
	registrationHandler := handler.NewRegistrationHandler(registrationService, r.logger)
	qrHandler := handler.NewQRHandler(qrService, r.logger)
	searchHandler := handler.NewSearchHandler(searchService, r.logger)

	// Public scan flow: the person who finds a pet has no API key
	r.app.Post("/scan/:code", qrHandler.Scan)
	r.app.Get("/scan/sessions/:token", qrHandler.SessionStatus)
	r.app.Post("/scan/sessions/:token/search", qrHandler.Search)

	// API v1 group with authentication
	v1 := r.app.Group("/v1")
	v1.Use(middleware.Auth(ownerRepo))

	// Pet routes
	v1.Post("/pets", petHandler.Create)
	v1.Get("/pets", petHandler.List)
	v1.Get("/pets/:id", petHandler.Get)
	v1.Get("/pets/:id/status", petHandler.Status)
	v1.Delete("/pets/:id/template", petHandler.DeleteTemplates)

	// Registration session routes
	v1.Post("/pets/:id/registration", registrationHandler.Start)
	v1.Post("/pets/:id/regenerate", registrationHandler.Regenerate)
	v1.Get("/registration/:token", registrationHandler.Validate)
	v1.Post("/registration/:token/images", registrationHandler.AddImages)
	v1.Post("/registration/:token/complete", registrationHandler.Complete)

	// QR code management
	v1.Post("/qr-codes", qrHandler.Create)
	v1.Get("/qr-codes", qrHandler.List)
	v1.Delete("/qr-codes/:code", qrHandler.Disable)

	// Direct search
	v1.Post("/search", searchHandler.Search)
	v1.Get("/search/history", searchHandler.History)
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	return r.app.Shutdown()
}

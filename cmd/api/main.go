package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_market/internal/cache"
	"github.com/GTDGit/gtd_market/internal/config"
	"github.com/GTDGit/gtd_market/internal/database"
	"github.com/GTDGit/gtd_market/internal/events"
	"github.com/GTDGit/gtd_market/internal/handler"
	"github.com/GTDGit/gtd_market/internal/middleware"
	"github.com/GTDGit/gtd_market/internal/repository"
	"github.com/GTDGit/gtd_market/internal/service"
	"github.com/GTDGit/gtd_market/internal/sse"
	"github.com/GTDGit/gtd_market/internal/utils"
	"github.com/GTDGit/gtd_market/internal/worker"
)

// main is the application entrypoint for the marketplace API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting market api")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 3c. Geography cache
	geoCache := cache.NewGeographyCache(redisClient, cfg.Geo.CacheTTL)

	// 4. Initialize repositories
	userRepo := repository.NewUserRepository(db)
	geoRepo := repository.NewGeographyRepository(db)
	addressRepo := repository.NewAddressRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	appealRepo := repository.NewAppealRepository(db)
	chatRepo := repository.NewChatRepository(db)
	photoRepo := repository.NewPhotoRepository(db)

	// 5. External collaborators: photo storage, moderation, event broker
	s3Svc, err := service.NewS3Service(ctx, &cfg.S3)
	if err != nil {
		log.Error().Err(err).Msg("S3 initialization failed")
		fmt.Fprintf(os.Stderr, "s3 initialization failed: %v\n", err)
		os.Exit(1)
	}

	var moderator service.Moderator = service.NopModerator{}
	if cfg.Moderation.Enabled {
		rekog, err := service.NewRekognitionModerator(ctx, &cfg.Moderation)
		if err != nil {
			log.Warn().Err(err).Msg("Rekognition initialization failed - photo moderation will be disabled")
		} else {
			moderator = rekog
			log.Info().Float64("min_confidence", cfg.Moderation.MinConfidence).Msg("photo moderation enabled")
		}
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		rabbit, err := events.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Warn().Err(err).Msg("RabbitMQ connection failed - domain events will not be published")
		} else {
			defer rabbit.Close()
			publisher = rabbit
			log.Info().Str("exchange", cfg.RabbitMQ.Exchange).Msg("event publisher connected")
		}
	}

	// 6. Session plumbing
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	hub := sse.NewHub()

	// 7. Initialize services
	geoSvc := service.NewGeographyService(geoRepo, geoCache)
	photoSvc := service.NewPhotoService(photoRepo, s3Svc, moderator, cfg.Upload.MaxPhotoBytes)
	authSvc := service.NewAuthService(userRepo, tokens, sse.NewHubNotifier(hub))
	ticketSvc := service.NewTicketService(ticketRepo, addressRepo, catalogRepo, userRepo, geoSvc, publisher)
	reviewSvc := service.NewReviewService(reviewRepo, ticketRepo, userRepo, photoSvc, publisher)
	appealSvc := service.NewAppealService(appealRepo, ticketRepo, chatRepo, userRepo, photoSvc, publisher)
	chatSvc := service.NewChatService(chatRepo, userRepo, publisher)
	profileSvc := service.NewProfileService(userRepo, addressRepo, geoSvc, reviewSvc)

	// 8. Initialize middleware
	authMw := middleware.NewAuthMiddleware(authSvc)
	loginLimiter := middleware.NewLoginRateLimiter(ctx, 5, time.Minute)
	metrics := middleware.NewMetrics()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		metrics,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// 9. Initialize handlers
	handlers := &Handlers{
		Health:    handler.NewHealthHandler(db, handler.PingFunc(redisClient.Ping)),
		Auth:      handler.NewAuthHandler(authSvc, loginLimiter),
		Session:   handler.NewSSEHandler(hub),
		Geography: handler.NewGeographyHandler(geoSvc),
		Catalog:   handler.NewCatalogHandler(catalogRepo),
		Ticket:    handler.NewTicketHandler(ticketSvc),
		Review:    handler.NewReviewHandler(reviewSvc),
		Appeal:    handler.NewAppealHandler(appealSvc),
		Chat:      handler.NewChatHandler(chatSvc),
		User:      handler.NewUserHandler(profileSvc),
		Metrics:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}

	// 10. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	router.Use(middleware.LoggingMiddleware())
	router.Use(metrics.Handle())
	setupRoutes(router, handlers, authMw)

	// 11. Start workers
	go worker.NewGeographyWarmWorker(geoSvc, cfg.Geo.WarmInterval).Start(ctx)

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop workers and SSE streams
	cancel()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health    *handler.HealthHandler
	Auth      *handler.AuthHandler
	Session   *handler.SSEHandler
	Geography *handler.GeographyHandler
	Catalog   *handler.CatalogHandler
	Ticket    *handler.TicketHandler
	Review    *handler.ReviewHandler
	Appeal    *handler.AppealHandler
	Chat      *handler.ChatHandler
	User      *handler.UserHandler
	Metrics   http.Handler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/health", handlers.Health.GetHealth)
	router.GET("/metrics", gin.WrapH(handlers.Metrics))

	api := router.Group("/api")

	// Auth
	api.POST("/auth/login", handlers.Auth.Login)
	api.POST("/auth/register", handlers.Auth.Register)
	api.POST("/auth/logout", authMiddleware.Required(), handlers.Auth.Logout)
	api.GET("/session/stream", authMiddleware.Required(), handlers.Session.Stream)

	// Reference data (public)
	api.GET("/provinces", handlers.Geography.GetProvinces)
	api.GET("/provinces/:id", handlers.Geography.GetProvince)
	api.GET("/cities", handlers.Geography.GetCities)
	api.GET("/cities/:id", handlers.Geography.GetCity)
	api.GET("/districts", handlers.Geography.GetDistricts)
	api.GET("/districts/:id", handlers.Geography.GetDistrict)
	api.GET("/suburbs", handlers.Geography.GetSuburbs)
	api.GET("/settlements", handlers.Geography.GetSettlements)
	api.GET("/communities", handlers.Geography.GetCommunities)
	api.GET("/villages", handlers.Geography.GetVillages)
	api.GET("/categories", handlers.Catalog.GetCategories)
	api.GET("/occupations", handlers.Catalog.GetOccupations)
	api.GET("/appeal-reasons", handlers.Appeal.Reasons)

	// Directory browsing works for guests too
	public := api.Group("")
	public.Use(authMiddleware.Optional())
	{
		public.GET("/tickets", handlers.Ticket.List)
		public.GET("/tickets/:id", handlers.Ticket.Get)
		public.GET("/reviews", handlers.Review.List)
		public.GET("/users/:id", handlers.User.Get)
		public.GET("/users/:id/profile", handlers.User.Profile)
	}

	// Authenticated routes
	private := api.Group("")
	private.Use(authMiddleware.Required())
	{
		private.GET("/tickets/links", handlers.Ticket.Links)
		private.POST("/tickets", handlers.Ticket.Create)
		private.PATCH("/tickets/:id", handlers.Ticket.Patch)

		private.POST("/reviews", handlers.Review.Create)
		private.POST("/reviews/:id/photos", handlers.Review.AddPhoto)

		private.GET("/appeals", handlers.Appeal.List)
		private.POST("/appeals", handlers.Appeal.Create)
		private.POST("/appeals/:id/photos", handlers.Appeal.AddPhoto)

		private.GET("/chats", handlers.Chat.Find)
		private.POST("/chats", handlers.Chat.Create)

		private.PUT("/users/me/addresses", handlers.User.UpdateAddresses)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

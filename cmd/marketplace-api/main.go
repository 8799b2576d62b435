package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"listinghub/marketplace/marketplace-backend/internal/auth"
	"listinghub/marketplace/marketplace-backend/internal/badges"
	"listinghub/marketplace/marketplace-backend/internal/bookings"
	"listinghub/marketplace/marketplace-backend/internal/config"
	"listinghub/marketplace/marketplace-backend/internal/contractors"
	"listinghub/marketplace/marketplace-backend/internal/jobs"
	"listinghub/marketplace/marketplace-backend/internal/listings"
	"listinghub/marketplace/marketplace-backend/internal/messages"
	"listinghub/marketplace/marketplace-backend/internal/notifications"
	"listinghub/marketplace/marketplace-backend/internal/reviews"
	"listinghub/marketplace/marketplace-backend/internal/subscriptions"
	"listinghub/marketplace/marketplace-backend/internal/uploads"
	"listinghub/marketplace/marketplace-backend/pkg/cache"
	"listinghub/marketplace/marketplace-backend/pkg/storage"
)

const listingCacheTTL = 5 * time.Minute

func main() {
	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Load .env for local development; ignored when absent
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	// Connect to database
	dbURL := cfg.Database.DSN()
	logger.Info("Connecting to database",
		zap.String("host", cfg.Database.Host),
		zap.String("dbname", cfg.Database.DBName))
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxConnections)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	ctx := context.Background()

	// Initialize Notifications Module
	var channels []notifications.Channel
	if cfg.Notifications.EmailEnabled {
		emailChannel, err := notifications.NewEmailChannel(ctx, cfg.AWS.Region, cfg.AWS.SenderEmail)
		if err != nil {
			logger.Fatal("Failed to initialize email channel", zap.Error(err))
		}
		channels = append(channels, emailChannel)
	}
	if cfg.Notifications.SMSEnabled {
		smsChannel, err := notifications.NewSMSChannel(ctx, cfg.AWS.Region)
		if err != nil {
			logger.Fatal("Failed to initialize SMS channel", zap.Error(err))
		}
		channels = append(channels, smsChannel)
	}
	notificationsRepo := notifications.NewPostgresRepository(db)
	notificationsService := notifications.NewService(notificationsRepo, channels, logger)
	notificationsHandler := notifications.NewHandler(notificationsService, logger)

	// Initialize Badges Module
	badgeStore := badges.NewPostgresStore(db)
	cohortCache := cache.New(cfg.Badges.CohortCacheTTL)
	aggregator := badges.NewAggregator(badgeStore, cohortCache, logger)
	engine := badges.NewEngine(badgeStore, aggregator, logger,
		badges.WithSweepParallelism(cfg.Badges.SweepParallel))
	sweeper := badges.NewSweeper(engine, cfg.Badges.SweepCron, logger)
	if err := sweeper.Start(ctx); err != nil {
		logger.Fatal("Failed to start badge sweeper", zap.Error(err))
	}
	badgesHandler := badges.NewHandler(engine, badgeStore, logger)

	// Initialize Contractors Module
	contractorsRepo := contractors.NewPostgresRepository(db)
	contractorsService := contractors.NewService(contractorsRepo, engine, notificationsService, logger)
	contractorsHandler := contractors.NewHandler(contractorsService, logger)

	// Initialize Auth Module
	authRepo := auth.NewPostgresRepository(db)
	authService := auth.NewService(authRepo, contractorsService, cfg.Security.JWTSecret, cfg.Security.TokenExpiry, logger)
	authHandler := auth.NewHandler(authService, logger)

	// Initialize Listings Module
	var searchIndex listings.SearchIndex
	if len(cfg.Search.Addresses) > 0 {
		esClient, err := elasticsearch.NewClient(elasticsearch.Config{
			Addresses: cfg.Search.Addresses,
			Username:  cfg.Search.Username,
			Password:  cfg.Search.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create Elasticsearch client", zap.Error(err))
		}
		searchIndex = listings.NewElasticIndex(esClient, cfg.Search.Index, logger)
		logger.Info("Listing search enabled", zap.Strings("addresses", cfg.Search.Addresses))
	} else {
		logger.Warn("No Elasticsearch address configured, listing search uses Postgres only")
	}
	listingsRepo := listings.NewPostgresRepository(db)
	listingsService := listings.NewService(listingsRepo, searchIndex, cache.New(listingCacheTTL), aggregator, listingCacheTTL, logger)
	listingsHandler := listings.NewHandler(listingsService, logger)

	// Initialize Bookings Module
	bookingsRepo := bookings.NewPostgresRepository(db)
	bookingsService := bookings.NewService(bookingsRepo, listingsService, notificationsService, logger)
	bookingsHandler := bookings.NewHandler(bookingsService, logger)

	// Initialize Reviews Module
	reviewsRepo := reviews.NewPostgresRepository(db)
	reviewsService := reviews.NewService(reviewsRepo, &bookingRefAdapter{repo: bookingsRepo}, listingsService, engine, notificationsService, logger)
	reviewsHandler := reviews.NewHandler(reviewsService, logger)

	// Initialize Jobs Module
	jobsRepo := jobs.NewPostgresRepository(db)
	jobsService := jobs.NewService(jobsRepo, notificationsService, logger)
	jobsHandler := jobs.NewHandler(jobsService, logger)

	// Initialize Messages Module
	messagesRepo := messages.NewPostgresRepository(db)
	messagesService := messages.NewService(messagesRepo, contractorsService, notificationsService, logger)
	messagesHandler := messages.NewHandler(messagesService, logger)

	// Initialize Subscriptions Module
	paymentProvider := subscriptions.NewHostedProvider(cfg.Payments.ProviderURL, cfg.Payments.ProviderAPIKey)
	tierStore := subscriptions.NewPostgresTierStore(db)
	subscriptionsService := subscriptions.NewService(paymentProvider, tierStore, engine, cfg.Payments.WebhookSecret, logger)
	subscriptionsHandler := subscriptions.NewHandler(subscriptionsService, logger)

	// Initialize Uploads Module
	var uploadsHandler *uploads.Handler
	if cfg.AWS.UploadBucket != "" {
		s3Client, err := storage.NewS3Client(ctx, cfg.AWS.Region, cfg.AWS.UploadBucket, "")
		if err != nil {
			logger.Fatal("Failed to initialize S3 client", zap.Error(err))
		}
		uploadsHandler = uploads.NewHandler(s3Client, logger)
	} else {
		logger.Warn("No upload bucket configured, file uploads disabled")
	}

	// Setup Router
	gin.SetMode(gin.DebugMode)
	router := gin.Default()

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Register Routes
	public := router.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(public)
		contractorsHandler.RegisterPublicRoutes(public)
		listingsHandler.RegisterPublicRoutes(public)
		reviewsHandler.RegisterPublicRoutes(public)
		subscriptionsHandler.RegisterPublicRoutes(public)
	}

	authed := router.Group("/api/v1")
	authed.Use(authService.Middleware())
	{
		authHandler.RegisterRoutes(authed)
		contractorsHandler.RegisterRoutes(authed)
		listingsHandler.RegisterRoutes(authed)
		reviewsHandler.RegisterRoutes(authed)
		jobsHandler.RegisterRoutes(authed)
		bookingsHandler.RegisterRoutes(authed)
		messagesHandler.RegisterRoutes(authed)
		subscriptionsHandler.RegisterRoutes(authed)
		notificationsHandler.RegisterRoutes(authed)
		badgesHandler.RegisterRoutes(authed)
		if uploadsHandler != nil {
			uploadsHandler.RegisterRoutes(authed)
		}
	}

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	// Start Server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen: %s\n", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.Int("port", cfg.Server.Port))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown:", zap.Error(err))
	}

	logger.Info("Server exiting")
}

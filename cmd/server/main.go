package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stayloop/service-booking/internal/application"
	"github.com/stayloop/service-booking/internal/auth"
	"github.com/stayloop/service-booking/internal/config"
	"github.com/stayloop/service-booking/internal/database"
	"github.com/stayloop/service-booking/internal/events"
	"github.com/stayloop/service-booking/internal/gateway"
	"github.com/stayloop/service-booking/internal/handler"
	"github.com/stayloop/service-booking/internal/health"
	"github.com/stayloop/service-booking/internal/lifecycle"
	"github.com/stayloop/service-booking/internal/logger"
	"github.com/stayloop/service-booking/internal/middleware"
	"github.com/stayloop/service-booking/internal/notify"
	"github.com/stayloop/service-booking/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewNamed(cfg.AppEnv, "service-booking")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting service-booking",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.ListingModel{}, &repository.BookingModel{}, &repository.PaymentModel{}, &repository.ReviewModel{}); err != nil {
			zapLogger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		zapLogger.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), "migrations", zapLogger); err != nil {
			zapLogger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer and notification dispatcher
	kafkaProducer := events.NewProducer(cfg.KafkaConfig.Brokers, zapLogger)
	defer kafkaProducer.Close()

	dispatcher := notify.NewDispatcher(kafkaProducer, "service-booking", zapLogger)

	// Initialize payment gateway client; no secret key selects the mock
	var chapaClient gateway.Client
	if cfg.ChapaConfig.SecretKey != "" {
		chapaClient = gateway.NewChapaClient(gateway.Config{
			BaseURL:     cfg.ChapaConfig.BaseURL,
			SecretKey:   cfg.ChapaConfig.SecretKey,
			CallbackURL: cfg.ChapaConfig.CallbackURL,
			ReturnURL:   cfg.ChapaConfig.ReturnURL,
			Timeout:     cfg.ChapaConfig.Timeout,
		}, zapLogger)
	} else {
		zapLogger.Warn("CHAPA_SECRET_KEY not set, using mock payment gateway")
		chapaClient = gateway.NewMockClient(zapLogger)
	}

	// Initialize repositories
	listingRepo := repository.NewListingRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	// Initialize lifecycle manager
	bookingLifecycle := lifecycle.NewBookingLifecycle(bookingRepo, paymentRepo, listingRepo, chapaClient, dispatcher, zapLogger)

	// Initialize application services
	listingService := application.NewListingService(listingRepo, zapLogger)
	bookingService := application.NewBookingService(bookingRepo, bookingLifecycle, zapLogger)
	paymentService := application.NewPaymentService(paymentRepo, bookingRepo, bookingLifecycle, zapLogger)
	reviewService := application.NewReviewService(reviewRepo, bookingRepo, zapLogger)

	// Initialize notification consumer delivering confirmation emails
	consumerGroupID := cfg.KafkaConfig.GroupPrefix + "booking-notifications"
	mailer := notify.NewMockMailer(zapLogger)
	notificationConsumer := notify.NewNotificationConsumer(
		cfg.KafkaConfig.Brokers,
		consumerGroupID,
		mailer,
		zapLogger,
	)
	defer notificationConsumer.Close()

	// Start notification consumer in a goroutine
	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	go func() {
		zapLogger.Info("starting notification consumer")
		if err := notificationConsumer.Start(consumerCtx); err != nil {
			if consumerCtx.Err() == nil {
				zapLogger.Error("notification consumer failed", zap.Error(err))
			}
		}
	}()

	// Initialize HTTP handlers
	listingHandler := handler.NewListingHandler(listingService, bookingService, reviewService)
	bookingHandler := handler.NewBookingHandler(bookingService, paymentService, reviewService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	staffHandler := handler.NewStaffHandler(bookingService, paymentService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.LoggerMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-booking")
	healthHandler.RegisterRoutes(router)

	// Register API routes
	apiV1 := router.Group("/api/v1")
	listingHandler.RegisterRoutes(apiV1, jwtManager)
	bookingHandler.RegisterRoutes(apiV1, jwtManager)
	paymentHandler.RegisterRoutes(apiV1, jwtManager)
	staffHandler.RegisterRoutes(apiV1, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down service-booking...")

	// Cancel notification consumer
	consumerCancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("service-booking stopped")
}

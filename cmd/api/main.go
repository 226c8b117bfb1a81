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

	"github.com/jmoiron/sqlx"

	"github.com/jmauas/consultorio-sub000/internal/adapters/cache"
	"github.com/jmauas/consultorio-sub000/internal/adapters/database"
	"github.com/jmauas/consultorio-sub000/internal/adapters/events"
	"github.com/jmauas/consultorio-sub000/internal/api/handlers"
	"github.com/jmauas/consultorio-sub000/internal/api/middleware"
	"github.com/jmauas/consultorio-sub000/internal/api/routes"
	"github.com/jmauas/consultorio-sub000/internal/application/services"
	"github.com/jmauas/consultorio-sub000/internal/domain/providers"
	"github.com/jmauas/consultorio-sub000/internal/domain/repositories"
	"github.com/jmauas/consultorio-sub000/internal/infrastructure/clients/postgres"
	"github.com/jmauas/consultorio-sub000/internal/infrastructure/clients/redis"
	"github.com/jmauas/consultorio-sub000/internal/infrastructure/observability"
	"github.com/jmauas/consultorio-sub000/pkg/config"
)

func main() {

	// Load configuration

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("ENV"))
	logger := *observability.GetLogger()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		// Continue without Redis - the application can work without caching
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize event bus for real-time updates
	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Println("Event bus initialized successfully")
	} else {
		log.Println("Event bus disabled (Redis not available)")
	}

	// Initialize adapters

	// Create base doctor adapter
	baseDoctorAdapter := database.NewDoctorAdapter(pgClient)

	// Wrap with caching if Redis is available (for read performance optimization)
	var doctorAdapter repositories.DoctorRepository
	if cacheProvider != nil {
		doctorAdapter = database.NewCachedDoctorAdapter(baseDoctorAdapter, cacheProvider)
		log.Println("✓ Doctor adapter wrapped with caching layer")
	} else {
		doctorAdapter = baseDoctorAdapter
		log.Println("⚠ Doctor adapter running without cache (Redis unavailable)")
	}

	agendaAdapter := database.NewAgendaAdapter(pgClient)
	turnoAdapter := database.NewTurnoAdapter(pgClient)
	tipoDeTurnoAdapter := database.NewTipoDeTurnoAdapter(pgClient)
	configAdapter := database.NewConfigAdapter(pgClient)

	// Initialize services

	availabilityService := services.NewAvailabilityService(
		doctorAdapter,
		agendaAdapter,
		turnoAdapter,
		tipoDeTurnoAdapter,
		configAdapter,
		cacheProvider,
		logger,
	)

	turnoService := services.NewTurnoService(
		turnoAdapter,
		doctorAdapter,
		tipoDeTurnoAdapter,
		eventBus,
		logger,
	)

	// Enable WhatsApp notifications when credentials are configured
	notificationService, err := services.NewNotificationService(sqlx.NewDb(pgClient.DB(), "postgres"))
	if err != nil {
		log.Printf("Warning: notifications disabled: %v", err)
	} else {
		turnoService.SetNotificationService(notificationService)
		log.Println("Notification service configured for turno service")
	}

	// Initialize cache invalidation service
	var cacheInvalidationService *services.CacheInvalidationService
	if cacheProvider != nil && eventBus != nil {
		cacheInvalidationService = services.NewCacheInvalidationService(cacheProvider, eventBus)
		if err := cacheInvalidationService.Start(); err != nil {
			log.Printf("Warning: Failed to start cache invalidation service: %v", err)
		} else {
			log.Println("Cache invalidation service started successfully")
		}
	}

	// Start cache warming service for improved read performance
	if cacheProvider != nil {
		warmingService := services.NewCacheWarmingService(
			doctorAdapter, // Use cached adapter to warm cache
			cacheProvider,
		)
		go warmingService.StartPeriodicWarming(ctx, 5*time.Minute)
		log.Println("✓ Cache warming service started (refreshes every 5 minutes)")
	}

	// Initialize handlers

	availabilityHandler := handlers.NewAvailabilityHandler(availabilityService)

	turnoHandler := handlers.NewTurnoHandler(turnoService)

	// Initialize cache middleware
	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
		log.Println("Cache middleware initialized successfully")
	}

	// Set up router

	router := routes.NewRouter(
		availabilityHandler,
		turnoHandler,
		cacheMiddleware,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	// Close event bus
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Printf("Error closing event bus: %v", err)
		}
	}

	// Stop cache invalidation service
	if cacheInvalidationService != nil {
		cacheInvalidationService.Stop()
	}

	log.Println("Server stopped")
}

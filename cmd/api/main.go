package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/carefinder/internal/adapters/cache"
	"github.com/zatekoja/carefinder/internal/adapters/database"
	"github.com/zatekoja/carefinder/internal/adapters/search"
	"github.com/zatekoja/carefinder/internal/api/handlers"
	"github.com/zatekoja/carefinder/internal/api/routes"
	"github.com/zatekoja/carefinder/internal/application/services"
	"github.com/zatekoja/carefinder/internal/domain/repositories"
	mongoclient "github.com/zatekoja/carefinder/internal/infrastructure/clients/mongo"
	"github.com/zatekoja/carefinder/internal/infrastructure/clients/redis"
	"github.com/zatekoja/carefinder/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/carefinder/internal/infrastructure/observability"
	"github.com/zatekoja/carefinder/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Document store
	mongoClient, err := mongoclient.NewClient(ctx, &cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Close(ctx); err != nil {
			log.Error().Err(err).Msg("error closing MongoDB client")
		}
	}()

	if err := database.EnsureIndexes(ctx, mongoClient); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure MongoDB indexes")
	}

	health := map[string]handlers.Pinger{"mongo": mongoClient}

	// Repositories
	baseFacilityAdapter := database.NewFacilityAdapter(mongoClient, cfg.Mongo.QueryTimeout, metrics)
	var facilityRepo repositories.FacilityRepository = baseFacilityAdapter
	var invalidator services.CacheInvalidator

	if cfg.Cache.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			// the service works without caching
			log.Warn().Err(err).Msg("Redis unavailable, facility reads are not cached")
		} else {
			defer redisClient.Close()
			health["redis"] = redisClient

			cached := database.NewCachedFacilityAdapter(
				baseFacilityAdapter,
				cache.NewRedisAdapter(redisClient),
				cfg.Cache.DetailTTL,
				cfg.Cache.SearchTTL,
				metrics,
			)
			facilityRepo = cached
			invalidator = cached
			log.Info().Msg("facility reads cached in Redis")

			if cfg.Cache.WarmPages > 0 {
				services.NewCacheWarmingService(cached, cfg.Cache.WarmPages, 0).
					StartPeriodicWarming(ctx, cfg.Cache.WarmInterval)
			}
		}
	}

	var searchRepo repositories.FacilitySearchRepository
	if cfg.Typesense.Enabled {
		tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
		if err != nil {
			log.Warn().Err(err).Msg("Typesense unavailable, facility suggestions disabled")
		} else {
			adapter := search.NewTypesenseAdapter(tsClient)
			if err := adapter.InitSchema(ctx); err != nil {
				log.Warn().Err(err).Msg("failed to initialize Typesense schema")
			}
			searchRepo = adapter
			health["typesense"] = tsClient
		}
	}

	reviewRepo := database.NewReviewAdapter(mongoClient, cfg.Mongo.QueryTimeout, metrics)
	insurerRepo := database.NewInsurerAdapter(mongoClient, cfg.Mongo.QueryTimeout, metrics)
	specialtyRepo := database.NewSpecialtyAdapter(mongoClient, cfg.Mongo.QueryTimeout, metrics)

	// Services
	facilityService := services.NewFacilityService(facilityRepo, searchRepo)
	reviewService := services.NewReviewService(reviewRepo, invalidator)
	catalogService := services.NewCatalogService(insurerRepo, specialtyRepo)

	router := routes.NewRouter(
		handlers.NewFacilityHandler(facilityService),
		handlers.NewCatalogHandler(catalogService),
		handlers.NewReviewHandler(reviewService),
		handlers.NewHealthHandler(health),
		metrics,
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	log.Info().Msg("server stopped")
}

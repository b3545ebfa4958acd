package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/carefinder/internal/adapters/database"
	"github.com/zatekoja/carefinder/internal/adapters/search"
	"github.com/zatekoja/carefinder/internal/domain/entities"
	"github.com/zatekoja/carefinder/internal/domain/repositories"
	mongoclient "github.com/zatekoja/carefinder/internal/infrastructure/clients/mongo"
	"github.com/zatekoja/carefinder/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/carefinder/internal/infrastructure/observability"
	"github.com/zatekoja/carefinder/pkg/config"
)

// facilitySource lists every facility to index
type facilitySource interface {
	FindAll(ctx context.Context, sorts entities.SortCriteria) ([]*entities.Facility, error)
}

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "drop the Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	interval, err := parseInterval(intervalFlag, os.Getenv("REINDEX_INTERVAL"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid interval")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	observability.InitLogger(cfg.OTEL.ServiceName+"-indexer", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, err := mongoclient.NewClient(ctx, &cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		_ = mongoClient.Close(context.Background())
	}()

	tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Typesense")
	}

	facilities := database.NewFacilityAdapter(mongoClient, cfg.Mongo.QueryTimeout, nil)
	index := search.NewTypesenseAdapter(tsClient)

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Info().Msg("dropping facility names collection")
		if err := tsClient.DropSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to drop collection")
		}
	}

	for {
		if err := index.InitSchema(ctx); err != nil {
			log.Error().Err(err).Msg("failed to initialize schema")
		} else {
			indexed, failed, err := reindex(ctx, facilities, index)
			if err != nil {
				log.Error().Err(err).Msg("reindex failed")
			} else {
				log.Info().Int("indexed", indexed).Int("failed", failed).Msg("reindex complete")
			}
		}

		if interval <= 0 {
			return
		}

		select {
		case <-ctx.Done():
			log.Info().Msg("reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func parseInterval(flagValue, envValue string) (time.Duration, error) {
	raw := strings.TrimSpace(flagValue)
	if raw == "" {
		raw = strings.TrimSpace(envValue)
	}
	if raw == "" {
		return 0, nil
	}

	interval, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be greater than zero, got %s", interval)
	}
	return interval, nil
}

// reindex upserts every facility into the name index. A facility that fails
// to index is logged and counted; only a failed listing aborts the run.
func reindex(ctx context.Context, source facilitySource, index repositories.FacilitySearchRepository) (indexed, failed int, err error) {
	facilities, err := source.FindAll(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("list facilities: %w", err)
	}

	for _, f := range facilities {
		if err := ctx.Err(); err != nil {
			return indexed, failed, err
		}
		if err := index.Index(ctx, f); err != nil {
			log.Warn().Err(err).Str("facility_id", f.ID).Msg("failed to index facility")
			failed++
			continue
		}
		indexed++
	}
	return indexed, failed, nil
}

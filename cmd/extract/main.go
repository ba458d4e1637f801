package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pitchside/fixtures-sync/internal/cache"
	"github.com/pitchside/fixtures-sync/internal/client"
	"github.com/pitchside/fixtures-sync/internal/config"
	"github.com/pitchside/fixtures-sync/internal/pipeline"
	"github.com/pitchside/fixtures-sync/internal/repository"
)

// One-shot full extraction: fetch every fixture for every configured league
// season, write the snapshot pair, and replace the fixtures table.
func main() {
	setupLogger()

	cfg := config.MustLoad()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, cancelling extraction...")
		cancel()
	}()

	apiClient := client.NewClient(
		cfg.APIFootballBaseURL,
		cfg.APIFootballKey,
		cfg.APIFootballHost,
		cfg.APIFootballTimeout,
		cfg.APIMaxRetries,
	)

	db, err := repository.NewDatabase(ctx, cfg.DatabaseDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	redisCache, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     strconv.Itoa(cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, cfg.CacheTTLMetadata)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
	} else {
		defer redisCache.Close()
	}

	pipe := pipeline.New(cfg, apiClient, db, redisCache)

	start := time.Now()
	summary, err := pipe.RunFullExtraction(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Full extraction failed")
	}

	log.Info().
		Int("league_seasons", summary.LeagueSeasons).
		Int("empty_groups", summary.EmptyGroups).
		Int("fixtures", summary.Stored).
		Int("skipped", summary.Skipped).
		Str("csv", summary.CSVPath).
		Str("parquet", summary.ParquetPath).
		Dur("duration", time.Since(start)).
		Msg("Full extraction finished")
}

func setupLogger() {
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if parsed, err := zerolog.ParseLevel(lvl); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
}

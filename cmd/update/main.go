package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"strings"
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

// One-shot incremental update: refresh stale (or explicitly listed) fixtures
// from the API, apply only the rows that changed, and republish snapshots.
func main() {
	idsFlag := flag.String("ids", "", "comma-separated fixture ids to refresh (default: stale fixtures from the database)")
	baseFile := flag.String("base-file", "", "baseline full snapshot to compare against (default: latest on disk)")
	updatesFile := flag.String("updates-file", "", "replay a previously written update snapshot instead of fetching")
	batchSize := flag.Int("batch-size", 0, "rows per update transaction (default: UPDATE_BATCH_SIZE)")
	flag.Parse()

	setupLogger()

	cfg := config.MustLoad()
	if *batchSize > 0 {
		cfg.UpdateBatchSize = *batchSize
	}

	ids, err := parseIDs(*idsFlag)
	if err != nil {
		log.Fatal().Err(err).Str("ids", *idsFlag).Msg("Invalid -ids value")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, cancelling update...")
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
	summary, err := pipe.RunUpdate(ctx, pipeline.UpdateOptions{
		FixtureIDs:  ids,
		BaseFile:    *baseFile,
		UpdatesFile: *updatesFile,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Incremental update failed")
	}

	log.Info().
		Int("requested", summary.Requested).
		Int("fetched", summary.Fetched).
		Int("changed", summary.Changed).
		Int("applied", summary.Applied).
		Dur("duration", time.Since(start)).
		Msg("Incremental update finished")
}

func parseIDs(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
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

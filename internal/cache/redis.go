package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/pitchside/fixtures-sync/internal/models"
)

const leagueSeasonsKey = "fixtures-sync:league-seasons"

// Config holds Redis connection settings.
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RedisCache caches the league-season reference rows so a full extraction
// does not hit the database for metadata on every run. The cache is
// optional: callers treat a nil *RedisCache as a permanent miss.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(cfg Config, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

// GetLeagueSeasons returns the cached metadata rows, or (nil, false) on any
// miss or error. Cache errors are logged, never propagated.
func (c *RedisCache) GetLeagueSeasons(ctx context.Context) ([]models.LeagueSeason, bool) {
	if c == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, leagueSeasonsKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Msg("Failed to read league seasons from cache")
		}
		return nil, false
	}

	var rows []models.LeagueSeason
	if err := json.Unmarshal(data, &rows); err != nil {
		log.Warn().Err(err).Msg("Discarding undecodable cached league seasons")
		return nil, false
	}

	return rows, true
}

// SetLeagueSeasons stores the metadata rows with the configured TTL.
func (c *RedisCache) SetLeagueSeasons(ctx context.Context, rows []models.LeagueSeason) {
	if c == nil {
		return
	}

	data, err := json.Marshal(rows)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to encode league seasons for cache")
		return
	}

	if err := c.client.Set(ctx, leagueSeasonsKey, data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("Failed to write league seasons to cache")
	}
}

// Close releases the underlying client.
func (c *RedisCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

package pipeline

import (
	"github.com/pitchside/fixtures-sync/internal/cache"
	"github.com/pitchside/fixtures-sync/internal/client"
	"github.com/pitchside/fixtures-sync/internal/config"
	"github.com/pitchside/fixtures-sync/internal/repository"
)

// Pipeline wires the API client, database, and optional cache into the two
// runnable flows: a full extraction and an incremental update.
type Pipeline struct {
	cfg    *config.Config
	client *client.Client
	db     *repository.Database
	cache  *cache.RedisCache
}

// New builds a pipeline. cache may be nil; metadata is then always read from
// the database.
func New(cfg *config.Config, apiClient *client.Client, db *repository.Database, redisCache *cache.RedisCache) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		client: apiClient,
		db:     db,
		cache:  redisCache,
	}
}

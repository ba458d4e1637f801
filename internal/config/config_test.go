package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APIFOOTBALL_KEY", "test-key")
	t.Setenv("DATABASE_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "v3.football.api-sports.io", cfg.APIFootballHost)
	assert.Equal(t, 10*time.Second, cfg.APIFootballTimeout)
	assert.Equal(t, 5, cfg.APIMaxRetries)
	assert.Equal(t, 100, cfg.UpdateBatchSize)
	assert.Equal(t, 20, cfg.FetchIDBatchSize)
	assert.Equal(t, "data/cleaned", cfg.SnapshotDir)
	assert.Equal(t, "0 3 * * *", cfg.FullExtractionCron)
	assert.Equal(t, 30*time.Minute, cfg.UpdateInterval)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_MissingAPIKeyFails(t *testing.T) {
	t.Setenv("APIFOOTBALL_KEY", "")
	t.Setenv("DATABASE_PASSWORD", "secret")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_RejectsNonPositiveBatchSizes(t *testing.T) {
	cfg := &Config{
		APIFootballKey:   "k",
		DatabasePassword: "p",
		UpdateBatchSize:  0,
		FetchIDBatchSize: 20,
	}
	assert.Error(t, cfg.Validate())

	cfg.UpdateBatchSize = 100
	cfg.FetchIDBatchSize = -1
	assert.Error(t, cfg.Validate())

	cfg.FetchIDBatchSize = 20
	assert.NoError(t, cfg.Validate())
}

func TestDatabaseDSN(t *testing.T) {
	cfg := &Config{
		DatabaseHost:     "db.internal",
		DatabasePort:     5433,
		DatabaseName:     "football",
		DatabaseUser:     "svc",
		DatabasePassword: "pw",
		DatabaseSSLMode:  "require",
	}

	assert.Equal(t, "postgres://svc:pw@db.internal:5433/football?sslmode=require", cfg.DatabaseDSN())
}

func TestRedisAddr(t *testing.T) {
	cfg := &Config{RedisHost: "cache.internal", RedisPort: 6380}
	assert.Equal(t, "cache.internal:6380", cfg.RedisAddr())
}

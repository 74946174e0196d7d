package shared_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gbp_reviews/internal/shared"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := shared.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 90000, cfg.CacheTTLSeconds)
	assert.Equal(t, 25*time.Hour, cfg.CacheTTL())
	assert.Equal(t, 5, cfg.UpstreamRPS)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("GOOGLE_REFRESH_TOKEN", "rt-1")
	t.Setenv("SYNC_SECRET", "s3cret")
	t.Setenv("CACHE_TTL_SECONDS", "60")
	t.Setenv("GBP_LOCATION_ID", "456")

	cfg, err := shared.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "rt-1", cfg.GoogleRefreshToken)
	assert.Equal(t, "s3cret", cfg.SyncSecret)
	assert.Equal(t, time.Minute, cfg.CacheTTL())
	assert.Equal(t, "456", cfg.LocationID)
}

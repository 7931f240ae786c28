package upstream

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	_, ok, err := cache.Get(ctx, "/api/projects")
	require.NoError(t, err)
	assert.False(t, ok)

	body := []byte(`[]`)
	require.NoError(t, cache.Set(ctx, "/api/projects", body, time.Minute))
	body[0] = 'x'

	got, ok, err := cache.Get(ctx, "/api/projects")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`[]`), got, "stored bodies are copied")

	now = now.Add(time.Minute)
	_, ok, err = cache.Get(ctx, "/api/projects")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache_ZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	require.NoError(t, cache.Set(ctx, "k", []byte("v"), 0))

	cache.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	_, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNoopCache(t *testing.T) {
	var cache NoopCache
	require.NoError(t, cache.Set(context.Background(), "k", []byte("v"), time.Minute))

	_, ok, err := cache.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

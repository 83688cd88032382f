package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/academy-ops-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var out []string
	assert.True(t, errors.Is(repo.Get(ctx, "slots:x", &out), appErrors.ErrCacheMiss))
	assert.NoError(t, repo.Set(ctx, "slots:x", []string{"a"}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "slots:*"))
}

func TestCacheRepositoryWrapsBackendErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer client.Close() //nolint:errcheck
	repo := NewCacheRepository(client, nil)
	ctx := context.Background()

	var out []string
	err := repo.Get(ctx, "slots:x", &out)
	require.Error(t, err)
	assert.False(t, errors.Is(err, appErrors.ErrCacheMiss))
	assert.Contains(t, err.Error(), "redis get slots:x")

	err = repo.Set(ctx, "slots:x", make(chan int), time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marshal cache value")

	err = repo.DeleteByPattern(ctx, "slots:*")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis scan pattern")
}

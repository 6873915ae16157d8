package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type projectKey string

type cachedProject struct {
	ID   int
	Path string
}

func TestInMemoryCacheManager_SetThenGet(t *testing.T) {
	cache := NewInMemoryCacheManager[projectKey, cachedProject]("projects", DefaultExpiration, DefaultCleanupInterval)
	want := cachedProject{ID: 42, Path: "group/app"}

	cache.Set(context.Background(), "project:42", want, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "project:42")
	require.True(t, ok)
	require.Equal(t, want, got)
}

func TestInMemoryCacheManager_Miss(t *testing.T) {
	cache := NewInMemoryCacheManager[string, []int]("issues", DefaultExpiration, DefaultCleanupInterval)

	got, ok := cache.Get(context.Background(), "issues:1")
	require.False(t, ok)
	require.Nil(t, got)
}

func TestInMemoryCacheManager_WrongTypeIsAMiss(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("issues", DefaultExpiration, DefaultCleanupInterval)
	cache.cache.Set("issues:1", 123, DefaultExpiration)

	got, ok := cache.Get(context.Background(), "issues:1")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_Expiry(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("issues", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(context.Background(), "k", "v", 10*time.Millisecond)

	require.Eventually(t, func() bool {
		_, ok := cache.Get(context.Background(), "k")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestInMemoryCacheManager_DeleteAndPrefix(t *testing.T) {
	ctx := context.Background()
	cache := NewInMemoryCacheManager[string, int]("issues", DefaultExpiration, DefaultCleanupInterval)
	cache.Set(ctx, "issues:1", 1, DefaultExpiration)
	cache.Set(ctx, "issues:2", 2, DefaultExpiration)
	cache.Set(ctx, "projects", 3, DefaultExpiration)

	require.NoError(t, cache.Delete(ctx, "issues:1"))
	_, ok := cache.Get(ctx, "issues:1")
	require.False(t, ok)

	removed, err := cache.DeletePrefix(ctx, "issues:")
	require.NoError(t, err)
	require.Equal(t, 1, removed)
	_, ok = cache.Get(ctx, "issues:2")
	require.False(t, ok)

	_, ok = cache.Get(ctx, "projects")
	require.True(t, ok, "keys outside the prefix survive")
}

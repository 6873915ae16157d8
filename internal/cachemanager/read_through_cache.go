package cachemanager

import (
	"context"
	"time"
)

// ReadThroughCache loads a value with fn on a miss and stores it.
// When shouldSkipCache is set every call goes straight to fn.
type ReadThroughCache[K comparable, V any, I any] struct {
	cache           CacheManager[K, V]
	fn              func(ctx context.Context, input I) (V, error)
	shouldSkipCache bool
}

func NewReadThroughCache[K comparable, V any, I any](
	cache CacheManager[K, V],
	fn func(ctx context.Context, input I) (V, error),
	shouldSkipCache bool,
) *ReadThroughCache[K, V, I] {
	return &ReadThroughCache[K, V, I]{
		cache:           cache,
		fn:              fn,
		shouldSkipCache: shouldSkipCache,
	}
}

// Get returns the cached value for key or loads it from input.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	if r.shouldSkipCache {
		return r.fn(ctx, input)
	}

	if value, ok := r.cache.Get(ctx, key); ok {
		return value, nil
	}

	return r.Load(ctx, key, input, ttl)
}

// Load bypasses the cached value, calls fn and stores the fresh result.
// Errors leave any previous entry untouched.
func (r *ReadThroughCache[K, V, I]) Load(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	value, err := r.fn(ctx, input)
	if err != nil {
		return value, err
	}
	if !r.shouldSkipCache {
		r.cache.Set(ctx, key, value, ttl)
	}
	return value, nil
}

// Invalidate drops key so the next Get reloads it.
func (r *ReadThroughCache[K, V, I]) Invalidate(ctx context.Context, key K) {
	_ = r.cache.Delete(ctx, key)
}

// InvalidatePrefix drops every entry whose key starts with prefix.
func (r *ReadThroughCache[K, V, I]) InvalidatePrefix(ctx context.Context, prefix string) int {
	n, _ := r.cache.DeletePrefix(ctx, prefix)
	return n
}

// Package cachemanager caches GitLab reads (project lists, issue lists)
// behind a small generic interface so callers can swap the backing store.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager stores values of type V under string-like keys.
type CacheManager[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	// DeletePrefix drops every key that starts with prefix and reports how
	// many were removed.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

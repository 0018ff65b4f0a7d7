package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache defines the interface for caching operations.
// This abstraction allows swapping between memory cache (development)
// and Redis cache (production) without changing business logic.
type Cache interface {
	// Get retrieves a value by key. Returns ErrCacheMiss if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error

	// GetOrSet retrieves a value or computes and stores it if missing.
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error)
}

// CacheError is a sentinel cache error.
type CacheError string

func (e CacheError) Error() string { return string(e) }

const (
	// ErrCacheMiss indicates the key was not found in cache.
	ErrCacheMiss CacheError = "cache miss"
)

// PrefsKey is the cache key for an account's display preferences.
func PrefsKey(accountID int64) string {
	return fmt.Sprintf("prefs:%d", accountID)
}

// ViewStateKey is the cache key for an account's items view state.
func ViewStateKey(accountID int64) string {
	return fmt.Sprintf("viewstate:%d", accountID)
}

// GroupsKey is the cache key for an account's dashboard group snapshot.
// Invalidated on every item write for the account.
func GroupsKey(accountID int64) string {
	return fmt.Sprintf("groups:%d", accountID)
}

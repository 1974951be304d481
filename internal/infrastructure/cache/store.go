package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is absent or its entry has expired.
var ErrNotFound = errors.New("cache: key not found")

// Store is the cache abstraction shared by the pipeline's read-mostly
// caches (redirect resolutions, reputation results). Writes are idempotent
// upserts; concurrent analyses may race harmlessly to the same entry.
type Store interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Cache key namespaces
const (
	KeyResolvePrefix    = "cache:resolve:"
	KeyReputationPrefix = "cache:reputation:"
	KeyRateLimitPrefix  = "rate_limit:"
)

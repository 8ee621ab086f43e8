package interfaces

import (
	"context"
	"time"
)

// CacheProvider stores resolved menus and rendered fragments. A nil
// provider disables caching; implementations must be safe for
// concurrent use.
type CacheProvider interface {
	Get(ctx context.Context, key string) (any, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

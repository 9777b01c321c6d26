// Package cache is the expiring key-value store in front of the atendimentos repo.
package cache

import "context"

// Cache stores opaque values (JSON) for a fixed TTL. Implementations never return
// errors to callers: a failing cache behaves as a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Delete(ctx context.Context, keys ...string)
	// DeleteMatching removes every key that contains substr.
	DeleteMatching(ctx context.Context, substr string)
	Close() error
}

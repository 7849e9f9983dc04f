// Package cache provides the byte-level response cache used by the
// analytics read path.
package cache

import (
	"context"
	"time"
)

// BytesCache stores raw bytes under a key with a TTL. A miss is (nil, false,
// nil); errors are reserved for backend failures.
type BytesCache interface {
	GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

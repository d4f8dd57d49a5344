// Package lock provides short-lived, cache-backed locks used to suppress
// duplicate execution of the same logical request within a time window.
// All implementations guarantee a single atomic set-if-absent operation
// per Acquire; they make no retry, backoff, or ordering guarantees.
package lock

import (
	"context"
	"time"
)

// Store is a one-shot mutual-exclusion lock keyed by an arbitrary string.
type Store interface {
	// Acquire attempts to set the key with the given time-to-live. It
	// returns true when the key did not exist and was set (the lock is
	// held), and false when the key already exists. The lock is never
	// released explicitly by the anti-replay path; it expires with its
	// TTL.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release removes the key, allowing the next Acquire to succeed
	// before the TTL elapses.
	Release(ctx context.Context, key string) error
}

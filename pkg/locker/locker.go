package locker

import (
	"context"
	"errors"
	"time"
)

var ErrNotOwner = errors.New("lock not owned by this client")

// Locker is a best-effort mutual exclusion keyed by string.
type Locker interface {
	// TryLock returns acquired=false without error when someone else holds the key.
	TryLock(ctx context.Context, key string, ttl time.Duration) (acquired bool, value string, err error)
	Unlock(ctx context.Context, key, value string) error
}

// Acquire polls TryLock until it wins or wait runs out. The release func is a no-op
// when the lock was not acquired.
func Acquire(ctx context.Context, l Locker, key string, ttl, wait time.Duration) (bool, func(), error) {
	deadline := time.Now().Add(wait)
	backoff := 20 * time.Millisecond

	for {
		ok, value, err := l.TryLock(ctx, key, ttl)
		if err != nil {
			return false, func() {}, err
		}
		if ok {
			return true, func() { _ = l.Unlock(context.Background(), key, value) }, nil
		}
		if time.Now().Add(backoff).After(deadline) {
			return false, func() {}, nil
		}

		select {
		case <-ctx.Done():
			return false, func() {}, ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 200*time.Millisecond {
			backoff *= 2
		}
	}
}

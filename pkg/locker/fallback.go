package locker

import (
	"context"
	"time"
)

// FallbackLocker uses the primary locker and switches to the secondary for a call
// whenever the primary errors (for example redis being unreachable).
type FallbackLocker struct {
	primary   Locker
	secondary Locker
	onError   func(op string, err error)
}

func NewFallbackLocker(primary, secondary Locker, onError func(op string, err error)) *FallbackLocker {
	return &FallbackLocker{primary: primary, secondary: secondary, onError: onError}
}

const secondaryMark = "local:"

func (l *FallbackLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, string, error) {
	ok, value, err := l.primary.TryLock(ctx, key, ttl)
	if err == nil {
		return ok, value, nil
	}
	l.report("lock", err)

	ok, value, err = l.secondary.TryLock(ctx, key, ttl)
	if err != nil || !ok {
		return ok, value, err
	}
	return true, secondaryMark + value, nil
}

func (l *FallbackLocker) Unlock(ctx context.Context, key, value string) error {
	if len(value) > len(secondaryMark) && value[:len(secondaryMark)] == secondaryMark {
		return l.secondary.Unlock(ctx, key, value[len(secondaryMark):])
	}
	err := l.primary.Unlock(ctx, key, value)
	if err != nil && err != ErrNotOwner {
		l.report("unlock", err)
	}
	return err
}

func (l *FallbackLocker) report(op string, err error) {
	if l.onError != nil {
		l.onError(op, err)
	}
}

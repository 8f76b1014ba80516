package locker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// MemoryLocker is a single-process lock table backed by go-cache expiry.
type MemoryLocker struct {
	mu    sync.Mutex
	locks *cache.Cache
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: cache.New(time.Minute, 5*time.Minute)}
}

func (l *MemoryLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	value := uuid.NewString()
	if err := l.locks.Add(key, value, ttl); err != nil {
		// key present and not expired
		return false, "", nil
	}
	return true, value, nil
}

func (l *MemoryLocker) Unlock(ctx context.Context, key, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	stored, ok := l.locks.Get(key)
	if !ok {
		return nil
	}
	if stored.(string) != value {
		return ErrNotOwner
	}
	l.locks.Delete(key)
	return nil
}

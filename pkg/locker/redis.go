package locker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// compare-and-delete so a lock that expired and was re-taken is never released by the old owner
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return -1
`)

type RedisLocker struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisLocker(client redis.UniversalClient, prefix string) *RedisLocker {
	return &RedisLocker{client: client, prefix: prefix}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, string, error) {
	value := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.prefix+key, value, ttl).Result()
	if err != nil {
		return false, "", err
	}
	if !ok {
		return false, "", nil
	}
	return true, value, nil
}

func (l *RedisLocker) Unlock(ctx context.Context, key, value string) error {
	res, err := unlockScript.Run(ctx, l.client, []string{l.prefix + key}, value).Int64()
	if err != nil {
		return err
	}
	if res == -1 {
		return ErrNotOwner
	}
	return nil
}

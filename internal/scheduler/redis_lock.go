package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultLockKey = "mia:sweep:lock"

// releaseScript deletes the lock only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a SET NX PX lock shared by every instance pointing at the
// same Redis. The TTL bounds how long a crashed holder blocks others.
type RedisLocker struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func NewRedisLocker(rdb *redis.Client, key string, ttl time.Duration) *RedisLocker {
	if key == "" {
		key = DefaultLockKey
	}
	return &RedisLocker{rdb: rdb, key: key, ttl: ttl}
}

func (l *RedisLocker) Acquire(ctx context.Context) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

func (l *RedisLocker) Release(ctx context.Context, token string) error {
	return releaseScript.Run(ctx, l.rdb, []string{l.key}, token).Err()
}

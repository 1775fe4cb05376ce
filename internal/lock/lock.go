package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker guards jobs that must run on a single instance.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

type RedisLock struct {
	client *redis.Client
	owner  string
}

// NewRedisLock pings client before returning. owner tags the lock value so
// only the holder releases it.
func NewRedisLock(ctx context.Context, client *redis.Client, owner string) (*RedisLock, error) {
	const op = "lock.NewRedisLock"

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisLock{client: client, owner: owner}, nil
}

func (r *RedisLock) Lock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	const op = "lock.RedisLock.Lock"

	ok, err := r.client.SetNX(ctx, lockKey(key), r.owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (r *RedisLock) Unlock(ctx context.Context, key string) error {
	const op = "lock.RedisLock.Unlock"

	if err := unlockScript.Run(ctx, r.client, []string{lockKey(key)}, r.owner).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func lockKey(key string) string {
	return fmt.Sprintf("lock:%s", key)
}

// Local always grants the lock. Used when a single instance runs.
type Local struct{}

func (Local) Lock(context.Context, string, time.Duration) (bool, error) {
	return true, nil
}

func (Local) Unlock(context.Context, string) error {
	return nil
}

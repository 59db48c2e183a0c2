package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/srgjo27/seathold/internal/core/ports"
)

var unlockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)

// RedisLocker shares the exclusive section of a key between service instances.
// The lease bounds how long a crashed holder can keep a key.
type RedisLocker struct {
	client   redis.Cmdable
	prefix   string
	lease    time.Duration
	retry    time.Duration
	newToken func() string
}

func NewRedisLocker(client redis.Cmdable, lease, retry time.Duration) *RedisLocker {
	if retry <= 0 {
		retry = 25 * time.Millisecond
	}
	return &RedisLocker{
		client:   client,
		prefix:   "lock:screening:",
		lease:    lease,
		retry:    retry,
		newToken: uuid.NewString,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (ports.UnlockFunc, error) {
	k := l.prefix + key
	token := l.newToken()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ok, err := l.client.SetNX(ctx, k, token, l.lease).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("acquire %s: %w", k, err)
		}

		if ok {
			return func(ctx context.Context) error {
				if err := unlockScript.Run(ctx, l.client, []string{k}, token).Err(); err != nil {
					return fmt.Errorf("release %s: %w", k, err)
				}
				return nil
			}, nil
		}

		timer := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

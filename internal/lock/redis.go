package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// RedisLocker is a single-key lock shared by every process using the same
// redis and key.
type RedisLocker struct {
	client *redis.Client
	key    string
	cfg    Config
}

// NewRedisLocker creates a locker on key.
func NewRedisLocker(client *redis.Client, key string, cfg Config) *RedisLocker {
	cfg.setDefaults()
	return &RedisLocker{client: client, key: key, cfg: cfg}
}

// Lock polls SET NX until it succeeds, ctx ends, or the wait elapses.
func (l *RedisLocker) Lock(ctx context.Context) (Lease, error) {
	token := uuid.New().String()
	deadline := time.Now().Add(l.cfg.Wait)

	for {
		ok, err := l.client.SetNX(ctx, l.key, token, l.cfg.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", l.key, err)
		}
		if ok {
			return &redisLease{client: l.client, key: l.key, token: token}, nil
		}

		if time.Now().Add(l.cfg.RetryDelay).After(deadline) {
			return nil, ErrBusy
		}

		timer := time.NewTimer(l.cfg.RetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

type redisLease struct {
	client *redis.Client
	key    string
	token  string
}

// Unlock deletes the key only if it still carries this lease's token.
func (l *redisLease) Unlock(ctx context.Context) error {
	n, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Int()
	if err != nil {
		return fmt.Errorf("release lock %s: %w", l.key, err)
	}
	if n == 0 {
		return ErrNotHeld
	}
	return nil
}

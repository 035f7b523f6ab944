package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

// PauseFlag is the global ingestion switch.
type PauseFlag interface {
	Paused(ctx context.Context) (bool, error)
	SetPaused(ctx context.Context, paused bool) error
}

// RedisFlag keeps the switch in redis so every replica sees it.
type RedisFlag struct {
	client *redis.Client
	key    string
}

// NewRedisFlag creates a flag stored at key.
func NewRedisFlag(client *redis.Client, key string) *RedisFlag {
	return &RedisFlag{client: client, key: key}
}

// Paused reports whether the key is set to "true".
func (f *RedisFlag) Paused(ctx context.Context) (bool, error) {
	val, err := f.client.Get(ctx, f.key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read pause flag: %w", err)
	}
	return val == "true", nil
}

// SetPaused writes the flag. Resuming deletes the key.
func (f *RedisFlag) SetPaused(ctx context.Context, paused bool) error {
	var err error
	if paused {
		err = f.client.Set(ctx, f.key, "true", 0).Err()
	} else {
		err = f.client.Del(ctx, f.key).Err()
	}
	if err != nil {
		return fmt.Errorf("write pause flag: %w", err)
	}
	return nil
}

// MemoryFlag is the single-process fallback.
type MemoryFlag struct {
	paused atomic.Bool
}

// Paused implements PauseFlag.
func (f *MemoryFlag) Paused(context.Context) (bool, error) {
	return f.paused.Load(), nil
}

// SetPaused implements PauseFlag.
func (f *MemoryFlag) SetPaused(_ context.Context, paused bool) error {
	f.paused.Store(paused)
	return nil
}

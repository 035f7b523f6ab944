// Package redis builds go-redis clients from service configuration.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds connection settings. Enabled=false makes the service fall back to
// in-process locking and an in-memory pause flag.
type Config struct {
	Enabled   bool   `env:"REDIS_ENABLED"    yaml:"enabled"`
	Address   string `env:"REDIS_ADDRESS"    yaml:"address"`
	Password  string `env:"REDIS_PASSWORD"   yaml:"password"`
	DB        int    `env:"REDIS_DB"         yaml:"db"`
	KeyPrefix string `env:"REDIS_KEY_PREFIX" yaml:"key_prefix"`
}

// ErrEmptyAddress is returned when no address is configured.
var ErrEmptyAddress = errors.New("redis address is required")

const connectionTimeout = 5 * time.Second

// NewClient connects and pings. The client is closed if the ping fails.
func NewClient(cfg Config) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Address, err)
	}

	return client, nil
}

// Key joins the configured prefix and name.
func (c Config) Key(name string) string {
	if c.KeyPrefix == "" {
		return name
	}
	return c.KeyPrefix + ":" + name
}

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"

	infralogger "github.com/Hosseinjeff/Wholesale-project/infrastructure/logger"
	infraredis "github.com/Hosseinjeff/Wholesale-project/infrastructure/redis"
	"github.com/Hosseinjeff/Wholesale-project/internal/config"
	"github.com/Hosseinjeff/Wholesale-project/internal/database"
	"github.com/Hosseinjeff/Wholesale-project/internal/ingest"
	"github.com/Hosseinjeff/Wholesale-project/internal/lock"
	"github.com/Hosseinjeff/Wholesale-project/internal/profile"
	"github.com/redis/go-redis/v9"
)

// Redis key names under the configured prefix.
const (
	ingestLockKey = "ingest:lock"
	pauseFlagKey  = "ingest:paused"
)

// SetupDatabase connects, migrates and returns the store.
func SetupDatabase(cfg *config.Config, log infralogger.Logger) (*database.Store, error) {
	if err := database.RunMigrations(cfg.Database, log); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	log.Info("Database connection established",
		infralogger.String("driver", cfg.Database.Driver),
	)
	return database.NewStore(db), nil
}

// SetupRedis connects when redis is enabled and returns nil otherwise.
func SetupRedis(cfg *config.Config, log infralogger.Logger) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		log.Info("Redis disabled, using in-process lock and pause flag")
		return nil, nil
	}
	client, err := infraredis.NewClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	log.Info("Redis connected", infralogger.String("address", cfg.Redis.Address))
	return client, nil
}

// SetupControls returns the ingestion lock and pause flag, redis-backed when a
// client is given.
func SetupControls(cfg *config.Config, client *redis.Client) (lock.Locker, ingest.PauseFlag) {
	lockCfg := lock.Config{Wait: cfg.Ingest.LockWait, TTL: cfg.Ingest.LockTTL}
	if client == nil {
		return lock.NewLocalLocker(lockCfg), &ingest.MemoryFlag{}
	}
	return lock.NewRedisLocker(client, cfg.Redis.Key(ingestLockKey), lockCfg),
		ingest.NewRedisFlag(client, cfg.Redis.Key(pauseFlagKey))
}

// SetupProfiles loads the profile file when it exists, falling back to the
// built-in profiles, and starts the watcher when enabled.
func SetupProfiles(ctx context.Context, cfg *config.Config, log infralogger.Logger) (*profile.Store, error) {
	path := cfg.Profiles.Path

	reg := profile.Default()
	_, statErr := os.Stat(path)
	switch {
	case path == "" || errors.Is(statErr, os.ErrNotExist):
		log.Info("Using built-in channel profiles", infralogger.String("path", path))
	case statErr != nil:
		return nil, fmt.Errorf("stat profile file: %w", statErr)
	default:
		loaded, err := profile.LoadFile(path)
		if err != nil {
			return nil, err
		}
		reg = loaded
		log.Info("Channel profiles loaded",
			infralogger.String("path", path),
			infralogger.Int("profiles", len(reg.Profiles())),
		)
	}

	store := profile.NewStore(reg, log)
	if cfg.Profiles.Watch && statErr == nil && path != "" {
		if err := store.Watch(ctx, path); err != nil {
			return nil, err
		}
	}
	return store, nil
}

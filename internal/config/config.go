// Package config holds the extractor service configuration.
package config

import (
	"errors"
	"fmt"
	"time"

	infraconfig "github.com/Hosseinjeff/Wholesale-project/infrastructure/config"
	infraredis "github.com/Hosseinjeff/Wholesale-project/infrastructure/redis"
	"github.com/Hosseinjeff/Wholesale-project/infrastructure/retry"
	"github.com/Hosseinjeff/Wholesale-project/infrastructure/sse"
	"github.com/Hosseinjeff/Wholesale-project/internal/quality"
)

const (
	defaultServiceName    = "wholesale-extractor"
	defaultServiceVersion = "1.0.0"
	defaultServicePort    = 8090

	defaultDBDriver          = DriverPostgres
	defaultDBHost            = "localhost"
	defaultDBPort            = 5432
	defaultDBUser            = "postgres"
	defaultDBName            = "wholesale"
	defaultDBSSLMode         = "disable"
	defaultDBMaxConns        = 25
	defaultDBMaxIdleConns    = 5
	defaultDBConnMaxLifetime = 5 * time.Minute
	defaultSQLitePath        = "wholesale.db"
	defaultMigrationsPath    = "migrations"

	defaultRedisAddress   = "localhost:6379"
	defaultRedisKeyPrefix = "wholesale"

	defaultLogLevel  = "info"
	defaultLogFormat = "json"

	defaultLockWait         = 30 * time.Second
	defaultLockTTL          = 60 * time.Second
	defaultReplayDelay      = 700 * time.Millisecond
	defaultBreakerFailures  = 5
	defaultBreakerTimeout   = 30 * time.Second
	defaultBreakerInterval  = time.Minute
	defaultWebhookRate      = 20.0
	defaultWebhookBurst     = 40
	defaultMaxContentLength = 16 * 1024

	defaultProfilesPath = "profiles.yml"

	defaultWindowReportSpec = "@every 5m"
	defaultRetentionSpec    = "@daily"
	defaultLogRetention     = 30 * 24 * time.Hour

	defaultTelegramBaseURL = "https://t.me/s/"
	defaultTelegramTimeout = 15 * time.Second
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config holds the service configuration.
type Config struct {
	Service   ServiceConfig     `yaml:"service"`
	Database  DatabaseConfig    `yaml:"database"`
	Redis     infraredis.Config `yaml:"redis"`
	Logging   LoggingConfig     `yaml:"logging"`
	Auth      AuthConfig        `yaml:"auth"`
	Quality   quality.Config    `yaml:"quality"`
	Ingest    IngestConfig      `yaml:"ingest"`
	Profiles  ProfilesConfig    `yaml:"profiles"`
	Scheduler SchedulerConfig   `yaml:"scheduler"`
	Telegram  TelegramConfig    `yaml:"telegram"`
	Stream    sse.Config        `yaml:"stream"`
}

// ServiceConfig holds service-level settings.
type ServiceConfig struct {
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Port        int      `env:"WHOLESALE_PORT" yaml:"port"`
	Debug       bool     `env:"APP_DEBUG"      yaml:"debug"`
	CORSOrigins []string `env:"CORS_ORIGINS"   yaml:"cors_origins"`
}

// DatabaseConfig selects the store. Postgres is the production store; sqlite3
// backs local runs and the CLI harness.
type DatabaseConfig struct {
	Driver          string        `env:"DB_DRIVER"         yaml:"driver"`
	Host            string        `env:"POSTGRES_HOST"     yaml:"host"`
	Port            int           `env:"POSTGRES_PORT"     yaml:"port"`
	User            string        `env:"POSTGRES_USER"     yaml:"user"`
	Password        string        `env:"POSTGRES_PASSWORD" yaml:"password"` //nolint:gosec // DB connection config
	Database        string        `env:"POSTGRES_DB"       yaml:"database"`
	SSLMode         string        `env:"POSTGRES_SSLMODE"  yaml:"sslmode"`
	Path            string        `env:"SQLITE_PATH"       yaml:"path"`
	MigrationsPath  string        `env:"MIGRATIONS_PATH"   yaml:"migrations_path"`
	MaxConnections  int           `yaml:"max_connections"`
	MaxIdleConns    int           `yaml:"max_idle_connections"`
	ConnMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
}

// DSN returns the driver-specific connection string.
func (d DatabaseConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return d.Path
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

// MigrateURL returns the golang-migrate database URL.
func (d DatabaseConfig) MigrateURL() string {
	if d.Driver == DriverSQLite {
		return "sqlite3://" + d.Path
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// AuthConfig holds JWT settings for the operational routes. An empty secret
// leaves them open, which is only sensible in development.
type AuthConfig struct {
	JWTSecret string `env:"AUTH_JWT_SECRET" yaml:"jwt_secret"` //nolint:gosec // JWT signing secret
}

// IngestConfig tunes the ingestion boundary.
type IngestConfig struct {
	LockWait         time.Duration `env:"INGEST_LOCK_WAIT"    yaml:"lock_wait"`
	LockTTL          time.Duration `env:"INGEST_LOCK_TTL"     yaml:"lock_ttl"`
	ReplayDelay      time.Duration `env:"INGEST_REPLAY_DELAY" yaml:"replay_delay"`
	MaxContentLength int           `yaml:"max_content_length"`
	Retry            retry.Config  `yaml:"retry"`
	Breaker          BreakerConfig `yaml:"breaker"`
	RateLimit        RateConfig    `yaml:"rate_limit"`
}

// BreakerConfig configures the store circuit breaker.
type BreakerConfig struct {
	MaxFailures uint32        `env:"BREAKER_MAX_FAILURES" yaml:"max_failures"`
	Timeout     time.Duration `env:"BREAKER_TIMEOUT"      yaml:"timeout"`
	Interval    time.Duration `yaml:"interval"`
}

// RateConfig limits the webhook.
type RateConfig struct {
	PerSecond float64 `env:"WEBHOOK_RATE"  yaml:"per_second"`
	Burst     int     `env:"WEBHOOK_BURST" yaml:"burst"`
}

// ProfilesConfig locates the channel profile file.
type ProfilesConfig struct {
	Path  string `env:"PROFILES_PATH"  yaml:"path"`
	Watch bool   `env:"PROFILES_WATCH" yaml:"watch"`
}

// SchedulerConfig holds cron specs for periodic jobs.
type SchedulerConfig struct {
	Enabled          bool          `env:"SCHEDULER_ENABLED" yaml:"enabled"`
	WindowReportSpec string        `yaml:"window_report"`
	RetentionSpec    string        `yaml:"retention"`
	LogRetention     time.Duration `env:"LOG_RETENTION" yaml:"log_retention"`
}

// TelegramConfig configures the public preview reader used by backfill.
type TelegramConfig struct {
	BaseURL   string        `env:"TELEGRAM_PREVIEW_URL" yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// Load reads path, applies defaults and validates. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	return infraconfig.LoadWithDefaults[Config](path, setDefaults)
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	var errs []error
	if err := infraconfig.ValidatePort("service.port", c.Service.Port); err != nil {
		errs = append(errs, err)
	}
	if err := infraconfig.ValidateOneOf("database.driver", c.Database.Driver, DriverPostgres, DriverSQLite); err != nil {
		errs = append(errs, err)
	}
	if err := infraconfig.ValidateLogLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	if err := infraconfig.ValidateFraction("quality.window.threshold", c.Quality.Window.Threshold); err != nil {
		errs = append(errs, err)
	}
	if err := infraconfig.ValidateFraction("quality.min_confidence", c.Quality.MinConfidence); err != nil {
		errs = append(errs, err)
	}
	if c.Redis.Enabled {
		if err := infraconfig.ValidateRequired("redis.address", c.Redis.Address); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setRedisDefaults(&cfg.Redis)
	setLoggingDefaults(&cfg.Logging)
	cfg.Quality.SetDefaults()
	setIngestDefaults(&cfg.Ingest)
	setProfilesDefaults(&cfg.Profiles)
	setSchedulerDefaults(&cfg.Scheduler)
	setTelegramDefaults(&cfg.Telegram)
	cfg.Stream.SetDefaults()
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Driver == "" {
		d.Driver = defaultDBDriver
	}
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == 0 {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.Database == "" {
		d.Database = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
	if d.Path == "" {
		d.Path = defaultSQLitePath
	}
	if d.MigrationsPath == "" {
		d.MigrationsPath = defaultMigrationsPath
	}
	if d.MaxConnections == 0 {
		d.MaxConnections = defaultDBMaxConns
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = defaultDBMaxIdleConns
	}
	if d.ConnMaxLifetime == 0 {
		d.ConnMaxLifetime = defaultDBConnMaxLifetime
	}
}

func setRedisDefaults(r *infraredis.Config) {
	if r.Address == "" {
		r.Address = defaultRedisAddress
	}
	if r.KeyPrefix == "" {
		r.KeyPrefix = defaultRedisKeyPrefix
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = defaultLogLevel
	}
	if l.Format == "" {
		l.Format = defaultLogFormat
	}
}

func setIngestDefaults(i *IngestConfig) {
	if i.LockWait == 0 {
		i.LockWait = defaultLockWait
	}
	if i.LockTTL == 0 {
		i.LockTTL = defaultLockTTL
	}
	if i.ReplayDelay == 0 {
		i.ReplayDelay = defaultReplayDelay
	}
	if i.MaxContentLength == 0 {
		i.MaxContentLength = defaultMaxContentLength
	}
	if i.Retry.Backoff == "" {
		i.Retry.Backoff = retry.BackoffLinear
	}
	i.Retry.SetDefaults()
	if i.Breaker.MaxFailures == 0 {
		i.Breaker.MaxFailures = defaultBreakerFailures
	}
	if i.Breaker.Timeout == 0 {
		i.Breaker.Timeout = defaultBreakerTimeout
	}
	if i.Breaker.Interval == 0 {
		i.Breaker.Interval = defaultBreakerInterval
	}
	if i.RateLimit.PerSecond == 0 {
		i.RateLimit.PerSecond = defaultWebhookRate
	}
	if i.RateLimit.Burst == 0 {
		i.RateLimit.Burst = defaultWebhookBurst
	}
}

func setProfilesDefaults(p *ProfilesConfig) {
	if p.Path == "" {
		p.Path = defaultProfilesPath
	}
}

func setSchedulerDefaults(s *SchedulerConfig) {
	if s.WindowReportSpec == "" {
		s.WindowReportSpec = defaultWindowReportSpec
	}
	if s.RetentionSpec == "" {
		s.RetentionSpec = defaultRetentionSpec
	}
	if s.LogRetention == 0 {
		s.LogRetention = defaultLogRetention
	}
}

func setTelegramDefaults(t *TelegramConfig) {
	if t.BaseURL == "" {
		t.BaseURL = defaultTelegramBaseURL
	}
	if t.Timeout == 0 {
		t.Timeout = defaultTelegramTimeout
	}
}

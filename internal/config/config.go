// Package config loads server settings from RPG_TRACKER_* environment
// variables
package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/KirkDiggler/rpg-tracker/internal/errors"
	"github.com/KirkDiggler/rpg-tracker/internal/orchestrators/encounter"
	"github.com/KirkDiggler/rpg-tracker/internal/pkg/idgen"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Log formats
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config is everything `serve` and `migrate` need
type Config struct {
	HTTPAddr string `env:"RPG_TRACKER_HTTP_ADDR" envDefault:":8080"`
	GRPCAddr string `env:"RPG_TRACKER_GRPC_ADDR" envDefault:":50051"`

	Storage           string   `env:"RPG_TRACKER_STORAGE" envDefault:"memory"`
	RedisURL          string   `env:"RPG_TRACKER_REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RedisClusterAddrs []string `env:"RPG_TRACKER_REDIS_CLUSTER_ADDRS" envSeparator:","`
	RedisPoolSize     int      `env:"RPG_TRACKER_REDIS_POOL_SIZE" envDefault:"10"`
	RedisTLS          bool     `env:"RPG_TRACKER_REDIS_TLS"`
	SQLitePath        string   `env:"RPG_TRACKER_SQLITE_PATH" envDefault:"rpg-tracker.db"`
	PostgresDSN       string   `env:"RPG_TRACKER_POSTGRES_DSN"`
	DBMaxOpenConns    int      `env:"RPG_TRACKER_DB_MAX_OPEN_CONNS" envDefault:"10"`
	AutoMigrate       bool     `env:"RPG_TRACKER_AUTO_MIGRATE" envDefault:"true"`

	StatusUpdateMode string `env:"RPG_TRACKER_STATUS_UPDATE_MODE" envDefault:"guarded"`
	IDGenerator      string `env:"RPG_TRACKER_ID_GENERATOR" envDefault:"ulid"`

	LogLevel  string `env:"RPG_TRACKER_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"RPG_TRACKER_LOG_FORMAT" envDefault:"text"`

	OTelEndpoint    string        `env:"RPG_TRACKER_OTEL_ENDPOINT"`
	ShutdownTimeout time.Duration `env:"RPG_TRACKER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// Load parses the environment and validates the result
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "parse env")
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) normalize() {
	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	c.StatusUpdateMode = strings.ToLower(strings.TrimSpace(c.StatusUpdateMode))
	c.IDGenerator = strings.ToLower(strings.TrimSpace(c.IDGenerator))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
}

// Validate checks the settings are usable together
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	errors.ValidateEnum("storage", c.Storage,
		[]string{StorageMemory, StorageRedis, StorageSQLite, StoragePostgres}, vb)
	errors.ValidateEnum("status_update_mode", c.StatusUpdateMode,
		[]string{string(encounter.StatusUpdateGuarded), string(encounter.StatusUpdateDirect)}, vb)
	errors.ValidateEnum("id_generator", c.IDGenerator,
		[]string{string(idgen.KindUUID), string(idgen.KindULID), string(idgen.KindSequential)}, vb)
	errors.ValidateEnum("log_level", c.LogLevel, []string{"debug", "info", "warn", "error"}, vb)
	errors.ValidateEnum("log_format", c.LogFormat, []string{LogFormatText, LogFormatJSON}, vb)

	if c.HTTPAddr == "" && c.GRPCAddr == "" {
		vb.Field("http_addr", "at least one of the HTTP or gRPC addresses must be set")
	}
	if c.ShutdownTimeout <= 0 {
		vb.Field("shutdown_timeout", "must be positive")
	}

	switch c.Storage {
	case StorageRedis:
		if c.RedisURL == "" && len(c.RedisClusterAddrs) == 0 {
			vb.Field("redis_url", "is required for redis storage")
		}
		errors.ValidateMin("redis_pool_size", c.RedisPoolSize, 1, vb)
	case StorageSQLite:
		errors.ValidateRequired("sqlite_path", c.SQLitePath, vb)
	case StoragePostgres:
		errors.ValidateRequired("postgres_dsn", c.PostgresDSN, vb)
	}

	return vb.Build()
}

// IsSQL reports whether the configured backend is a SQL database
func (c *Config) IsSQL() bool {
	return c.Storage == StorageSQLite || c.Storage == StoragePostgres
}

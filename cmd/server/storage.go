package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KirkDiggler/rpg-tracker/internal/config"
	"github.com/KirkDiggler/rpg-tracker/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-tracker/internal/redis"
	"github.com/KirkDiggler/rpg-tracker/internal/repositories/encounters"
	"github.com/KirkDiggler/rpg-tracker/internal/sqldb"
)

// newRepository builds the configured encounter store. The returned cleanup
// releases its connections.
func newRepository(ctx context.Context, cfg *config.Config, clk clock.Clock) (encounters.Repository, func(), error) {
	noop := func() {}

	switch cfg.Storage {
	case config.StorageMemory:
		slog.WarnContext(ctx, "using in-memory storage; encounters are lost on restart")
		return encounters.NewMemory(&encounters.MemoryConfig{Clock: clk}), noop, nil

	case config.StorageRedis:
		client, err := newRedisClient(cfg)
		if err != nil {
			return nil, noop, err
		}
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("failed to reach redis: %w", err)
		}

		repo, err := encounters.NewRedis(&encounters.RedisConfig{Client: client, Clock: clk})
		if err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		return repo, func() { _ = client.Close() }, nil

	case config.StorageSQLite, config.StoragePostgres:
		db, err := openSQL(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}

		if cfg.AutoMigrate {
			if _, err := encounters.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return nil, noop, fmt.Errorf("failed to migrate: %w", err)
			}
		}

		repo, err := encounters.NewSQL(&encounters.SQLConfig{DB: db, Clock: clk})
		if err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return repo, func() { _ = db.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("unsupported storage %q", cfg.Storage)
	}
}

func newRedisClient(cfg *config.Config) (redis.Client, error) {
	opts := &redis.Options{
		PoolSize: cfg.RedisPoolSize,
		UseTLS:   cfg.RedisTLS,
	}

	if len(cfg.RedisClusterAddrs) > 0 {
		return redis.NewClusterClient(cfg.RedisClusterAddrs, opts)
	}
	return redis.NewFromURL(cfg.RedisURL, opts)
}

func openSQL(ctx context.Context, cfg *config.Config) (*sqldb.DB, error) {
	dbCfg := sqldb.Config{
		Dialect:      sqldb.DialectSQLite,
		DSN:          cfg.SQLitePath,
		MaxOpenConns: cfg.DBMaxOpenConns,
	}
	if cfg.Storage == config.StoragePostgres {
		dbCfg.Dialect = sqldb.DialectPostgres
		dbCfg.DSN = cfg.PostgresDSN
	}

	return sqldb.Open(ctx, dbCfg)
}

// Package redis wraps the go-redis client so stores depend on a small,
// mockable interface instead of a concrete connection type.
package redis

import (
	"crypto/tls"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options tunes the connection pool
type Options struct {
	PoolSize        int
	MinIdleConns    int
	ConnMaxIdleTime time.Duration
	MaxRetries      int
	UseTLS          bool
	ReadOnly        bool // cluster replicas only
}

func (o *Options) tlsConfig() *tls.Config {
	if o == nil || !o.UseTLS {
		return nil
	}
	return &tls.Config{MinVersion: tls.VersionTLS12}
}

// NewClient creates a Redis client for a single instance
func NewClient(endpoint string, opts *Options) (Client, error) {
	if endpoint == "" {
		return nil, errors.New("redis: endpoint is required")
	}

	if opts == nil {
		opts = &Options{}
	}

	return redis.NewClient(&redis.Options{
		Addr:            endpoint,
		MinIdleConns:    opts.MinIdleConns,
		PoolSize:        opts.PoolSize,
		ConnMaxIdleTime: opts.ConnMaxIdleTime,
		MaxRetries:      opts.MaxRetries,
		TLSConfig:       opts.tlsConfig(),
	}), nil
}

// NewFromURL creates a single instance client from a redis:// or rediss://
// URL. Pool settings in opts override the URL's query parameters when set.
func NewFromURL(rawURL string, opts *Options) (Client, error) {
	if rawURL == "" {
		return nil, errors.New("redis: url is required")
	}

	redisOpts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	if opts != nil {
		if opts.PoolSize > 0 {
			redisOpts.PoolSize = opts.PoolSize
		}
		if opts.MinIdleConns > 0 {
			redisOpts.MinIdleConns = opts.MinIdleConns
		}
		if opts.ConnMaxIdleTime > 0 {
			redisOpts.ConnMaxIdleTime = opts.ConnMaxIdleTime
		}
		if opts.MaxRetries != 0 {
			redisOpts.MaxRetries = opts.MaxRetries
		}
		if cfg := opts.tlsConfig(); cfg != nil && redisOpts.TLSConfig == nil {
			redisOpts.TLSConfig = cfg
		}
	}

	return redis.NewClient(redisOpts), nil
}

// NewClusterClient creates a Redis client for cluster mode
func NewClusterClient(endpoints []string, opts *Options) (Client, error) {
	if len(endpoints) == 0 {
		return nil, errors.New("redis: at least one endpoint is required")
	}

	if opts == nil {
		opts = &Options{}
	}

	return redis.NewClusterClient(&redis.ClusterOptions{
		Addrs:        endpoints,
		MinIdleConns: opts.MinIdleConns,
		PoolSize:     opts.PoolSize,
		MaxRetries:   opts.MaxRetries,
		ReadOnly:     opts.ReadOnly,
		TLSConfig:    opts.tlsConfig(),
	}), nil
}

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HouseOfSounds/VitaeEMR/internal/config"
)

// PoolOptions sizes the records pool. Zero values fall back to the defaults
// config.Load applies.
type PoolOptions struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	ConnectTimeout time.Duration
}

func PoolOptionsFrom(cfg config.Config) PoolOptions {
	return PoolOptions{
		DSN:            cfg.PostgresDSN,
		MaxConns:       cfg.PostgresMaxConns,
		MinConns:       cfg.PostgresMinConns,
		ConnectTimeout: cfg.PostgresConnectTimeout,
	}
}

func poolConfig(opts PoolOptions) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	cfg.MaxConns = opts.MaxConns
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = config.DefaultPostgresMaxConns
	}
	cfg.MinConns = min(opts.MinConns, cfg.MaxConns)
	if cfg.MinConns < 0 {
		cfg.MinConns = 0
	}

	cfg.HealthCheckPeriod = 30 * time.Second
	cfg.MaxConnIdleTime = 10 * time.Minute
	cfg.MaxConnLifetime = time.Hour

	return cfg, nil
}

// ConnectPostgres opens the records pool and pings it within the connect
// timeout.
func ConnectPostgres(ctx context.Context, opts PoolOptions) (*pgxpool.Pool, error) {
	cfg, err := poolConfig(opts)
	if err != nil {
		return nil, err
	}

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = config.DefaultPostgresConnectTimeout
	}
	connCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(connCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres within %s: %w", timeout, err)
	}

	return pool, nil
}

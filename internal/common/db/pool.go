package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/fadechat/internal/common/constants"
	"github.com/AlibekovAA/fadechat/internal/common/logger"
)

// Querier is the subset of *pgxpool.Pool the repositories depend on.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func NewPool(ctx context.Context, log *logger.Logger, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = constants.DBPoolMaxOpenConns
	cfg.MinConns = constants.DBPoolMinOpenConns
	cfg.MaxConnLifetime = constants.DBPoolConnMaxLifetime
	cfg.MaxConnIdleTime = constants.DBPoolConnMaxIdleTime
	cfg.HealthCheckPeriod = constants.DBPoolHealthCheck
	cfg.ConnConfig.ConnectTimeout = constants.DBPoolConnectTimeout
	cfg.ConnConfig.RuntimeParams = map[string]string{
		"application_name": "fadechat",
	}

	retry := RetryConfig{
		MaxAttempts:  constants.DBPoolMaxAttempts,
		InitialDelay: constants.DBPoolRetryDelay,
		MaxDelay:     constants.DBPoolRetryDelay,
		Multiplier:   1,
		RetryIf:      func(error) bool { return true },
	}

	var pool *pgxpool.Pool
	err = RetryWithBackoff(ctx, log, retry, func() error {
		p, connErr := pgxpool.ConnectConfig(ctx, cfg)
		if connErr != nil {
			return connErr
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	log.Infof("database connection pool initialized: max=%d, min=%d", cfg.MaxConns, cfg.MinConns)
	return pool, nil
}

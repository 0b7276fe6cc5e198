package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"

	"github.com/AlibekovAA/fadechat/internal/common/resilience"
	"github.com/AlibekovAA/fadechat/internal/observability/metrics"
)

const uniqueViolation = "23505"

// Run executes fn through the circuit breaker (when cb is set), records the
// query duration and wraps unexpected errors with the operation name.
// pgx.ErrNoRows is returned unwrapped so callers can map it to their own
// not-found sentinel.
func Run(ctx context.Context, cb *resilience.CircuitBreaker, operation, table string, fn func(context.Context) error) error {
	start := time.Now()

	var err error
	if cb != nil {
		err = cb.Call(ctx, fn)
	} else {
		err = fn(ctx)
	}

	metrics.DBQueryDurationSeconds.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())

	if err == nil || errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	metrics.DBQueryErrors.WithLabelValues(operation, table).Inc()
	return fmt.Errorf("failed to %s: %w", operation, err)
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// IsUnavailable reports whether err means the store could not serve the
// request, as opposed to a well-formed "no rows" or constraint answer.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, context.Canceled) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 08 connection exception, 53 insufficient resources, 57 operator intervention.
		return strings.HasPrefix(pgErr.Code, "08") ||
			strings.HasPrefix(pgErr.Code, "53") ||
			strings.HasPrefix(pgErr.Code, "57")
	}
	return true
}

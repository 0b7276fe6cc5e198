package repository

import (
	"context"
	"time"

	authdomain "github.com/AlibekovAA/fadechat/internal/auth/domain"
	"github.com/AlibekovAA/fadechat/internal/common/db"
	"github.com/AlibekovAA/fadechat/internal/common/resilience"
)

// AttemptLedger is the append-only record of sign-in attempts.
type AttemptLedger interface {
	Record(ctx context.Context, attempt authdomain.LoginAttempt) error
	CountSince(ctx context.Context, source string, since time.Time) (int, error)
}

type PgAttemptLedger struct {
	q  db.Querier
	cb *resilience.CircuitBreaker
}

func NewPgAttemptLedger(q db.Querier, cb *resilience.CircuitBreaker) *PgAttemptLedger {
	return &PgAttemptLedger{q: q, cb: cb}
}

func (l *PgAttemptLedger) Record(ctx context.Context, attempt authdomain.LoginAttempt) error {
	var username *string
	if attempt.Username != "" {
		username = &attempt.Username
	}
	return db.Run(ctx, l.cb, "record login attempt", "login_attempts", func(ctx context.Context) error {
		_, err := l.q.Exec(
			ctx,
			`INSERT INTO login_attempts (id, source_address, username, succeeded, attempted_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			attempt.ID,
			attempt.SourceAddress,
			username,
			attempt.Succeeded,
			attempt.AttemptedAt,
		)
		return err
	})
}

func (l *PgAttemptLedger) CountSince(ctx context.Context, source string, since time.Time) (int, error) {
	var count int
	err := db.Run(ctx, l.cb, "count login attempts", "login_attempts", func(ctx context.Context) error {
		return l.q.QueryRow(
			ctx,
			`SELECT COUNT(*) FROM login_attempts WHERE source_address = $1 AND attempted_at > $2`,
			source,
			since,
		).Scan(&count)
	})
	return count, err
}

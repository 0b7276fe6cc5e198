package repository

import (
	"context"
	"errors"
	"time"

	pgx "github.com/jackc/pgx/v4"

	authdomain "github.com/AlibekovAA/fadechat/internal/auth/domain"
	"github.com/AlibekovAA/fadechat/internal/common/db"
	"github.com/AlibekovAA/fadechat/internal/common/resilience"
	userdomain "github.com/AlibekovAA/fadechat/internal/user/domain"
)

var ErrTokenNotFound = errors.New("token not found")

// TokenRepository stores at most one token per user, keyed by its digest.
type TokenRepository interface {
	Save(ctx context.Context, userID userdomain.ID, digest string, validUntil time.Time) error
	FindByDigest(ctx context.Context, digest string) (authdomain.Token, error)
	// Extend moves the validity of a still-valid token forward to
	// validUntil. It never shortens it. ErrTokenNotFound is returned when the
	// token is unknown or already expired at now.
	Extend(ctx context.Context, digest string, validUntil, now time.Time) error
	Revoke(ctx context.Context, digest string, validUntil time.Time) error
	ClearExpired(ctx context.Context, before time.Time) (int64, error)
}

type PgTokenRepository struct {
	q  db.Querier
	cb *resilience.CircuitBreaker
}

func NewPgTokenRepository(q db.Querier, cb *resilience.CircuitBreaker) *PgTokenRepository {
	return &PgTokenRepository{q: q, cb: cb}
}

func (r *PgTokenRepository) Save(ctx context.Context, userID userdomain.ID, digest string, validUntil time.Time) error {
	return r.update(ctx, "save token",
		`UPDATE users SET token_digest = $2, token_valid_until = $3 WHERE id = $1`,
		string(userID), digest, validUntil,
	)
}

func (r *PgTokenRepository) FindByDigest(ctx context.Context, digest string) (authdomain.Token, error) {
	var token authdomain.Token
	err := db.Run(ctx, r.cb, "find token", "users", func(ctx context.Context) error {
		return r.q.QueryRow(
			ctx,
			`SELECT id, username, token_digest, token_valid_until FROM users WHERE token_digest = $1`,
			digest,
		).Scan(&token.UserID, &token.Username, &token.Digest, &token.ValidUntil)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return authdomain.Token{}, ErrTokenNotFound
	}
	if err != nil {
		return authdomain.Token{}, err
	}
	return token, nil
}

func (r *PgTokenRepository) Extend(ctx context.Context, digest string, validUntil, now time.Time) error {
	return r.update(ctx, "extend token",
		`UPDATE users
		 SET token_valid_until = GREATEST(token_valid_until, $2)
		 WHERE token_digest = $1 AND token_valid_until > $3`,
		digest, validUntil, now,
	)
}

func (r *PgTokenRepository) Revoke(ctx context.Context, digest string, validUntil time.Time) error {
	return r.update(ctx, "revoke token",
		`UPDATE users SET token_valid_until = $2 WHERE token_digest = $1`,
		digest, validUntil,
	)
}

func (r *PgTokenRepository) ClearExpired(ctx context.Context, before time.Time) (int64, error) {
	var cleared int64
	err := db.Run(ctx, r.cb, "clear expired tokens", "users", func(ctx context.Context) error {
		tag, err := r.q.Exec(
			ctx,
			`UPDATE users SET token_digest = NULL, token_valid_until = NULL
			 WHERE token_digest IS NOT NULL AND token_valid_until < $1`,
			before,
		)
		cleared = tag.RowsAffected()
		return err
	})
	return cleared, err
}

func (r *PgTokenRepository) update(ctx context.Context, operation, query string, args ...interface{}) error {
	var affected int64
	err := db.Run(ctx, r.cb, operation, "users", func(ctx context.Context) error {
		tag, err := r.q.Exec(ctx, query, args...)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTokenNotFound
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"time"

	pgx "github.com/jackc/pgx/v4"

	"github.com/AlibekovAA/fadechat/internal/common/db"
	"github.com/AlibekovAA/fadechat/internal/common/resilience"
	"github.com/AlibekovAA/fadechat/internal/user/domain"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUsernameAlreadyExists = errors.New("username already exists")
)

type Repository interface {
	Create(ctx context.Context, user domain.User) error
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	FindByID(ctx context.Context, id domain.ID) (domain.User, error)
	ListUsernames(ctx context.Context) ([]string, error)
	UpdateLastLogin(ctx context.Context, id domain.ID, at time.Time) error
}

const table = "users"

const selectUser = `SELECT id, username, password_hash, email, registered_at, last_login_at FROM users`

type PgRepository struct {
	q  db.Querier
	cb *resilience.CircuitBreaker
}

func NewPgRepository(q db.Querier, cb *resilience.CircuitBreaker) *PgRepository {
	return &PgRepository{q: q, cb: cb}
}

func (r *PgRepository) Create(ctx context.Context, user domain.User) error {
	err := db.Run(ctx, r.cb, "create user", table, func(ctx context.Context) error {
		_, err := r.q.Exec(
			ctx,
			`INSERT INTO users (id, username, password_hash, email, registered_at) VALUES ($1, $2, $3, $4, $5)`,
			string(user.ID),
			user.Username,
			user.PasswordHash,
			user.Email,
			user.RegisteredAt,
		)
		return err
	})
	if db.IsUniqueViolation(err) {
		return ErrUsernameAlreadyExists
	}
	return err
}

func (r *PgRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.findOne(ctx, "find user by username", selectUser+` WHERE username = $1`, username)
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	return r.findOne(ctx, "find user by id", selectUser+` WHERE id = $1`, string(id))
}

func (r *PgRepository) findOne(ctx context.Context, operation, query string, arg string) (domain.User, error) {
	var user domain.User
	err := db.Run(ctx, r.cb, operation, table, func(ctx context.Context) error {
		return r.q.QueryRow(ctx, query, arg).Scan(
			&user.ID,
			&user.Username,
			&user.PasswordHash,
			&user.Email,
			&user.RegisteredAt,
			&user.LastLoginAt,
		)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *PgRepository) ListUsernames(ctx context.Context) ([]string, error) {
	var usernames []string
	err := db.Run(ctx, r.cb, "list usernames", table, func(ctx context.Context) error {
		rows, err := r.q.Query(ctx, `SELECT username FROM users ORDER BY username ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		usernames = usernames[:0]
		for rows.Next() {
			var username string
			if err := rows.Scan(&username); err != nil {
				return err
			}
			usernames = append(usernames, username)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return usernames, nil
}

func (r *PgRepository) UpdateLastLogin(ctx context.Context, id domain.ID, at time.Time) error {
	var affected int64
	err := db.Run(ctx, r.cb, "update last login", table, func(ctx context.Context) error {
		tag, err := r.q.Exec(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, string(id), at)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

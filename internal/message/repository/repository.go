package repository

import (
	"context"
	"errors"
	"time"

	pgx "github.com/jackc/pgx/v4"

	"github.com/AlibekovAA/fadechat/internal/common/db"
	"github.com/AlibekovAA/fadechat/internal/common/resilience"
	"github.com/AlibekovAA/fadechat/internal/message/domain"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrAlreadyViewed   = errors.New("message already viewed")
	ErrNotRecipient    = errors.New("requester is not the recipient")
)

type Repository interface {
	Create(ctx context.Context, msg domain.Message) error
	FindByID(ctx context.Context, id domain.ID) (domain.Message, error)
	// MarkViewed atomically moves an unread message addressed to recipient
	// to viewed and returns it with its content. Of any number of
	// concurrent calls for the same message at most one succeeds. Failures
	// are checked in the order not found, already viewed, not recipient.
	MarkViewed(ctx context.Context, id domain.ID, recipient string, at time.Time) (domain.Message, error)
	// ListUnreadForRecipient returns unread messages in insertion order.
	ListUnreadForRecipient(ctx context.Context, recipient string) ([]domain.Summary, error)
}

const table = "messages"

type PgRepository struct {
	q  db.Querier
	cb *resilience.CircuitBreaker
}

func NewPgRepository(q db.Querier, cb *resilience.CircuitBreaker) *PgRepository {
	return &PgRepository{q: q, cb: cb}
}

func (r *PgRepository) Create(ctx context.Context, msg domain.Message) error {
	return db.Run(ctx, r.cb, "create message", table, func(ctx context.Context) error {
		_, err := r.q.Exec(
			ctx,
			`INSERT INTO messages (id, sender_username, recipient_username, content, created_at, state)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			string(msg.ID),
			msg.Sender,
			msg.Recipient,
			msg.Content,
			msg.CreatedAt,
			string(domain.StateUnread),
		)
		return err
	})
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.Message, error) {
	var msg domain.Message
	err := db.Run(ctx, r.cb, "find message", table, func(ctx context.Context) error {
		return r.q.QueryRow(
			ctx,
			`SELECT id, sender_username, recipient_username, content, created_at, state, viewed_at
			 FROM messages WHERE id = $1`,
			string(id),
		).Scan(&msg.ID, &msg.Sender, &msg.Recipient, &msg.Content, &msg.CreatedAt, &msg.State, &msg.ViewedAt)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Message{}, ErrMessageNotFound
	}
	if err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

func (r *PgRepository) MarkViewed(ctx context.Context, id domain.ID, recipient string, at time.Time) (domain.Message, error) {
	var msg domain.Message
	err := db.Run(ctx, r.cb, "mark message viewed", table, func(ctx context.Context) error {
		return r.q.QueryRow(
			ctx,
			`UPDATE messages
			 SET state = 'viewed', viewed_at = $3
			 WHERE id = $1 AND recipient_username = $2 AND state = 'unread'
			 RETURNING id, sender_username, recipient_username, content, created_at, state, viewed_at`,
			string(id),
			recipient,
			at,
		).Scan(&msg.ID, &msg.Sender, &msg.Recipient, &msg.Content, &msg.CreatedAt, &msg.State, &msg.ViewedAt)
	})
	if err == nil {
		return msg, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Message{}, err
	}

	current, err := r.FindByID(ctx, id)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{}, explainRejectedView(current, recipient)
}

// explainRejectedView reports why a message could not be marked viewed.
func explainRejectedView(msg domain.Message, recipient string) error {
	if msg.State == domain.StateViewed {
		return ErrAlreadyViewed
	}
	if msg.Recipient != recipient {
		return ErrNotRecipient
	}
	return ErrAlreadyViewed
}

func (r *PgRepository) ListUnreadForRecipient(ctx context.Context, recipient string) ([]domain.Summary, error) {
	var summaries []domain.Summary
	err := db.Run(ctx, r.cb, "list unread messages", table, func(ctx context.Context) error {
		rows, err := r.q.Query(
			ctx,
			`SELECT id, sender_username, created_at
			 FROM messages
			 WHERE recipient_username = $1 AND state = 'unread'
			 ORDER BY seq ASC`,
			recipient,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		summaries = summaries[:0]
		for rows.Next() {
			var s domain.Summary
			if err := rows.Scan(&s.ID, &s.Sender, &s.CreatedAt); err != nil {
				return err
			}
			summaries = append(summaries, s)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

package memory

import (
	"context"
	"time"

	messagedomain "github.com/AlibekovAA/fadechat/internal/message/domain"
	messagerepo "github.com/AlibekovAA/fadechat/internal/message/repository"
)

type MessageRepository struct {
	s *Store
}

var _ messagerepo.Repository = (*MessageRepository)(nil)

func (r *MessageRepository) Create(_ context.Context, msg messagedomain.Message) error {
	if err := r.s.lock(); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	stored := msg
	stored.State = messagedomain.StateUnread
	stored.ViewedAt = nil
	r.s.messages[msg.ID] = &stored
	r.s.messageSeq = append(r.s.messageSeq, msg.ID)
	return nil
}

func (r *MessageRepository) FindByID(_ context.Context, id messagedomain.ID) (messagedomain.Message, error) {
	if err := r.s.lock(); err != nil {
		return messagedomain.Message{}, err
	}
	defer r.s.mu.Unlock()

	msg, ok := r.s.messages[id]
	if !ok {
		return messagedomain.Message{}, messagerepo.ErrMessageNotFound
	}
	return *msg, nil
}

func (r *MessageRepository) MarkViewed(_ context.Context, id messagedomain.ID, recipient string, at time.Time) (messagedomain.Message, error) {
	if err := r.s.lock(); err != nil {
		return messagedomain.Message{}, err
	}
	defer r.s.mu.Unlock()

	msg, ok := r.s.messages[id]
	switch {
	case !ok:
		return messagedomain.Message{}, messagerepo.ErrMessageNotFound
	case msg.State == messagedomain.StateViewed:
		return messagedomain.Message{}, messagerepo.ErrAlreadyViewed
	case msg.Recipient != recipient:
		return messagedomain.Message{}, messagerepo.ErrNotRecipient
	}

	msg.State = messagedomain.StateViewed
	msg.ViewedAt = &at
	return *msg, nil
}

func (r *MessageRepository) ListUnreadForRecipient(_ context.Context, recipient string) ([]messagedomain.Summary, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	summaries := []messagedomain.Summary{}
	for _, id := range r.s.messageSeq {
		msg := r.s.messages[id]
		if msg.Recipient == recipient && msg.State == messagedomain.StateUnread {
			summaries = append(summaries, messagedomain.Summary{
				ID:        msg.ID,
				Sender:    msg.Sender,
				CreatedAt: msg.CreatedAt,
			})
		}
	}
	return summaries, nil
}

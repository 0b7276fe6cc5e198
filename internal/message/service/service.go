package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/AlibekovAA/fadechat/internal/common/clock"
	"github.com/AlibekovAA/fadechat/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/fadechat/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/fadechat/internal/common/errors"
	"github.com/AlibekovAA/fadechat/internal/common/logger"
	"github.com/AlibekovAA/fadechat/internal/message/domain"
	"github.com/AlibekovAA/fadechat/internal/message/repository"
)

type Service struct {
	repo        repository.Repository
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	maxLength   int
	log         *logger.Logger

	invalidContent commonerrors.DomainError
}

func NewService(
	repo repository.Repository,
	idGenerator commoncrypto.IDGenerator,
	clk clock.Clock,
	maxLength int,
	log *logger.Logger,
) *Service {
	if maxLength <= 0 {
		maxLength = constants.DefaultMessageMaxLength
	}
	invalidContent := ErrInvalidContent
	if maxLength != constants.DefaultMessageMaxLength {
		invalidContent = commonerrors.NewDomainError(
			ErrInvalidContent.Code(),
			ErrInvalidContent.Category(),
			ErrInvalidContent.HTTPStatus(),
			fmt.Sprintf("Message must be more than 0 characters and no more than %d characters.", maxLength),
		)
	}
	return &Service{
		repo:           repo,
		idGenerator:    idGenerator,
		clock:          clk,
		maxLength:      maxLength,
		log:            log,
		invalidContent: invalidContent,
	}
}

// ValidateContent accepts 1..maxLength characters, counted as runes.
func (s *Service) ValidateContent(content string) error {
	if !utf8.ValidString(content) {
		return ErrInvalidContent
	}
	n := utf8.RuneCountInString(content)
	if n == 0 || n > s.maxLength {
		return s.invalidContent
	}
	return nil
}

// Create stores a new unread message. Sender and recipient are assumed to
// be existing usernames.
func (s *Service) Create(ctx context.Context, sender, recipient, content string) (domain.Message, error) {
	if err := s.ValidateContent(content); err != nil {
		return domain.Message{}, err
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return domain.Message{}, commonerrors.ErrInternalError.WithCause(err)
	}

	msg := domain.Message{
		ID:        domain.ID(id),
		Sender:    sender,
		Recipient: recipient,
		Content:   content,
		CreatedAt: s.clock.Now(),
		State:     domain.StateUnread,
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"sender":    sender,
			"recipient": recipient,
			"action":    "message_create_failed",
		}).Errorf("failed to store message: %v", err)
		return domain.Message{}, commonerrors.StoreUnavailable(err)
	}

	return msg, nil
}

// MarkViewed is the single Unread to Viewed transition; it returns the
// content exactly once.
func (s *Service) MarkViewed(ctx context.Context, id domain.ID, recipient string) (domain.Message, error) {
	if !commoncrypto.IsValidID(string(id)) {
		return domain.Message{}, ErrMessageNotFound
	}

	msg, err := s.repo.MarkViewed(ctx, id, recipient, s.clock.Now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrMessageNotFound):
			return domain.Message{}, ErrMessageNotFound
		case errors.Is(err, repository.ErrAlreadyViewed):
			return domain.Message{}, ErrAlreadyViewed
		case errors.Is(err, repository.ErrNotRecipient):
			return domain.Message{}, ErrNotRecipient
		}
		s.log.WithFields(ctx, logger.Fields{
			"message_id": string(id),
			"action":     "message_mark_viewed_failed",
		}).Errorf("failed to mark message viewed: %v", err)
		return domain.Message{}, commonerrors.StoreUnavailable(err)
	}

	return msg, nil
}

// Find returns a message in any state.
func (s *Service) Find(ctx context.Context, id domain.ID) (domain.Message, error) {
	if !commoncrypto.IsValidID(string(id)) {
		return domain.Message{}, ErrMessageNotFound
	}

	msg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return domain.Message{}, ErrMessageNotFound
		}
		return domain.Message{}, commonerrors.StoreUnavailable(err)
	}
	return msg, nil
}

func (s *Service) ListUnread(ctx context.Context, recipient string) ([]domain.Summary, error) {
	summaries, err := s.repo.ListUnreadForRecipient(ctx, recipient)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"recipient": recipient,
			"action":    "message_list_unread_failed",
		}).Errorf("failed to list unread messages: %v", err)
		return nil, commonerrors.StoreUnavailable(err)
	}
	if summaries == nil {
		summaries = []domain.Summary{}
	}
	return summaries, nil
}

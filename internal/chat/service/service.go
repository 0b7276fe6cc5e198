package service

import (
	"context"
	"errors"
	"time"

	authdomain "github.com/AlibekovAA/fadechat/internal/auth/domain"
	authservice "github.com/AlibekovAA/fadechat/internal/auth/service"
	"github.com/AlibekovAA/fadechat/internal/common/constants"
	commonerrors "github.com/AlibekovAA/fadechat/internal/common/errors"
	"github.com/AlibekovAA/fadechat/internal/common/logger"
	"github.com/AlibekovAA/fadechat/internal/common/session"
	messagedomain "github.com/AlibekovAA/fadechat/internal/message/domain"
	messageservice "github.com/AlibekovAA/fadechat/internal/message/service"
	"github.com/AlibekovAA/fadechat/internal/notify"
	"github.com/AlibekovAA/fadechat/internal/observability/metrics"
	userrepo "github.com/AlibekovAA/fadechat/internal/user/repository"
)

// Coordinator runs every chat operation behind the same gate: the
// credential's token must be valid and must belong to the claimed
// username. Successful operations slide the token's validity forward.
type Coordinator struct {
	users    userrepo.Repository
	tokens   *authservice.TokenManager
	messages *messageservice.Service
	notifier notify.Sender
	fade     time.Duration
	log      *logger.Logger
}

func NewCoordinator(
	users userrepo.Repository,
	tokens *authservice.TokenManager,
	messages *messageservice.Service,
	notifier notify.Sender,
	fade time.Duration,
	log *logger.Logger,
) *Coordinator {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	if fade <= 0 {
		fade = constants.DefaultViewFade
	}
	return &Coordinator{
		users:    users,
		tokens:   tokens,
		messages: messages,
		notifier: notifier,
		fade:     fade,
		log:      log,
	}
}

type ViewResult struct {
	ID      messagedomain.ID
	Sender  string
	Content string
	Fade    time.Duration
}

// Authenticate resolves the credential to its token owner or fails with
// ErrSessionExpired or ErrIdentityMismatch.
func (c *Coordinator) Authenticate(ctx context.Context, cred session.Credential) (authdomain.Token, error) {
	token, err := c.tokens.Validate(ctx, cred.Token)
	if err != nil {
		return authdomain.Token{}, err
	}
	if token.Username != cred.Username {
		c.log.WithFields(ctx, logger.Fields{
			"claimed": cred.Username,
			"action":  "chat_identity_mismatch",
		}).Warn("credential username does not match token owner")
		return authdomain.Token{}, authservice.ErrIdentityMismatch
	}
	return token, nil
}

func (c *Coordinator) extend(ctx context.Context, cred session.Credential) {
	if err := c.tokens.Extend(ctx, cred.Token, 0); err != nil {
		c.log.WithFields(ctx, logger.Fields{
			"username": cred.Username,
			"action":   "chat_token_extend_failed",
		}).Warnf("failed to extend token: %v", err)
	}
}

func (c *Coordinator) ListUnread(ctx context.Context, cred session.Credential) ([]messagedomain.Summary, error) {
	caller, err := c.Authenticate(ctx, cred)
	if err != nil {
		return nil, err
	}

	summaries, err := c.messages.ListUnread(ctx, caller.Username)
	if err != nil {
		return nil, err
	}

	c.extend(ctx, cred)
	metrics.UnreadListedTotal.Observe(float64(len(summaries)))
	c.log.WithFields(ctx, logger.Fields{
		"username": caller.Username,
		"count":    len(summaries),
		"action":   "chat_list_unread_success",
	}).Debug("unread messages listed")
	return summaries, nil
}

// View returns a message's content exactly once. Missing messages and
// messages addressed to someone else fail alike with ErrMessageUnavailable.
func (c *Coordinator) View(ctx context.Context, cred session.Credential, id string) (ViewResult, error) {
	caller, err := c.Authenticate(ctx, cred)
	if err != nil {
		return ViewResult{}, err
	}

	msg, err := c.messages.MarkViewed(ctx, messagedomain.ID(id), caller.Username)
	if err != nil {
		switch {
		case errors.Is(err, messageservice.ErrMessageNotFound):
			metrics.MessageViewRejected.WithLabelValues("not_found").Inc()
			return ViewResult{}, ErrMessageUnavailable
		case errors.Is(err, messageservice.ErrNotRecipient):
			metrics.MessageViewRejected.WithLabelValues("not_recipient").Inc()
			c.log.WithFields(ctx, logger.Fields{
				"username":   caller.Username,
				"message_id": id,
				"action":     "chat_view_not_recipient",
			}).Warn("view refused: caller is not the recipient")
			return ViewResult{}, ErrMessageUnavailable
		case errors.Is(err, messageservice.ErrAlreadyViewed):
			return ViewResult{}, c.alreadyViewed(ctx, caller.Username, messagedomain.ID(id))
		}
		return ViewResult{}, err
	}

	c.extend(ctx, cred)
	metrics.MessagesViewedTotal.Inc()
	c.log.WithFields(ctx, logger.Fields{
		"username":   caller.Username,
		"message_id": id,
		"action":     "chat_view_success",
	}).Info("message viewed")

	return ViewResult{
		ID:      msg.ID,
		Sender:  msg.Sender,
		Content: msg.Content,
		Fade:    c.fade,
	}, nil
}

// alreadyViewed reports ErrAlreadyViewed to the recipient only; anyone else
// gets the same answer as for a missing message.
func (c *Coordinator) alreadyViewed(ctx context.Context, caller string, id messagedomain.ID) error {
	msg, err := c.messages.Find(ctx, id)
	if err != nil && !errors.Is(err, messageservice.ErrMessageNotFound) {
		return err
	}
	if err != nil || msg.Recipient != caller {
		metrics.MessageViewRejected.WithLabelValues("not_recipient").Inc()
		return ErrMessageUnavailable
	}
	metrics.MessageViewRejected.WithLabelValues("already_viewed").Inc()
	return messageservice.ErrAlreadyViewed
}

func (c *Coordinator) Send(ctx context.Context, cred session.Credential, recipient, content string) (messagedomain.Message, error) {
	caller, err := c.Authenticate(ctx, cred)
	if err != nil {
		return messagedomain.Message{}, err
	}

	to, err := c.users.FindByUsername(ctx, recipient)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return messagedomain.Message{}, ErrRecipientNotFound
		}
		c.log.WithFields(ctx, logger.Fields{
			"recipient": recipient,
			"action":    "chat_send_recipient_lookup_failed",
		}).Errorf("recipient lookup failed: %v", err)
		return messagedomain.Message{}, commonerrors.StoreUnavailable(err)
	}

	msg, err := c.messages.Create(ctx, caller.Username, to.Username, content)
	if err != nil {
		return messagedomain.Message{}, err
	}

	c.extend(ctx, cred)
	metrics.MessagesSentTotal.Inc()

	if err := c.notifier.NotifyNewMessage(ctx, to, caller.Username); err != nil {
		c.log.WithFields(ctx, logger.Fields{
			"recipient": to.Username,
			"action":    "chat_notify_failed",
		}).Warnf("notification failed: %v", err)
	}

	c.log.WithFields(ctx, logger.Fields{
		"sender":     caller.Username,
		"recipient":  to.Username,
		"message_id": string(msg.ID),
		"action":     "chat_send_success",
	}).Info("message sent")
	return msg, nil
}

// Recipients lists every username except the caller's, sorted.
func (c *Coordinator) Recipients(ctx context.Context, cred session.Credential) ([]string, error) {
	caller, err := c.Authenticate(ctx, cred)
	if err != nil {
		return nil, err
	}

	usernames, err := c.users.ListUsernames(ctx)
	if err != nil {
		c.log.WithFields(ctx, logger.Fields{
			"action": "chat_recipients_failed",
		}).Errorf("failed to list usernames: %v", err)
		return nil, commonerrors.StoreUnavailable(err)
	}

	recipients := make([]string, 0, len(usernames))
	for _, u := range usernames {
		if u != caller.Username {
			recipients = append(recipients, u)
		}
	}

	c.extend(ctx, cred)
	return recipients, nil
}

// Package notify tells recipients that a message is waiting for them.
// Notifications never include message content.
package notify

import (
	"context"
	"fmt"

	"github.com/AlibekovAA/fadechat/internal/common/config"
	"github.com/AlibekovAA/fadechat/internal/common/logger"
	"github.com/AlibekovAA/fadechat/internal/observability/metrics"
	userdomain "github.com/AlibekovAA/fadechat/internal/user/domain"
)

const (
	DriverLog  = "log"
	DriverSMTP = "smtp"
	DriverNone = "none"
)

type Sender interface {
	NotifyNewMessage(ctx context.Context, recipient userdomain.User, sender string) error
}

func New(cfg config.NotifyConfig, log *logger.Logger) (Sender, error) {
	switch cfg.Driver {
	case DriverLog, "":
		return Instrument(DriverLog, NewLogSender(log)), nil
	case DriverSMTP:
		return Instrument(DriverSMTP, NewSMTPSender(cfg, log)), nil
	case DriverNone:
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown notify driver %q", cfg.Driver)
	}
}

type instrumented struct {
	driver string
	next   Sender
}

// Instrument counts notification outcomes per driver.
func Instrument(driver string, next Sender) Sender {
	return &instrumented{driver: driver, next: next}
}

func (s *instrumented) NotifyNewMessage(ctx context.Context, recipient userdomain.User, sender string) error {
	err := s.next.NotifyNewMessage(ctx, recipient, sender)
	result := "sent"
	if err != nil {
		result = "failed"
	}
	metrics.NotificationsTotal.WithLabelValues(s.driver, result).Inc()
	return err
}

type Noop struct{}

func (Noop) NotifyNewMessage(context.Context, userdomain.User, string) error {
	return nil
}

type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) NotifyNewMessage(ctx context.Context, recipient userdomain.User, sender string) error {
	s.log.WithFields(ctx, logger.Fields{
		"recipient": recipient.Username,
		"sender":    sender,
		"action":    "notify_new_message",
	}).Info("new message waiting")
	return nil
}

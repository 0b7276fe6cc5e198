package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/AlibekovAA/fadechat/internal/common/config"
	"github.com/AlibekovAA/fadechat/internal/common/logger"
	userdomain "github.com/AlibekovAA/fadechat/internal/user/domain"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPSender struct {
	addr     string
	from     string
	auth     smtp.Auth
	sendMail sendMailFunc
	log      *logger.Logger
}

func NewSMTPSender(cfg config.NotifyConfig, log *logger.Logger) *SMTPSender {
	var auth smtp.Auth
	if cfg.SMTPUsername != "" {
		host, _, err := net.SplitHostPort(cfg.SMTPAddr)
		if err != nil {
			host = cfg.SMTPAddr
		}
		auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, host)
	}
	return &SMTPSender{
		addr:     cfg.SMTPAddr,
		from:     cfg.From,
		auth:     auth,
		sendMail: smtp.SendMail,
		log:      log,
	}
}

func (s *SMTPSender) NotifyNewMessage(ctx context.Context, recipient userdomain.User, sender string) error {
	if recipient.Email == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body := buildMessage(s.from, recipient, sender)
	if err := s.sendMail(s.addr, s.auth, s.from, []string{recipient.Email}, body); err != nil {
		return fmt.Errorf("send notification mail: %w", err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"recipient": recipient.Username,
		"action":    "notify_mail_sent",
	}).Debug("notification mail sent")
	return nil
}

func buildMessage(from string, recipient userdomain.User, sender string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + recipient.Email + "\r\n")
	b.WriteString("Subject: You have a new message\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(fmt.Sprintf("Hi %s,\r\n\r\n%s sent you a message. It can be viewed once.\r\n", recipient.Username, sender))
	return []byte(b.String())
}

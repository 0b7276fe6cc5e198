package notify

import (
	"context"
	"errors"
	"io"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/fadechat/internal/common/config"
	"github.com/AlibekovAA/fadechat/internal/common/logger"
	userdomain "github.com/AlibekovAA/fadechat/internal/user/domain"
)

func testLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, "test", "error")
}

func TestNew_Drivers(t *testing.T) {
	for _, driver := range []string{DriverLog, DriverSMTP, DriverNone, ""} {
		sender, err := New(config.NotifyConfig{Driver: driver, SMTPAddr: "localhost:25"}, testLogger())
		require.NoError(t, err, driver)
		assert.NotNil(t, sender)
	}

	_, err := New(config.NotifyConfig{Driver: "pigeon"}, testLogger())
	assert.Error(t, err)
}

func TestSMTPSender_SendsWithoutContent(t *testing.T) {
	s := NewSMTPSender(config.NotifyConfig{
		SMTPAddr:     "mail.example.com:587",
		SMTPUsername: "bot",
		SMTPPassword: "pw",
		From:         "noreply@example.com",
	}, testLogger())

	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	s.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		assert.NotNil(t, a)
		assert.Equal(t, "noreply@example.com", from)
		return nil
	}

	bob := userdomain.User{Username: "bob", Email: "bob@example.com"}
	require.NoError(t, s.NotifyNewMessage(context.Background(), bob, "alice"))

	assert.Equal(t, "mail.example.com:587", gotAddr)
	assert.Equal(t, []string{"bob@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "alice sent you a message")
}

func TestSMTPSender_SkipsUsersWithoutEmail(t *testing.T) {
	s := NewSMTPSender(config.NotifyConfig{SMTPAddr: "localhost:25"}, testLogger())
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("sendMail must not be called")
		return nil
	}

	assert.NoError(t, s.NotifyNewMessage(context.Background(), userdomain.User{Username: "bob"}, "alice"))
}

func TestInstrument_PassesErrorThrough(t *testing.T) {
	s := NewSMTPSender(config.NotifyConfig{SMTPAddr: "localhost:25"}, testLogger())
	boom := errors.New("relay denied")
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return boom }

	err := Instrument(DriverSMTP, s).NotifyNewMessage(context.Background(), userdomain.User{Username: "bob", Email: "b@example.com"}, "alice")
	assert.ErrorIs(t, err, boom)
}

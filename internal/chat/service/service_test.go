package service_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authservice "github.com/AlibekovAA/fadechat/internal/auth/service"
	"github.com/AlibekovAA/fadechat/internal/chat/service"
	"github.com/AlibekovAA/fadechat/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/fadechat/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/fadechat/internal/common/errors"
	"github.com/AlibekovAA/fadechat/internal/common/logger"
	"github.com/AlibekovAA/fadechat/internal/common/session"
	messageservice "github.com/AlibekovAA/fadechat/internal/message/service"
	"github.com/AlibekovAA/fadechat/internal/storage/memory"
	userdomain "github.com/AlibekovAA/fadechat/internal/user/domain"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (n *recordingNotifier) NotifyNewMessage(_ context.Context, recipient userdomain.User, sender string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, sender+"->"+recipient.Username)
	return n.err
}

type fixture struct {
	store    *memory.Store
	clock    *clock.MockClock
	tokens   *authservice.TokenManager
	notifier *recordingNotifier
	chat     *service.Coordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	clk := clock.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	log := logger.NewWithWriter(io.Discard, "test", "error")
	ids := commoncrypto.NewUUIDGenerator()

	tokens := authservice.NewTokenManager(store.Tokens(), commoncrypto.NewRandomTokenGenerator(), clk, time.Hour, log)
	messages := messageservice.NewService(store.Messages(), ids, clk, 140, log)
	notifier := &recordingNotifier{}
	chat := service.NewCoordinator(store.Users(), tokens, messages, notifier, 0, log)

	return &fixture{store: store, clock: clk, tokens: tokens, notifier: notifier, chat: chat}
}

// signedIn creates the user directly in the store and issues a token.
func (f *fixture) signedIn(t *testing.T, username string) session.Credential {
	t.Helper()
	ctx := context.Background()

	id, err := commoncrypto.NewUUIDGenerator().NewID()
	require.NoError(t, err)
	user := userdomain.User{
		ID:           userdomain.ID(id),
		Username:     username,
		PasswordHash: "unused",
		Email:        username + "@example.com",
		RegisteredAt: f.clock.Now(),
	}
	require.NoError(t, f.store.Users().Create(ctx, user))

	token, err := f.tokens.Issue(ctx, user)
	require.NoError(t, err)
	return session.Credential{Username: username, Token: token}
}

func TestCoordinator_SendListView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signedIn(t, "alice")
	bob := f.signedIn(t, "bob")

	msg, err := f.chat.Send(ctx, alice, "bob", "hi")
	require.NoError(t, err)
	assert.Equal(t, "alice", msg.Sender)
	assert.Equal(t, "bob", msg.Recipient)
	assert.Equal(t, []string{"alice->bob"}, f.notifier.calls)

	unread, err := f.chat.ListUnread(ctx, bob)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, msg.ID, unread[0].ID)
	assert.Equal(t, "alice", unread[0].Sender)

	view, err := f.chat.View(ctx, bob, string(msg.ID))
	require.NoError(t, err)
	assert.Equal(t, "hi", view.Content)
	assert.Equal(t, "alice", view.Sender)
	assert.Equal(t, 10*time.Second, view.Fade)

	_, err = f.chat.View(ctx, bob, string(msg.ID))
	assert.ErrorIs(t, err, messageservice.ErrAlreadyViewed)

	unread, err = f.chat.ListUnread(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestCoordinator_ViewByOtherUserIsUnavailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signedIn(t, "alice")
	bob := f.signedIn(t, "bob")

	msg, err := f.chat.Send(ctx, alice, "bob", "for bob")
	require.NoError(t, err)

	_, err = f.chat.View(ctx, alice, string(msg.ID))
	assert.ErrorIs(t, err, service.ErrMessageUnavailable)

	_, err = f.chat.View(ctx, bob, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, service.ErrMessageUnavailable)

	_, err = f.chat.View(ctx, bob, "garbage")
	assert.ErrorIs(t, err, service.ErrMessageUnavailable)

	view, err := f.chat.View(ctx, bob, string(msg.ID))
	require.NoError(t, err)
	assert.Equal(t, "for bob", view.Content)

	_, err = f.chat.View(ctx, bob, string(msg.ID))
	assert.ErrorIs(t, err, messageservice.ErrAlreadyViewed)

	_, viewedErr := f.chat.View(ctx, alice, string(msg.ID))
	_, missingErr := f.chat.View(ctx, alice, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, viewedErr, service.ErrMessageUnavailable)
	assert.Equal(t, missingErr.Error(), viewedErr.Error())
}

func TestCoordinator_IdentityMismatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signedIn(t, "alice")
	f.signedIn(t, "bob")

	forged := session.Credential{Username: "bob", Token: alice.Token}

	_, err := f.chat.ListUnread(ctx, forged)
	assert.ErrorIs(t, err, authservice.ErrIdentityMismatch)

	_, err = f.chat.Send(ctx, forged, "alice", "pretending")
	assert.ErrorIs(t, err, authservice.ErrIdentityMismatch)

	_, err = f.chat.View(ctx, forged, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, authservice.ErrIdentityMismatch)

	_, err = f.chat.Recipients(ctx, forged)
	assert.ErrorIs(t, err, authservice.ErrIdentityMismatch)

	assert.Empty(t, f.notifier.calls)
}

func TestCoordinator_SessionExpired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signedIn(t, "alice")

	_, err := f.chat.ListUnread(ctx, session.Credential{Username: "alice"})
	assert.ErrorIs(t, err, authservice.ErrSessionExpired)

	f.clock.Advance(61 * time.Minute)
	_, err = f.chat.ListUnread(ctx, alice)
	assert.ErrorIs(t, err, authservice.ErrSessionExpired)
}

func TestCoordinator_ActionsExtendToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signedIn(t, "alice")

	for i := 0; i < 4; i++ {
		f.clock.Advance(45 * time.Minute)
		_, err := f.chat.ListUnread(ctx, alice)
		require.NoError(t, err, "step %d", i)
	}

	token, err := f.tokens.Validate(ctx, alice.Token)
	require.NoError(t, err)
	assert.Equal(t, f.clock.Now().Add(time.Hour), token.ValidUntil)
}

func TestCoordinator_FailedActionDoesNotExtend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signedIn(t, "alice")
	issuedUntil := f.clock.Now().Add(time.Hour)

	f.clock.Advance(30 * time.Minute)
	_, err := f.chat.Send(ctx, alice, "nobody", "hi")
	require.ErrorIs(t, err, service.ErrRecipientNotFound)

	token, err := f.tokens.Validate(ctx, alice.Token)
	require.NoError(t, err)
	assert.Equal(t, issuedUntil, token.ValidUntil)
}

func TestCoordinator_SendValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signedIn(t, "alice")
	f.signedIn(t, "bob")

	_, err := f.chat.Send(ctx, alice, "bob", "")
	assert.ErrorIs(t, err, messageservice.ErrInvalidContent)

	_, err = f.chat.Send(ctx, alice, "bob", strings.Repeat("a", 141))
	assert.ErrorIs(t, err, messageservice.ErrInvalidContent)

	_, err = f.chat.Send(ctx, alice, "bob", strings.Repeat("a", 140))
	assert.NoError(t, err)
}

func TestCoordinator_SendSurvivesNotifierFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signedIn(t, "alice")
	bob := f.signedIn(t, "bob")
	f.notifier.err = errors.New("smtp down")

	_, err := f.chat.Send(ctx, alice, "bob", "still delivered")
	require.NoError(t, err)

	unread, err := f.chat.ListUnread(ctx, bob)
	require.NoError(t, err)
	assert.Len(t, unread, 1)
}

func TestCoordinator_Recipients(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signedIn(t, "carol")
	bob := f.signedIn(t, "bob")
	f.signedIn(t, "alice")

	recipients, err := f.chat.Recipients(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "carol"}, recipients)
}

func TestCoordinator_StoreUnavailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.signedIn(t, "alice")

	f.store.SetFailure(errors.New("connection refused"))
	_, err := f.chat.ListUnread(ctx, alice)
	assert.ErrorIs(t, err, commonerrors.ErrStoreUnavailable)
}

package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/fadechat/internal/auth/service"
	commoncrypto "github.com/AlibekovAA/fadechat/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/fadechat/internal/common/errors"
	"github.com/AlibekovAA/fadechat/internal/common/session"
)

func signIn(t *testing.T, f *fixture, username, password string) (service.SignInResult, error) {
	t.Helper()
	return f.auth.SignIn(context.Background(), service.SignInInput{
		Username:      username,
		Password:      password,
		SourceAddress: "192.168.1.10",
	})
}

func TestAuthService_Register(t *testing.T) {
	f := newFixture(t)

	user := createUser(t, f, "alice")
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "hashed:password123", user.PasswordHash)
	assert.Equal(t, f.clock.Now(), user.RegisteredAt)
	assert.Nil(t, user.LastLoginAt)
}

func TestAuthService_Register_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input service.RegisterInput
		want  error
	}{
		{
			name:  "empty username",
			input: service.RegisterInput{Email: "a@example.com", Password: "password123", ConfirmPassword: "password123"},
			want:  service.ErrInvalidUsername,
		},
		{
			name:  "username with space",
			input: service.RegisterInput{Username: "al ice", Email: "a@example.com", Password: "password123", ConfirmPassword: "password123"},
			want:  service.ErrInvalidUsername,
		},
		{
			name:  "username too long",
			input: service.RegisterInput{Username: strings.Repeat("a", 33), Email: "a@example.com", Password: "password123", ConfirmPassword: "password123"},
			want:  service.ErrInvalidUsername,
		},
		{
			name:  "bad email",
			input: service.RegisterInput{Username: "alice", Email: "not-an-email", Password: "password123", ConfirmPassword: "password123"},
			want:  service.ErrInvalidEmail,
		},
		{
			name:  "short password",
			input: service.RegisterInput{Username: "alice", Email: "a@example.com", Password: "short", ConfirmPassword: "short"},
			want:  service.ErrInvalidPassword,
		},
		{
			name:  "password too long",
			input: service.RegisterInput{Username: "alice", Email: "a@example.com", Password: strings.Repeat("p", 73), ConfirmPassword: strings.Repeat("p", 73)},
			want:  service.ErrInvalidPassword,
		},
		{
			name:  "mismatched passwords",
			input: service.RegisterInput{Username: "alice", Email: "a@example.com", Password: "password123", ConfirmPassword: "password124"},
			want:  service.ErrPasswordMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.auth.Register(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	f := newFixture(t)
	createUser(t, f, "alice")

	_, err := f.auth.Register(context.Background(), service.RegisterInput{
		Username:        "alice",
		Email:           "other@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	})
	assert.ErrorIs(t, err, service.ErrUsernameTaken)
}

func TestAuthService_SignIn_Success(t *testing.T) {
	f := newFixture(t)
	createUser(t, f, "alice")

	result, err := signIn(t, f, "alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alice", result.Username)
	assert.Len(t, result.Token, 64)

	token, err := f.tokens.Validate(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", token.Username)

	user, err := f.store.Users().FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, user.LastLoginAt)
	assert.Equal(t, f.clock.Now(), *user.LastLoginAt)
}

func TestAuthService_SignIn_InvalidCredentials(t *testing.T) {
	f := newFixture(t)
	createUser(t, f, "alice")

	_, err := signIn(t, f, "alice", "wrongpassword")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = signIn(t, f, "mallory", "password123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	count, err := f.store.Attempts().CountSince(context.Background(), "192.168.1.10", f.clock.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestAuthService_SignIn_RateLimitedBeforePasswordCheck(t *testing.T) {
	f := newFixture(t)
	createUser(t, f, "alice")

	for i := 0; i < 11; i++ {
		_, err := signIn(t, f, "alice", "wrongpassword")
		require.ErrorIs(t, err, service.ErrInvalidCredentials, "attempt %d", i+1)
	}

	_, err := signIn(t, f, "alice", "password123")
	assert.ErrorIs(t, err, service.ErrRateLimited)
}

func TestAuthService_SignIn_StoreUnavailable(t *testing.T) {
	f := newFixture(t)
	createUser(t, f, "alice")
	f.store.SetFailure(errStoreDown)

	_, err := signIn(t, f, "alice", "password123")
	assert.ErrorIs(t, err, commonerrors.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, service.ErrRateLimited)
}

func TestAuthService_SignOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	createUser(t, f, "alice")

	result, err := signIn(t, f, "alice", "password123")
	require.NoError(t, err)

	cred := session.Credential{Username: "alice", Token: result.Token}
	require.NoError(t, f.auth.SignOut(ctx, cred))

	_, err = f.tokens.Validate(ctx, result.Token)
	assert.ErrorIs(t, err, service.ErrSessionExpired)

	assert.NoError(t, f.auth.SignOut(ctx, cred), "signing out twice is not an error")
}

func TestAuthService_SignOut_IdentityMismatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	createUser(t, f, "alice")
	createUser(t, f, "bob")

	result, err := signIn(t, f, "alice", "password123")
	require.NoError(t, err)

	err = f.auth.SignOut(ctx, session.Credential{Username: "bob", Token: result.Token})
	assert.ErrorIs(t, err, service.ErrIdentityMismatch)

	_, err = f.tokens.Validate(ctx, result.Token)
	assert.NoError(t, err, "alice's token must survive a mismatched sign-out")
}

func TestAuthService_SignOut_StoreUnavailable(t *testing.T) {
	f := newFixture(t)
	createUser(t, f, "alice")
	result, err := signIn(t, f, "alice", "password123")
	require.NoError(t, err)

	f.store.SetFailure(errStoreDown)
	err = f.auth.SignOut(context.Background(), session.Credential{Username: "alice", Token: result.Token})
	assert.ErrorIs(t, err, commonerrors.ErrStoreUnavailable)
}

func TestAuthService_SignIn_UnknownUserComparesPassword(t *testing.T) {
	f := newFixture(t)
	hasher := &countingHasher{}
	auth := service.NewAuthService(f.store.Users(), f.guard, f.tokens, hasher, commoncrypto.NewUUIDGenerator(), f.clock, testLogger())
	ctx := context.Background()

	_, err := auth.Register(ctx, service.RegisterInput{
		Username:        "alice",
		Email:           "alice@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	})
	require.NoError(t, err)

	_, err = auth.SignIn(ctx, service.SignInInput{Username: "alice", Password: "wrong-password", SourceAddress: "192.168.1.10"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	assert.Equal(t, 1, hasher.compares)

	_, err = auth.SignIn(ctx, service.SignInInput{Username: "nobody", Password: "password123", SourceAddress: "192.168.1.10"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	assert.Equal(t, 2, hasher.compares)

	_, err = auth.SignIn(ctx, service.SignInInput{Username: "nobody2", Password: "password123", SourceAddress: "192.168.1.10"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	assert.Equal(t, 3, hasher.compares)
}

package service

import (
	"context"
	"errors"
	"time"

	authdomain "github.com/AlibekovAA/fadechat/internal/auth/domain"
	authrepo "github.com/AlibekovAA/fadechat/internal/auth/repository"
	"github.com/AlibekovAA/fadechat/internal/common/clock"
	"github.com/AlibekovAA/fadechat/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/fadechat/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/fadechat/internal/common/errors"
	"github.com/AlibekovAA/fadechat/internal/common/logger"
	userdomain "github.com/AlibekovAA/fadechat/internal/user/domain"
)

// TokenManager owns the session token lifecycle. A token is valid while
// now < ValidUntil; every authenticated action slides ValidUntil forward.
type TokenManager struct {
	repo      authrepo.TokenRepository
	generator commoncrypto.TokenGenerator
	clock     clock.Clock
	ttl       time.Duration
	log       *logger.Logger
}

func NewTokenManager(
	repo authrepo.TokenRepository,
	generator commoncrypto.TokenGenerator,
	clk clock.Clock,
	ttl time.Duration,
	log *logger.Logger,
) *TokenManager {
	if ttl <= 0 {
		ttl = constants.DefaultTokenTTL
	}
	return &TokenManager{
		repo:      repo,
		generator: generator,
		clock:     clk,
		ttl:       ttl,
		log:       log,
	}
}

// Issue replaces the user's token with a fresh one and returns its value.
func (m *TokenManager) Issue(ctx context.Context, user userdomain.User) (string, error) {
	value, err := m.generator.NewToken()
	if err != nil {
		return "", commonerrors.ErrInternalError.WithCause(err)
	}

	validUntil := m.clock.Now().Add(m.ttl)
	if err := m.repo.Save(ctx, user.ID, commoncrypto.DigestToken(value), validUntil); err != nil {
		m.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "token_issue_failed",
		}).Errorf("failed to store token: %v", err)
		return "", commonerrors.StoreUnavailable(err)
	}

	incrementTokensIssued()
	m.log.WithFields(ctx, logger.Fields{
		"user_id": string(user.ID),
		"action":  "token_issued",
	}).Debug("token issued")
	return value, nil
}

// Validate resolves a token value to its owner. Empty, unknown and expired
// values all yield ErrSessionExpired.
func (m *TokenManager) Validate(ctx context.Context, value string) (authdomain.Token, error) {
	if value == "" {
		incrementValidationsFailed("empty")
		return authdomain.Token{}, ErrSessionExpired
	}

	token, err := m.repo.FindByDigest(ctx, commoncrypto.DigestToken(value))
	if err != nil {
		if errors.Is(err, authrepo.ErrTokenNotFound) {
			incrementValidationsFailed("unknown")
			return authdomain.Token{}, ErrSessionExpired
		}
		m.log.WithFields(ctx, logger.Fields{
			"action": "token_validate_failed",
		}).Errorf("failed to look up token: %v", err)
		return authdomain.Token{}, commonerrors.StoreUnavailable(err)
	}

	if !token.ValidAt(m.clock.Now()) {
		incrementValidationsFailed("expired")
		return authdomain.Token{}, ErrSessionExpired
	}

	return token, nil
}

// Extend sets the validity of a still-valid token to now+ttl, or now+the
// configured TTL when ttl is not positive. Concurrent extensions converge
// on the latest deadline.
func (m *TokenManager) Extend(ctx context.Context, value string, ttl time.Duration) error {
	if value == "" {
		return ErrSessionExpired
	}
	if ttl <= 0 {
		ttl = m.ttl
	}

	now := m.clock.Now()
	err := m.repo.Extend(ctx, commoncrypto.DigestToken(value), now.Add(ttl), now)
	if err != nil {
		if errors.Is(err, authrepo.ErrTokenNotFound) {
			return ErrSessionExpired
		}
		return commonerrors.StoreUnavailable(err)
	}

	incrementTokensExtended()
	return nil
}

// Revoke backdates the token so it is invalid from now on. Revoking an
// unknown token is a no-op.
func (m *TokenManager) Revoke(ctx context.Context, value string) error {
	if value == "" {
		return nil
	}

	validUntil := m.clock.Now().Add(-constants.RevokeBackdate)
	err := m.repo.Revoke(ctx, commoncrypto.DigestToken(value), validUntil)
	if err != nil {
		if errors.Is(err, authrepo.ErrTokenNotFound) {
			return nil
		}
		return commonerrors.StoreUnavailable(err)
	}

	incrementTokensRevoked()
	return nil
}

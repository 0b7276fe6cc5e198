package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/AlibekovAA/fadechat/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/fadechat/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/fadechat/internal/common/errors"
	"github.com/AlibekovAA/fadechat/internal/common/logger"
	"github.com/AlibekovAA/fadechat/internal/common/session"
	userdomain "github.com/AlibekovAA/fadechat/internal/user/domain"
	userrepo "github.com/AlibekovAA/fadechat/internal/user/repository"
)

type AuthService struct {
	users       userrepo.Repository
	guard       *LoginGuard
	tokens      *TokenManager
	hasher      commoncrypto.PasswordHasher
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	log         *logger.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	users userrepo.Repository,
	guard *LoginGuard,
	tokens *TokenManager,
	hasher commoncrypto.PasswordHasher,
	idGenerator commoncrypto.IDGenerator,
	clk clock.Clock,
	log *logger.Logger,
) *AuthService {
	return &AuthService{
		users:       users,
		guard:       guard,
		tokens:      tokens,
		hasher:      hasher,
		idGenerator: idGenerator,
		clock:       clk,
		log:         log,
	}
}

// compareDummy spends one hash comparison on an unknown username so it costs
// the same as a wrong password.
func (s *AuthService) compareDummy(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("fadechat-unknown-user")
		if err != nil {
			s.log.Warnf("failed to prepare dummy password hash: %v", err)
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash != "" {
		_ = s.hasher.Compare(s.dummyHash, password)
	}
}

type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

type SignInInput struct {
	Username      string
	Password      string
	SourceAddress string
}

type SignInResult struct {
	Username string
	Token    string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (userdomain.User, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "register_attempt",
	}).Info("register attempt")

	if err := s.validateRegistration(input); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		return userdomain.User{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		return userdomain.User{}, commonerrors.ErrInternalError.WithCause(err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_id_generation_failed",
		}).Errorf("register failed: id generation error: %v", err)
		return userdomain.User{}, commonerrors.ErrInternalError.WithCause(err)
	}

	user := userdomain.User{
		ID:           userdomain.ID(id),
		Username:     input.Username,
		PasswordHash: hash,
		Email:        strings.TrimSpace(input.Email),
		RegisteredAt: s.clock.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, userrepo.ErrUsernameAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_username_exists",
			}).Warn("register failed: already exists")
			return userdomain.User{}, ErrUsernameTaken
		}
		return userdomain.User{}, s.storeFailure(ctx, "register_create_failed", err)
	}

	incrementRegistrations()
	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  string(user.ID),
		"action":   "register_success",
	}).Info("register success")

	return user, nil
}

func (s *AuthService) validateRegistration(input RegisterInput) error {
	if err := validateUsername(input.Username); err != nil {
		return err
	}
	if err := validateEmail(strings.TrimSpace(input.Email)); err != nil {
		return err
	}
	return validatePassword(input.Password, input.ConfirmPassword)
}

// SignIn consults the login guard before touching any account data and
// records the attempt whatever its outcome.
func (s *AuthService) SignIn(ctx context.Context, input SignInInput) (SignInResult, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"source":   input.SourceAddress,
		"action":   "signin_attempt",
	}).Info("sign-in attempt")

	if err := s.guard.CheckRateLimit(ctx, input.SourceAddress); err != nil {
		if errors.Is(err, ErrRateLimited) {
			incrementSignInAttempts("rate_limited")
		} else {
			incrementSignInAttempts("store_unavailable")
		}
		return SignInResult{}, err
	}

	if err := validateUsername(input.Username); err != nil {
		s.recordAttempt(ctx, input.SourceAddress, "", false)
		incrementSignInAttempts("invalid_username")
		return SignInResult{}, err
	}

	user, err := s.users.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			s.compareDummy(input.Password)
			s.recordAttempt(ctx, input.SourceAddress, "", false)
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "signin_user_not_found",
			}).Warn("sign-in failed: not found")
			incrementSignInAttempts("failure")
			return SignInResult{}, ErrInvalidCredentials
		}
		return SignInResult{}, s.storeFailure(ctx, "signin_fetch_failed", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		s.recordAttempt(ctx, input.SourceAddress, user.Username, false)
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "signin_invalid_password",
		}).Warn("sign-in failed: invalid password")
		incrementSignInAttempts("failure")
		return SignInResult{}, ErrInvalidCredentials
	}

	s.recordAttempt(ctx, input.SourceAddress, user.Username, true)

	token, err := s.tokens.Issue(ctx, user)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": user.Username,
			"user_id":  string(user.ID),
			"action":   "signin_token_issue_failed",
		}).Errorf("sign-in failed: token issue error: %v", err)
		return SignInResult{}, err
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, s.clock.Now()); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": string(user.ID),
			"action":  "signin_last_login_failed",
		}).Warnf("failed to stamp last login: %v", err)
	}

	incrementSignInAttempts("success")
	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  string(user.ID),
		"action":   "signin_success",
	}).Info("sign-in success")

	return SignInResult{Username: user.Username, Token: token}, nil
}

func (s *AuthService) recordAttempt(ctx context.Context, source, username string, succeeded bool) {
	// Failures are logged by the guard and must not change the outcome the
	// caller sees.
	_ = s.guard.RecordAttempt(ctx, source, username, succeeded)
}

// SignOut revokes the credential's token. A credential whose token is
// already missing or expired signs out successfully; one whose token
// belongs to another user is refused.
func (s *AuthService) SignOut(ctx context.Context, cred session.Credential) error {
	s.log.WithFields(ctx, logger.Fields{
		"username": cred.Username,
		"action":   "signout_attempt",
	}).Info("sign-out attempt")

	token, err := s.tokens.Validate(ctx, cred.Token)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			return nil
		}
		return err
	}

	if token.Username != cred.Username {
		s.log.WithFields(ctx, logger.Fields{
			"username": cred.Username,
			"action":   "signout_identity_mismatch",
		}).Warn("sign-out refused: token belongs to another user")
		return ErrIdentityMismatch
	}

	if err := s.tokens.Revoke(ctx, cred.Token); err != nil {
		return err
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": cred.Username,
		"user_id":  string(token.UserID),
		"action":   "signout_success",
	}).Info("sign-out success")
	return nil
}

package service

import (
	"net/http"

	commonerrors "github.com/AlibekovAA/fadechat/internal/common/errors"
)

var (
	ErrInvalidCredentials = commonerrors.NewDomainError(
		"INVALID_CREDENTIALS",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"Username or password is incorrect. Please check and try again.",
	)

	ErrRateLimited = commonerrors.NewDomainError(
		"RATE_LIMITED",
		commonerrors.CategoryRateLimit,
		http.StatusTooManyRequests,
		"Too many login attempts, try again at a later time.",
	)

	ErrSessionExpired = commonerrors.NewDomainError(
		"SESSION_EXPIRED",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"Session expired or user does not exist. Please re-signin and try again.",
	)

	ErrIdentityMismatch = commonerrors.NewDomainError(
		"IDENTITY_MISMATCH",
		commonerrors.CategoryForbidden,
		http.StatusForbidden,
		"Session does not match user. Sign-in and try again.",
	)

	ErrUsernameTaken = commonerrors.NewDomainError(
		"USERNAME_TAKEN",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"Username is already registered, please choose another username.",
	)

	ErrInvalidUsername = commonerrors.NewDomainError(
		"INVALID_USERNAME",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"Invalid username. Usernames must not have spaces and can only contain letters and numbers.",
	)

	ErrInvalidEmail = commonerrors.NewDomainError(
		"INVALID_EMAIL",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"Please provide a valid email address.",
	)

	ErrInvalidPassword = commonerrors.NewDomainError(
		"INVALID_PASSWORD",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"Password must be between 8 and 72 characters.",
	)

	ErrPasswordMismatch = commonerrors.NewDomainError(
		"PASSWORD_MISMATCH",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"Password fields did not match.",
	)
)

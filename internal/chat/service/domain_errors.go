package service

import (
	"net/http"

	commonerrors "github.com/AlibekovAA/fadechat/internal/common/errors"
)

var (
	ErrRecipientNotFound = commonerrors.NewDomainError(
		"RECIPIENT_NOT_FOUND",
		commonerrors.CategoryNotFound,
		http.StatusNotFound,
		"The username specified as the recipient does not seem to exist. Please make sure the username is correct.",
	)

	// ErrMessageUnavailable hides whether a message is missing or addressed
	// to someone else.
	ErrMessageUnavailable = commonerrors.NewDomainError(
		"MESSAGE_UNAVAILABLE",
		commonerrors.CategoryNotFound,
		http.StatusNotFound,
		"Cannot view this message.",
	)
)

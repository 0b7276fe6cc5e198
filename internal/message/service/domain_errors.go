package service

import (
	"net/http"

	commonerrors "github.com/AlibekovAA/fadechat/internal/common/errors"
)

var (
	ErrInvalidContent = commonerrors.NewDomainError(
		"INVALID_CONTENT",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"Message must be more than 0 characters and no more than 140 characters.",
	)

	ErrMessageNotFound = commonerrors.NewDomainError(
		"MESSAGE_NOT_FOUND",
		commonerrors.CategoryNotFound,
		http.StatusNotFound,
		"Message did not exist.",
	)

	ErrAlreadyViewed = commonerrors.NewDomainError(
		"ALREADY_VIEWED",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"Message has already been viewed.",
	)

	ErrNotRecipient = commonerrors.NewDomainError(
		"NOT_RECIPIENT",
		commonerrors.CategoryForbidden,
		http.StatusForbidden,
		"The user specified as the recipient does not match the user requesting the message.",
	)
)

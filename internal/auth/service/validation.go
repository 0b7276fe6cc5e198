package service

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/AlibekovAA/fadechat/internal/common/constants"
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	validate      = validator.New()
)

func validateUsername(username string) error {
	if len(username) < constants.UsernameMinLength || len(username) > constants.UsernameMaxLength {
		return ErrInvalidUsername
	}
	if !usernameRegex.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > constants.EmailMaxLength {
		return ErrInvalidEmail
	}
	if err := validate.Var(email, "required,email"); err != nil {
		return ErrInvalidEmail.WithCause(err)
	}
	return nil
}

// bcrypt ignores everything past 72 bytes, so longer passwords are refused.
func validatePassword(password, confirm string) error {
	if len(password) < constants.PasswordMinLength || len(password) > constants.PasswordMaxLength {
		return ErrInvalidPassword
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

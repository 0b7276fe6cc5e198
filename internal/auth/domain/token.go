package domain

import (
	"time"

	userdomain "github.com/AlibekovAA/fadechat/internal/user/domain"
)

// Token is the server-side record of a session token. Only the digest of
// the value is kept; the value itself is handed to the client once.
type Token struct {
	UserID     userdomain.ID
	Username   string
	Digest     string
	ValidUntil time.Time
}

func (t Token) ValidAt(now time.Time) bool {
	return now.Before(t.ValidUntil)
}

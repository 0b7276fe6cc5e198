package domain

import "time"

// LoginAttempt is one sign-in try from a source address. Username is empty
// when the submitted name did not match any account.
type LoginAttempt struct {
	ID            string
	SourceAddress string
	Username      string
	Succeeded     bool
	AttemptedAt   time.Time
}

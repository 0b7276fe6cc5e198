package domain

import "time"

type ID string

// User is a registered account. Usernames are unique and never change.
type User struct {
	ID           ID
	Username     string
	PasswordHash string
	Email        string
	RegisteredAt time.Time
	LastLoginAt  *time.Time
}

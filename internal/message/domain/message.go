package domain

import "time"

type ID string

type State string

const (
	StateUnread State = "unread"
	StateViewed State = "viewed"
)

// Message is readable exactly once, by its recipient. Content is kept
// after viewing but is never returned again.
type Message struct {
	ID        ID
	Sender    string
	Recipient string
	Content   string
	CreatedAt time.Time
	State     State
	ViewedAt  *time.Time
}

// Summary describes an unread message without its content.
type Summary struct {
	ID        ID
	Sender    string
	CreatedAt time.Time
}

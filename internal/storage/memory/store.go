// Package memory keeps every repository in process memory. It backs the
// services when STORAGE_DRIVER=memory and doubles as the store in tests.
package memory

import (
	"sync"
	"time"

	authdomain "github.com/AlibekovAA/fadechat/internal/auth/domain"
	messagedomain "github.com/AlibekovAA/fadechat/internal/message/domain"
	userdomain "github.com/AlibekovAA/fadechat/internal/user/domain"
)

type tokenRecord struct {
	userID     userdomain.ID
	validUntil time.Time
}

type Store struct {
	mu sync.Mutex

	users      map[string]userdomain.User
	usernames  map[userdomain.ID]string
	tokens     map[string]tokenRecord
	userTokens map[userdomain.ID]string
	attempts   []authdomain.LoginAttempt
	messages   map[messagedomain.ID]*messagedomain.Message
	messageSeq []messagedomain.ID
	failure    error
}

func NewStore() *Store {
	return &Store{
		users:      make(map[string]userdomain.User),
		usernames:  make(map[userdomain.ID]string),
		tokens:     make(map[string]tokenRecord),
		userTokens: make(map[userdomain.ID]string),
		messages:   make(map[messagedomain.ID]*messagedomain.Message),
	}
}

// SetFailure makes every subsequent operation return err until it is
// called again with nil.
func (s *Store) SetFailure(err error) {
	s.mu.Lock()
	s.failure = err
	s.mu.Unlock()
}

func (s *Store) lock() error {
	s.mu.Lock()
	if s.failure != nil {
		err := s.failure
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{s: s}
}

func (s *Store) Tokens() *TokenRepository {
	return &TokenRepository{s: s}
}

func (s *Store) Attempts() *AttemptLedger {
	return &AttemptLedger{s: s}
}

func (s *Store) Messages() *MessageRepository {
	return &MessageRepository{s: s}
}

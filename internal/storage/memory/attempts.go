package memory

import (
	"context"
	"time"

	authdomain "github.com/AlibekovAA/fadechat/internal/auth/domain"
	authrepo "github.com/AlibekovAA/fadechat/internal/auth/repository"
)

type AttemptLedger struct {
	s *Store
}

var _ authrepo.AttemptLedger = (*AttemptLedger)(nil)

func (l *AttemptLedger) Record(_ context.Context, attempt authdomain.LoginAttempt) error {
	if err := l.s.lock(); err != nil {
		return err
	}
	defer l.s.mu.Unlock()

	l.s.attempts = append(l.s.attempts, attempt)
	return nil
}

func (l *AttemptLedger) CountSince(_ context.Context, source string, since time.Time) (int, error) {
	if err := l.s.lock(); err != nil {
		return 0, err
	}
	defer l.s.mu.Unlock()

	count := 0
	for _, a := range l.s.attempts {
		if a.SourceAddress == source && a.AttemptedAt.After(since) {
			count++
		}
	}
	return count, nil
}

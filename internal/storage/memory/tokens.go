package memory

import (
	"context"
	"time"

	authdomain "github.com/AlibekovAA/fadechat/internal/auth/domain"
	authrepo "github.com/AlibekovAA/fadechat/internal/auth/repository"
	userdomain "github.com/AlibekovAA/fadechat/internal/user/domain"
)

type TokenRepository struct {
	s *Store
}

var _ authrepo.TokenRepository = (*TokenRepository)(nil)

func (r *TokenRepository) Save(_ context.Context, userID userdomain.ID, digest string, validUntil time.Time) error {
	if err := r.s.lock(); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	if _, ok := r.s.usernames[userID]; !ok {
		return authrepo.ErrTokenNotFound
	}
	if previous, ok := r.s.userTokens[userID]; ok {
		delete(r.s.tokens, previous)
	}
	r.s.tokens[digest] = tokenRecord{userID: userID, validUntil: validUntil}
	r.s.userTokens[userID] = digest
	return nil
}

func (r *TokenRepository) FindByDigest(_ context.Context, digest string) (authdomain.Token, error) {
	if err := r.s.lock(); err != nil {
		return authdomain.Token{}, err
	}
	defer r.s.mu.Unlock()

	rec, ok := r.s.tokens[digest]
	if !ok {
		return authdomain.Token{}, authrepo.ErrTokenNotFound
	}
	return authdomain.Token{
		UserID:     rec.userID,
		Username:   r.s.usernames[rec.userID],
		Digest:     digest,
		ValidUntil: rec.validUntil,
	}, nil
}

func (r *TokenRepository) Extend(_ context.Context, digest string, validUntil, now time.Time) error {
	if err := r.s.lock(); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	rec, ok := r.s.tokens[digest]
	if !ok || !rec.validUntil.After(now) {
		return authrepo.ErrTokenNotFound
	}
	if validUntil.After(rec.validUntil) {
		rec.validUntil = validUntil
		r.s.tokens[digest] = rec
	}
	return nil
}

func (r *TokenRepository) Revoke(_ context.Context, digest string, validUntil time.Time) error {
	if err := r.s.lock(); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	rec, ok := r.s.tokens[digest]
	if !ok {
		return authrepo.ErrTokenNotFound
	}
	rec.validUntil = validUntil
	r.s.tokens[digest] = rec
	return nil
}

func (r *TokenRepository) ClearExpired(_ context.Context, before time.Time) (int64, error) {
	if err := r.s.lock(); err != nil {
		return 0, err
	}
	defer r.s.mu.Unlock()

	var cleared int64
	for digest, rec := range r.s.tokens {
		if rec.validUntil.Before(before) {
			delete(r.s.tokens, digest)
			delete(r.s.userTokens, rec.userID)
			cleared++
		}
	}
	return cleared, nil
}

// Package session carries the {username, token} credential between the
// browser and the services in a cookie.
package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/AlibekovAA/fadechat/internal/common/config"
	"github.com/AlibekovAA/fadechat/internal/common/logger"
)

var (
	ErrNoCredential        = errors.New("no session credential")
	ErrMalformedCredential = errors.New("malformed session credential")
)

type Credential struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

type contextKey string

const credentialKey contextKey = "session_credential"

// Cookies encodes the credential as base64url(JSON) so the value survives
// cookie sanitizing.
type Cookies struct {
	name   string
	ttl    time.Duration
	secure bool
}

func NewCookies(cfg config.SessionConfig) *Cookies {
	return &Cookies{
		name:   cfg.CookieName,
		ttl:    cfg.CookieTTL,
		secure: cfg.CookieSecure,
	}
}

func (c *Cookies) Name() string {
	return c.name
}

func Encode(cred Credential) (string, error) {
	raw, err := json.Marshal(cred)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func Decode(value string) (Credential, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return Credential{}, ErrMalformedCredential
	}
	var cred Credential
	if err := json.Unmarshal(raw, &cred); err != nil {
		return Credential{}, ErrMalformedCredential
	}
	return cred, nil
}

func (c *Cookies) Read(r *http.Request) (Credential, error) {
	cookie, err := r.Cookie(c.name)
	if err != nil || cookie.Value == "" {
		return Credential{}, ErrNoCredential
	}
	return Decode(cookie.Value)
}

func (c *Cookies) Set(w http.ResponseWriter, cred Credential, now time.Time) error {
	value, err := Encode(cred)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     "/",
		Expires:  now.Add(c.ttl),
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (c *Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Middleware stores whatever credential the request carries in the context.
// A missing or malformed cookie yields an empty credential; the handlers
// decide how to treat it.
func (c *Cookies) Middleware(log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cred, err := c.Read(r)
			if errors.Is(err, ErrMalformedCredential) {
				log.WithFields(r.Context(), logger.Fields{
					"action": "session_cookie",
					"path":   r.URL.Path,
				}).Warn("malformed session cookie")
			}
			ctx := WithCredential(r.Context(), cred)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithCredential(ctx context.Context, cred Credential) context.Context {
	return context.WithValue(ctx, credentialKey, cred)
}

func FromContext(ctx context.Context) Credential {
	cred, _ := ctx.Value(credentialKey).(Credential)
	return cred
}

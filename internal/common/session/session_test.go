package session

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/fadechat/internal/common/config"
	"github.com/AlibekovAA/fadechat/internal/common/logger"
)

func testCookies() *Cookies {
	return NewCookies(config.SessionConfig{CookieName: "ChatApp", CookieTTL: 24 * time.Hour, CookieSecure: true})
}

func TestDecode_Malformed(t *testing.T) {
	for _, value := range []string{"%%%", "bm90LWpzb24"} {
		_, err := Decode(value)
		assert.ErrorIs(t, err, ErrMalformedCredential, value)
	}
}

func TestCookies_SetAndRead(t *testing.T) {
	c := testCookies()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cred := Credential{Username: "alice", Token: "abc123"}

	rec := httptest.NewRecorder()
	require.NoError(t, c.Set(rec, cred, now))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, "ChatApp", cookie.Name)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, 86400, cookie.MaxAge)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(cookie)
	got, err := c.Read(req)
	require.NoError(t, err)
	assert.Equal(t, cred, got)
}

func TestCookies_ReadMissing(t *testing.T) {
	_, err := testCookies().Read(httptest.NewRequest(http.MethodPost, "/", nil))
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestCookies_Clear(t *testing.T) {
	rec := httptest.NewRecorder()
	testCookies().Clear(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestMiddleware_StoresCredential(t *testing.T) {
	c := testCookies()
	log := logger.NewWithWriter(io.Discard, "test", "error")
	value, err := Encode(Credential{Username: "bob", Token: "t"})
	require.NoError(t, err)

	var seen Credential
	handler := c.Middleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: "ChatApp", Value: value})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, Credential{Username: "bob", Token: "t"}, seen)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: "ChatApp", Value: "garbage!"})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, Credential{}, seen)
}

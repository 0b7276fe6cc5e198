package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authhttp "github.com/AlibekovAA/fadechat/internal/auth/http"
	"github.com/AlibekovAA/fadechat/internal/auth/service"
	"github.com/AlibekovAA/fadechat/internal/common/clock"
	"github.com/AlibekovAA/fadechat/internal/common/config"
	commoncrypto "github.com/AlibekovAA/fadechat/internal/common/crypto"
	commonhttp "github.com/AlibekovAA/fadechat/internal/common/http"
	"github.com/AlibekovAA/fadechat/internal/common/logger"
	"github.com/AlibekovAA/fadechat/internal/common/session"
	"github.com/AlibekovAA/fadechat/internal/storage/memory"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "h:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "h:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type testServer struct {
	handler http.Handler
	store   *memory.Store
	cookies *session.Cookies
}

func setupHandler(t *testing.T) *testServer {
	t.Helper()

	store := memory.NewStore()
	clk := clock.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	log := logger.NewWithWriter(io.Discard, "test", "error")
	ids := commoncrypto.NewUUIDGenerator()

	guard := service.NewLoginGuard(store.Attempts(), ids, clk, 20, 10, log)
	tokens := service.NewTokenManager(store.Tokens(), commoncrypto.NewRandomTokenGenerator(), clk, time.Hour, log)
	auth := service.NewAuthService(store.Users(), guard, tokens, plainHasher{}, ids, clk, log)
	cookies := session.NewCookies(config.SessionConfig{CookieName: "ChatApp", CookieTTL: 24 * time.Hour})

	return &testServer{
		handler: authhttp.NewHandler(auth, cookies, clk, 5*time.Second, log),
		store:   store,
		cookies: cookies,
	}
}

func (s *testServer) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) commonhttp.Envelope {
	t.Helper()
	var env commonhttp.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func registerForm(username string) url.Values {
	return url.Values{
		"username":         {username},
		"email":            {username + "@example.com"},
		"password":         {"password123"},
		"confirm-password": {"password123"},
	}
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func TestRegister_Form(t *testing.T) {
	s := setupHandler(t)

	rec := s.postForm("/api/auth/register", registerForm("alice"))
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.Equal(t, commonhttp.StatusSuccess, env.Status)
	assert.Equal(t, "Successfully created account.", env.Data["message"])
}

func TestRegister_DuplicateAndInvalid(t *testing.T) {
	s := setupHandler(t)
	require.Equal(t, http.StatusOK, s.postForm("/api/auth/register", registerForm("alice")).Code)

	rec := s.postForm("/api/auth/register", registerForm("alice"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, commonhttp.StatusFail, env.Status)
	assert.True(t, strings.HasPrefix(env.Data["message"].(string), "Error creating an account. "))

	form := registerForm("bob")
	form.Set("confirm-password", "different1")
	rec = s.postForm("/api/auth/register", form)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSignIn_SetsCookie(t *testing.T) {
	s := setupHandler(t)
	require.Equal(t, http.StatusOK, s.postForm("/api/auth/register", registerForm("alice")).Code)

	rec := s.postJSON("/api/auth/signin", `{"username":"alice","password":"password123"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Successfully logged in.", env.Data["message"])
	assert.Equal(t, "alice", env.Data["username"])

	cookie := sessionCookie(t, rec, "ChatApp")
	assert.True(t, cookie.HttpOnly)
	cred, err := session.Decode(cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, "alice", cred.Username)
	assert.Equal(t, env.Data["token"], cred.Token)
}

func TestSignIn_WrongPassword(t *testing.T) {
	s := setupHandler(t)
	require.Equal(t, http.StatusOK, s.postForm("/api/auth/register", registerForm("alice")).Code)

	rec := s.postForm("/api/auth/signin", url.Values{"username": {"alice"}, "password": {"nope-nope"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.Equal(t, commonhttp.StatusFail, env.Status)
	assert.Equal(t, "Error signing in. Username or password is incorrect. Please check and try again.", env.Data["message"])
	assert.Empty(t, rec.Result().Cookies())
}

func TestSignIn_RateLimited(t *testing.T) {
	s := setupHandler(t)
	form := url.Values{"username": {"ghost"}, "password": {"password123"}}

	for i := 0; i < 11; i++ {
		require.Equal(t, http.StatusUnauthorized, s.postForm("/api/auth/signin", form).Code)
	}

	rec := s.postForm("/api/auth/signin", form)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestSignIn_ForwardedHeaderDoesNotResetLimit(t *testing.T) {
	s := setupHandler(t)
	form := url.Values{"username": {"ghost"}, "password": {"password123"}}

	codes := make([]int, 0, 12)
	for i := 0; i < 12; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.RemoteAddr = "203.0.113.50:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
		req.Header.Set("X-Real-IP", fmt.Sprintf("192.0.2.%d", i+1))
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, http.StatusUnauthorized, codes[10])
	assert.Equal(t, http.StatusTooManyRequests, codes[11])
}

func TestSignOut_RevokesAndClears(t *testing.T) {
	s := setupHandler(t)
	require.Equal(t, http.StatusOK, s.postForm("/api/auth/register", registerForm("alice")).Code)
	signin := s.postForm("/api/auth/signin", url.Values{"username": {"alice"}, "password": {"password123"}})
	require.Equal(t, http.StatusOK, signin.Code)
	cookie := sessionCookie(t, signin, "ChatApp")

	rec := s.postForm("/api/auth/signout", url.Values{}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Successfully logged out.", decodeEnvelope(t, rec).Data["message"])
	assert.Equal(t, -1, sessionCookie(t, rec, "ChatApp").MaxAge)

	cred, err := session.Decode(cookie.Value)
	require.NoError(t, err)
	tok, err := s.store.Tokens().FindByDigest(context.Background(), commoncrypto.DigestToken(cred.Token))
	require.NoError(t, err)
	assert.True(t, tok.ValidUntil.Before(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
}

func TestSignOut_WithoutCookie(t *testing.T) {
	s := setupHandler(t)

	rec := s.postForm("/api/auth/signout", url.Values{})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	s := setupHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/signin", nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

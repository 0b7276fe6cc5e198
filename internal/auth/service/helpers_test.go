package service_test

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/AlibekovAA/fadechat/internal/auth/service"
	"github.com/AlibekovAA/fadechat/internal/common/clock"
	commoncrypto "github.com/AlibekovAA/fadechat/internal/common/crypto"
	"github.com/AlibekovAA/fadechat/internal/common/logger"
	"github.com/AlibekovAA/fadechat/internal/storage/memory"
)

var errStoreDown = errors.New("connection refused")

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Compare(hash string, password string) error {
	if hash != "hashed:"+password {
		return errors.New("password mismatch")
	}
	return nil
}

type sequenceTokens struct {
	values []string
	next   int
}

func (g *sequenceTokens) NewToken() (string, error) {
	if g.next >= len(g.values) {
		return "", errors.New("out of tokens")
	}
	v := g.values[g.next]
	g.next++
	return v, nil
}

type fixture struct {
	store  *memory.Store
	clock  *clock.MockClock
	guard  *service.LoginGuard
	tokens *service.TokenManager
	auth   *service.AuthService
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, "test", "error")
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	clk := clock.NewMockClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	log := testLogger()
	ids := commoncrypto.NewUUIDGenerator()

	guard := service.NewLoginGuard(store.Attempts(), ids, clk, 20, 10, log)
	tokens := service.NewTokenManager(store.Tokens(), commoncrypto.NewRandomTokenGenerator(), clk, time.Hour, log)
	auth := service.NewAuthService(store.Users(), guard, tokens, fakeHasher{}, ids, clk, log)

	return &fixture{store: store, clock: clk, guard: guard, tokens: tokens, auth: auth}
}

type countingHasher struct {
	fakeHasher
	compares int
}

func (h *countingHasher) Compare(hash string, password string) error {
	h.compares++
	return h.fakeHasher.Compare(hash, password)
}

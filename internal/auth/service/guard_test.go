package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/fadechat/internal/auth/service"
	commonerrors "github.com/AlibekovAA/fadechat/internal/common/errors"
)

func TestLoginGuard_HourLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const source = "10.0.0.1"

	// Two minutes apart keeps the ten minute window at five attempts.
	for i := 1; i <= 21; i++ {
		require.NoError(t, f.guard.CheckRateLimit(ctx, source), "attempt %d", i)
		require.NoError(t, f.guard.RecordAttempt(ctx, source, "alice", false))
		f.clock.Advance(2 * time.Minute)
	}

	err := f.guard.CheckRateLimit(ctx, source)
	assert.ErrorIs(t, err, service.ErrRateLimited)
}

func TestLoginGuard_TenMinuteLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const source = "10.0.0.2"

	for i := 1; i <= 11; i++ {
		require.NoError(t, f.guard.CheckRateLimit(ctx, source), "attempt %d", i)
		require.NoError(t, f.guard.RecordAttempt(ctx, source, "", false))
	}

	assert.ErrorIs(t, f.guard.CheckRateLimit(ctx, source), service.ErrRateLimited)

	f.clock.Advance(10*time.Minute + time.Second)
	assert.NoError(t, f.guard.CheckRateLimit(ctx, source))
}

func TestLoginGuard_SourcesAreIndependent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 11; i++ {
		require.NoError(t, f.guard.RecordAttempt(ctx, "10.0.0.3", "", false))
	}

	assert.ErrorIs(t, f.guard.CheckRateLimit(ctx, "10.0.0.3"), service.ErrRateLimited)
	assert.NoError(t, f.guard.CheckRateLimit(ctx, "10.0.0.4"))
}

func TestLoginGuard_FailsClosed(t *testing.T) {
	f := newFixture(t)
	f.store.SetFailure(errStoreDown)

	err := f.guard.CheckRateLimit(context.Background(), "10.0.0.5")
	require.Error(t, err)
	assert.ErrorIs(t, err, commonerrors.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, service.ErrRateLimited)
	assert.True(t, errors.Is(err, errStoreDown), "cause should be kept")
}

func TestLoginGuard_RecordAttemptReportsLedgerFailure(t *testing.T) {
	f := newFixture(t)
	f.store.SetFailure(errStoreDown)

	err := f.guard.RecordAttempt(context.Background(), "10.0.0.6", "bob", true)
	assert.ErrorIs(t, err, errStoreDown)
}

package service

import (
	"context"

	authdomain "github.com/AlibekovAA/fadechat/internal/auth/domain"
	authrepo "github.com/AlibekovAA/fadechat/internal/auth/repository"
	"github.com/AlibekovAA/fadechat/internal/common/clock"
	"github.com/AlibekovAA/fadechat/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/fadechat/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/fadechat/internal/common/errors"
	"github.com/AlibekovAA/fadechat/internal/common/logger"
)

// LoginGuard limits sign-in attempts per source address using the attempt
// ledger. A source is refused once it has more than hourLimit attempts in
// the last hour or more than tenMinLimit in the last ten minutes. A ledger
// failure also refuses the attempt, reported as ErrStoreUnavailable.
type LoginGuard struct {
	ledger      authrepo.AttemptLedger
	idGenerator commoncrypto.IDGenerator
	clock       clock.Clock
	hourLimit   int
	tenMinLimit int
	log         *logger.Logger
}

func NewLoginGuard(
	ledger authrepo.AttemptLedger,
	idGenerator commoncrypto.IDGenerator,
	clk clock.Clock,
	hourLimit int,
	tenMinLimit int,
	log *logger.Logger,
) *LoginGuard {
	if hourLimit <= 0 {
		hourLimit = constants.DefaultLoginHourLimit
	}
	if tenMinLimit <= 0 {
		tenMinLimit = constants.DefaultLoginTenMinLimit
	}
	return &LoginGuard{
		ledger:      ledger,
		idGenerator: idGenerator,
		clock:       clk,
		hourLimit:   hourLimit,
		tenMinLimit: tenMinLimit,
		log:         log,
	}
}

func (g *LoginGuard) CheckRateLimit(ctx context.Context, source string) error {
	now := g.clock.Now()

	hourCount, err := g.ledger.CountSince(ctx, source, now.Add(-constants.LoginHourWindow))
	if err != nil {
		return g.failClosed(ctx, source, err)
	}
	tenMinCount, err := g.ledger.CountSince(ctx, source, now.Add(-constants.LoginTenMinWindow))
	if err != nil {
		return g.failClosed(ctx, source, err)
	}

	if hourCount > g.hourLimit || tenMinCount > g.tenMinLimit {
		g.log.WithFields(ctx, logger.Fields{
			"source":        source,
			"hour_count":    hourCount,
			"ten_min_count": tenMinCount,
			"action":        "login_guard_denied",
		}).Warn("sign-in refused: too many attempts")
		incrementGuardDenials("limit")
		return ErrRateLimited
	}

	return nil
}

func (g *LoginGuard) failClosed(ctx context.Context, source string, err error) error {
	g.log.WithFields(ctx, logger.Fields{
		"source": source,
		"action": "login_guard_ledger_failed",
	}).Errorf("sign-in refused: attempt ledger unavailable: %v", err)
	incrementGuardDenials("ledger_unavailable")
	return commonerrors.ErrStoreUnavailable.WithCause(err)
}

// RecordAttempt appends one attempt to the ledger. username is empty when
// the submitted name matched no account.
func (g *LoginGuard) RecordAttempt(ctx context.Context, source, username string, succeeded bool) error {
	id, err := g.idGenerator.NewID()
	if err != nil {
		return err
	}

	err = g.ledger.Record(ctx, authdomain.LoginAttempt{
		ID:            id,
		SourceAddress: source,
		Username:      username,
		Succeeded:     succeeded,
		AttemptedAt:   g.clock.Now(),
	})
	if err != nil {
		g.log.WithFields(ctx, logger.Fields{
			"source":   source,
			"username": username,
			"action":   "login_attempt_record_failed",
		}).Errorf("failed to record login attempt: %v", err)
		return err
	}
	return nil
}

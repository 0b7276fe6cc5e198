package cleanup

import (
	"context"
	"time"

	"github.com/AlibekovAA/fadechat/internal/common/clock"
	"github.com/AlibekovAA/fadechat/internal/common/constants"
	"github.com/AlibekovAA/fadechat/internal/common/logger"
	"github.com/AlibekovAA/fadechat/internal/observability/metrics"
)

type ExpiredClearer interface {
	ClearExpired(ctx context.Context, before time.Time) (int64, error)
}

// RunOnce drops stored token digests that stopped being valid more than
// grace ago. Expired tokens already fail validation; this only reclaims
// the columns.
func RunOnce(ctx context.Context, repo ExpiredClearer, clk clock.Clock, grace time.Duration, log *logger.Logger) (int64, error) {
	cleared, err := repo.ClearExpired(ctx, clk.Now().Add(-grace))
	if err != nil {
		log.Errorf("token cleanup failed: %v", err)
		return 0, err
	}
	if cleared > 0 {
		metrics.SessionTokensCleanupCleared.Add(float64(cleared))
		log.Infof("token cleanup: cleared %d expired tokens", cleared)
	}
	return cleared, nil
}

func StartTokenCleanup(ctx context.Context, repo ExpiredClearer, clk clock.Clock, log *logger.Logger) {
	ticker := time.NewTicker(constants.TokenCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = RunOnce(ctx, repo, clk, constants.TokenCleanupGrace, log)
		}
	}
}

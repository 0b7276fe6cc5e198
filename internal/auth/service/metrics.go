package service

import (
	"github.com/AlibekovAA/fadechat/internal/observability/metrics"
)

func incrementSignInAttempts(outcome string) {
	metrics.SignInAttemptsTotal.WithLabelValues(outcome).Inc()
}

func incrementGuardDenials(reason string) {
	metrics.LoginGuardDenials.WithLabelValues(reason).Inc()
}

func incrementTokensIssued() {
	metrics.SessionTokensIssued.Inc()
}

func incrementTokensExtended() {
	metrics.SessionTokensExtended.Inc()
}

func incrementTokensRevoked() {
	metrics.SessionTokensRevoked.Inc()
}

func incrementValidationsFailed(reason string) {
	metrics.SessionValidationsFailed.WithLabelValues(reason).Inc()
}

func incrementRegistrations() {
	metrics.RegistrationsTotal.Inc()
}

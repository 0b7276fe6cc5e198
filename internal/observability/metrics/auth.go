package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SignInAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signin_attempts_total",
			Help:      "Total number of sign-in attempts by outcome",
		},
		[]string{"outcome"},
	)

	LoginGuardDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_guard_denials_total",
			Help:      "Total number of sign-in attempts denied by the login guard",
		},
		[]string{"reason"},
	)

	SessionTokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_tokens_issued_total",
			Help:      "Total number of session tokens issued",
		},
	)

	SessionTokensExtended = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_tokens_extended_total",
			Help:      "Total number of session token extensions",
		},
	)

	SessionTokensRevoked = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_tokens_revoked_total",
			Help:      "Total number of session tokens revoked",
		},
	)

	SessionValidationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_validations_failed_total",
			Help:      "Total number of failed session validations by reason",
		},
		[]string{"reason"},
	)

	SessionTokensCleanupCleared = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_tokens_cleanup_cleared_total",
			Help:      "Total number of stale token digests cleared during cleanup",
		},
	)

	RegistrationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Total number of registered accounts",
		},
	)
)

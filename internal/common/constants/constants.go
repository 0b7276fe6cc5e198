package constants

import "time"

const (
	UsernameMinLength = 1
	UsernameMaxLength = 32
	PasswordMinLength = 8
	PasswordMaxLength = 72
	EmailMaxLength    = 254

	TokenSize = 32

	DefaultTokenTTL         = 60 * time.Minute
	RevokeBackdate          = 60 * time.Minute
	DefaultLoginHourLimit   = 20
	DefaultLoginTenMinLimit = 10
	LoginHourWindow         = 60 * time.Minute
	LoginTenMinWindow       = 10 * time.Minute

	DefaultMessageMaxLength = 140
	DefaultViewFade         = 10 * time.Second

	DefaultSessionCookieName = "ChatApp"
	DefaultSessionCookieTTL  = 24 * time.Hour

	DefaultMaxRequestSize = 1 << 16

	TokenCleanupInterval = 1 * time.Hour
	TokenCleanupGrace    = 24 * time.Hour

	DBPoolMaxOpenConns    = 25
	DBPoolMinOpenConns    = 5
	DBPoolConnMaxLifetime = 1 * time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = 1 * time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = 1 * time.Second
	DBPoolMetricsInterval = 30 * time.Second
	DBQueryTimeout        = 30 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultAuthHTTPPort = "8081"
	DefaultChatHTTPPort = "8082"

	DefaultCircuitBreakerThreshold = 50
	DefaultCircuitBreakerTimeout   = 5 * time.Second
	DefaultCircuitBreakerReset     = 10 * time.Second

	DefaultRequestTimeout = 5 * time.Second

	RateLimitCleanupInterval = 5 * time.Minute

	RateLimitSignInRequestsPerSecond   = 2.0
	RateLimitSignInBurst               = 5
	RateLimitRegisterRequestsPerSecond = 0.5
	RateLimitRegisterBurst             = 3
	RateLimitSignOutRequestsPerSecond  = 5.0
	RateLimitSignOutBurst              = 10
	RateLimitGeneralRequestsPerSecond  = 20.0
	RateLimitGeneralBurst              = 40

	BcryptCost = 12

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"

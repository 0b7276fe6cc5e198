package http

import (
	"net/http"

	"github.com/AlibekovAA/fadechat/internal/common/constants"
	"github.com/AlibekovAA/fadechat/internal/common/httpmetrics"
	"github.com/AlibekovAA/fadechat/internal/common/logger"
)

const defaultCSP = "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'; frame-ancestors 'none';"

func BuildBaseHandler(appName string, log *logger.Logger, handler http.Handler) http.Handler {
	metrics := httpmetrics.New(appName)
	recovery := RecoveryMiddleware(log)
	traceID := TraceIDMiddleware
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)
	securityHeaders := SecurityHeadersMiddleware
	csp := ContentSecurityPolicyMiddleware(defaultCSP)

	return securityHeaders(csp(recovery(traceID(maxRequestSize(metrics.Wrap(handler))))))
}

package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/AlibekovAA/fadechat/internal/common/constants"
	commonerrors "github.com/AlibekovAA/fadechat/internal/common/errors"
	"github.com/AlibekovAA/fadechat/internal/common/httpmetrics"
	"github.com/AlibekovAA/fadechat/internal/common/logger"
	"github.com/AlibekovAA/fadechat/internal/observability/metrics"
)

type ErrorHandler struct {
	log *logger.Logger
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{log: log}
}

func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	h.HandleOperationError(w, r, "", err)
}

// HandleOperationError renders err as a fail envelope whose message is
// prefixed with the failed operation, e.g. "Error signing in. ".
func (h *ErrorHandler) HandleOperationError(w http.ResponseWriter, r *http.Request, prefix string, err error) {
	if err == nil {
		return
	}

	ctx := r.Context()
	traceID := getTraceIDFromContext(ctx)

	if domainErr, ok := commonerrors.AsDomainError(err); ok {
		h.handleDomainError(w, r, prefix, domainErr)
		return
	}

	logFields := logger.Fields{
		"error":  err.Error(),
		"action": "unhandled_error",
	}
	if traceID != "" {
		logFields["trace_id"] = traceID
		w.Header().Set("X-Trace-ID", traceID)
	}

	h.log.WithFields(ctx, logFields).Errorf("unhandled error: %v", err)

	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(http.StatusInternalServerError),
		httpmetrics.NormalizePath(r.URL.Path),
		r.Method,
	).Inc()

	WriteError(w, commonerrors.ErrInternalError.HTTPStatus(), prefix+commonerrors.ErrInternalError.Message())
}

func (h *ErrorHandler) handleDomainError(w http.ResponseWriter, r *http.Request, prefix string, err commonerrors.DomainError) {
	ctx := r.Context()
	traceID := getTraceIDFromContext(ctx)

	var domainErr commonerrors.DomainError = err
	if traceID != "" && err.TraceID() == "" {
		domainErr = err.WithTraceID(traceID)
	}

	status := domainErr.HTTPStatus()
	message := prefix + domainErr.Message()

	logFields := logger.Fields{
		"error_code": domainErr.Code(),
		"category":   string(domainErr.Category()),
		"status":     status,
		"action":     "domain_error",
	}
	if traceID != "" {
		logFields["trace_id"] = traceID
	}

	switch {
	case status >= http.StatusInternalServerError:
		h.log.WithFields(ctx, logFields).Errorf("domain error: %s", domainErr.Error())
	case h.log.ShouldLog(logger.DEBUG):
		h.log.WithFields(ctx, logFields).Debugf("domain error: %s", domainErr.Error())
	}

	metrics.DomainErrorsTotal.WithLabelValues(
		string(domainErr.Category()),
		domainErr.Code(),
		strconv.Itoa(status),
	).Inc()

	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(status),
		httpmetrics.NormalizePath(r.URL.Path),
		r.Method,
	).Inc()

	if traceID != "" {
		w.Header().Set("X-Trace-ID", traceID)
	}

	var data map[string]any
	if domainErr.TraceID() != "" {
		data = map[string]any{"traceId": domainErr.TraceID()}
	}
	WriteFail(w, status, message, data)
}

func HandleError(w http.ResponseWriter, r *http.Request, err error, log *logger.Logger) {
	NewErrorHandler(log).HandleError(w, r, err)
}

func getTraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	val := ctx.Value(constants.TraceIDKey)
	if val == nil {
		return ""
	}
	traceID, ok := val.(string)
	if !ok || traceID == "" {
		return ""
	}
	return traceID
}

package http

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"
)

// Envelope is the body of every API response.
type Envelope struct {
	Status string         `json:"status"`
	Data   map[string]any `json:"data"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes a 200 success envelope. Keys in data are merged next
// to the message.
func WriteSuccess(w http.ResponseWriter, message string, data map[string]any) {
	WriteJSON(w, http.StatusOK, Envelope{Status: StatusSuccess, Data: withMessage(message, data)})
}

func WriteFail(w http.ResponseWriter, status int, message string, data map[string]any) {
	WriteJSON(w, status, Envelope{Status: StatusFail, Data: withMessage(message, data)})
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteFail(w, status, message, nil)
}

func withMessage(message string, data map[string]any) map[string]any {
	out := make(map[string]any, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	out["message"] = message
	return out
}

// GetClientIP is the host part of r.RemoteAddr. Forwarded headers are only
// applied by RealIPMiddleware for trusted proxies.
func GetClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func RequireMethod(method string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				w.Header().Set("Allow", method)
				WriteError(w, http.StatusMethodNotAllowed, "Method not allowed.")
				return
			}
			next(w, r)
		}
	}
}

func WithTimeout(timeout time.Duration) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next(w, r.WithContext(ctx))
		}
	}
}

package http

import (
	"net"
	"net/http"
	"strings"
)

// RealIPMiddleware replaces r.RemoteAddr with the client address carried in
// X-Forwarded-For or X-Real-IP, but only when the immediate peer is one of
// the trusted proxies. The forwarded chain is walked right to left and the
// first address outside the trusted set wins.
func RealIPMiddleware(trusted []*net.IPNet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(trusted) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := forwardedClientIP(r, trusted); ip != "" {
				r.RemoteAddr = net.JoinHostPort(ip, "0")
			}
			next.ServeHTTP(w, r)
		})
	}
}

func forwardedClientIP(r *http.Request, trusted []*net.IPNet) string {
	if !isTrusted(GetClientIP(r), trusted) {
		return ""
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if net.ParseIP(hop) == nil {
				return ""
			}
			if !isTrusted(hop, trusted) {
				return hop
			}
		}
		return ""
	}

	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(ip) != nil {
		return ip
	}
	return ""
}

func isTrusted(addr string, trusted []*net.IPNet) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, n := range trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

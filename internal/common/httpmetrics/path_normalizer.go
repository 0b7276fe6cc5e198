package httpmetrics

import (
	"strings"
	"sync"
)

// UnmatchedPath labels requests for paths no handler was registered for.
// Only registered paths become label values.
const UnmatchedPath = "unmatched"

var (
	routesMu sync.RWMutex
	routes   = map[string]struct{}{}
)

// RegisterRoute records exact mux paths that may appear as metric labels.
func RegisterRoute(paths ...string) {
	routesMu.Lock()
	defer routesMu.Unlock()
	for _, p := range paths {
		routes[trimPath(p)] = struct{}{}
	}
}

func NormalizePath(path string) string {
	path = trimPath(path)

	routesMu.RLock()
	_, ok := routes[path]
	routesMu.RUnlock()
	if ok {
		return path
	}
	return UnmatchedPath
}

func trimPath(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

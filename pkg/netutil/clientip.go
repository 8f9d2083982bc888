// Package netutil has small helpers for HTTP request handling.
package netutil

import (
	"net/http"
	"strings"
)

// ClientIP extracts the client IP address from an HTTP request. It
// checks X-Forwarded-For first (taking only the first entry in the
// chain), then X-Real-IP, and falls back to RemoteAddr with the port
// stripped.
//
// The forwarded headers are trusted as set by the reverse proxy in
// front of the status API. The address is used for request logging
// only, never for access decisions.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	return stripPort(r.RemoteAddr)
}

// stripPort removes the port portion from an address string. Handles
// IPv4 ("1.2.3.4:8080"), bracketed IPv6 ("[::1]:8080"), and bare IPv6
// ("::1") without mangling.
func stripPort(addr string) string {
	idx := strings.LastIndex(addr, ":")
	if idx == -1 {
		return addr
	}

	// IPv6 with brackets: [::1]:port
	if strings.Contains(addr, "[") {
		if closeIdx := strings.LastIndex(addr, "]"); closeIdx != -1 && closeIdx < idx {
			return addr[:idx]
		}
		return addr
	}

	// Bare IPv6 (multiple colons, no brackets): return as-is
	if strings.Count(addr, ":") > 1 {
		return addr
	}

	return addr[:idx]
}

// Package clientip resolves the originating client address from the
// trusted proxy header chain. The gateway always sits behind a proxy
// layer that sets these headers, so RemoteAddr is never consulted.
package clientip

import "net/http"

// Unknown is the literal used when no trusted proxy header is present.
const Unknown = "unknown"

// FromRequest returns the caller's address: CF-Connecting-IP first,
// then X-Forwarded-For, else Unknown. The X-Forwarded-For value is
// taken as-is (first hop semantics are the proxy's responsibility).
func FromRequest(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	return Unknown
}

// Package middleware provides HTTP middleware for the console gateway.
package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/signalry/triage-console/internal/session"
	"github.com/signalry/triage-console/pkg/metrics"
)

// SessionGate redirects requests for protected paths to the login page
// when no session token is present. The decision is pure: path prefix
// match plus token presence. Token validity is never checked here.
func SessionGate(sessions *session.Manager, loginPath string, protected []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isProtected(r.URL.Path, protected) {
				next.ServeHTTP(w, r)
				return
			}

			if _, ok := sessions.Token(r); ok {
				next.ServeHTTP(w, r)
				return
			}

			metrics.GateRedirectsTotal.WithLabelValues(r.URL.Path).Inc()
			target := loginPath + "?redirect=" + url.QueryEscape(r.URL.Path)
			http.Redirect(w, r, target, http.StatusFound)
		})
	}
}

// isProtected reports whether path falls under one of the protected
// prefixes: an exact match or a sub-path of it.
func isProtected(path string, protected []string) bool {
	for _, p := range protected {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

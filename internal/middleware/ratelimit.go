package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/signalry/triage-console/internal/session"
)

// RateLimit creates rate limiting middleware keyed by session token
// when present, otherwise by client IP.
func RateLimit(sessions *session.Manager, requestLimit int, windowLength time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		requestLimit,
		windowLength,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if token, ok := sessions.Token(r); ok {
				return "session:" + token, nil
			}
			return "ip:" + r.RemoteAddr, nil
		}),
		httprate.WithLimitHandler(limitHandler),
	)
}

// LoginRateLimit limits login attempts per IP. Invite codes are short,
// so the window has to be tight.
func LoginRateLimit(requestLimit int, windowLength time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		requestLimit,
		windowLength,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(limitHandler),
	)
}

func limitHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "60")
	w.WriteHeader(http.StatusTooManyRequests)
	w.Write([]byte(`{"error":"rate limit exceeded","retry_after":60}`))
}

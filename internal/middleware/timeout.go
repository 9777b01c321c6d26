package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout cancels the request context after d. Store calls observe the deadline and
// return context.DeadlineExceeded, which handlers report as 503. d <= 0 disables it.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	if d <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

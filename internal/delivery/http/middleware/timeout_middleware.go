package middleware

import (
	"context"
	"net/http"
	"time"
)

type TimeoutMiddleware struct {
	timeout time.Duration
}

// NewTimeoutMiddleware bounds every request with a context deadline. A store
// call that outlives the deadline fails with context.DeadlineExceeded, which
// the handlers map to 503.
func NewTimeoutMiddleware(timeout time.Duration) *TimeoutMiddleware {
	return &TimeoutMiddleware{timeout: timeout}
}

func (m *TimeoutMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), m.timeout)
		defer cancel()
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

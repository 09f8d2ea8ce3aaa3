package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTimeoutMiddlewareSetsDeadline(t *testing.T) {
	var deadline time.Time
	var ok bool
	handler := NewTimeoutMiddleware(10 * time.Second).Handle(
		http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			deadline, ok = req.Context().Deadline()
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if !ok {
		t.Fatal("expected the request context to carry a deadline")
	}
	if remaining := time.Until(deadline); remaining <= 0 || remaining > 10*time.Second {
		t.Errorf("deadline %v out of the configured window", remaining)
	}
}

func TestTimeoutMiddlewareExpires(t *testing.T) {
	var err error
	handler := NewTimeoutMiddleware(time.Millisecond).Handle(
		http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			select {
			case <-req.Context().Done():
				err = req.Context().Err()
			case <-time.After(time.Second):
			}
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/appointments", nil))

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}

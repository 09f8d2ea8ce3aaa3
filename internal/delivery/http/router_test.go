package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinic-backend/internal/delivery/http/handler"
	"clinic-backend/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()

	authLimiter := middleware.NewRateLimiter(100, time.Minute)
	patientLimiter := middleware.NewRateLimiter(100, time.Minute)
	generalLimiter := middleware.NewRateLimiter(100, time.Minute)
	t.Cleanup(func() {
		authLimiter.Close()
		patientLimiter.Close()
		generalLimiter.Close()
	})

	r := NewRouter(
		&handler.AuthHandler{},
		&handler.UserHandler{},
		&handler.AppointmentHandler{},
		&handler.ReportHandler{},
		&handler.ComplaintHandler{},
		&handler.PaymentHandler{},
		middleware.NewAuthMiddleware(nil, nil, nil),
		middleware.NewCORSMiddleware(nil),
		middleware.NewTimeoutMiddleware(time.Second),
		authLimiter,
		patientLimiter,
		generalLimiter,
	)
	return r.Setup()
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode health body: %v", err)
	}
	if body.Status != "OK" {
		t.Errorf("expected status OK, got %q", body.Status)
	}
	if body.Message == "" {
		t.Error("expected a non-empty message")
	}
}

// The auth surface carries the account-admin routes and mutates profile and
// password with PATCH.
func TestAuthSurfaceRoutes(t *testing.T) {
	router := newTestRouter(t)

	matched := []struct {
		method string
		path   string
	}{
		{http.MethodPatch, "/api/auth/update-profile"},
		{http.MethodPatch, "/api/auth/change-password"},
		{http.MethodGet, "/api/auth/users"},
		{http.MethodPost, "/api/auth/users"},
		{http.MethodPatch, "/api/auth/users/1b4e28ba-2fa1-11d2-883f-0016d3cca427/status"},
		{http.MethodDelete, "/api/auth/users/1b4e28ba-2fa1-11d2-883f-0016d3cca427"},
	}
	for _, tt := range matched {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		var match mux.RouteMatch
		if !router.Match(req, &match) || match.MatchErr != nil {
			t.Errorf("%s %s: expected a route, got %v", tt.method, tt.path, match.MatchErr)
		}
	}

	unmatched := []struct {
		method string
		path   string
	}{
		{http.MethodPut, "/api/auth/update-profile"},
		{http.MethodPut, "/api/auth/change-password"},
		{http.MethodGet, "/api/users"},
		{http.MethodPut, "/api/auth/users/1b4e28ba-2fa1-11d2-883f-0016d3cca427/status"},
	}
	for _, tt := range unmatched {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		var match mux.RouteMatch
		if router.Match(req, &match) && match.MatchErr == nil {
			t.Errorf("%s %s: expected no route", tt.method, tt.path)
		}
	}
}

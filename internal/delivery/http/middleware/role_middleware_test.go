package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
)

func requestWithRole(role entity.Role) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	principal := &entity.Principal{ID: uuid.New(), Role: role}
	return r.WithContext(context.WithValue(r.Context(), PrincipalKey, principal))
}

func TestRequireStaff(t *testing.T) {
	handler := RequireStaff(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		role entity.Role
		want int
	}{
		{entity.RoleSuperAdmin, http.StatusOK},
		{entity.RoleReceptionist, http.StatusOK},
		{entity.RolePatient, http.StatusForbidden},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestWithRole(tt.role))
		if w.Code != tt.want {
			t.Errorf("role %s: got status %d, want %d", tt.role, w.Code, tt.want)
		}
	}
}

func TestRequireRoleWithoutPrincipal(t *testing.T) {
	handler := RequireSuperAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("got status %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRequirePatient(t *testing.T) {
	handler := RequirePatient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithRole(entity.RolePatient))
	if w.Code != http.StatusOK {
		t.Errorf("patient: got status %d, want %d", w.Code, http.StatusOK)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithRole(entity.RoleReceptionist))
	if w.Code != http.StatusForbidden {
		t.Errorf("receptionist: got status %d, want %d", w.Code, http.StatusForbidden)
	}
}

package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	Success(w, http.StatusCreated, "Created", map[string]string{"id": "1"})

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q, want application/json", ct)
	}

	resp := decode(t, w)
	if resp.Status != "success" || resp.Message != "Created" {
		t.Errorf("unexpected envelope: %+v", resp)
	}
}

func TestErrorDefaults(t *testing.T) {
	tests := []struct {
		name  string
		write func(http.ResponseWriter, string)
		code  int
	}{
		{"bad request", BadRequest, http.StatusBadRequest},
		{"unauthorized", Unauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden, http.StatusForbidden},
		{"not found", NotFound, http.StatusNotFound},
		{"conflict", Conflict, http.StatusConflict},
		{"too many requests", TooManyRequests, http.StatusTooManyRequests},
		{"service unavailable", ServiceUnavailable, http.StatusServiceUnavailable},
		{"internal", InternalServerError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w, "")

			if w.Code != tt.code {
				t.Errorf("status = %d, want %d", w.Code, tt.code)
			}
			resp := decode(t, w)
			if resp.Status != "error" {
				t.Errorf("status field = %q, want error", resp.Status)
			}
			if resp.Message == "" {
				t.Error("expected a default message")
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	w := httptest.NewRecorder()
	ValidationError(w, []FieldError{{Field: "Email", Message: "Email is required"}})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	resp := decode(t, w)
	if resp.Errors == nil {
		t.Error("expected the errors array to be populated")
	}
}

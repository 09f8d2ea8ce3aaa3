package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		url       string
		wantPage  int
		wantLimit int
	}{
		{"/?page=2&limit=25", 2, 25},
		{"/", 1, defaultPageLimit},
		{"/?page=0&limit=-5", 1, defaultPageLimit},
		{"/?page=abc&limit=xyz", 1, defaultPageLimit},
		{"/?limit=1000", 1, maxPageLimit},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, tt.url, nil)
		page, limit := parsePagination(r)
		if page != tt.wantPage || limit != tt.wantLimit {
			t.Errorf("%s: got (%d, %d), want (%d, %d)", tt.url, page, limit, tt.wantPage, tt.wantLimit)
		}
	}
}

func TestSourceAddr(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.10:4321"
	if got := sourceAddr(r); got != "192.0.2.10" {
		t.Errorf("sourceAddr() = %q, want 192.0.2.10", got)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 192.0.2.10")
	if got := sourceAddr(r); got != "203.0.113.7" {
		t.Errorf("sourceAddr() = %q, want the first forwarded entry", got)
	}
}

func TestQueryUUID(t *testing.T) {
	id := uuid.New()

	r := httptest.NewRequest(http.MethodGet, "/?patient_id="+id.String(), nil)
	got, malformed := queryUUID(r, "patient_id")
	if malformed || got == nil || *got != id {
		t.Errorf("queryUUID() = (%v, %v), want (%s, false)", got, malformed, id)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	if got, malformed := queryUUID(r, "patient_id"); got != nil || malformed {
		t.Error("expected absent parameter to be nil and well-formed")
	}

	r = httptest.NewRequest(http.MethodGet, "/?patient_id=not-a-uuid", nil)
	if _, malformed := queryUUID(r, "patient_id"); !malformed {
		t.Error("expected malformed parameter to be flagged")
	}
}

func TestQueryDate(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?start_date=2026-01-15", nil)
	got, malformed := queryDate(r, "start_date")
	if malformed || got == nil {
		t.Fatalf("queryDate() = (%v, %v), want a parsed date", got, malformed)
	}
	if got.Year() != 2026 || got.Month() != 1 || got.Day() != 15 {
		t.Errorf("queryDate() = %v, want 2026-01-15", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/?start_date=15/01/2026", nil)
	if _, malformed := queryDate(r, "start_date"); !malformed {
		t.Error("expected malformed date to be flagged")
	}
}

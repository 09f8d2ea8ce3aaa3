package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func scrubbedBody(t *testing.T, contentType, body string) string {
	t.Helper()

	var got string
	handler := Scrub(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		got = string(data)
	}))

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r.Header.Set("Content-Type", contentType)
	handler.ServeHTTP(httptest.NewRecorder(), r)

	return got
}

func TestScrubDropsOperatorKeys(t *testing.T) {
	body := `{"email": {"$gt": ""}, "name": "Alice", "nested": {"a.b": 1, "ok": true}}`
	got := scrubbedBody(t, "application/json", body)

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(got), &payload); err != nil {
		t.Fatalf("scrubbed body is not valid JSON: %v", err)
	}

	email, ok := payload["email"].(map[string]interface{})
	if !ok {
		t.Fatalf("email = %v, want an object", payload["email"])
	}
	if _, present := email["$gt"]; present {
		t.Error("expected $gt key to be dropped")
	}
	if payload["name"] != "Alice" {
		t.Errorf("name = %v, want Alice", payload["name"])
	}

	nested := payload["nested"].(map[string]interface{})
	if _, present := nested["a.b"]; present {
		t.Error("expected dotted key to be dropped")
	}
	if nested["ok"] != true {
		t.Error("expected clean nested key to survive")
	}
}

func TestScrubPassesInvalidJSONThrough(t *testing.T) {
	body := `{"broken":`
	if got := scrubbedBody(t, "application/json", body); got != body {
		t.Errorf("got %q, want the original body untouched", got)
	}
}

func TestScrubIgnoresNonJSONBodies(t *testing.T) {
	body := `$gt=1`
	if got := scrubbedBody(t, "text/plain", body); got != body {
		t.Errorf("got %q, want the original body untouched", got)
	}
}

func TestScrubDropsQueryOperators(t *testing.T) {
	var query string
	handler := Scrub(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
	}))

	r := httptest.NewRequest(http.MethodGet, "/?status=OPEN&$where=1", nil)
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if strings.Contains(query, "where") {
		t.Errorf("query %q still contains an operator key", query)
	}
	if !strings.Contains(query, "status=OPEN") {
		t.Errorf("query %q lost a clean parameter", query)
	}
}

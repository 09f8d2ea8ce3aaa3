package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// maxBodyBytes bounds request bodies before they are buffered for scrubbing.
const maxBodyBytes = 1 << 20

// Scrub neutralises NoSQL-operator injection by recursively dropping object
// keys that begin with '$' or contain '.', from both JSON bodies and query
// parameters, before any handler decodes them.
func Scrub(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scrubQuery(r)

		if r.Body != nil && strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
			r.Body.Close()
			if err == nil && len(body) > 0 {
				body = scrubJSON(body)
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			r.ContentLength = int64(len(body))
		}

		next.ServeHTTP(w, r)
	})
}

func scrubQuery(r *http.Request) {
	query := r.URL.Query()
	changed := false
	for key := range query {
		if dangerousKey(key) {
			query.Del(key)
			changed = true
		}
	}
	if changed {
		r.URL.RawQuery = query.Encode()
	}
}

// scrubJSON rewrites the payload without operator-shaped keys. Invalid JSON
// is passed through untouched; the handler's decoder rejects it with a
// proper error.
func scrubJSON(body []byte) []byte {
	var payload interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return body
	}

	cleaned := scrubValue(payload)
	out, err := json.Marshal(cleaned)
	if err != nil {
		return body
	}
	return out
}

func scrubValue(v interface{}) interface{} {
	switch value := v.(type) {
	case map[string]interface{}:
		for key, nested := range value {
			if dangerousKey(key) {
				delete(value, key)
				continue
			}
			value[key] = scrubValue(nested)
		}
		return value
	case []interface{}:
		for i, item := range value {
			value[i] = scrubValue(item)
		}
		return value
	default:
		return v
	}
}

func dangerousKey(key string) bool {
	return strings.HasPrefix(key, "$") || strings.Contains(key, ".")
}

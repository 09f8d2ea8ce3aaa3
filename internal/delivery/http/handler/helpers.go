package handler

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"clinic-backend/internal/usecase"
	"clinic-backend/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// parsePagination reads page/limit query parameters and clamps them to the
// accepted ranges.
func parsePagination(r *http.Request) (page, limit int) {
	page = 1
	limit = defaultPageLimit

	if raw := r.URL.Query().Get("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 1 {
			page = v
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 1 {
			limit = v
		}
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

// pathID extracts and parses the {id} path variable.
func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	return id, err == nil
}

// sourceAddr resolves the client address, honouring the first entry of
// X-Forwarded-For when a proxy sits in front.
func sourceAddr(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// queryUUID parses an optional uuid query parameter; the bool reports whether
// the parameter was present and malformed.
func queryUUID(r *http.Request, name string) (*uuid.UUID, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, true
	}
	return &id, false
}

// queryDate parses an optional YYYY-MM-DD query parameter; the bool reports
// whether the parameter was present and malformed.
func queryDate(r *http.Request, name string) (*time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, false
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, true
	}
	return &t, false
}

// handleCommonError maps the sentinels shared by every usecase; it returns
// false if the error was not one of them.
func handleCommonError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		response.ServiceUnavailable(w, "")
	case errors.Is(err, usecase.ErrNoActor):
		response.Unauthorized(w, "")
	case errors.Is(err, usecase.ErrForbidden):
		response.Forbidden(w, "You do not have access to this resource")
	case errors.Is(err, usecase.ErrNotFound):
		response.NotFound(w, "")
	case errors.Is(err, usecase.ErrStateConflict):
		response.Conflict(w, "Resource state changed, please reload and retry")
	default:
		return false
	}
	return true
}

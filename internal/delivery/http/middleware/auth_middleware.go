package middleware

import (
	"context"
	"net/http"
	"strings"

	"clinic-backend/internal/domain/entity"
	"clinic-backend/internal/domain/repository"
	"clinic-backend/pkg/jwt"
	"clinic-backend/pkg/response"

	"gorm.io/gorm"
)

type contextKey string

const (
	PrincipalKey contextKey = "principal"
)

// AuthCookieName is the HTTP-only cookie carrying the bearer token for
// browser clients.
const AuthCookieName = "jwt"

type AuthMiddleware struct {
	tokenService  *jwt.TokenService
	principalRepo repository.PrincipalRepository
	db            *gorm.DB
}

func NewAuthMiddleware(tokenService *jwt.TokenService, principalRepo repository.PrincipalRepository, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService:  tokenService,
		principalRepo: principalRepo,
		db:            db,
	}
}

// Authenticate resolves the current principal from the Authorization header
// or the jwt cookie. It rejects deactivated accounts and tokens issued before
// the principal's last password change.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := m.resolve(r)
		if !ok {
			response.Unauthorized(w, "You are not logged in or your session has expired")
			return
		}

		ctx := context.WithValue(r.Context(), PrincipalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuthenticate performs the same resolution but continues without a
// principal on any failure.
func (m *AuthMiddleware) OptionalAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if principal, ok := m.resolve(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), PrincipalKey, principal))
		}
		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) resolve(r *http.Request) (*entity.Principal, bool) {
	tokenString := extractToken(r)
	if tokenString == "" {
		return nil, false
	}

	claims, err := m.tokenService.Verify(tokenString)
	if err != nil {
		return nil, false
	}

	principal, err := m.principalRepo.FindByID(m.db.WithContext(r.Context()), claims.Subject)
	if err != nil || principal == nil {
		return nil, false
	}

	// Tokens issued before a password change are invalid.
	if principal.TokenInvalidAt(claims.IssuedAtTime()) {
		return nil, false
	}

	if !principal.Active {
		return nil, false
	}

	return principal, true
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	if cookie, err := r.Cookie(AuthCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// PrincipalFromContext extracts the authenticated principal from context.
func PrincipalFromContext(ctx context.Context) (*entity.Principal, bool) {
	principal, ok := ctx.Value(PrincipalKey).(*entity.Principal)
	return principal, ok
}

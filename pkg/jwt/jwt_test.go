package jwt

import (
	"errors"
	"testing"
	"time"

	"clinic-backend/config"

	"github.com/google/uuid"
)

func newTestService(expiry time.Duration) *TokenService {
	return NewTokenService(config.JWTConfig{Secret: "test-secret", Expiry: expiry})
}

func TestIssueAndVerify(t *testing.T) {
	service := newTestService(time.Hour)
	subject := uuid.New()

	token, expiresAt, err := service.Issue(subject)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	if token == "" {
		t.Fatal("Issue() returned an empty token")
	}
	if expiresAt.Before(time.Now()) {
		t.Error("expected expiry in the future")
	}

	claims, err := service.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if claims.Subject != subject {
		t.Errorf("subject = %s, want %s", claims.Subject, subject)
	}
	if claims.IssuedAtTime().IsZero() {
		t.Error("expected a non-zero issue instant")
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	service := newTestService(-time.Minute)

	token, _, err := service.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	_, err = service.Verify(token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Verify() error = %v, want %v", err, ErrExpiredToken)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	service := newTestService(time.Hour)
	other := NewTokenService(config.JWTConfig{Secret: "other-secret", Expiry: time.Hour})

	token, _, err := service.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	_, err = other.Verify(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want %v", err, ErrInvalidToken)
	}
}

func TestVerifyGarbage(t *testing.T) {
	service := newTestService(time.Hour)

	if _, err := service.Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want %v", err, ErrInvalidToken)
	}
}

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndParse(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	tok, err := IssueToken("agent-123", "a@x.com", secret, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	claims, err := ParseToken(tok, secret)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != "agent-123" {
		t.Fatalf("subject mismatch: got %q want %q", claims.Subject, "agent-123")
	}
	if claims.Email != "a@x.com" {
		t.Fatalf("email mismatch: got %q", claims.Email)
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		t.Fatalf("missing time claims")
	}
	validity := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if validity != time.Hour {
		t.Fatalf("validity window mismatch: got %s", validity)
	}
}

func TestParseExpired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := IssueToken("u1", "u1@x.com", secret, -time.Second)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if _, err := ParseToken(tok, secret); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected jwt.ErrTokenExpired, got %v", err)
	}
}

func TestParseWrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := IssueToken("u2", "u2@x.com", []byte("right-secret"), time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if _, err := ParseToken(tok, []byte("wrong-secret")); err == nil {
		t.Fatalf("expected error for invalid signature, got nil")
	}
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()

	if _, err := ParseToken("not.a.jwt", []byte("k")); err == nil {
		t.Fatalf("expected error for malformed token, got nil")
	}
}

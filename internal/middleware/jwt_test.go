package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/MOUSSA13D/mini-bank7/internal/auth"
	"github.com/MOUSSA13D/mini-bank7/internal/config"
)

func newProtectedApp(cfg config.Config) *fiber.App {
	app := fiber.New()
	app.Get("/protected", JWTAuth(cfg), func(c *fiber.Ctx) error {
		uid, _ := c.Locals("agent_id").(string)
		return c.SendString(uid)
	})
	return app
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	cfg := config.Config{JWTSecret: "secret"}
	app := newProtectedApp(cfg)

	token, err := auth.IssueToken("agent-1", "a@x.com", []byte(cfg.JWTSecret), time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	app := newProtectedApp(config.Config{JWTSecret: "secret"})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/protected", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	cfg := config.Config{JWTSecret: "secret"}
	app := newProtectedApp(cfg)

	token, err := auth.IssueToken("agent-1", "a@x.com", []byte(cfg.JWTSecret), -time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", resp.StatusCode)
	}
}

func TestJWTAuthRejectsForgedToken(t *testing.T) {
	app := newProtectedApp(config.Config{JWTSecret: "secret"})

	token, err := auth.IssueToken("agent-1", "a@x.com", []byte("other-secret"), time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for forged token, got %d", resp.StatusCode)
	}
}

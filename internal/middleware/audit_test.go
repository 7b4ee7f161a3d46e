package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/MOUSSA13D/mini-bank7/internal/logging"
)

func newAuditedApp() *fiber.App {
	app := fiber.New()
	app.Use(RequestID())
	app.Use(Audit(logging.Discard()))
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	return app
}

func TestRequestIDGenerated(t *testing.T) {
	app := newAuditedApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get(requestIDHeader) == "" {
		t.Fatal("expected a generated request id header")
	}
}

func TestRequestIDEchoed(t *testing.T) {
	app := newAuditedApp()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if got := resp.Header.Get(requestIDHeader); got != "req-123" {
		t.Fatalf("expected caller id echoed back, got %q", got)
	}
}

func TestRequestIDOversizedReplaced(t *testing.T) {
	app := newAuditedApp()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, strings.Repeat("x", maxRequestIDLen+1))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	got := resp.Header.Get(requestIDHeader)
	if got == "" || strings.HasPrefix(got, "xxx") {
		t.Fatalf("expected oversized id replaced, got %q", got)
	}
}

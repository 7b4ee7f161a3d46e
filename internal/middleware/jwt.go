package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/MOUSSA13D/mini-bank7/internal/auth"
	"github.com/MOUSSA13D/mini-bank7/internal/config"
)

// JWTAuth returns a middleware that validates bearer session tokens and
// stores the agent identity in request locals. The server keeps no token
// state; signature and expiry checks are the whole gate.
func JWTAuth(cfg config.Config) fiber.Handler {
	secret := []byte(cfg.JWTSecret)
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])

		claims, err := auth.ParseToken(tokenStr, secret)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		c.Locals("agent_id", claims.Subject)
		c.Locals("agent_email", claims.Email)
		return c.Next()
	}
}

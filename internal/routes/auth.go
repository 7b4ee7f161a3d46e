package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MOUSSA13D/mini-bank7/internal/auth"
)

// RegisterAuthRoutes wires the register/login endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler) {
	group := r.Group("/auth")
	group.Post("/register", h.Register)
	group.Post("/login", h.Login)
}

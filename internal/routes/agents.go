package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MOUSSA13D/mini-bank7/internal/agent"
)

// RegisterAgentRoutes wires the account CRUD endpoints, keyed by agent code.
func RegisterAgentRoutes(r fiber.Router, h *agent.Handler) {
	r.Get("/agents", h.List)
	r.Post("/agents", h.Create)
	r.Get("/agents/:code", h.Get)
	r.Put("/agents/:code", h.Update)
	r.Delete("/agents/:code", h.Delete)
}

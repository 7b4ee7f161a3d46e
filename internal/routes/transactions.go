package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MOUSSA13D/mini-bank7/internal/transaction"
)

// RegisterTransactionRoutes wires deposit recording, browsing, cancellation
// and the dashboard stats.
func RegisterTransactionRoutes(r fiber.Router, h *transaction.Handler) {
	r.Get("/transactions", h.List)
	r.Get("/transactions/stats", h.Stats)
	r.Post("/transactions/deposit", h.Deposit)
	r.Post("/transactions/:reference/cancel", h.Cancel)
}

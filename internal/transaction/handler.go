package transaction

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/MOUSSA13D/mini-bank7/internal/agent"
)

// Handler exposes deposit, listing, cancel and stats endpoints.
type Handler struct {
	svc    *Service
	agents agent.Repository
}

// NewHandler constructs a transaction HTTP handler. The agent repository is
// used to resolve the acting agent's display name for deposit records.
func NewHandler(svc *Service, agents agent.Repository) *Handler {
	return &Handler{svc: svc, agents: agents}
}

type depositRequest struct {
	Account string `json:"account"`
	Amount  int64  `json:"amount"`
}

type transactionResponse struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Amount        int64     `json:"montant"`
	Reference     string    `json:"reference"`
	Status        string    `json:"statut"`
	Sender        string    `json:"expediteur,omitempty"`
	Recipient     string    `json:"destinataire,omitempty"`
	AccountNumber string    `json:"accountNumber"`
	UserType      string    `json:"userType,omitempty"`
	Date          time.Time `json:"date"`
}

func toResponse(tx Transaction) transactionResponse {
	return transactionResponse{
		ID:            tx.ID,
		Type:          tx.Type,
		Amount:        tx.Amount,
		Reference:     tx.Reference,
		Status:        tx.Status,
		Sender:        tx.Sender,
		Recipient:     tx.Recipient,
		AccountNumber: tx.AccountNumber,
		UserType:      tx.UserType,
		Date:          tx.CreatedAt,
	}
}

// Deposit records a deposit to a client or distributor account.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	var req depositRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid body")
	}

	tx, err := h.svc.RecordDeposit(c.UserContext(), DepositInput{
		AccountNumber: req.Account,
		Amount:        req.Amount,
		Sender:        h.senderName(c),
	})
	if err != nil {
		return mapError(err)
	}

	return c.Status(http.StatusCreated).JSON(toResponse(tx))
}

// senderName resolves the authenticated agent's display name. Falls back to
// the generic label when the account cannot be resolved.
func (h *Handler) senderName(c *fiber.Ctx) string {
	uid, _ := c.Locals("agent_id").(string)
	if uid != "" && h.agents != nil {
		if a, err := h.agents.FindByID(c.UserContext(), uid); err == nil {
			return a.FullName()
		}
	}
	return "Agent"
}

// List returns a filtered page of transactions.
func (h *Handler) List(c *fiber.Ctx) error {
	page, err := h.svc.List(c.UserContext(), ListFilter{
		Query:    c.Query("q"),
		Type:     c.Query("type"),
		Status:   c.Query("status"),
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("pageSize", 10),
	})
	if err != nil {
		return mapError(err)
	}

	items := make([]transactionResponse, 0, len(page.Items))
	for _, tx := range page.Items {
		items = append(items, toResponse(tx))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"items":      items,
		"page":       page.Page,
		"pageSize":   page.PageSize,
		"total":      page.Total,
		"totalPages": page.TotalPages,
	})
}

// Cancel marks the referenced transaction cancelled.
func (h *Handler) Cancel(c *fiber.Ctx) error {
	tx, err := h.svc.Cancel(c.UserContext(), c.Params("reference"))
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(tx))
}

// Stats returns the dashboard counters.
func (h *Handler) Stats(c *fiber.Ctx) error {
	st, err := h.svc.Stats(c.UserContext())
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(st)
}

func mapError(err error) *fiber.Error {
	switch {
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrAmountTooSmall):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadyCancelled):
		return fiber.NewError(http.StatusConflict, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, "Server error")
	}
}

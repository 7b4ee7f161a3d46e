package agent

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the account CRUD endpoints used by the dashboard.
type Handler struct {
	svc *Service
}

// NewHandler constructs an agent HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type agentResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	FirstName     string    `json:"firstName,omitempty"`
	LastName      string    `json:"lastName,omitempty"`
	AgentCode     string    `json:"agentCode,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	UserType      string    `json:"userType"`
	Status        string    `json:"status"`
	AccountNumber string    `json:"accountNumber,omitempty"`
	Balance       int64     `json:"balance"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// toResponse strips credential material; password fields never cross the
// boundary.
func toResponse(a Agent) agentResponse {
	return agentResponse{
		ID:            a.ID,
		Email:         a.Email,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		AgentCode:     a.AgentCode,
		Phone:         a.Phone,
		UserType:      a.UserType,
		Status:        a.Status,
		AccountNumber: a.AccountNumber,
		Balance:       a.Balance,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// List returns a filtered page of accounts.
func (h *Handler) List(c *fiber.Ctx) error {
	page, err := h.svc.List(c.UserContext(), ListFilter{
		Query:    c.Query("q"),
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("pageSize", 10),
	})
	if err != nil {
		return mapError(err)
	}

	items := make([]agentResponse, 0, len(page.Items))
	for _, a := range page.Items {
		items = append(items, toResponse(a))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"items":      items,
		"page":       page.Page,
		"pageSize":   page.PageSize,
		"total":      page.Total,
		"totalPages": page.TotalPages,
	})
}

type createRequest struct {
	Email         string `json:"email"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	AgentCode     string `json:"agentCode"`
	Phone         string `json:"phone"`
	UserType      string `json:"userType"`
	Status        string `json:"status"`
	AccountNumber string `json:"accountNumber"`
	Balance       int64  `json:"balance"`
}

// Create inserts an admin-created account keyed by agent code.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid body")
	}

	a, err := h.svc.Create(c.UserContext(), CreateInput{
		Email:         req.Email,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		AgentCode:     req.AgentCode,
		Phone:         req.Phone,
		UserType:      req.UserType,
		Status:        req.Status,
		AccountNumber: req.AccountNumber,
		Balance:       req.Balance,
	})
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusCreated).JSON(toResponse(a))
}

// Get fetches an account by agent code.
func (h *Handler) Get(c *fiber.Ctx) error {
	a, err := h.svc.GetByCode(c.UserContext(), c.Params("code"))
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(a))
}

type updateRequest struct {
	FirstName     *string `json:"firstName"`
	LastName      *string `json:"lastName"`
	Phone         *string `json:"phone"`
	UserType      *string `json:"userType"`
	Status        *string `json:"status"`
	AccountNumber *string `json:"accountNumber"`
	Balance       *int64  `json:"balance"`
}

// Update patches an account; absent fields are left untouched.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid body")
	}

	a, err := h.svc.Update(c.UserContext(), c.Params("code"), UpdateInput{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Phone:         req.Phone,
		UserType:      req.UserType,
		Status:        req.Status,
		AccountNumber: req.AccountNumber,
		Balance:       req.Balance,
	})
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(toResponse(a))
}

// Delete removes an account by agent code.
func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.UserContext(), c.Params("code")); err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"ok": true})
}

// Me returns the authenticated agent's profile.
func (h *Handler) Me(c *fiber.Ctx) error {
	uid, _ := c.Locals("agent_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}
	a, err := h.svc.GetByID(c.UserContext(), uid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusUnauthorized, "agent not found")
		}
		return mapError(err)
	}
	resp := toResponse(a)
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"agent":    resp,
		"fullName": a.FullName(),
	})
}

// SeedDemo inserts the legacy demo account. Routes expose it only in
// development.
func (h *Handler) SeedDemo(c *fiber.Ctx) error {
	seeded, err := h.svc.SeedDemo(c.UserContext())
	if err != nil {
		return mapError(err)
	}
	status := http.StatusOK
	if seeded {
		status = http.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"ok": true, "seeded": seeded})
}

func mapError(err error) *fiber.Error {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return fiber.NewError(http.StatusBadRequest, "agentCode and email are required")
	case errors.Is(err, ErrDuplicateCode), errors.Is(err, ErrDuplicateEmail):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "Not found")
	default:
		return fiber.NewError(http.StatusInternalServerError, "Server error")
	}
}

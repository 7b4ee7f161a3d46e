package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/MOUSSA13D/mini-bank7/internal/agent"
)

// Handler exposes the register/login endpoints.
type Handler struct {
	svc *Service
}

// NewHandler constructs an auth HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	AgentCode string `json:"agentCode"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Token    string `json:"token"`
}

// Register creates an account and returns it with a token (auto-login).
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid body")
	}

	session, err := h.svc.Register(c.UserContext(), agent.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		AgentCode: req.AgentCode,
	})
	if err != nil {
		return mapError(err)
	}

	return c.Status(http.StatusCreated).JSON(sessionResponse{
		ID:       session.Agent.ID,
		Email:    session.Agent.Email,
		FullName: session.Agent.FullName(),
		Token:    session.Token,
	})
}

// Login verifies credentials and returns the account with a token. Rejections
// carry a deliberately generic message.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid body")
	}

	session, err := h.svc.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return mapError(err)
	}

	return c.Status(http.StatusOK).JSON(sessionResponse{
		ID:       session.Agent.ID,
		Email:    session.Agent.Email,
		FullName: session.Agent.FullName(),
		Token:    session.Token,
	})
}

// mapError converts domain errors to HTTP responses. Storage and signing
// failures surface as a generic server error with no internal detail.
func mapError(err error) *fiber.Error {
	switch {
	case errors.Is(err, agent.ErrInvalidRequest):
		return fiber.NewError(http.StatusBadRequest, "email and password are required")
	case errors.Is(err, agent.ErrInvalidCredentials):
		return fiber.NewError(http.StatusBadRequest, "Invalid credentials")
	case errors.Is(err, agent.ErrDuplicateEmail):
		return fiber.NewError(http.StatusConflict, "Email already in use")
	default:
		return fiber.NewError(http.StatusInternalServerError, "Server error")
	}
}

package auth

import (
	"context"
	"time"

	"github.com/MOUSSA13D/mini-bank7/internal/agent"
	"github.com/MOUSSA13D/mini-bank7/internal/config"
)

// Session is the result of a successful login or registration: the resolved
// account plus a freshly issued bearer token.
type Session struct {
	Agent agent.Agent
	Token string
}

// Service verifies credentials through the agent service and issues session
// tokens. It holds the process-wide signing secret.
type Service struct {
	agents *agent.Service
	secret []byte
	ttl    time.Duration
}

// NewService builds the auth service from configuration.
func NewService(cfg config.Config, agents *agent.Service) *Service {
	return &Service{agents: agents, secret: []byte(cfg.JWTSecret), ttl: cfg.TokenTTL}
}

// Login verifies the email/password pair and issues a token on acceptance.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	a, err := s.agents.Verify(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	return s.newSession(a)
}

// Register creates the account and auto-authenticates it.
func (s *Service) Register(ctx context.Context, in agent.RegisterInput) (Session, error) {
	a, err := s.agents.Register(ctx, in)
	if err != nil {
		return Session{}, err
	}
	return s.newSession(a)
}

func (s *Service) newSession(a agent.Agent) (Session, error) {
	token, err := IssueToken(a.ID, a.Email, s.secret, s.ttl)
	if err != nil {
		return Session{}, err
	}
	return Session{Agent: a, Token: token}, nil
}

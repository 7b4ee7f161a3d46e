package agent

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxPageSize     = 100
	defaultPageSize = 10

	userTypeAgent = "Agent"
	statusActive  = "Actif"
)

// Service manages account lifecycle and credential verification.
type Service struct {
	repo Repository
}

// NewService creates a new agent service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Verify resolves the account for the given email and checks the candidate
// password against its credential forms. It is read-only: no lockout, no
// attempt counting. Unknown email and wrong password are indistinguishable.
func (s *Service) Verify(ctx context.Context, email, password string) (Agent, error) {
	if email == "" || password == "" {
		return Agent{}, ErrInvalidRequest
	}

	a, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Agent{}, ErrInvalidCredentials
		}
		return Agent{}, err
	}

	if !a.CredentialMatches(password) {
		return Agent{}, ErrInvalidCredentials
	}

	return a, nil
}

// RegisterInput carries self-service registration fields.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	AgentCode string
}

// Register creates a new agent account. It always stores a bcrypt digest and
// never writes the legacy plaintext field. The duplicate pre-check is racy on
// its own; the unique constraint on email makes the insert authoritative.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Agent, error) {
	if in.Email == "" || in.Password == "" {
		return Agent{}, ErrInvalidRequest
	}

	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return Agent{}, ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return Agent{}, err
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return Agent{}, err
	}

	now := time.Now().UTC()
	a := Agent{
		ID:             uuid.NewString(),
		Email:          in.Email,
		PasswordDigest: digest,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		AgentCode:      in.AgentCode,
		UserType:       userTypeAgent,
		Status:         statusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Agent{}, err
	}

	return a, nil
}

// GetByID fetches an account by identifier.
func (s *Service) GetByID(ctx context.Context, id string) (Agent, error) {
	return s.repo.FindByID(ctx, id)
}

// GetByCode fetches an account by agent code.
func (s *Service) GetByCode(ctx context.Context, code string) (Agent, error) {
	return s.repo.FindByCode(ctx, code)
}

// ListPage is one page of a filtered account listing.
type ListPage struct {
	Items      []Agent
	Page       int
	PageSize   int
	Total      int
	TotalPages int
}

// List returns a page of accounts, newest first. Page defaults to 1 and the
// page size is clamped to [1,100].
func (s *Service) List(ctx context.Context, f ListFilter) (ListPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}

	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return ListPage{}, err
	}

	totalPages := (total + f.PageSize - 1) / f.PageSize
	if totalPages < 1 {
		totalPages = 1
	}
	return ListPage{Items: items, Page: f.Page, PageSize: f.PageSize, Total: total, TotalPages: totalPages}, nil
}

// CreateInput carries fields for an admin-created account. These accounts are
// managed records (clients, distributors, agents) keyed by agent code; they
// carry no credential unless registered separately.
type CreateInput struct {
	Email         string
	FirstName     string
	LastName      string
	AgentCode     string
	Phone         string
	UserType      string
	Status        string
	AccountNumber string
	Balance       int64
}

// Create inserts an admin-created account.
func (s *Service) Create(ctx context.Context, in CreateInput) (Agent, error) {
	if in.AgentCode == "" || in.Email == "" {
		return Agent{}, ErrInvalidRequest
	}

	if _, err := s.repo.FindByCode(ctx, in.AgentCode); err == nil {
		return Agent{}, ErrDuplicateCode
	} else if !errors.Is(err, ErrNotFound) {
		return Agent{}, err
	}

	if in.UserType == "" {
		in.UserType = userTypeAgent
	}
	if in.Status == "" {
		in.Status = statusActive
	}

	now := time.Now().UTC()
	a := Agent{
		ID:            uuid.NewString(),
		Email:         in.Email,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		AgentCode:     in.AgentCode,
		Phone:         in.Phone,
		UserType:      in.UserType,
		Status:        in.Status,
		AccountNumber: in.AccountNumber,
		Balance:       in.Balance,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Agent{}, err
	}

	return a, nil
}

// UpdateInput patches mutable account fields; nil pointers leave the stored
// value untouched.
type UpdateInput struct {
	FirstName     *string
	LastName      *string
	Phone         *string
	UserType      *string
	Status        *string
	AccountNumber *string
	Balance       *int64
}

// Update applies a patch to the account identified by agent code and
// refreshes its updated timestamp.
func (s *Service) Update(ctx context.Context, code string, in UpdateInput) (Agent, error) {
	a, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return Agent{}, err
	}

	if in.FirstName != nil {
		a.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		a.LastName = *in.LastName
	}
	if in.Phone != nil {
		a.Phone = *in.Phone
	}
	if in.UserType != nil {
		a.UserType = *in.UserType
	}
	if in.Status != nil {
		a.Status = *in.Status
	}
	if in.AccountNumber != nil {
		a.AccountNumber = *in.AccountNumber
	}
	if in.Balance != nil {
		a.Balance = *in.Balance
	}
	a.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, a); err != nil {
		return Agent{}, err
	}
	return a, nil
}

// Delete removes an account by agent code.
func (s *Service) Delete(ctx context.Context, code string) error {
	return s.repo.DeleteByCode(ctx, code)
}

// SeedDemo inserts the demo account carried over from the legacy deployment:
// plaintext password, no digest, so logins exercise the legacy path. Returns
// whether a record was inserted.
func (s *Service) SeedDemo(ctx context.Context) (bool, error) {
	const demoEmail = "moussa@gmail.com"

	if _, err := s.repo.FindByEmail(ctx, demoEmail); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	now := time.Now().UTC()
	a := Agent{
		ID:             uuid.NewString(),
		Email:          demoEmail,
		LegacyPassword: "123456",
		FirstName:      "Moussa",
		LastName:       "Demo",
		AgentCode:      "AGT-DEMO-001",
		UserType:       userTypeAgent,
		Status:         statusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return false, err
	}
	return true, nil
}

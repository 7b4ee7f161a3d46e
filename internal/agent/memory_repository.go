package agent

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryRepository struct {
	mu     sync.RWMutex
	agents map[string]Agent // keyed by id
}

// NewMemoryRepository builds an in-memory account store for testing and for
// running without a database in development.
func NewMemoryRepository() Repository {
	return &memoryRepository{agents: make(map[string]Agent)}
}

func (r *memoryRepository) Create(_ context.Context, a Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.agents {
		if existing.Email == a.Email {
			return ErrDuplicateEmail
		}
		if a.AgentCode != "" && existing.AgentCode == a.AgentCode {
			return ErrDuplicateCode
		}
	}
	r.agents[a.ID] = a
	return nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.agents {
		if a.Email == email {
			return a, nil
		}
	}
	return Agent{}, ErrNotFound
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[id]
	if !ok {
		return Agent{}, ErrNotFound
	}
	return a, nil
}

func (r *memoryRepository) FindByCode(_ context.Context, code string) (Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.agents {
		if a.AgentCode == code {
			return a, nil
		}
	}
	return Agent{}, ErrNotFound
}

func (r *memoryRepository) FindByAccountNumber(_ context.Context, accountNumber string) (Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.agents {
		if a.AccountNumber != "" && a.AccountNumber == accountNumber {
			return a, nil
		}
	}
	return Agent{}, ErrNotFound
}

func (r *memoryRepository) List(_ context.Context, f ListFilter) ([]Agent, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Agent
	q := strings.ToLower(f.Query)
	for _, a := range r.agents {
		if q == "" || matchesQuery(a, q) {
			matched = append(matched, a)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (f.Page - 1) * f.PageSize
	if start >= total {
		return nil, total, nil
	}
	end := start + f.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func matchesQuery(a Agent, q string) bool {
	for _, field := range []string{a.FirstName, a.LastName, a.Email, a.AgentCode} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func (r *memoryRepository) Update(_ context.Context, a Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.agents[a.ID]
	if !ok {
		return ErrNotFound
	}
	existing.FirstName = a.FirstName
	existing.LastName = a.LastName
	existing.Phone = a.Phone
	existing.UserType = a.UserType
	existing.Status = a.Status
	existing.AccountNumber = a.AccountNumber
	existing.Balance = a.Balance
	existing.UpdatedAt = a.UpdatedAt
	r.agents[a.ID] = existing
	return nil
}

func (r *memoryRepository) AdjustBalance(_ context.Context, accountNumber string, delta int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.agents {
		if a.AccountNumber != "" && a.AccountNumber == accountNumber {
			a.Balance += delta
			a.UpdatedAt = at
			r.agents[id] = a
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryRepository) DeleteByCode(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.agents {
		if a.AgentCode == code {
			delete(r.agents, id)
			return nil
		}
	}
	return ErrNotFound
}

package transaction

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryRepository struct {
	mu  sync.RWMutex
	txs map[string]Transaction // keyed by reference
}

// NewMemoryRepository builds an in-memory transaction store for testing and
// for running without a database in development.
func NewMemoryRepository() Repository {
	return &memoryRepository{txs: make(map[string]Transaction)}
}

func (r *memoryRepository) Create(_ context.Context, tx Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txs[tx.Reference] = tx
	return nil
}

func (r *memoryRepository) FindByReference(_ context.Context, reference string) (Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tx, ok := r.txs[reference]
	if !ok {
		return Transaction{}, ErrNotFound
	}
	return tx, nil
}

func (r *memoryRepository) List(_ context.Context, f ListFilter) ([]Transaction, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(f.Query)
	var matched []Transaction
	for _, tx := range r.txs {
		if f.Type != "" && tx.Type != f.Type {
			continue
		}
		if f.Status != "" && tx.Status != f.Status {
			continue
		}
		if q != "" && !matchesQuery(tx, q) {
			continue
		}
		matched = append(matched, tx)
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

func matchesQuery(tx Transaction, q string) bool {
	for _, field := range []string{tx.Reference, tx.Sender, tx.Recipient, tx.AccountNumber} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func (r *memoryRepository) UpdateStatus(_ context.Context, reference, status string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[reference]
	if !ok {
		return ErrNotFound
	}
	tx.Status = status
	tx.UpdatedAt = at
	r.txs[reference] = tx
	return nil
}

func (r *memoryRepository) Stats(_ context.Context) (Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var st Stats
	for _, tx := range r.txs {
		st.Count++
		st.TotalAmount += tx.Amount
		switch tx.Type {
		case TypeDeposit:
			st.Deposits++
		case TypeTransfer:
			st.Transfers++
		}
		switch tx.Status {
		case StatusSuccess:
			st.Succeeded++
		case StatusFailed:
			st.Failed++
		case StatusPending:
			st.Pending++
		case StatusCancelled:
			st.Cancelled++
		}
	}
	return st, nil
}

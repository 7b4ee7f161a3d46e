package transaction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MOUSSA13D/mini-bank7/internal/agent"
	"github.com/MOUSSA13D/mini-bank7/internal/notification"
)

const (
	maxPageSize     = 100
	defaultPageSize = 10

	statsCacheKey = "minibank:stats:v1"
)

// Service records deposits, lists and cancels transactions, and aggregates
// the dashboard stats. The Redis cache is optional and strictly best effort:
// any cache failure falls through to the store.
type Service struct {
	repo     Repository
	agents   agent.Repository
	notifier notification.Notifier
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewService creates a transaction service. notifier and cache may be nil.
func NewService(repo Repository, agents agent.Repository, notifier notification.Notifier, cache *redis.Client, cacheTTL time.Duration) *Service {
	return &Service{repo: repo, agents: agents, notifier: notifier, cache: cache, cacheTTL: cacheTTL}
}

// DepositInput carries the deposit form fields plus the acting agent.
type DepositInput struct {
	AccountNumber string
	Amount        int64
	Sender        string
}

// RecordDeposit validates the target account, stores a successful deposit
// transaction and credits the account balance.
func (s *Service) RecordDeposit(ctx context.Context, in DepositInput) (Transaction, error) {
	if in.AccountNumber == "" || in.Amount == 0 {
		return Transaction{}, ErrInvalidRequest
	}
	if in.Amount < MinDepositAmount {
		return Transaction{}, ErrAmountTooSmall
	}

	target, err := s.agents.FindByAccountNumber(ctx, in.AccountNumber)
	if err != nil {
		if errors.Is(err, agent.ErrNotFound) {
			return Transaction{}, ErrAccountNotFound
		}
		return Transaction{}, err
	}

	now := time.Now().UTC()
	tx := Transaction{
		ID:            uuid.NewString(),
		Type:          TypeDeposit,
		Amount:        in.Amount,
		Reference:     newReference(now),
		Status:        StatusSuccess,
		Sender:        in.Sender,
		Recipient:     target.FullName(),
		AccountNumber: in.AccountNumber,
		UserType:      target.UserType,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, tx); err != nil {
		return Transaction{}, err
	}
	if err := s.agents.AdjustBalance(ctx, in.AccountNumber, in.Amount, now); err != nil {
		// No money moved, so the row must not read as a successful deposit.
		if uerr := s.repo.UpdateStatus(ctx, tx.Reference, StatusFailed, now); uerr != nil {
			return Transaction{}, errors.Join(err, uerr)
		}
		return Transaction{}, err
	}

	s.invalidateStats(ctx)
	s.notify(ctx, notification.Message{
		Kind:        notification.KindDepositRecorded,
		Destination: tx.AccountNumber,
		Body:        fmt.Sprintf("%s credited with %d FCFA (%s)", tx.AccountNumber, tx.Amount, tx.Reference),
	})
	return tx, nil
}

// newReference builds a TRX reference in the legacy format: prefix, epoch
// millis, short random suffix.
func newReference(at time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:4])
	return fmt.Sprintf("TRX%d%s", at.UnixMilli(), suffix)
}

// GetByReference fetches a transaction by reference.
func (s *Service) GetByReference(ctx context.Context, reference string) (Transaction, error) {
	return s.repo.FindByReference(ctx, reference)
}

// ListPage is one page of a filtered transaction listing.
type ListPage struct {
	Items      []Transaction
	Page       int
	PageSize   int
	Total      int
	TotalPages int
}

// List returns a page of transactions, newest first.
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

// Cancel marks a transaction cancelled. Cancelling a successful deposit
// debits the credited amount back from the target account.
func (s *Service) Cancel(ctx context.Context, reference string) (Transaction, error) {
	tx, err := s.repo.FindByReference(ctx, reference)
	if err != nil {
		return Transaction{}, err
	}
	if tx.Status == StatusCancelled {
		return Transaction{}, ErrAlreadyCancelled
	}

	// The debit-back runs before the status flip; when the flip fails the
	// refund is re-credited so the stored state matches the balance.
	now := time.Now().UTC()
	refunded := false
	if tx.Type == TypeDeposit && tx.Status == StatusSuccess {
		switch err := s.agents.AdjustBalance(ctx, tx.AccountNumber, -tx.Amount, now); {
		case err == nil:
			refunded = true
		case errors.Is(err, agent.ErrNotFound):
			// Account is gone, nothing to claw back.
		default:
			return Transaction{}, err
		}
	}

	if err := s.repo.UpdateStatus(ctx, reference, StatusCancelled, now); err != nil {
		if refunded {
			if rerr := s.agents.AdjustBalance(ctx, tx.AccountNumber, tx.Amount, now); rerr != nil {
				return Transaction{}, errors.Join(err, rerr)
			}
		}
		return Transaction{}, err
	}

	tx.Status = StatusCancelled
	tx.UpdatedAt = now
	s.invalidateStats(ctx)
	s.notify(ctx, notification.Message{
		Kind:        notification.KindTransactionCancelled,
		Destination: tx.AccountNumber,
		Body:        fmt.Sprintf("%s cancelled", tx.Reference),
	})
	return tx, nil
}

// notify is best effort; delivery failures never fail the operation.
func (s *Service) notify(ctx context.Context, msg notification.Message) {
	if s.notifier != nil {
		_ = s.notifier.Send(ctx, msg)
	}
}

// Stats returns the aggregate counters, served from the Redis cache when a
// fresh copy exists.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, statsCacheKey).Result(); err == nil {
			var st Stats
			if json.Unmarshal([]byte(raw), &st) == nil {
				return st, nil
			}
		}
	}

	st, err := s.repo.Stats(ctx)
	if err != nil {
		return Stats{}, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(st); err == nil {
			s.cache.Set(ctx, statsCacheKey, payload, s.cacheTTL)
		}
	}
	return st, nil
}

func (s *Service) invalidateStats(ctx context.Context) {
	if s.cache != nil {
		s.cache.Del(ctx, statsCacheKey)
	}
}

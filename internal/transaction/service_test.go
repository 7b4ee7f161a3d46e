package transaction

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/MOUSSA13D/mini-bank7/internal/agent"
)

const testAccount = "DIS1759746574902UJWT4"

func seedAgents(t *testing.T) agent.Repository {
	t.Helper()

	repo := agent.NewMemoryRepository()
	err := repo.Create(context.Background(), agent.Agent{
		ID:            "44444444-4444-4444-4444-444444444444",
		Email:         "ibrahima@x.com",
		FirstName:     "Ibrahima",
		LastName:      "Sarr",
		UserType:      "Distributeur",
		AccountNumber: testAccount,
		Balance:       1_000,
	})
	require.NoError(t, err)
	return repo
}

func TestRecordDeposit(t *testing.T) {
	ctx := context.Background()
	agents := seedAgents(t)
	svc := NewService(NewMemoryRepository(), agents, nil, nil, 0)

	tx, err := svc.RecordDeposit(ctx, DepositInput{AccountNumber: testAccount, Amount: 50_000, Sender: "Agent serge"})
	require.NoError(t, err)
	require.Equal(t, TypeDeposit, tx.Type)
	require.Equal(t, StatusSuccess, tx.Status)
	require.Equal(t, "Ibrahima Sarr", tx.Recipient)
	require.Equal(t, "Distributeur", tx.UserType)
	require.True(t, strings.HasPrefix(tx.Reference, "TRX"), "reference %q", tx.Reference)

	target, err := agents.FindByAccountNumber(ctx, testAccount)
	require.NoError(t, err)
	require.EqualValues(t, 51_000, target.Balance)
}

func TestRecordDepositValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository(), seedAgents(t), nil, nil, 0)

	_, err := svc.RecordDeposit(ctx, DepositInput{AccountNumber: "", Amount: 500})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.RecordDeposit(ctx, DepositInput{AccountNumber: testAccount, Amount: 0})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.RecordDeposit(ctx, DepositInput{AccountNumber: testAccount, Amount: MinDepositAmount - 1})
	require.ErrorIs(t, err, ErrAmountTooSmall)

	_, err = svc.RecordDeposit(ctx, DepositInput{AccountNumber: "CLI0000000000000XXXX", Amount: 500})
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestCancelDeposit(t *testing.T) {
	ctx := context.Background()
	agents := seedAgents(t)
	svc := NewService(NewMemoryRepository(), agents, nil, nil, 0)

	tx, err := svc.RecordDeposit(ctx, DepositInput{AccountNumber: testAccount, Amount: 50_000})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, tx.Reference)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)

	// The credited amount was debited back.
	target, err := agents.FindByAccountNumber(ctx, testAccount)
	require.NoError(t, err)
	require.EqualValues(t, 1_000, target.Balance)

	_, err = svc.Cancel(ctx, tx.Reference)
	require.ErrorIs(t, err, ErrAlreadyCancelled)

	_, err = svc.Cancel(ctx, "TRX0000000000000XXXX")
	require.ErrorIs(t, err, ErrNotFound)
}

type creditFailAgents struct {
	agent.Repository
	err error
}

func (r creditFailAgents) AdjustBalance(context.Context, string, int64, time.Time) error {
	return r.err
}

func TestRecordDepositCreditFailureMarksRowFailed(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	svc := NewService(repo, creditFailAgents{seedAgents(t), errors.New("connection reset")}, nil, nil, 0)

	_, err := svc.RecordDeposit(ctx, DepositInput{AccountNumber: testAccount, Amount: 50_000})
	require.Error(t, err)

	// The stored row must not claim success when no money moved.
	items, total, err := repo.List(ctx, ListFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, StatusFailed, items[0].Status)
}

type statusFailRepo struct {
	Repository
	err error
}

func (r statusFailRepo) UpdateStatus(context.Context, string, string, time.Time) error {
	return r.err
}

func TestCancelStatusFailureRestoresBalance(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	agents := seedAgents(t)
	svc := NewService(repo, agents, nil, nil, 0)

	tx, err := svc.RecordDeposit(ctx, DepositInput{AccountNumber: testAccount, Amount: 50_000})
	require.NoError(t, err)

	broken := NewService(statusFailRepo{repo, errors.New("connection reset")}, agents, nil, nil, 0)
	_, err = broken.Cancel(ctx, tx.Reference)
	require.Error(t, err)

	// The refund went back and the row still reads successful.
	target, err := agents.FindByAccountNumber(ctx, testAccount)
	require.NoError(t, err)
	require.EqualValues(t, 51_000, target.Balance)

	stored, err := repo.FindByReference(ctx, tx.Reference)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, stored.Status)
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	svc := NewService(repo, seedAgents(t), nil, nil, 0)

	now := time.Now().UTC()
	seed := []Transaction{
		{ID: "1", Type: TypeDeposit, Amount: 50_000, Reference: "TRX175970000001", Status: StatusSuccess,
			Recipient: "Ibrahima Sarr", AccountNumber: testAccount, CreatedAt: now.Add(-3 * time.Minute)},
		{ID: "2", Type: TypeTransfer, Amount: 15_000, Reference: "TRX175970000002", Status: StatusSuccess,
			Sender: "Cheikh Sow", Recipient: "Fatou Diallo", AccountNumber: "CLI1759000000000MAR", CreatedAt: now.Add(-2 * time.Minute)},
		{ID: "3", Type: TypeTransfer, Amount: 8_000, Reference: "TRX175970000003", Status: StatusFailed,
			Sender: "Boubacar Diop", Recipient: "Aissatou Fall", AccountNumber: "CLI17596069037411JKL", CreatedAt: now.Add(-time.Minute)},
	}
	for _, tx := range seed {
		require.NoError(t, repo.Create(ctx, tx))
	}

	all, err := svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Equal(t, 3, all.Total)
	// Newest first.
	require.Equal(t, "TRX175970000003", all.Items[0].Reference)

	transfers, err := svc.List(ctx, ListFilter{Type: TypeTransfer})
	require.NoError(t, err)
	require.Equal(t, 2, transfers.Total)

	failed, err := svc.List(ctx, ListFilter{Type: TypeTransfer, Status: StatusFailed})
	require.NoError(t, err)
	require.Equal(t, 1, failed.Total)

	byName, err := svc.List(ctx, ListFilter{Query: "fatou"})
	require.NoError(t, err)
	require.Equal(t, 1, byName.Total)
	require.Equal(t, "TRX175970000002", byName.Items[0].Reference)

	paged, err := svc.List(ctx, ListFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, paged.Items, 1)
	require.Equal(t, 2, paged.TotalPages)
}

func TestStatsCaching(t *testing.T) {
	ctx := context.Background()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	repo := NewMemoryRepository()
	svc := NewService(repo, seedAgents(t), nil, cache, time.Minute)

	require.NoError(t, repo.Create(ctx, Transaction{ID: "1", Type: TypeDeposit, Amount: 50_000,
		Reference: "TRX175970000001", Status: StatusSuccess, AccountNumber: testAccount}))

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, st.Count)
	require.EqualValues(t, 50_000, st.TotalAmount)
	require.Equal(t, 1, st.Deposits)

	// A write bypassing the service is not visible while the cache is fresh.
	require.NoError(t, repo.Create(ctx, Transaction{ID: "2", Type: TypeTransfer, Amount: 1_000,
		Reference: "TRX175970000002", Status: StatusPending, AccountNumber: testAccount}))

	cached, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, cached.Count)

	// Once the TTL elapses the counters are recomputed.
	mr.FastForward(2 * time.Minute)
	fresh, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, fresh.Count)
	require.Equal(t, 1, fresh.Pending)
}

func TestDepositInvalidatesStats(t *testing.T) {
	ctx := context.Background()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	svc := NewService(NewMemoryRepository(), seedAgents(t), nil, cache, time.Minute)

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, st.Count)

	_, err = svc.RecordDeposit(ctx, DepositInput{AccountNumber: testAccount, Amount: 500})
	require.NoError(t, err)

	st, err = svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, st.Count)
}

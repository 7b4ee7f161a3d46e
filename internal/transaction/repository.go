package transaction

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ListFilter narrows and pages a transaction listing.
type ListFilter struct {
	Query    string
	Type     string
	Status   string
	Page     int
	PageSize int
}

// Stats aggregates the dashboard counters.
type Stats struct {
	Count       int   `json:"count"`
	TotalAmount int64 `json:"totalAmount"`
	Deposits    int   `json:"deposits"`
	Transfers   int   `json:"transfers"`
	Succeeded   int   `json:"succeeded"`
	Failed      int   `json:"failed"`
	Pending     int   `json:"pending"`
	Cancelled   int   `json:"cancelled"`
}

// Repository persists transactions.
type Repository interface {
	Create(ctx context.Context, tx Transaction) error
	FindByReference(ctx context.Context, reference string) (Transaction, error)
	List(ctx context.Context, f ListFilter) ([]Transaction, int, error)
	UpdateStatus(ctx context.Context, reference, status string, at time.Time) error
	Stats(ctx context.Context) (Stats, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed transaction repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const txColumns = `id, type, amount, reference, status, COALESCE(sender, ''),
    COALESCE(recipient, ''), account_number, COALESCE(user_type, ''), created_at, updated_at`

// Create inserts a transaction record.
func (r *PostgresRepository) Create(ctx context.Context, tx Transaction) error {
	id, err := uuid.Parse(tx.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO transactions (id, type, amount, reference, status, sender,
        recipient, account_number, user_type, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, NULLIF($9, ''), $10, $11)`,
		id, tx.Type, tx.Amount, tx.Reference, tx.Status, tx.Sender, tx.Recipient,
		tx.AccountNumber, tx.UserType, tx.CreatedAt.UTC(), tx.UpdatedAt.UTC())
	return err
}

// FindByReference fetches a transaction by its reference.
func (r *PostgresRepository) FindByReference(ctx context.Context, reference string) (Transaction, error) {
	row := r.db.QueryRow(ctx, `SELECT `+txColumns+` FROM transactions WHERE reference = $1`, reference)
	return scanTx(row)
}

// List returns a page of transactions, newest first.
func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]Transaction, int, error) {
	const where = `($1 = ''
        OR reference ILIKE '%' || $1 || '%'
        OR sender ILIKE '%' || $1 || '%'
        OR recipient ILIKE '%' || $1 || '%'
        OR account_number ILIKE '%' || $1 || '%')
        AND ($2 = '' OR type = $2)
        AND ($3 = '' OR status = $3)`

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE `+where,
		f.Query, f.Type, f.Status).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `SELECT `+txColumns+` FROM transactions WHERE `+where+
		` ORDER BY created_at DESC LIMIT $4 OFFSET $5`,
		f.Query, f.Type, f.Status, f.PageSize, (f.Page-1)*f.PageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Transaction
	for rows.Next() {
		tx, err := scanTx(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// UpdateStatus sets the status of a transaction and refreshes updated_at.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, reference, status string, at time.Time) error {
	cmd, err := r.db.Exec(ctx, `UPDATE transactions SET status = $1, updated_at = $2 WHERE reference = $3`,
		status, at.UTC(), reference)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats computes the aggregate counters in a single query.
func (r *PostgresRepository) Stats(ctx context.Context) (Stats, error) {
	row := r.db.QueryRow(ctx, `SELECT COUNT(*), COALESCE(SUM(amount), 0),
        COUNT(*) FILTER (WHERE type = $1),
        COUNT(*) FILTER (WHERE type = $2),
        COUNT(*) FILTER (WHERE status = $3),
        COUNT(*) FILTER (WHERE status = $4),
        COUNT(*) FILTER (WHERE status = $5),
        COUNT(*) FILTER (WHERE status = $6)
        FROM transactions`,
		TypeDeposit, TypeTransfer, StatusSuccess, StatusFailed, StatusPending, StatusCancelled)

	var st Stats
	if err := row.Scan(&st.Count, &st.TotalAmount, &st.Deposits, &st.Transfers,
		&st.Succeeded, &st.Failed, &st.Pending, &st.Cancelled); err != nil {
		return Stats{}, err
	}
	return st, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTx(row rowScanner) (Transaction, error) {
	var (
		id        uuid.UUID
		createdAt time.Time
		updatedAt time.Time
		tx        Transaction
	)
	err := row.Scan(&id, &tx.Type, &tx.Amount, &tx.Reference, &tx.Status, &tx.Sender,
		&tx.Recipient, &tx.AccountNumber, &tx.UserType, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, ErrNotFound
		}
		return Transaction{}, err
	}
	tx.ID = id.String()
	tx.CreatedAt = createdAt.UTC()
	tx.UpdatedAt = updatedAt.UTC()
	return tx, nil
}

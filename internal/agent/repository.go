package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ListFilter narrows and pages a listing of accounts.
type ListFilter struct {
	Query    string
	Page     int
	PageSize int
}

// Repository persists agent accounts.
type Repository interface {
	Create(ctx context.Context, a Agent) error
	FindByEmail(ctx context.Context, email string) (Agent, error)
	FindByID(ctx context.Context, id string) (Agent, error)
	FindByCode(ctx context.Context, code string) (Agent, error)
	FindByAccountNumber(ctx context.Context, accountNumber string) (Agent, error)
	List(ctx context.Context, f ListFilter) ([]Agent, int, error)
	Update(ctx context.Context, a Agent) error
	AdjustBalance(ctx context.Context, accountNumber string, delta int64, at time.Time) error
	DeleteByCode(ctx context.Context, code string) error
}

// PostgresRepository implements Repository using PostgreSQL. The table name
// is injected because legacy deployments configure it externally.
type PostgresRepository struct {
	db    *pgxpool.Pool
	table string
}

// NewPostgresRepository builds a Postgres-backed agent repository.
func NewPostgresRepository(db *pgxpool.Pool, table string) *PostgresRepository {
	if table == "" {
		table = "agents"
	}
	return &PostgresRepository{db: db, table: table}
}

const agentColumns = `id, email, COALESCE(legacy_password, ''), password_digest,
    COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(agent_code, ''),
    COALESCE(phone, ''), user_type, status, COALESCE(account_number, ''), balance,
    created_at, updated_at`

// Create inserts a new account. Email and agent code uniqueness is enforced
// by constraints, which also closes the check-then-insert race in the
// registration path.
func (r *PostgresRepository) Create(ctx context.Context, a Agent) error {
	id, err := uuid.Parse(a.ID)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, email, legacy_password, password_digest, first_name,
        last_name, agent_code, phone, user_type, status, account_number, balance, created_at, updated_at)
        VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''),
        NULLIF($8, ''), $9, $10, NULLIF($11, ''), $12, $13, $14)`, r.table)
	_, err = r.db.Exec(ctx, query, id, a.Email, a.LegacyPassword, a.PasswordDigest, a.FirstName,
		a.LastName, a.AgentCode, a.Phone, a.UserType, a.Status, a.AccountNumber, a.Balance,
		a.CreatedAt.UTC(), a.UpdatedAt.UTC())
	return mapPgError(err)
}

// FindByEmail fetches the account whose email equals the input exactly.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Agent, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE email = $1`, agentColumns, r.table)
	return r.scanOne(r.db.QueryRow(ctx, query, email))
}

// FindByID fetches an account by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Agent, error) {
	agentID, err := uuid.Parse(id)
	if err != nil {
		return Agent{}, ErrNotFound
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, agentColumns, r.table)
	return r.scanOne(r.db.QueryRow(ctx, query, agentID))
}

// FindByCode fetches an account by its agent code.
func (r *PostgresRepository) FindByCode(ctx context.Context, code string) (Agent, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE agent_code = $1`, agentColumns, r.table)
	return r.scanOne(r.db.QueryRow(ctx, query, code))
}

// FindByAccountNumber fetches an account by its account number.
func (r *PostgresRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (Agent, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE account_number = $1`, agentColumns, r.table)
	return r.scanOne(r.db.QueryRow(ctx, query, accountNumber))
}

// List returns a page of accounts, newest first, optionally filtered by a
// case-insensitive substring over name parts, email and agent code.
func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]Agent, int, error) {
	where := `($1 = ''
        OR first_name ILIKE '%' || $1 || '%'
        OR last_name ILIKE '%' || $1 || '%'
        OR email ILIKE '%' || $1 || '%'
        OR agent_code ILIKE '%' || $1 || '%')`

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, r.table, where)
	if err := r.db.QueryRow(ctx, countQuery, f.Query).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		agentColumns, r.table, where)
	rows, err := r.db.Query(ctx, query, f.Query, f.PageSize, (f.Page-1)*f.PageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Agent
	for rows.Next() {
		a, err := r.scanOne(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Update overwrites the mutable fields of an account.
func (r *PostgresRepository) Update(ctx context.Context, a Agent) error {
	agentID, err := uuid.Parse(a.ID)
	if err != nil {
		return ErrNotFound
	}
	query := fmt.Sprintf(`UPDATE %s SET first_name = NULLIF($1, ''), last_name = NULLIF($2, ''),
        phone = NULLIF($3, ''), user_type = $4, status = $5, account_number = NULLIF($6, ''),
        balance = $7, updated_at = $8 WHERE id = $9`, r.table)
	cmd, err := r.db.Exec(ctx, query, a.FirstName, a.LastName, a.Phone, a.UserType, a.Status,
		a.AccountNumber, a.Balance, a.UpdatedAt.UTC(), agentID)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustBalance atomically applies a balance delta to the account holding the
// given account number.
func (r *PostgresRepository) AdjustBalance(ctx context.Context, accountNumber string, delta int64, at time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET balance = balance + $1, updated_at = $2 WHERE account_number = $3`, r.table)
	cmd, err := r.db.Exec(ctx, query, delta, at.UTC(), accountNumber)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByCode removes an account by agent code.
func (r *PostgresRepository) DeleteByCode(ctx context.Context, code string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE agent_code = $1`, r.table)
	cmd, err := r.db.Exec(ctx, query, code)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepository) scanOne(row rowScanner) (Agent, error) {
	var (
		id        uuid.UUID
		createdAt time.Time
		updatedAt time.Time
		a         Agent
	)
	err := row.Scan(&id, &a.Email, &a.LegacyPassword, &a.PasswordDigest, &a.FirstName,
		&a.LastName, &a.AgentCode, &a.Phone, &a.UserType, &a.Status, &a.AccountNumber,
		&a.Balance, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Agent{}, ErrNotFound
		}
		return Agent{}, err
	}
	a.ID = id.String()
	a.CreatedAt = createdAt.UTC()
	a.UpdatedAt = updatedAt.UTC()
	return a, nil
}

func mapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		if pgErr.ConstraintName == "agents_agent_code_key" {
			return ErrDuplicateCode
		}
		return ErrDuplicateEmail
	}
	return err
}

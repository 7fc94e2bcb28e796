package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/avelir/registration-service/internal/core/domain"
	"github.com/avelir/registration-service/internal/repository"
)

// AccountRepository implements port.AccountRepository using PostgreSQL.
type AccountRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAccountRepository wires a PostgreSQL-backed account repository.
func NewAccountRepository(exec pgExecutor) *AccountRepository {
	return &AccountRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new account row.
func (r *AccountRepository) Create(ctx context.Context, account domain.Account) error {
	stmt, args, err := r.builder.Insert("signup.accounts").
		Columns(
			"id",
			"username",
			"email",
			"password_hash",
			"password_algo",
			"status",
			"is_active",
			"registered_at",
			"activated_at",
		).
		Values(
			account.ID,
			account.Username,
			account.Email,
			account.PasswordHash,
			account.PasswordAlgo,
			account.Status,
			account.IsActive,
			account.RegisteredAt,
			account.ActivatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert account sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by identifier.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.getWhere(ctx, squirrel.Eq{"id": id})
}

// GetByUsername retrieves an account by exact username.
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.getWhere(ctx, squirrel.Eq{"username": username})
}

// GetInactiveByUsername retrieves an account constrained to is_active = false.
// An account that was already activated is reported as not found, which keeps
// replayed activation tokens from having anything to act on.
func (r *AccountRepository) GetInactiveByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.getWhere(ctx, squirrel.Eq{"username": username}, squirrel.Eq{"is_active": false})
}

func (r *AccountRepository) getWhere(ctx context.Context, preds ...squirrel.Eq) (*domain.Account, error) {
	query := r.builder.
		Select(
			"id",
			"username",
			"email",
			"password_hash",
			"password_algo",
			"status",
			"is_active",
			"registered_at",
			"activated_at",
		).
		From("signup.accounts")
	for _, pred := range preds {
		query = query.Where(pred)
	}

	stmt, args, err := query.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var (
		account     domain.Account
		activatedAt sql.NullTime
	)

	if err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.PasswordAlgo,
		&account.Status,
		&account.IsActive,
		&account.RegisteredAt,
		&activatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	if activatedAt.Valid {
		t := activatedAt.Time
		account.ActivatedAt = &t
	}

	return &account, nil
}

// Activate flips the active flag for an inactive account. The update is
// conditional on is_active = false so that of two racing activation attempts
// exactly one observes RowsAffected == 1; the loser gets ErrNotFound.
func (r *AccountRepository) Activate(ctx context.Context, id string) error {
	now := time.Now().UTC()

	stmt, args, err := r.builder.Update("signup.accounts").
		Set("is_active", true).
		Set("status", domain.AccountStatusActive).
		Set("activated_at", now).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"is_active": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build activate account sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("activate account: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UsernameTaken reports whether any account's case-folded username matches
// the provided folded candidate.
func (r *AccountRepository) UsernameTaken(ctx context.Context, folded string) (bool, error) {
	return r.existsFold(ctx, "username", folded)
}

// EmailTaken reports whether any account's case-folded email matches the
// provided folded candidate.
func (r *AccountRepository) EmailTaken(ctx context.Context, folded string) (bool, error) {
	return r.existsFold(ctx, "email", folded)
}

func (r *AccountRepository) existsFold(ctx context.Context, column, folded string) (bool, error) {
	stmt, args, err := r.builder.Select("1").
		From("signup.accounts").
		Where(squirrel.Expr("lower("+column+") = ?", folded)).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists sql: %w", err)
	}

	var one int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("query %s exists: %w", column, err)
	}

	return true, nil
}

// DeleteExpiredPending removes never-activated accounts registered before the
// cutoff, together with their activation records (cascade on FK).
func (r *AccountRepository) DeleteExpiredPending(ctx context.Context, registeredBefore time.Time) (int, error) {
	stmt, args, err := r.builder.Delete("signup.accounts").
		Where(squirrel.Eq{"is_active": false}).
		Where(squirrel.Lt{"registered_at": registeredBefore}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete expired accounts sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("delete expired accounts: %w", err)
	}

	return int(ct.RowsAffected()), nil
}

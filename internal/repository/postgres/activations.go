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

// ActivationRepository implements port.ActivationRepository using PostgreSQL.
type ActivationRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewActivationRepository wires a PostgreSQL-backed activation-record repository.
func NewActivationRepository(exec pgExecutor) *ActivationRepository {
	return &ActivationRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new activation record.
func (r *ActivationRepository) Create(ctx context.Context, record domain.ActivationRecord) error {
	stmt, args, err := r.builder.Insert("signup.activation_keys").
		Columns(
			"id",
			"account_id",
			"key_hash",
			"status",
			"ip",
			"user_agent",
			"created_at",
			"expires_at",
			"used_at",
		).
		Values(
			record.ID,
			record.AccountID,
			record.KeyHash,
			record.Status,
			record.IP,
			record.UserAgent,
			record.CreatedAt,
			record.ExpiresAt,
			record.UsedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert activation record sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert activation record: %w", err)
	}

	return nil
}

// GetByKeyHash retrieves an activation record by its hashed key.
func (r *ActivationRepository) GetByKeyHash(ctx context.Context, hash string) (*domain.ActivationRecord, error) {
	stmt, args, err := r.builder.Select(
		"id",
		"account_id",
		"key_hash",
		"status",
		"ip",
		"user_agent",
		"created_at",
		"expires_at",
		"used_at",
	).
		From("signup.activation_keys").
		Where(squirrel.Eq{"key_hash": hash}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select activation record sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var (
		record    domain.ActivationRecord
		ip        sql.NullString
		userAgent sql.NullString
		usedAt    sql.NullTime
	)

	if err := row.Scan(
		&record.ID,
		&record.AccountID,
		&record.KeyHash,
		&record.Status,
		&ip,
		&userAgent,
		&record.CreatedAt,
		&record.ExpiresAt,
		&usedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan activation record: %w", err)
	}

	if ip.Valid {
		v := ip.String
		record.IP = &v
	}
	if userAgent.Valid {
		v := userAgent.String
		record.UserAgent = &v
	}
	if usedAt.Valid {
		t := usedAt.Time
		record.UsedAt = &t
	}

	return &record, nil
}

// Consume marks a pending activation record as activated. Conditional on
// status = 'pending' so a key is redeemable exactly once.
func (r *ActivationRepository) Consume(ctx context.Context, id string, usedAt time.Time) error {
	stmt, args, err := r.builder.Update("signup.activation_keys").
		Set("status", domain.ActivationStatusActivated).
		Set("used_at", usedAt.UTC()).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": domain.ActivationStatusPending}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build consume activation record sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("consume activation record: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// DeleteExpired removes pending records whose window closed before the cutoff.
func (r *ActivationRepository) DeleteExpired(ctx context.Context, expiredBefore time.Time) (int, error) {
	stmt, args, err := r.builder.Delete("signup.activation_keys").
		Where(squirrel.Eq{"status": domain.ActivationStatusPending}).
		Where(squirrel.Lt{"expires_at": expiredBefore}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete expired activation records sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("delete expired activation records: %w", err)
	}

	return int(ct.RowsAffected()), nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/lostfound-backend/internal/models"
	"github.com/ignatzorin/lostfound-backend/internal/repository/common"
)

// ErrOTPNotFound возвращается, когда действующего кода нет.
var ErrOTPNotFound = errors.New("otp code not found")

// ErrOTPAttemptsExhausted возвращается, когда для кода не осталось попыток.
var ErrOTPAttemptsExhausted = errors.New("otp attempts exhausted")

// OTPRepository хранит одноразовые коды подтверждения.
type OTPRepository struct {
	db *sqlx.DB
}

// NewOTPRepository создаёт экземпляр репозитория.
func NewOTPRepository(db *sqlx.DB) *OTPRepository {
	return &OTPRepository{db: db}
}

// Replace гасит все неиспользованные коды для (email, purpose) и сохраняет новый.
func (r *OTPRepository) Replace(ctx context.Context, code *models.OTPCode) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE otp_codes SET used = TRUE WHERE email = $1 AND purpose = $2 AND used = FALSE`,
			code.Email, code.Purpose,
		); err != nil {
			return fmt.Errorf("otp repository: invalidate %w", err)
		}

		query := `
			INSERT INTO otp_codes (email, purpose, code_hash, attempts, used, expires_at)
			VALUES ($1, $2, $3, 0, FALSE, $4)
			RETURNING id, created_at
		`
		if err := tx.QueryRowxContext(ctx, query, code.Email, code.Purpose, code.CodeHash, code.ExpiresAt).
			Scan(&code.ID, &code.CreatedAt); err != nil {
			return fmt.Errorf("otp repository: create %w", err)
		}
		return nil
	})
}

// GetActive возвращает последний неиспользованный код для (email, purpose).
func (r *OTPRepository) GetActive(ctx context.Context, email, purpose string) (*models.OTPCode, error) {
	var code models.OTPCode
	query := `
		SELECT id, email, purpose, code_hash, attempts, used, expires_at, created_at
		FROM otp_codes
		WHERE email = $1 AND purpose = $2 AND used = FALSE
		ORDER BY created_at DESC
		LIMIT 1
	`
	if err := r.db.GetContext(ctx, &code, query, email, purpose); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOTPNotFound
		}
		return nil, fmt.Errorf("otp repository: get active %w", err)
	}
	return &code, nil
}

// ReserveAttempt атомарно занимает одну попытку проверки кода и возвращает номер попытки.
// Если код погашен, возвращает ErrOTPNotFound, если попытки исчерпаны, ErrOTPAttemptsExhausted.
func (r *OTPRepository) ReserveAttempt(ctx context.Context, id uuid.UUID, maxAttempts int) (int, error) {
	var attempts int
	err := r.db.GetContext(ctx, &attempts, `
		UPDATE otp_codes SET attempts = attempts + 1
		WHERE id = $1 AND used = FALSE AND attempts < $2
		RETURNING attempts
	`, id, maxAttempts)
	if err == nil {
		return attempts, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("otp repository: reserve attempt %w", err)
	}

	var used bool
	if err := r.db.GetContext(ctx, &used, `SELECT used FROM otp_codes WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrOTPNotFound
		}
		return 0, fmt.Errorf("otp repository: reserve attempt %w", err)
	}
	if used {
		return 0, ErrOTPNotFound
	}
	return 0, ErrOTPAttemptsExhausted
}

// MarkUsed помечает код использованным. Возвращает ErrOTPNotFound, если код уже погашен
// параллельным запросом.
func (r *OTPRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `UPDATE otp_codes SET used = TRUE WHERE id = $1 AND used = FALSE`, id)
	if err != nil {
		return fmt.Errorf("otp repository: mark used %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("otp repository: mark used rows affected %w", err)
	}
	if rowsAffected == 0 {
		return ErrOTPNotFound
	}
	return nil
}

package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/jmoiron/sqlx"
)

// UserDirectoryAdapter читает таблицу users, которой владеет слой аутентификации.
type UserDirectoryAdapter struct {
	db *sqlx.DB
}

func NewUserDirectoryAdapter(db *sqlx.DB) *UserDirectoryAdapter {
	return &UserDirectoryAdapter{db: db}
}

func (r *UserDirectoryAdapter) FindAccount(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	var row accountRow
	query := `SELECT id, email, display_name, role, status, business_name FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить пользователя")
	}
	return &entity.Account{
		ID:           row.ID,
		Email:        row.Email,
		DisplayName:  row.DisplayName,
		Role:         valueobject.Role(row.Role),
		Status:       valueobject.UserStatus(row.Status),
		BusinessName: row.BusinessName,
	}, nil
}

func (r *UserDirectoryAdapter) CountByRole(ctx context.Context) (map[valueobject.Role]int, error) {
	var rows []countRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT role AS key, COUNT(*) AS count FROM users GROUP BY role`); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать пользователей")
	}
	result := make(map[valueobject.Role]int, len(rows))
	for _, row := range rows {
		result[valueobject.Role(row.Key)] = row.Count
	}
	return result, nil
}

type accountRow struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	DisplayName  string    `db:"display_name"`
	Role         string    `db:"role"`
	Status       string    `db:"status"`
	BusinessName *string   `db:"business_name"`
}

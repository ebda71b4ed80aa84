package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/jmoiron/sqlx"
)

type MaintenanceRepositoryAdapter struct {
	db *sqlx.DB
}

func NewMaintenanceRepositoryAdapter(db *sqlx.DB) *MaintenanceRepositoryAdapter {
	return &MaintenanceRepositoryAdapter{db: db}
}

func (r *MaintenanceRepositoryAdapter) Get(ctx context.Context) (*entity.MaintenanceMode, error) {
	var row maintenanceRow
	query := `SELECT is_enabled, message, updated_by, updated_at FROM maintenance_mode WHERE id = 1`
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// строка создаётся миграцией; без неё считаем режим выключенным
			return &entity.MaintenanceMode{}, nil
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить режим обслуживания")
	}
	return &entity.MaintenanceMode{
		IsEnabled: row.IsEnabled,
		Message:   row.Message,
		UpdatedBy: row.UpdatedBy,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (r *MaintenanceRepositoryAdapter) Save(ctx context.Context, mode *entity.MaintenanceMode) error {
	query := `
		INSERT INTO maintenance_mode (id, is_enabled, message, updated_by, updated_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET is_enabled = EXCLUDED.is_enabled, message = EXCLUDED.message,
		    updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, mode.IsEnabled, mode.Message, mode.UpdatedBy, mode.UpdatedAt); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить режим обслуживания")
	}
	return nil
}

type maintenanceRow struct {
	IsEnabled bool       `db:"is_enabled"`
	Message   string     `db:"message"`
	UpdatedBy *uuid.UUID `db:"updated_by"`
	UpdatedAt time.Time  `db:"updated_at"`
}

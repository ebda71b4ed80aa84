package repository

import (
	"context"

	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
)

type MaintenanceRepository interface {
	Get(ctx context.Context) (*entity.MaintenanceMode, error)
	Save(ctx context.Context, mode *entity.MaintenanceMode) error
}

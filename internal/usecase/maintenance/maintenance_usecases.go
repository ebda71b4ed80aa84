package maintenance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/logger"
)

const cacheKey = "maintenance:mode"

// GetMaintenanceUseCase читает режим обслуживания. Его вызывает middleware на каждый
// запрос, поэтому значение кешируется на короткое время.
type GetMaintenanceUseCase struct {
	repo  repository.MaintenanceRepository
	cache repository.Cache
	ttl   time.Duration
}

func NewGetMaintenanceUseCase(repo repository.MaintenanceRepository, cache repository.Cache, ttl time.Duration) *GetMaintenanceUseCase {
	return &GetMaintenanceUseCase{repo: repo, cache: cache, ttl: ttl}
}

func (uc *GetMaintenanceUseCase) Execute(ctx context.Context) (*entity.MaintenanceMode, error) {
	if uc.cache == nil || uc.ttl <= 0 {
		return uc.repo.Get(ctx)
	}

	v, err := uc.cache.GetOrSet(cacheKey, uc.ttl, func() (any, error) {
		mode, err := uc.repo.Get(ctx)
		if err != nil {
			return nil, err
		}
		return *mode, nil
	})
	if err != nil {
		return nil, err
	}
	mode, ok := v.(entity.MaintenanceMode)
	if !ok {
		uc.cache.Delete(cacheKey)
		return uc.repo.Get(ctx)
	}
	return &mode, nil
}

type SetMaintenanceUseCase struct {
	repo  repository.MaintenanceRepository
	cache repository.Cache
}

func NewSetMaintenanceUseCase(repo repository.MaintenanceRepository, cache repository.Cache) *SetMaintenanceUseCase {
	return &SetMaintenanceUseCase{repo: repo, cache: cache}
}

// Execute включает или выключает режим. adminID равен nil, когда режим меняют из CLI.
func (uc *SetMaintenanceUseCase) Execute(ctx context.Context, enabled bool, message string, adminID *uuid.UUID) (*entity.MaintenanceMode, error) {
	mode, err := uc.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := mode.Set(enabled, message, adminID); err != nil {
		return nil, err
	}
	if err := uc.repo.Save(ctx, mode); err != nil {
		return nil, err
	}

	if uc.cache != nil {
		uc.cache.Delete(cacheKey)
	}
	logger.Log.WithField("enabled", enabled).Info("maintenance: режим обслуживания изменён")
	return mode, nil
}

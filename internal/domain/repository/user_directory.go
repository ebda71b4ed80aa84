package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
)

// UserDirectory даёт доменному слою доступ к учётным записям только на чтение.
type UserDirectory interface {
	FindAccount(ctx context.Context, id uuid.UUID) (*entity.Account, error)
	CountByRole(ctx context.Context) (map[valueobject.Role]int, error)
}

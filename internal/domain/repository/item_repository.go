package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
)

type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	Update(ctx context.Context, item *entity.Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Item, error)
	List(ctx context.Context, filter ItemFilter) ([]*entity.Item, int, error)
	// FindMatchCandidates возвращает открытые найденные вещи: сначала той же категории, затем самые новые.
	FindMatchCandidates(ctx context.Context, category string, excludeOwnerID *uuid.UUID, limit int) ([]*entity.Item, error)
	CountByStatus(ctx context.Context, ownerID *uuid.UUID) (map[valueobject.ItemStatus]int, error)
	CountByType(ctx context.Context) (map[valueobject.ItemType]int, error)
}

type ItemFilter struct {
	Type      string
	Status    string
	Category  string
	Location  string
	Search    string
	OwnerID   *uuid.UUID
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

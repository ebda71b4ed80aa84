package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
)

// ClaimBuilder получает заблокированную вещь и строит новую заявку.
type ClaimBuilder func(item *entity.Item, hasActive bool) (*entity.Claim, error)

// ClaimCloser получает заблокированные вещь, заявку и все соседние заявки
// и переводит их в итоговое состояние. Изменённые объекты сохраняются целиком.
type ClaimCloser func(item *entity.Item, claim *entity.Claim, siblings []*entity.Claim) error

// ClaimClosure результат транзакционного закрытия вещи.
type ClaimClosure struct {
	Item     *entity.Item
	Claim    *entity.Claim
	Siblings []*entity.Claim
}

type ClaimRepository interface {
	// Submit блокирует строку вещи и вставляет заявку в той же транзакции.
	Submit(ctx context.Context, itemID, claimantID uuid.UUID, build ClaimBuilder) (*entity.Claim, error)
	// UpdateStatus сохраняет статус, только если версия в базе равна expectedVersion.
	UpdateStatus(ctx context.Context, claim *entity.Claim, expectedVersion int) error
	// Close блокирует вещь и все её заявки, применяет closer и сохраняет результат атомарно.
	Close(ctx context.Context, claimID uuid.UUID, closer ClaimCloser) (*ClaimClosure, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Claim, error)
	List(ctx context.Context, filter ClaimFilter) ([]*entity.Claim, int, error)
	CountByStatus(ctx context.Context, ownerID *uuid.UUID) (map[valueobject.ClaimStatus]int, error)
}

type ClaimFilter struct {
	ItemID     *uuid.UUID
	ClaimantID *uuid.UUID
	OwnerID    *uuid.UUID
	Status     string
	Limit      int
	Offset     int
}

package item

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
)

type UpdateItemUseCase struct {
	itemRepo repository.ItemRepository
}

func NewUpdateItemUseCase(itemRepo repository.ItemRepository) *UpdateItemUseCase {
	return &UpdateItemUseCase{itemRepo: itemRepo}
}

// Execute обновляет объявление. Тип из input игнорируется: он фиксируется при создании.
func (uc *UpdateItemUseCase) Execute(ctx context.Context, itemID, userID uuid.UUID, input ItemInput) (*entity.Item, error) {
	item, err := uc.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if !item.IsOwnedBy(userID) {
		return nil, apperror.ErrForbidden
	}

	input.Type = string(item.Type)
	details, err := input.details()
	if err != nil {
		return nil, err
	}

	if err := item.Update(details); err != nil {
		return nil, err
	}

	if err := uc.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

package item

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/logger"
)

// DeleteItemUseCase жёстко удаляет объявление вместе с заявками и перепиской. Только для администраторов.
type DeleteItemUseCase struct {
	itemRepo repository.ItemRepository
	images   repository.ImageStore
}

func NewDeleteItemUseCase(itemRepo repository.ItemRepository, images repository.ImageStore) *DeleteItemUseCase {
	return &DeleteItemUseCase{itemRepo: itemRepo, images: images}
}

func (uc *DeleteItemUseCase) Execute(ctx context.Context, itemID uuid.UUID) error {
	item, err := uc.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return err
	}

	if err := uc.itemRepo.Delete(ctx, itemID); err != nil {
		return err
	}

	if item.ImageURL != nil && uc.images != nil {
		if err := uc.images.Delete(ctx, *item.ImageURL); err != nil {
			logger.Log.WithError(err).WithField("item_id", itemID).Warn("item: не удалось удалить изображение")
		}
	}
	return nil
}

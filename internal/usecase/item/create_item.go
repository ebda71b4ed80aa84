package item

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/dispatch"
)

type ItemInput struct {
	Type                string
	Name                string
	Category            string
	Description         string
	DistinguishingMarks *string
	Location            string
	Date                time.Time
	ImageURL            *string
	Contact             string
}

func (in ItemInput) details() (entity.ItemDetails, error) {
	itemType, err := valueobject.NewItemType(in.Type)
	if err != nil {
		return entity.ItemDetails{}, err
	}
	return entity.ItemDetails{
		Type:                itemType,
		Name:                in.Name,
		Category:            in.Category,
		Description:         in.Description,
		DistinguishingMarks: in.DistinguishingMarks,
		Location:            in.Location,
		Date:                in.Date,
		ImageURL:            in.ImageURL,
		Contact:             in.Contact,
	}, nil
}

type CreateItemUseCase struct {
	itemRepo   repository.ItemRepository
	dispatcher *dispatch.Dispatcher
}

func NewCreateItemUseCase(itemRepo repository.ItemRepository, dispatcher *dispatch.Dispatcher) *CreateItemUseCase {
	return &CreateItemUseCase{itemRepo: itemRepo, dispatcher: dispatcher}
}

func (uc *CreateItemUseCase) Execute(ctx context.Context, ownerID uuid.UUID, input ItemInput) (*entity.Item, error) {
	details, err := input.details()
	if err != nil {
		return nil, err
	}

	item, err := entity.NewItem(ownerID, details)
	if err != nil {
		return nil, err
	}

	if err := uc.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	uc.dispatcher.Publish(dispatch.EventItemCreated, dispatch.ItemEvent{
		ItemID:    item.ID,
		OwnerID:   item.OwnerID,
		Type:      string(item.Type),
		Category:  item.Category,
		Location:  item.Location,
		CreatedAt: item.CreatedAt,
	})

	return item, nil
}

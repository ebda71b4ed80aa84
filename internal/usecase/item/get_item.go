package item

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/validation"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type GetItemUseCase struct {
	itemRepo repository.ItemRepository
}

func NewGetItemUseCase(itemRepo repository.ItemRepository) *GetItemUseCase {
	return &GetItemUseCase{itemRepo: itemRepo}
}

func (uc *GetItemUseCase) Execute(ctx context.Context, itemID uuid.UUID) (*entity.Item, error) {
	return uc.itemRepo.FindByID(ctx, itemID)
}

type ListItemsUseCase struct {
	itemRepo repository.ItemRepository
}

func NewListItemsUseCase(itemRepo repository.ItemRepository) *ListItemsUseCase {
	return &ListItemsUseCase{itemRepo: itemRepo}
}

func (uc *ListItemsUseCase) Execute(ctx context.Context, filter repository.ItemFilter) ([]*entity.Item, int, error) {
	if filter.Type != "" && filter.Type != "lost" && filter.Type != "found" {
		return nil, 0, apperror.New(apperror.ErrCodeValidation, "тип должен быть lost или found")
	}
	if filter.Status != "" && filter.Status != "open" && filter.Status != "resolved" {
		return nil, 0, apperror.New(apperror.ErrCodeValidation, "статус должен быть open или resolved")
	}
	if err := validation.ValidateSearchQuery(filter.Search); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	filter.Limit, filter.Offset = NormalizePage(filter.Limit, filter.Offset)
	return uc.itemRepo.List(ctx, filter)
}

// NormalizePage приводит параметры пагинации к допустимым значениям.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

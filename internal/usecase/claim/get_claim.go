package claim

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/item"
)

type GetClaimUseCase struct {
	claimRepo repository.ClaimRepository
}

func NewGetClaimUseCase(claimRepo repository.ClaimRepository) *GetClaimUseCase {
	return &GetClaimUseCase{claimRepo: claimRepo}
}

func (uc *GetClaimUseCase) Execute(ctx context.Context, claimID, userID uuid.UUID, isAdmin bool) (*entity.Claim, error) {
	claim, err := uc.claimRepo.FindByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if !claim.IsParticipant(userID) && !isAdmin {
		return nil, apperror.ErrForbidden
	}
	return claim, nil
}

type ListItemClaimsUseCase struct {
	claimRepo repository.ClaimRepository
	itemRepo  repository.ItemRepository
}

func NewListItemClaimsUseCase(claimRepo repository.ClaimRepository, itemRepo repository.ItemRepository) *ListItemClaimsUseCase {
	return &ListItemClaimsUseCase{claimRepo: claimRepo, itemRepo: itemRepo}
}

// Execute возвращает заявки на вещь. Видны только владельцу вещи и администратору.
func (uc *ListItemClaimsUseCase) Execute(ctx context.Context, itemID, userID uuid.UUID, isAdmin bool, limit, offset int) ([]*entity.Claim, int, error) {
	it, err := uc.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, 0, err
	}
	if !it.IsOwnedBy(userID) && !isAdmin {
		return nil, 0, apperror.ErrForbidden
	}

	limit, offset = item.NormalizePage(limit, offset)
	return uc.claimRepo.List(ctx, repository.ClaimFilter{ItemID: &itemID, Limit: limit, Offset: offset})
}

type ListClaimsUseCase struct {
	claimRepo repository.ClaimRepository
}

func NewListClaimsUseCase(claimRepo repository.ClaimRepository) *ListClaimsUseCase {
	return &ListClaimsUseCase{claimRepo: claimRepo}
}

// Execute выполняет выборку по уже ограниченному фильтру: вызывающий сам подставляет
// ClaimantID или OwnerID текущего пользователя.
func (uc *ListClaimsUseCase) Execute(ctx context.Context, filter repository.ClaimFilter) ([]*entity.Claim, int, error) {
	if filter.Status != "" {
		if _, err := valueobject.NewClaimStatus(filter.Status); err != nil {
			return nil, 0, err
		}
	}
	filter.Limit, filter.Offset = item.NormalizePage(filter.Limit, filter.Offset)
	return uc.claimRepo.List(ctx, filter)
}

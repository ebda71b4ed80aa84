package claim

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/dispatch"
)

// ResolveClaimUseCase закрывает заявку со стороны владельца вещи.
// Обычный пользователь закрывает сразу. Партнёр переводит заявку в resolving
// и ждёт подтверждения получения от заявителя (ConfirmClaimUseCase).
type ResolveClaimUseCase struct {
	claimRepo  repository.ClaimRepository
	users      repository.UserDirectory
	dispatcher *dispatch.Dispatcher
}

func NewResolveClaimUseCase(claimRepo repository.ClaimRepository, users repository.UserDirectory, dispatcher *dispatch.Dispatcher) *ResolveClaimUseCase {
	return &ResolveClaimUseCase{claimRepo: claimRepo, users: users, dispatcher: dispatcher}
}

func (uc *ResolveClaimUseCase) Execute(ctx context.Context, claimID, userID uuid.UUID) (*entity.Claim, error) {
	claim, err := uc.claimRepo.FindByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if !claim.IsItemOwner(userID) {
		return nil, apperror.ErrForbidden
	}

	owner, err := uc.users.FindAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	if owner.IsPartner() {
		version := claim.Version
		if err := claim.MarkResolving(); err != nil {
			return nil, err
		}
		if err := uc.claimRepo.UpdateStatus(ctx, claim, version); err != nil {
			return nil, err
		}
		uc.dispatcher.ClaimChanged(dispatch.EventClaimResolving, claim)
		uc.dispatcher.Mail(claim.Email, "Подтвердите получение вещи",
			"Организация отметила вещь как выданную. Подтвердите получение в разделе заявок.")
		return claim, nil
	}

	return closeItem(ctx, uc.claimRepo, uc.dispatcher, claim)
}

// ConfirmClaimUseCase второй шаг партнёрского сценария: заявитель подтверждает получение.
type ConfirmClaimUseCase struct {
	claimRepo  repository.ClaimRepository
	dispatcher *dispatch.Dispatcher
}

func NewConfirmClaimUseCase(claimRepo repository.ClaimRepository, dispatcher *dispatch.Dispatcher) *ConfirmClaimUseCase {
	return &ConfirmClaimUseCase{claimRepo: claimRepo, dispatcher: dispatcher}
}

func (uc *ConfirmClaimUseCase) Execute(ctx context.Context, claimID, userID uuid.UUID) (*entity.Claim, error) {
	claim, err := uc.claimRepo.FindByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if !claim.IsClaimant(userID) {
		return nil, apperror.ErrForbidden
	}
	if claim.Status != valueobject.ClaimStatusResolving {
		return nil, apperror.New(apperror.ErrCodeConflict, "заявка не ожидает подтверждения получения")
	}

	return closeItem(ctx, uc.claimRepo, uc.dispatcher, claim)
}

// closeItem атомарно закрывает заявку, все соседние заявки и саму вещь.
// Версия заявки, прочитанная до транзакции, должна совпасть с заблокированной строкой.
func closeItem(ctx context.Context, claimRepo repository.ClaimRepository, dispatcher *dispatch.Dispatcher, claim *entity.Claim) (*entity.Claim, error) {
	expectedVersion := claim.Version

	closure, err := claimRepo.Close(ctx, claim.ID, func(item *entity.Item, target *entity.Claim, siblings []*entity.Claim) error {
		if target.Version != expectedVersion {
			return apperror.ErrStaleClaim
		}
		if err := target.Resolve(); err != nil {
			return err
		}
		for _, sibling := range siblings {
			if _, err := sibling.CloseAsSibling(); err != nil {
				return err
			}
		}
		item.MarkResolved(time.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	dispatcher.ClaimChanged(dispatch.EventClaimResolved, closure.Claim)
	for _, sibling := range closure.Siblings {
		switch sibling.Status {
		case valueobject.ClaimStatusRejected:
			dispatcher.ClaimChanged(dispatch.EventClaimRejected, sibling)
		case valueobject.ClaimStatusResolved:
			dispatcher.ClaimChanged(dispatch.EventClaimResolved, sibling)
		}
	}

	return closure.Claim, nil
}

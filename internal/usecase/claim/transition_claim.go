package claim

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/dispatch"
)

type AcceptClaimUseCase struct {
	claimRepo  repository.ClaimRepository
	dispatcher *dispatch.Dispatcher
}

func NewAcceptClaimUseCase(claimRepo repository.ClaimRepository, dispatcher *dispatch.Dispatcher) *AcceptClaimUseCase {
	return &AcceptClaimUseCase{claimRepo: claimRepo, dispatcher: dispatcher}
}

func (uc *AcceptClaimUseCase) Execute(ctx context.Context, claimID, userID uuid.UUID) (*entity.Claim, error) {
	claim, err := uc.claimRepo.FindByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if !claim.IsItemOwner(userID) {
		return nil, apperror.ErrForbidden
	}

	version := claim.Version
	if err := claim.Accept(); err != nil {
		return nil, err
	}

	if err := uc.claimRepo.UpdateStatus(ctx, claim, version); err != nil {
		return nil, err
	}

	uc.dispatcher.ClaimChanged(dispatch.EventClaimAccepted, claim)
	uc.dispatcher.Mail(claim.Email, "Ваша заявка принята",
		"Владелец принял вашу заявку. Чат с ним теперь открыт.")
	return claim, nil
}

type RejectClaimUseCase struct {
	claimRepo  repository.ClaimRepository
	dispatcher *dispatch.Dispatcher
}

func NewRejectClaimUseCase(claimRepo repository.ClaimRepository, dispatcher *dispatch.Dispatcher) *RejectClaimUseCase {
	return &RejectClaimUseCase{claimRepo: claimRepo, dispatcher: dispatcher}
}

// Execute отклоняет открытую заявку. Администратор может отклонить любую.
func (uc *RejectClaimUseCase) Execute(ctx context.Context, claimID, userID uuid.UUID, isAdmin bool) (*entity.Claim, error) {
	claim, err := uc.claimRepo.FindByID(ctx, claimID)
	if err != nil {
		return nil, err
	}

	if !claim.IsItemOwner(userID) && !isAdmin {
		return nil, apperror.ErrForbidden
	}

	version := claim.Version
	if err := claim.Reject(); err != nil {
		return nil, err
	}

	if err := uc.claimRepo.UpdateStatus(ctx, claim, version); err != nil {
		return nil, err
	}

	uc.dispatcher.ClaimChanged(dispatch.EventClaimRejected, claim)
	uc.dispatcher.Mail(claim.Email, "Ваша заявка отклонена",
		"К сожалению, ваша заявка на вещь была отклонена.")
	return claim, nil
}

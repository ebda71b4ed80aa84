package claim

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/dispatch"
)

type SubmitClaimInput struct {
	ItemID        uuid.UUID
	ClaimantID    uuid.UUID
	FullName      string
	Email         string
	PhoneNumber   *string
	Proof         string
	ProofImageURL *string
}

type SubmitClaimUseCase struct {
	claimRepo  repository.ClaimRepository
	dispatcher *dispatch.Dispatcher
}

func NewSubmitClaimUseCase(claimRepo repository.ClaimRepository, dispatcher *dispatch.Dispatcher) *SubmitClaimUseCase {
	return &SubmitClaimUseCase{claimRepo: claimRepo, dispatcher: dispatcher}
}

// Execute создаёт заявку под блокировкой вещи, поэтому гонка с закрытием вещи невозможна.
func (uc *SubmitClaimUseCase) Execute(ctx context.Context, input SubmitClaimInput) (*entity.Claim, error) {
	details := entity.ClaimDetails{
		FullName:      input.FullName,
		Email:         input.Email,
		PhoneNumber:   input.PhoneNumber,
		Proof:         input.Proof,
		ProofImageURL: input.ProofImageURL,
	}

	var itemName string
	claim, err := uc.claimRepo.Submit(ctx, input.ItemID, input.ClaimantID, func(item *entity.Item, hasActive bool) (*entity.Claim, error) {
		c, err := entity.NewClaim(item, input.ClaimantID, details)
		if err != nil {
			return nil, err
		}
		if hasActive {
			return nil, apperror.New(apperror.ErrCodeConflict, "у вас уже есть активная заявка на эту вещь")
		}
		itemName = item.Name
		return c, nil
	})
	if err != nil {
		return nil, err
	}

	uc.dispatcher.ClaimChanged(dispatch.EventClaimSubmitted, claim)
	uc.dispatcher.MailUser(claim.ItemOwnerID,
		"Новая заявка на вашу вещь",
		fmt.Sprintf("%s подал(а) заявку на «%s». Откройте раздел заявок, чтобы её рассмотреть.", claim.FullName, itemName))

	return claim, nil
}

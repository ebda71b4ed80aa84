package feedback

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/domain/valueobject"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/item"
)

// SubmitFeedbackUseCase сохраняет отзыв о сервисе. Отзыв по заявке может оставить
// только её участник и только после возврата вещи.
type SubmitFeedbackUseCase struct {
	feedbackRepo repository.FeedbackRepository
	claimRepo    repository.ClaimRepository
}

func NewSubmitFeedbackUseCase(feedbackRepo repository.FeedbackRepository, claimRepo repository.ClaimRepository) *SubmitFeedbackUseCase {
	return &SubmitFeedbackUseCase{feedbackRepo: feedbackRepo, claimRepo: claimRepo}
}

func (uc *SubmitFeedbackUseCase) Execute(ctx context.Context, userID uuid.UUID, claimID *uuid.UUID, rating int, comment string) (*entity.Feedback, error) {
	if claimID != nil {
		claim, err := uc.claimRepo.FindByID(ctx, *claimID)
		if err != nil {
			return nil, err
		}
		if !claim.IsParticipant(userID) {
			return nil, apperror.ErrForbidden
		}
		if claim.Status != valueobject.ClaimStatusResolved {
			return nil, apperror.New(apperror.ErrCodeConflict, "отзыв можно оставить только после возврата вещи")
		}
	}

	fb, err := entity.NewFeedback(userID, claimID, rating, comment)
	if err != nil {
		return nil, err
	}
	if err := uc.feedbackRepo.Create(ctx, fb); err != nil {
		return nil, err
	}
	return fb, nil
}

type ListFeedbackUseCase struct {
	feedbackRepo repository.FeedbackRepository
}

func NewListFeedbackUseCase(feedbackRepo repository.FeedbackRepository) *ListFeedbackUseCase {
	return &ListFeedbackUseCase{feedbackRepo: feedbackRepo}
}

func (uc *ListFeedbackUseCase) Execute(ctx context.Context, limit, offset int) ([]*entity.Feedback, int, error) {
	limit, offset = item.NormalizePage(limit, offset)
	return uc.feedbackRepo.List(ctx, limit, offset)
}

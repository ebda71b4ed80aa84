package repository

import (
	"context"

	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
)

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *entity.Feedback) error
	List(ctx context.Context, limit, offset int) ([]*entity.Feedback, int, error)
	Summary(ctx context.Context) (FeedbackSummary, error)
}

type FeedbackSummary struct {
	Count   int
	Average float64
}

package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/domain/entity"
	"github.com/ignatzorin/lostfound-backend/internal/domain/repository"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/repository/common"
	"github.com/jmoiron/sqlx"
)

type FeedbackRepositoryAdapter struct {
	db *sqlx.DB
}

func NewFeedbackRepositoryAdapter(db *sqlx.DB) *FeedbackRepositoryAdapter {
	return &FeedbackRepositoryAdapter{db: db}
}

func (r *FeedbackRepositoryAdapter) Create(ctx context.Context, f *entity.Feedback) error {
	query := `INSERT INTO feedback (id, user_id, claim_id, rating, comment, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, f.ID, f.UserID, f.ClaimID, f.Rating, f.Comment, f.CreatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return apperror.Wrap(err, apperror.ErrCodeConflict, "отзыв по этой заявке уже оставлен")
		}
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось сохранить отзыв")
	}
	return nil
}

func (r *FeedbackRepositoryAdapter) List(ctx context.Context, limit, offset int) ([]*entity.Feedback, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM feedback`); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать отзывы")
	}

	var rows []feedbackRow
	query := `SELECT id, user_id, claim_id, rating, comment, created_at
		FROM feedback ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить отзывы")
	}

	result := make([]*entity.Feedback, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, total, nil
}

func (r *FeedbackRepositoryAdapter) Summary(ctx context.Context) (repository.FeedbackSummary, error) {
	var row struct {
		Count   int     `db:"count"`
		Average float64 `db:"average"`
	}
	query := `SELECT COUNT(*) AS count, COALESCE(AVG(rating), 0)::float8 AS average FROM feedback`
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return repository.FeedbackSummary{}, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось посчитать отзывы")
	}
	return repository.FeedbackSummary{Count: row.Count, Average: row.Average}, nil
}

type feedbackRow struct {
	ID        uuid.UUID  `db:"id"`
	UserID    uuid.UUID  `db:"user_id"`
	ClaimID   *uuid.UUID `db:"claim_id"`
	Rating    int        `db:"rating"`
	Comment   string     `db:"comment"`
	CreatedAt time.Time  `db:"created_at"`
}

func (f *feedbackRow) toEntity() *entity.Feedback {
	return &entity.Feedback{
		ID:        f.ID,
		UserID:    f.UserID,
		ClaimID:   f.ClaimID,
		Rating:    f.Rating,
		Comment:   f.Comment,
		CreatedAt: f.CreatedAt,
	}
}

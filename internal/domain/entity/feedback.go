package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/lostfound-backend/internal/pkg/apperror"
	"github.com/ignatzorin/lostfound-backend/internal/validation"
)

type Feedback struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ClaimID   *uuid.UUID
	Rating    int
	Comment   string
	CreatedAt time.Time
}

func NewFeedback(userID uuid.UUID, claimID *uuid.UUID, rating int, comment string) (*Feedback, error) {
	if rating < 1 || rating > 5 {
		return nil, apperror.New(apperror.ErrCodeValidation, "оценка должна быть от 1 до 5")
	}
	comment = strings.TrimSpace(comment)
	if err := validation.ValidateLength("комментарий", comment, 0, validation.MaxFeedbackLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	return &Feedback{
		ID:        uuid.New(),
		UserID:    userID,
		ClaimID:   claimID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	}, nil
}
